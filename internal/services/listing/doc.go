// Package listing reads property posts, news and projects, and uploads
// post images.
package listing
