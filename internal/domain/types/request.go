package types

import "net/url"

// Request describes one logical call to the backend. It is safe to send
// more than once: bodies are held in memory rather than as readers.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	Body         any
	Upload       *Upload
	RequiresUser bool
}

// Upload is a multipart file part plus optional text fields.
type Upload struct {
	Field    string
	FileName string
	Content  []byte
	Fields   map[string]string
}
