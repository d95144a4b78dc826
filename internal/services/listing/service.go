package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"banbds/internal/domain"
	"banbds/internal/logging"
)

// ImageField is the multipart field name of an uploaded image.
const ImageField = "image"

// MaxImageBytes caps what UploadImage reads from its source. The backend
// applies its own, possibly smaller, limit.
const MaxImageBytes = 10 << 20

var (
	// ErrImageFormat means the backend refused the file type.
	ErrImageFormat = errors.New("unsupported image format")
	// ErrImageTooBig means the backend refused the file size.
	ErrImageTooBig = errors.New("image too big")
	// ErrNotFound is returned for a post id the backend does not know.
	ErrNotFound = errors.New("not found")
)

// Post is a property listing.
type Post struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Kind     string   `json:"kind,omitempty"`
	Price    int64    `json:"price"`
	Area     float64  `json:"area,omitempty"`
	Address  string   `json:"address,omitempty"`
	Images   []string `json:"images,omitempty"`
	OwnerID  string   `json:"ownerId,omitempty"`
	Created  string   `json:"createdAt,omitempty"`
	Verified bool     `json:"verified,omitempty"`
}

// Article is a news item.
type Article struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Published string `json:"publishedAt,omitempty"`
}

// Project is a development project (a building or estate).
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Developer string `json:"developer,omitempty"`
	Location  string `json:"location,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Image is the backend's record of an uploaded image.
type Image struct {
	URL string `json:"url"`
}

// UserCaller runs user-scoped calls; a rejected user session surfaces as
// domain.ErrUnauthorizedUser.
type UserCaller interface {
	CallAsUser(ctx context.Context, req domain.Request) (domain.Outcome, error)
}

// Service exposes the content endpoints.
type Service struct {
	calls domain.Caller
	users UserCaller
	log   *slog.Logger
}

// New returns a listing service. calls serves device-scoped endpoints and
// users the user-scoped ones.
func New(calls domain.Caller, users UserCaller, log *slog.Logger) *Service {
	return &Service{calls: calls, users: users, log: logging.OrDiscard(log)}
}

// MyPosts lists the logged-in user's own posts.
func (s *Service) MyPosts(ctx context.Context, p Page) (PageResult[Post], error) {
	return fetchPage[Post](ctx, s.users.CallAsUser, "/post/mine", p)
}

// News lists news articles.
func (s *Service) News(ctx context.Context, p Page) (PageResult[Article], error) {
	return fetchPage[Article](ctx, s.calls.Call, "/news", p)
}

// Projects lists development projects.
func (s *Service) Projects(ctx context.Context, p Page) (PageResult[Project], error) {
	return fetchPage[Project](ctx, s.calls.Call, "/project", p)
}

// Post fetches a single post.
func (s *Service) Post(ctx context.Context, id string) (Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Post{}, errors.New("get post: empty id")
	}
	out, err := s.calls.Call(ctx, domain.Request{
		Method: http.MethodGet,
		Path:   "/post/" + url.PathEscape(id),
	})
	if err != nil {
		return Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	var post Post
	if err := out.Decode(&post); err != nil {
		return Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	if post.ID == "" {
		return Post{}, fmt.Errorf("get post %s: %w", id, ErrNotFound)
	}
	return post, nil
}

// UploadImage sends an image for the logged-in user's posts.
func (s *Service) UploadImage(ctx context.Context, name string, r io.Reader) (Image, error) {
	content, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if len(content) > MaxImageBytes {
		return Image{}, ErrImageTooBig
	}

	out, err := s.users.CallAsUser(ctx, domain.Request{
		Method: http.MethodPost,
		Path:   "/post/image",
		Upload: &domain.Upload{
			Field:    ImageField,
			FileName: filepath.Base(name),
			Content:  content,
		},
	})
	if err != nil {
		return Image{}, fmt.Errorf("upload image: %w", err)
	}
	if out.Kind == domain.OutcomeImageRejected {
		switch out.Image {
		case domain.ImageFormat:
			return Image{}, ErrImageFormat
		case domain.ImageTooBig:
			return Image{}, ErrImageTooBig
		}
	}
	var img Image
	if err := out.Decode(&img); err != nil {
		return Image{}, fmt.Errorf("upload image: %w", err)
	}
	s.log.Info("image uploaded", slog.String("url", img.URL), slog.Int("bytes", len(content)))
	return img, nil
}

type callFunc func(context.Context, domain.Request) (domain.Outcome, error)

func fetchPage[T any](ctx context.Context, call callFunc, path string, p Page) (PageResult[T], error) {
	out, err := call(ctx, domain.Request{Method: http.MethodGet, Path: path, Query: p.query()})
	if err != nil {
		return PageResult[T]{}, fmt.Errorf("list %s: %w", path, err)
	}
	var w wirePage[T]
	if err := out.Decode(&w); err != nil {
		return PageResult[T]{}, fmt.Errorf("list %s: %w", path, err)
	}
	return w.result(p), nil
}
