package listing

import (
	"net/url"
	"strconv"
)

// Default paging applied when a Page field is zero or negative.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects a window of a paginated list. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) query() url.Values {
	p = p.normalized()
	return url.Values{
		"page":     {strconv.Itoa(p.Number)},
		"pageSize": {strconv.Itoa(p.Size)},
	}
}

// PageResult is one page of T plus enough to request the next.
type PageResult[T any] struct {
	Items   []T
	Page    int
	Size    int
	Total   int
	HasMore bool
}

// wirePage is the payload shape of every paginated endpoint.
type wirePage[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

func (w wirePage[T]) result(asked Page) PageResult[T] {
	asked = asked.normalized()
	r := PageResult[T]{
		Items: w.Items,
		Page:  w.Page,
		Size:  w.PageSize,
		Total: w.Total,
	}
	if r.Items == nil {
		r.Items = []T{}
	}
	if r.Page == 0 {
		r.Page = asked.Number
	}
	if r.Size == 0 {
		r.Size = asked.Size
	}
	r.HasMore = (r.Page-1)*r.Size+len(r.Items) < r.Total
	return r
}
