package domain

import (
	"errors"
	"math"
)

// Common domain errors
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource already exists")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Page is a 1-based page request.
type Page struct {
	Page     int
	PageSize int
}

// Normalize clamps page to >= 1 and page size to 1..MaxPageSize, defaulting to DefaultPageSize.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func NewPaginatedResult[T any](data []T, total int64, p Page) *PaginatedResult[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.PageSize)))
	}
	return &PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}
