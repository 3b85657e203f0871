// Package service holds the business rules of the video platform.
//
//	Handler (HTTP)  → parses requests, writes envelopes
//	Service         → validates, checks ownership, orchestrates
//	Repository      → reads and writes the store
//
// Services take repository interfaces and return apperror values. They
// never see an *http.Request, so the seeder can drive them just like the
// HTTP handlers do.
package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/repository"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
	TrendingLimit    = 20

	MaxChannelNameLength        = 100
	MaxChannelDescriptionLength = 1000
	MaxHandleLength             = 30
	MaxVideoTitleLength         = 200
	MaxVideoDescriptionLength   = 5000
	MaxCommentLength            = 1000
	MinUsernameLength           = 3
	MaxUsernameLength           = 30
	MinPasswordLength           = 6
)

// PageRequest is a 1-based page number and page size as sent by clients.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) options() repository.ListOptions {
	return repository.ListOptions{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
}

// Page is one page of a listing plus what the client needs to page on.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

// Pages is the number of pages at the current limit, ceil(Total/Limit).
func (p Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

func newPage[T any](items []T, total int, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: req.Page, Limit: req.Limit}
}

// textField trims s and enforces required and max-length rules, counting
// characters rather than bytes.
func textField(field, label, s string, required bool, limit int) (string, error) {
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", apperror.ValidationFailed(field, label+" is required")
	}
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s cannot be more than %d characters", label, limit))
	}
	return s, nil
}
