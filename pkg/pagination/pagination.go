// Copyright (c) 2026 Mesh Network. All rights reserved.

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// Mesh list endpoints use skip/limit window parameters (offset pagination).
// This package standardizes parsing, clamping, and the metadata block
// delivered in list response envelopes.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per window if not specified.
	DefaultLimit = 50
	// MaxLimit is the upper bound for items per window to prevent system abuse.
	MaxLimit = 50
)

// Params holds the parsed skip and limit from a request's query string.
type Params struct {
	Skip  int
	Limit int
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Count int `json:"count"`
}

// NewMeta constructs pagination metadata for a response window.
func NewMeta(params Params, count int) Meta {
	return Meta{
		Skip:  params.Skip,
		Limit: params.Limit,
		Count: count,
	}
}

// FromRequest parses "skip" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid or negative values fall back to defaults; limit is capped at
// [MaxLimit] so a single request can never drain a whole table.
func FromRequest(r *http.Request) Params {
	skip := parseIntParam(r, "skip", 0)
	limit := parseIntParam(r, "limit", DefaultLimit)

	if skip < 0 {
		skip = 0
	}

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Skip: skip, Limit: limit}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
