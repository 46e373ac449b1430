// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

// Package index resolves opaque external references (SRNs, file IDs) into
// unsigned storage locations through an external query service. The query
// service and the location extractor are collaborators: this package defines
// their contracts and ships default implementations.
package index

import (
	"context"
	"strings"
)

// Hit is one record returned by the external index.
type Hit struct {
	ID   string         `json:"id"`
	Kind string         `json:"kind"`
	Data map[string]any `json:"data"`
}

// QueryRequest is one page-bounded query against the external index.
type QueryRequest struct {
	// Kind restricts the query to one record kind; empty matches all.
	Kind string `json:"kind,omitempty"`
	// Query is a filter expression, typically built by FilterExpression.
	Query string `json:"query"`
	// Limit bounds the number of hits returned.
	Limit int `json:"limit"`
}

// QueryResponse carries one page of hits.
type QueryResponse struct {
	Hits       []Hit `json:"results"`
	TotalCount int   `json:"totalCount"`
}

// Searcher is the external index query capability.
type Searcher interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)
}

// FilterExpression builds a disjunction of quoted identifier matches against
// one field: `id: ("ref1" OR "ref2")`. Quotes inside identifiers are escaped
// so a crafted reference cannot widen the filter.
func FilterExpression(field string, ids []string) string {
	var b strings.Builder
	b.WriteString(field)
	b.WriteString(": (")
	for i, id := range ids {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(id, `"`, `\"`))
		b.WriteByte('"')
	}
	b.WriteString(")")
	return b.String()
}
