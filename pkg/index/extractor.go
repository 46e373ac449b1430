// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"fmt"
	"strings"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"
)

// LocationExtractor pulls an unsigned storage location out of an index hit.
// Implementations are pluggable per deployment. A (zero, false, nil) return
// means the hit carries no location; an error means the hit is structurally
// broken. Either way the caller marks the item unresolved instead of
// aborting the batch.
type LocationExtractor interface {
	Extract(hit Hit) (types.StorageLocation, bool, error)
}

// DefaultLocationPath is the nested field the default extractor reads.
const DefaultLocationPath = "FilePath"

// FieldPathExtractor reads a dot-separated field path from the hit's data
// document and parses the value as an unsigned object URI.
type FieldPathExtractor struct {
	Path string
}

// NewFieldPathExtractor creates the default extractor. An empty path uses
// DefaultLocationPath.
func NewFieldPathExtractor(path string) *FieldPathExtractor {
	if path == "" {
		path = DefaultLocationPath
	}
	return &FieldPathExtractor{Path: path}
}

func (e *FieldPathExtractor) Extract(hit Hit) (types.StorageLocation, bool, error) {
	if hit.Data == nil {
		return types.StorageLocation{}, false, nil
	}

	var cur any = hit.Data
	for _, part := range strings.Split(e.Path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return types.StorageLocation{}, false, fmt.Errorf("field %q: parent is not a document", part)
		}
		cur, ok = m[part]
		if !ok {
			return types.StorageLocation{}, false, nil
		}
	}

	raw, ok := cur.(string)
	if !ok {
		return types.StorageLocation{}, false, fmt.Errorf("field %q: value is not a string", e.Path)
	}
	if strings.TrimSpace(raw) == "" {
		return types.StorageLocation{}, false, nil
	}

	loc, err := ParseUnsignedURI(raw)
	if err != nil {
		return types.StorageLocation{}, false, err
	}
	return loc, true, nil
}

// ParseUnsignedURI parses a canonical unsigned address such as
// "s3://bucket/path/to/object" into a storage location. A trailing slash
// marks a prefix (collection) scope.
func ParseUnsignedURI(raw string) (types.StorageLocation, error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return types.StorageLocation{}, fmt.Errorf("unsigned URI %q: unsupported scheme", raw)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return types.StorageLocation{}, fmt.Errorf("unsigned URI %q: missing bucket or key", raw)
	}

	if strings.HasSuffix(key, "/") {
		return types.PrefixLocation(bucket, strings.TrimSuffix(key, "/")), nil
	}
	return types.ObjectLocation(bucket, key), nil
}
