// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"strings"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
)

// StorageLocation addresses either exactly one object (IsPrefix=false) or a
// collection of objects sharing a path prefix (IsPrefix=true).
type StorageLocation struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	IsPrefix bool   `json:"is_prefix,omitempty"`
}

// ObjectLocation addresses a single object.
func ObjectLocation(bucket, key string) StorageLocation {
	return StorageLocation{Bucket: bucket, Key: key}
}

// PrefixLocation addresses the collection of objects under prefix.
func PrefixLocation(bucket, prefix string) StorageLocation {
	return StorageLocation{Bucket: bucket, Key: prefix, IsPrefix: true}
}

// Validate fails fast on structurally invalid locations so that no network
// call is ever made with an empty bucket or key.
func (l StorageLocation) Validate() error {
	if strings.TrimSpace(l.Bucket) == "" {
		return delivererr.New(delivererr.KindValidation, "location.validate", "bucket must not be empty")
	}
	if strings.TrimSpace(l.Key) == "" {
		return delivererr.New(delivererr.KindValidation, "location.validate", "key must not be empty")
	}
	return nil
}

// Prefix returns the key normalized as a directory prefix with a single
// trailing separator. A key containing ambiguous doubled separators would
// widen the granted scope, so they are collapsed here.
func (l StorageLocation) Prefix() string {
	p := strings.TrimRight(l.Key, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p + "/"
}

func (l StorageLocation) String() string {
	return l.Bucket + "/" + l.Key
}
