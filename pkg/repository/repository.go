// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

// Package repository exposes provider-polymorphic signing operations over
// bucket+path addresses. All implementations register a factory here and are
// selected by configuration at process startup.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/minter"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"
)

// SignedObjectRepository mints signed artifacts scoped to one object or one
// prefix. Artifacts are created fresh per call; nothing is cached because the
// embedded signatures are bound to a single expiry window.
type SignedObjectRepository interface {
	// CreateSignedObject mints an upload (write) URL for a single object.
	CreateSignedObject(ctx context.Context, bucket, path string, opts types.SignOptions) (*types.SignedObject, error)

	// GetSignedObject mints a download (read) URL for a single object.
	GetSignedObject(ctx context.Context, bucket, path string, opts types.SignOptions) (*types.SignedObject, error)

	// GetSignedCollection enumerates objects under prefix and signs each
	// independently with the same options. An empty enumeration yields an
	// empty slice: a fresh prefix with no files yet is an expected state.
	GetSignedCollection(ctx context.Context, bucket, prefix string, opts types.SignOptions) ([]types.SignedObject, error)

	// CopySignedObject copies src to dst and mints a read URL for the new
	// object. A missing source is a not-found error, distinct from any
	// generic failure.
	CopySignedObject(ctx context.Context, srcBucket, srcPath, dstBucket, dstPath string, opts types.SignOptions) (*types.SignedObject, error)

	// MintCollectionCredential exchanges a prefix-scoped policy for a
	// temporary credential. write grants upload in addition to read/list.
	MintCollectionCredential(ctx context.Context, bucket, prefix string, write bool, opts types.SignOptions, actor string) (*minter.TemporaryCredential, error)
}

// Factory creates a SignedObjectRepository from config
type Factory func(cfg types.ProviderConfig) (SignedObjectRepository, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[types.ProviderType]Factory)
)

// Register adds a factory for a provider type
func Register(t types.ProviderType, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = f
}

// New creates a SignedObjectRepository from config
func New(cfg types.ProviderConfig) (SignedObjectRepository, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	return f(cfg)
}
