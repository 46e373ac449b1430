// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// SignedObject is the result of signing a single storage address. Signed
// objects are minted fresh per request and never cached: the embedded
// signature is bound to one expiry window.
type SignedObject struct {
	// URI is the canonical unsigned address (e.g. s3://bucket/key).
	URI string `json:"uri"`
	// URL is the signed, directly usable address.
	URL string `json:"url"`
	// ConnectionString carries the access string for dataset kinds that are
	// consumed as a stream rather than fetched from a plain URL.
	ConnectionString string `json:"connection_string,omitempty"`
}

// SignedURL is the single-item convenience result for one file ID.
type SignedURL struct {
	URI       string    `json:"uri"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// SignOptions are the recognized per-request signing options.
type SignOptions struct {
	// Expiry uses the compact relative grammar ("15M", "12H", "7D").
	// Empty or malformed values fall back to the default expiry.
	Expiry string `json:"expiry,omitempty"`
	// ContentType overrides the response content type on download.
	ContentType string `json:"content_type,omitempty"`
	// DownloadFileName, when set, is returned by the provider as the
	// suggested filename for direct browser downloads.
	DownloadFileName string `json:"download_file_name,omitempty"`
}

// ResolveExpiry parses the options expiry, falling back to the default.
func (o SignOptions) ResolveExpiry() Expiry {
	return ParseExpiry(o.Expiry)
}
