// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package minter

import (
	"context"
	"net/url"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignCeiling caps a presigned URL at seven days, the longest validity a
// SigV4 signature can express. Longer requests are capped rather than
// rejected, matching the clamp on the delegated path.
const PresignCeiling = 7 * 24 * time.Hour

// URLSigner implements the direct signature strategy: a signature over
// (bucket, key, method, expiry) computed with a long-lived signing identity.
// No round trip to an authorization service is involved.
type URLSigner struct {
	presigner PresignAPI
}

// NewURLSigner creates a URL signer over the provider presign primitive.
func NewURLSigner(presigner PresignAPI) *URLSigner {
	return &URLSigner{presigner: presigner}
}

// MintURL signs a single-object address for the given method. The expiry in
// opts is parsed with the relative grammar and falls back to the default.
func (s *URLSigner) MintURL(ctx context.Context, loc types.StorageLocation, method AccessMethod, opts types.SignOptions) (*types.SignedObject, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	expires := opts.ResolveExpiry().Clamp(PresignCeiling)

	var (
		signed string
		err    error
	)
	switch method {
	case MethodWrite:
		signed, err = s.presignPut(ctx, loc, expires, opts)
	default:
		signed, err = s.presignGet(ctx, loc, expires, opts)
	}
	if err != nil {
		return nil, delivererr.Wrap(delivererr.KindSigning, "minter.presign", err)
	}

	if _, perr := url.ParseRequestURI(signed); perr != nil {
		return nil, delivererr.Newf(delivererr.KindSigning, "minter.presign", "malformed signed URL for %s: %v", loc, perr)
	}

	return &types.SignedObject{
		URI: "s3://" + loc.Bucket + "/" + loc.Key,
		URL: signed,
	}, nil
}

func (s *URLSigner) presignGet(ctx context.Context, loc types.StorageLocation, expires time.Duration, opts types.SignOptions) (string, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}
	if opts.ContentType != "" {
		in.ResponseContentType = aws.String(opts.ContentType)
	}
	if opts.DownloadFileName != "" {
		in.ResponseContentDisposition = aws.String(ContentDisposition(opts.DownloadFileName))
	}

	out, err := s.presigner.PresignGetObject(ctx, in, func(po *s3.PresignOptions) {
		po.Expires = expires
	})
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (s *URLSigner) presignPut(ctx context.Context, loc types.StorageLocation, expires time.Duration, opts types.SignOptions) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}

	out, err := s.presigner.PresignPutObject(ctx, in, func(po *s3.PresignOptions) {
		po.Expires = expires
	})
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

// ContentDisposition renders the suggested download filename. The filename is
// wrapped in literal double quotes and otherwise passed through unmodified:
// browsers drop everything after a comma in an unquoted filename.
func ContentDisposition(fileName string) string {
	return `attachment; filename="` + fileName + `"`
}
