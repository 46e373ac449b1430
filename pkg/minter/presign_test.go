// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package minter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	url     string
	err     error
	lastGet *s3.GetObjectInput
	lastPut *s3.PutObjectInput
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.lastGet = in
	f.captureExpiry(optFns)
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: f.url, Method: "GET"}, nil
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.lastPut = in
	f.captureExpiry(optFns)
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: f.url, Method: "PUT"}, nil
}

func (f *fakePresigner) captureExpiry(optFns []func(*s3.PresignOptions)) {
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	f.expires = opts.Expires
}

func TestMintURLRead(t *testing.T) {
	p := &fakePresigner{url: "https://bucket.s3.amazonaws.com/folder/file.csv?X-Amz-Signature=abc"}
	s := NewURLSigner(p)

	signed, err := s.MintURL(context.Background(), types.ObjectLocation("bucket", "folder/file.csv"), MethodRead, types.SignOptions{Expiry: "15M"})
	require.NoError(t, err)

	assert.Equal(t, "s3://bucket/folder/file.csv", signed.URI)
	assert.Equal(t, p.url, signed.URL)
	assert.Empty(t, signed.ConnectionString)
	assert.Equal(t, 15*time.Minute, p.expires)
	assert.Equal(t, "bucket", aws.ToString(p.lastGet.Bucket))
	assert.Equal(t, "folder/file.csv", aws.ToString(p.lastGet.Key))
}

func TestMintURLWrite(t *testing.T) {
	p := &fakePresigner{url: "https://bucket.s3.amazonaws.com/new.bin?X-Amz-Signature=abc"}
	s := NewURLSigner(p)

	signed, err := s.MintURL(context.Background(), types.ObjectLocation("bucket", "new.bin"), MethodWrite, types.SignOptions{ContentType: "application/octet-stream"})
	require.NoError(t, err)

	assert.Equal(t, p.url, signed.URL)
	require.NotNil(t, p.lastPut)
	assert.Equal(t, "application/octet-stream", aws.ToString(p.lastPut.ContentType))
	// Default expiry applies when the option is absent
	assert.Equal(t, time.Hour, p.expires)
}

func TestMintURLDownloadFileName(t *testing.T) {
	p := &fakePresigner{url: "https://bucket.s3.amazonaws.com/f?X-Amz-Signature=abc"}
	s := NewURLSigner(p)

	_, err := s.MintURL(context.Background(), types.ObjectLocation("bucket", "f"), MethodRead, types.SignOptions{DownloadFileName: "a,b.csv"})
	require.NoError(t, err)

	// The filename is wrapped in literal quotes, unmodified: browsers drop
	// everything after the comma otherwise.
	assert.Equal(t, `attachment; filename="a,b.csv"`, aws.ToString(p.lastGet.ResponseContentDisposition))
}

func TestMintURLClampsToPresignCeiling(t *testing.T) {
	tests := []struct {
		name   string
		expiry string
		want   time.Duration
	}{
		{name: "beyond ceiling is capped", expiry: "30D", want: PresignCeiling},
		{name: "at ceiling passes through", expiry: "7D", want: 7 * 24 * time.Hour},
		{name: "below ceiling passes through", expiry: "12H", want: 12 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePresigner{url: "https://bucket.s3.amazonaws.com/k?X-Amz-Signature=abc"}
			s := NewURLSigner(p)

			_, err := s.MintURL(context.Background(), types.ObjectLocation("bucket", "k"), MethodRead, types.SignOptions{Expiry: tt.expiry})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.expires)
		})
	}
}

func TestMintURLValidation(t *testing.T) {
	p := &fakePresigner{url: "https://x/y?sig=1"}
	s := NewURLSigner(p)

	_, err := s.MintURL(context.Background(), types.ObjectLocation("", "key"), MethodRead, types.SignOptions{})
	assert.True(t, delivererr.IsValidation(err))
	assert.Nil(t, p.lastGet, "validation failures never reach the signer")
}

func TestMintURLSignerFailure(t *testing.T) {
	p := &fakePresigner{err: errors.New("signer unavailable")}
	s := NewURLSigner(p)

	_, err := s.MintURL(context.Background(), types.ObjectLocation("bucket", "key"), MethodRead, types.SignOptions{})
	assert.True(t, delivererr.IsSigning(err))
}

func TestMintURLMalformedResult(t *testing.T) {
	p := &fakePresigner{url: "://not-a-url"}
	s := NewURLSigner(p)

	_, err := s.MintURL(context.Background(), types.ObjectLocation("bucket", "key"), MethodRead, types.SignOptions{})
	require.Error(t, err)
	assert.True(t, delivererr.IsSigning(err))
	assert.Contains(t, err.Error(), "malformed signed URL")
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="report.pdf"`, ContentDisposition("report.pdf"))
	assert.Equal(t, `attachment; filename="a,b.csv"`, ContentDisposition("a,b.csv"))
}
