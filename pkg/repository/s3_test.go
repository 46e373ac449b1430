// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/minter"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPresigner struct{}

func (stubPresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{
		URL: "https://" + aws.ToString(in.Bucket) + ".s3.amazonaws.com/" + aws.ToString(in.Key) + "?X-Amz-Signature=sig",
	}, nil
}

func (stubPresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{
		URL: "https://" + aws.ToString(in.Bucket) + ".s3.amazonaws.com/" + aws.ToString(in.Key) + "?X-Amz-Signature=sig",
	}, nil
}

type fakeObjects struct {
	// pages maps continuation token ("" for the first page) to a page
	pages   map[string]*s3.ListObjectsV2Output
	listErr error
	copyErr error
	copies  int
}

func (f *fakeObjects) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	token := aws.ToString(in.ContinuationToken)
	page, ok := f.pages[token]
	if !ok {
		return &s3.ListObjectsV2Output{}, nil
	}
	return page, nil
}

func (f *fakeObjects) CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.copies++
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	return &s3.CopyObjectOutput{}, nil
}

func newTestRepo(objects *fakeObjects) *S3 {
	return NewS3WithClients(objects, minter.NewURLSigner(stubPresigner{}), nil)
}

func TestGetSignedObject(t *testing.T) {
	repo := newTestRepo(&fakeObjects{})

	signed, err := repo.GetSignedObject(context.Background(), "bucket", "folder/file.csv", types.SignOptions{})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/folder/file.csv", signed.URI)
	assert.Contains(t, signed.URL, "X-Amz-Signature")
}

func TestCreateSignedObject(t *testing.T) {
	repo := newTestRepo(&fakeObjects{})

	signed, err := repo.CreateSignedObject(context.Background(), "bucket", "upload.bin", types.SignOptions{})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/upload.bin", signed.URI)
	assert.NotEmpty(t, signed.URL)
}

func TestGetSignedCollectionEmptyPrefix(t *testing.T) {
	repo := newTestRepo(&fakeObjects{pages: map[string]*s3.ListObjectsV2Output{}})

	// A freshly created prefix with no files yet is a legitimate state
	signed, err := repo.GetSignedCollection(context.Background(), "bucket", "folder-id/", types.SignOptions{})
	require.NoError(t, err)
	assert.NotNil(t, signed)
	assert.Empty(t, signed)
}

func TestGetSignedCollectionPaginates(t *testing.T) {
	objects := &fakeObjects{pages: map[string]*s3.ListObjectsV2Output{
		"": {
			Contents: []s3types.Object{
				{Key: aws.String("folder-id/")},
				{Key: aws.String("folder-id/a.csv")},
			},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("page2"),
		},
		"page2": {
			Contents: []s3types.Object{
				{Key: aws.String("folder-id/b.csv")},
			},
			IsTruncated: aws.Bool(false),
		},
	}}
	repo := newTestRepo(objects)

	signed, err := repo.GetSignedCollection(context.Background(), "bucket", "folder-id", types.SignOptions{})
	require.NoError(t, err)

	// The prefix placeholder itself is skipped; each discovered object is
	// signed independently
	require.Len(t, signed, 2)
	assert.Equal(t, "s3://bucket/folder-id/a.csv", signed[0].URI)
	assert.Equal(t, "s3://bucket/folder-id/b.csv", signed[1].URI)
	for _, so := range signed {
		assert.Contains(t, so.URL, "X-Amz-Signature")
	}
}

func TestGetSignedCollectionValidation(t *testing.T) {
	repo := newTestRepo(&fakeObjects{})

	_, err := repo.GetSignedCollection(context.Background(), "", "prefix", types.SignOptions{})
	assert.True(t, delivererr.IsValidation(err))
}

func TestGetSignedCollectionListFailure(t *testing.T) {
	repo := newTestRepo(&fakeObjects{listErr: errors.New("connection refused")})

	_, err := repo.GetSignedCollection(context.Background(), "bucket", "prefix", types.SignOptions{})
	assert.True(t, delivererr.IsUpstream(err))
}

func TestCopySignedObject(t *testing.T) {
	objects := &fakeObjects{}
	repo := newTestRepo(objects)

	signed, err := repo.CopySignedObject(context.Background(), "src", "a/file.bin", "dst", "b/file.bin", types.SignOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, objects.copies)
	assert.Equal(t, "s3://dst/b/file.bin", signed.URI)
}

func TestCopySignedObjectMissingSource(t *testing.T) {
	objects := &fakeObjects{copyErr: &s3types.NoSuchKey{}}
	repo := newTestRepo(objects)

	_, err := repo.CopySignedObject(context.Background(), "src", "missing", "dst", "d", types.SignOptions{})
	require.Error(t, err)
	// Distinct from a generic failure
	assert.True(t, delivererr.IsNotFound(err))
}

func TestCopySignedObjectGenericFailure(t *testing.T) {
	objects := &fakeObjects{copyErr: errors.New("throttled")}
	repo := newTestRepo(objects)

	_, err := repo.CopySignedObject(context.Background(), "src", "a", "dst", "d", types.SignOptions{})
	assert.True(t, delivererr.IsUpstream(err))
}

func TestMintCollectionCredentialRequiresRole(t *testing.T) {
	repo := newTestRepo(&fakeObjects{})

	_, err := repo.MintCollectionCredential(context.Background(), "bucket", "folder", false, types.SignOptions{}, "user@example.com")
	assert.True(t, delivererr.IsValidation(err))
}

func TestRegistrySelectsProvider(t *testing.T) {
	_, err := New(types.ProviderConfig{Type: "gopherstore"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider type")
}
