// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/minter"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/policy"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

func init() {
	Register(types.ProviderTypeS3, NewS3)
}

// ObjectAPI is the subset of the S3 client the repository needs for listing
// and copying. *s3.Client satisfies it.
type ObjectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// S3 implements SignedObjectRepository over S3-compatible storage.
type S3 struct {
	objects ObjectAPI
	signer  *minter.URLSigner
	creds   *minter.CredentialMinter
}

// NewS3 creates an S3 repository from provider config.
func NewS3(cfg types.ProviderConfig) (SignedObjectRepository, error) {
	opts := []func(*config.LoadOptions) error{}

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	var credMinter *minter.CredentialMinter
	if cfg.SignRoleARN != "" {
		credMinter = minter.NewCredentialMinter(sts.NewFromConfig(awsCfg), cfg.SignRoleARN)
	}

	return &S3{
		objects: client,
		signer:  minter.NewURLSigner(s3.NewPresignClient(client)),
		creds:   credMinter,
	}, nil
}

// NewS3WithClients wires a repository from explicit collaborators. Tests use
// this to substitute deterministic fakes for the provider primitives.
func NewS3WithClients(objects ObjectAPI, signer *minter.URLSigner, creds *minter.CredentialMinter) *S3 {
	return &S3{objects: objects, signer: signer, creds: creds}
}

func (s *S3) CreateSignedObject(ctx context.Context, bucket, path string, opts types.SignOptions) (*types.SignedObject, error) {
	return s.signer.MintURL(ctx, types.ObjectLocation(bucket, path), minter.MethodWrite, opts)
}

func (s *S3) GetSignedObject(ctx context.Context, bucket, path string, opts types.SignOptions) (*types.SignedObject, error) {
	return s.signer.MintURL(ctx, types.ObjectLocation(bucket, path), minter.MethodRead, opts)
}

// GetSignedCollection lists every object under prefix, following continuation
// tokens, and signs each discovered key with the same options.
func (s *S3) GetSignedCollection(ctx context.Context, bucket, prefix string, opts types.SignOptions) ([]types.SignedObject, error) {
	loc := types.PrefixLocation(bucket, prefix)
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	signed := []types.SignedObject{}
	var token *string
	for {
		out, err := s.objects.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(loc.Prefix()),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, delivererr.Wrap(delivererr.KindUpstream, "repository.list", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || key == loc.Prefix() {
				continue
			}
			so, err := s.signer.MintURL(ctx, types.ObjectLocation(bucket, key), minter.MethodRead, opts)
			if err != nil {
				return nil, err
			}
			signed = append(signed, *so)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return signed, nil
}

func (s *S3) CopySignedObject(ctx context.Context, srcBucket, srcPath, dstBucket, dstPath string, opts types.SignOptions) (*types.SignedObject, error) {
	src := types.ObjectLocation(srcBucket, srcPath)
	if err := src.Validate(); err != nil {
		return nil, err
	}
	dst := types.ObjectLocation(dstBucket, dstPath)
	if err := dst.Validate(); err != nil {
		return nil, err
	}

	_, err := s.objects.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstPath),
		CopySource: aws.String(srcBucket + "/" + srcPath),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, delivererr.Newf(delivererr.KindNotFound, "repository.copy", "copy source %s not found", src)
		}
		return nil, delivererr.Wrap(delivererr.KindUpstream, "repository.copy", err)
	}

	return s.GetSignedObject(ctx, dstBucket, dstPath, opts)
}

func (s *S3) MintCollectionCredential(ctx context.Context, bucket, prefix string, write bool, opts types.SignOptions, actor string) (*minter.TemporaryCredential, error) {
	if s.creds == nil {
		return nil, delivererr.New(delivererr.KindValidation, "repository.credential", "no signing role configured for provider")
	}

	loc := types.PrefixLocation(bucket, prefix)
	pol, err := policy.Build(loc, write)
	if err != nil {
		return nil, err
	}
	return s.creds.Mint(ctx, pol, opts.ResolveExpiry(), actor)
}

func isNoSuchKey(err error) bool {
	var noKey *s3types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *s3types.NotFound
	return errors.As(err, &notFound)
}
