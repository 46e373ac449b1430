// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

// Package minter exchanges scoped access policies and object addresses for
// usable artifacts: signed URLs (direct signature strategy) or temporary
// credentials (delegated strategy through a trust broker).
package minter

import (
	"context"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AccessMethod selects the operation a minted artifact permits.
type AccessMethod int

const (
	MethodRead AccessMethod = iota
	MethodWrite
	MethodList
)

func (m AccessMethod) String() string {
	switch m {
	case MethodRead:
		return "read"
	case MethodWrite:
		return "write"
	case MethodList:
		return "list"
	default:
		return "unknown"
	}
}

// PresignAPI is the provider signing primitive for the direct strategy.
// *s3.PresignClient satisfies it; tests substitute deterministic fakes.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// BrokerAPI is the trust-broker primitive for the delegated strategy.
// *sts.Client satisfies it.
type BrokerAPI interface {
	AssumeRole(ctx context.Context, in *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Clock supplies the current time. Injected so tests can pin session names
// and expirations.
type Clock func() time.Time
