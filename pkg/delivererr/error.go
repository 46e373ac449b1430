// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

// Package delivererr classifies delivery failures so that callers can map them
// to client, resource, or upstream errors without string matching.
package delivererr

import (
	"errors"
	"fmt"
)

// Kind is an enumeration of failure classes.
type Kind int

const (
	KindNone Kind = iota

	// KindValidation covers bad input shape (empty bucket/key, malformed
	// reference). Validation failures never reach a network call.
	KindValidation

	// KindNotFound covers operations that require an existing object or
	// prefix (e.g. a copy source) when the provider reports none.
	KindNotFound

	// KindSigning covers local signing failures such as a malformed
	// resulting address. Deterministic; retrying cannot change the outcome.
	KindSigning

	// KindUpstream covers remote issuance failures: trust broker
	// unreachable, role not assumable, external index unreachable.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindSigning:
		return "signing"
	case KindUpstream:
		return "upstream"
	default:
		return "none"
	}
}

// Error carries a failure class alongside the wrapped cause. Op names the
// operation that failed ("policy.build", "minter.assume", "index.query").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error from a message.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Newf creates a classified error from a format string.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. A nil err returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the failure class of err, or KindNone for unclassified errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindNone
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsSigning reports whether err is a local signing failure.
func IsSigning(err error) bool { return KindOf(err) == KindSigning }

// IsUpstream reports whether err is a remote issuance failure.
func IsUpstream(err error) bool { return KindOf(err) == KindUpstream }
