// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"
)

const (
	actionGetObject  = "s3:GetObject"
	actionPutObject  = "s3:PutObject"
	actionListBucket = "s3:ListBucket"
)

// Build produces the minimal policy document granting access to exactly loc.
// write additionally grants object creation for upload flows. The location is
// validated before any document is constructed.
func Build(loc types.StorageLocation, write bool) (*Policy, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if loc.IsPrefix {
		return buildPrefixPolicy(loc, write), nil
	}
	return buildObjectPolicy(loc, write), nil
}

// buildObjectPolicy grants access to the literal key and nothing else. No
// wildcard is ever introduced for a single-object scope.
func buildObjectPolicy(loc types.StorageLocation, write bool) *Policy {
	actions := StringOrSlice{actionGetObject}
	if write {
		actions = append(actions, actionPutObject)
	}
	return &Policy{
		Version: PolicyVersion,
		Statements: []Statement{
			{
				Sid:       "ObjectAccess",
				Effect:    EffectAllow,
				Actions:   actions,
				Resources: StringOrSlice{objectARN(loc.Bucket, loc.Key)},
			},
		},
	}
}

// buildPrefixPolicy grants listing and reading under the prefix. All four
// statements are required: clients list with both the exact prefix and nested
// paths before they download, and read both direct children and nested keys.
// Dropping any one breaks either "can see contents" or "can read contents"
// for common SDKs.
func buildPrefixPolicy(loc types.StorageLocation, write bool) *Policy {
	prefix := loc.Prefix()
	getActions := StringOrSlice{actionGetObject}
	if write {
		getActions = append(getActions, actionPutObject)
	}
	return &Policy{
		Version: PolicyVersion,
		Statements: []Statement{
			{
				Sid:       "ListPrefixExact",
				Effect:    EffectAllow,
				Actions:   StringOrSlice{actionListBucket},
				Resources: StringOrSlice{bucketARN(loc.Bucket)},
				Condition: map[string]Condition{
					"StringEquals": {"s3:prefix": StringOrSlice{prefix}},
				},
			},
			{
				Sid:       "ListPrefixNested",
				Effect:    EffectAllow,
				Actions:   StringOrSlice{actionListBucket},
				Resources: StringOrSlice{bucketARN(loc.Bucket)},
				Condition: map[string]Condition{
					"StringLike": {"s3:prefix": StringOrSlice{prefix + "*"}},
				},
			},
			{
				Sid:       "GetPrefixExact",
				Effect:    EffectAllow,
				Actions:   getActions,
				Resources: StringOrSlice{objectARN(loc.Bucket, prefix)},
			},
			{
				Sid:       "GetPrefixNested",
				Effect:    EffectAllow,
				Actions:   getActions,
				Resources: StringOrSlice{objectARN(loc.Bucket, prefix) + "*"},
			},
		},
	}
}

func bucketARN(bucket string) string {
	return "arn:aws:s3:::" + bucket
}

func objectARN(bucket, key string) string {
	return "arn:aws:s3:::" + bucket + "/" + key
}
