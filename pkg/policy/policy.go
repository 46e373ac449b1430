// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy builds scoped access-policy documents for credential
// issuance. A policy document never grants access outside the storage
// location it was built from.
package policy

import "encoding/json"

// PolicyVersion is the policy language version understood by the trust broker.
const PolicyVersion = "2012-10-17"

// Policy is an access-policy document in the AWS IAM document shape.
//
// Example:
//
//	{
//	  "Version": "2012-10-17",
//	  "Statement": [{
//	    "Effect": "Allow",
//	    "Action": ["s3:GetObject"],
//	    "Resource": ["arn:aws:s3:::mybucket/data/file.csv"]
//	  }]
//	}
type Policy struct {
	Version    string      `json:"Version"`
	ID         string      `json:"Id,omitempty"`
	Statements []Statement `json:"Statement"`
}

// ToJSON serializes the policy document for the broker round trip.
func (p *Policy) ToJSON() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Statement is a single permission statement.
type Statement struct {
	Sid       string               `json:"Sid,omitempty"`
	Effect    Effect               `json:"Effect"`
	Actions   StringOrSlice        `json:"Action"`
	Resources StringOrSlice        `json:"Resource"`
	Condition map[string]Condition `json:"Condition,omitempty"`
}

// Effect determines whether a statement allows or denies access. This package
// only ever emits Allow statements; scope is narrowed by resources and
// conditions, never widened by omission of a Deny.
type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// Condition maps a condition operator to its key/value constraints
// (e.g. StringEquals -> {"s3:prefix": ["folder/"]}).
type Condition map[string]StringOrSlice

// StringOrSlice handles JSON fields that can be either a string or []string.
type StringOrSlice []string

func (s *StringOrSlice) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = []string{str}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*s = arr
	return nil
}

func (s StringOrSlice) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}
