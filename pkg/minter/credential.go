// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package minter

import "time"

// TemporaryCredential is a short-lived credential bundle minted through the
// trust broker. It lives for one request/response cycle and is never
// persisted or shared across requests.
type TemporaryCredential struct {
	AccessKeyID     string    `json:"access_key_id"`
	SecretAccessKey string    `json:"secret_access_key"`
	SessionToken    string    `json:"session_token"`
	Expiration      time.Time `json:"expiration"`

	// The assumed role and the identity that requested the session
	AssumedRoleARN  string `json:"assumed_role_arn,omitempty"`
	SourceIdentity  string `json:"source_identity,omitempty"`
	RoleSessionName string `json:"role_session_name,omitempty"`
}

// IsExpired checks if the credential has expired.
func (c *TemporaryCredential) IsExpired() bool {
	return time.Now().After(c.Expiration)
}
