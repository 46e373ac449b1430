// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package minter

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/policy"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const (
	// RoleChainingCeiling caps a chained-role session at one hour. The
	// broker rejects anything longer regardless of what was requested, so
	// the clamp is applied here, at the point the credential is requested.
	RoleChainingCeiling = time.Hour

	// minSessionDuration is the broker's floor for a session.
	minSessionDuration = 15 * time.Minute

	// maxSessionNameLen is the broker's limit on role session names.
	maxSessionNameLen = 64
)

// CredentialMinter implements the delegated strategy: a scoped policy plus a
// role identifier are exchanged for a TemporaryCredential through the trust
// broker. Exactly one issuance call is made per invocation; the call is never
// retried here because redundant sessions count against the caller's quota.
type CredentialMinter struct {
	broker  BrokerAPI
	roleARN string
	now     Clock
}

// NewCredentialMinter creates a delegated-credential minter that assumes
// roleARN through broker.
func NewCredentialMinter(broker BrokerAPI, roleARN string) *CredentialMinter {
	return &CredentialMinter{broker: broker, roleARN: roleARN, now: time.Now}
}

// WithClock overrides the minter's clock.
func (m *CredentialMinter) WithClock(now Clock) *CredentialMinter {
	m.now = now
	return m
}

// Mint exchanges the scoped policy for a temporary credential. The requested
// expiry is silently capped at the role-chaining ceiling; callers that always
// ask for a generous upper bound get a predictable session back.
func (m *CredentialMinter) Mint(ctx context.Context, pol *policy.Policy, expiry types.Expiry, actor string) (*TemporaryCredential, error) {
	if pol == nil || len(pol.Statements) == 0 {
		return nil, delivererr.New(delivererr.KindValidation, "minter.assume", "policy must contain at least one statement")
	}

	doc, err := pol.ToJSON()
	if err != nil {
		return nil, delivererr.Wrap(delivererr.KindValidation, "minter.assume", err)
	}

	duration := expiry.Clamp(RoleChainingCeiling)
	if duration < minSessionDuration {
		duration = minSessionDuration
	}

	sessionName := SessionName(actor, m.now())

	out, err := m.broker.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(m.roleARN),
		RoleSessionName: aws.String(sessionName),
		Policy:          aws.String(doc),
		DurationSeconds: aws.Int32(int32(duration / time.Second)),
	})
	if err != nil {
		return nil, delivererr.Wrap(delivererr.KindUpstream, "minter.assume", err)
	}
	if out.Credentials == nil {
		return nil, delivererr.New(delivererr.KindUpstream, "minter.assume", "broker returned no credentials")
	}

	cred := &TemporaryCredential{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		AssumedRoleARN:  m.roleARN,
		SourceIdentity:  actor,
		RoleSessionName: sessionName,
	}
	if out.Credentials.Expiration != nil {
		cred.Expiration = *out.Credentials.Expiration
	} else {
		cred.Expiration = m.now().Add(duration)
	}
	return cred, nil
}

// SessionName derives a broker-legal session name from the actor identity and
// the request timestamp, keeping concurrent sessions distinguishable in the
// broker's audit trail.
func SessionName(actor string, at time.Time) string {
	name := sanitizeSessionName(actor)
	if name == "" {
		name = "anonymous"
	}
	suffix := "-" + strconv.FormatInt(at.Unix(), 10)
	if len(name)+len(suffix) > maxSessionNameLen {
		name = name[:maxSessionNameLen-len(suffix)]
	}
	return name + suffix
}

// sanitizeSessionName keeps only characters the broker accepts in a role
// session name ([\w+=,.@-]).
func sanitizeSessionName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+', r == '=', r == ',', r == '.', r == '@', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
