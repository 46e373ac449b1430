// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"
)

// CreateSignedURL is the single-item convenience form: it resolves one file
// ID through the same pipeline and wraps the result with creation metadata.
// An unresolvable ID is a not-found error here, unlike the batch form where
// it would ride the unprocessed list.
func (p *Pipeline) CreateSignedURL(ctx context.Context, fileID, actor, expiry string) (*types.SignedURL, error) {
	result, err := p.Resolve(ctx, Request{
		References: []string{fileID},
		Expiry:     expiry,
		Actor:      actor,
	})
	if err != nil {
		return nil, err
	}

	item, ok := result.Processed[fileID]
	if !ok {
		return nil, delivererr.Newf(delivererr.KindNotFound, "delivery.signedurl", "file %q could not be resolved", fileID)
	}

	return &types.SignedURL{
		URI:       item.URI,
		URL:       item.URL,
		CreatedAt: time.Now().UTC(),
		CreatedBy: actor,
	}, nil
}
