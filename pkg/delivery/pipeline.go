// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

// Package delivery orchestrates batch resolution of opaque references into
// signed storage artifacts. A run makes a single pass: batch the references,
// query the external index, extract and sign each location, then partition
// the inputs into resolved and unresolved sets. Partial success is the common
// case at scale and is returned as data, never as an error.
package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/index"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/logger"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/repository"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultVolumetricMarker flags dataset kinds that are consumed as a stream.
// Detection is a substring match on the type identifier.
const DefaultVolumetricMarker = "ovds"

// maxConcurrentBatches bounds parallel index round trips within one run.
const maxConcurrentBatches = 4

// ReferenceField is the index field the filter expression matches against.
const ReferenceField = "id"

// Request is one batch resolution request.
type Request struct {
	// References are resolved in order. Duplicates are not collapsed:
	// callers may legitimately request the same reference twice.
	References []string
	// Expiry uses the compact relative grammar; empty means the default.
	Expiry string
	// Actor is the caller identity used for session naming and
	// created-by attribution. Supplied per request, never cached.
	Actor string
}

// Item is one resolved entry.
type Item struct {
	Reference        string `json:"reference"`
	Kind             string `json:"kind,omitempty"`
	URI              string `json:"uri,omitempty"`
	URL              string `json:"url,omitempty"`
	ConnectionString string `json:"connection_string,omitempty"`
}

// BatchResult partitions the input references. Every input reference lands in
// exactly one of the two collections; Unprocessed keeps original input order.
type BatchResult struct {
	Processed   map[string]Item `json:"processed"`
	Unprocessed []string        `json:"unprocessed"`
}

// ConfigSource yields the current delivery configuration. It is consulted on
// every run: the effective batch size depends on the index's page-size
// ceiling, which can change independently of this service.
type ConfigSource func() types.DeliveryConfig

// Pipeline resolves batches of references. It is stateless between runs and
// safe for concurrent use; every run carries its own actor identity and its
// own credential issuance.
type Pipeline struct {
	repo      repository.SignedObjectRepository
	searcher  index.Searcher
	extractor index.LocationExtractor
	config    ConfigSource

	// volumetricMarker overrides DefaultVolumetricMarker when non-empty.
	volumetricMarker string
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(repo repository.SignedObjectRepository, searcher index.Searcher, extractor index.LocationExtractor, config ConfigSource) *Pipeline {
	if extractor == nil {
		extractor = index.NewFieldPathExtractor("")
	}
	return &Pipeline{
		repo:             repo,
		searcher:         searcher,
		extractor:        extractor,
		config:           config,
		volumetricMarker: DefaultVolumetricMarker,
	}
}

// WithVolumetricMarker overrides the streaming-kind marker.
func (p *Pipeline) WithVolumetricMarker(marker string) *Pipeline {
	p.volumetricMarker = marker
	return p
}

// Resolve runs one batch. It returns an error only when the external index
// cannot be reached at all; every per-item failure lands in Unprocessed.
func (p *Pipeline) Resolve(ctx context.Context, req Request) (*BatchResult, error) {
	result := &BatchResult{
		Processed:   make(map[string]Item, len(req.References)),
		Unprocessed: []string{},
	}
	if len(req.References) == 0 {
		return result, nil
	}

	// Every run gets its own correlation ID so the per-item warnings and the
	// summary line of one batch can be tied together across interleaved runs.
	runLog := logger.Ctx(ctx).With().Str("run_id", uuid.NewString()).Logger()
	ctx = logger.WithLogger(ctx, &runLog)

	start := time.Now()
	hits, err := p.queryBatches(ctx, req.References)
	if err != nil {
		return nil, err
	}

	expiry := req.Expiry
	if expiry == "" {
		expiry = p.config().DefaultExpiry
	}
	opts := types.SignOptions{Expiry: expiry}
	for _, ref := range req.References {
		if _, done := result.Processed[ref]; done {
			continue
		}
		hit, ok := hits[ref]
		if !ok {
			result.Unprocessed = append(result.Unprocessed, ref)
			continue
		}
		item, ok := p.resolveItem(ctx, ref, hit, opts, req.Actor)
		if !ok {
			result.Unprocessed = append(result.Unprocessed, ref)
			continue
		}
		result.Processed[ref] = item
	}

	resolvedTotal.Add(float64(len(result.Processed)))
	unresolvedTotal.Add(float64(len(result.Unprocessed)))
	logger.Ctx(ctx).Info().
		Int("requested", len(req.References)).
		Int("resolved", len(result.Processed)).
		Int("unresolved", len(result.Unprocessed)).
		Dur("elapsed", time.Since(start)).
		Msg("delivery batch resolved")

	return result, nil
}

// queryBatches splits the references into pages of at most the effective
// batch size and queries the index, one goroutine per page. The effective
// size is recomputed from configuration on every call. Results are keyed by
// reference after all pages return, so page ordering does not matter.
func (p *Pipeline) queryBatches(ctx context.Context, refs []string) (map[string]index.Hit, error) {
	cfg := p.config()
	size := cfg.BatchSize
	if cfg.Index.MaxPageSize > 0 && cfg.Index.MaxPageSize < size {
		size = cfg.Index.MaxPageSize
	}
	if size <= 0 {
		size = 1
	}

	batches := make([][]string, 0, (len(refs)+size-1)/size)
	for start := 0; start < len(refs); start += size {
		end := min(start+size, len(refs))
		batches = append(batches, refs[start:end])
	}

	pages := make([]*index.QueryResponse, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)
	for i, batch := range batches {
		g.Go(func() error {
			timer := time.Now()
			resp, err := p.searcher.Query(gctx, index.QueryRequest{
				Query: index.FilterExpression(ReferenceField, batch),
				Limit: len(batch),
			})
			indexQuerySeconds.Observe(time.Since(timer).Seconds())
			if err != nil {
				return err
			}
			pages[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, delivererr.Wrap(delivererr.KindUpstream, "delivery.query", err)
	}

	hits := make(map[string]index.Hit)
	for _, page := range pages {
		for _, hit := range page.Hits {
			if _, seen := hits[hit.ID]; !seen {
				hits[hit.ID] = hit
			}
		}
	}
	return hits, nil
}

// resolveItem signs one hit. The acceptance rule is dual: volumetric kinds
// need a connection string, everything else needs a URL. A single criterion
// would incorrectly reject one of the two access modes.
func (p *Pipeline) resolveItem(ctx context.Context, ref string, hit index.Hit, opts types.SignOptions, actor string) (Item, bool) {
	loc, ok, err := p.extractor.Extract(hit)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("reference", ref).Msg("location extraction failed")
		return Item{}, false
	}
	if !ok {
		logger.Ctx(ctx).Debug().Str("reference", ref).Msg("hit carries no storage location")
		return Item{}, false
	}

	item := Item{
		Reference: ref,
		Kind:      hit.Kind,
		URI:       "s3://" + loc.Bucket + "/" + loc.Key,
	}

	if p.isVolumetric(hit.Kind) {
		cred, err := p.repo.MintCollectionCredential(ctx, loc.Bucket, loc.Key, false, opts, actor)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("reference", ref).Msg("credential minting failed")
			return Item{}, false
		}
		item.ConnectionString = connectionString(item.URI, cred.AccessKeyID, cred.SecretAccessKey, cred.SessionToken, cred.Expiration)
	} else {
		signed, err := p.repo.GetSignedObject(ctx, loc.Bucket, loc.Key, opts)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("reference", ref).Msg("signing failed")
			return Item{}, false
		}
		item.URI = signed.URI
		item.URL = signed.URL
	}

	if !accepted(item, p.isVolumetric(hit.Kind)) {
		return Item{}, false
	}
	return item, true
}

func (p *Pipeline) isVolumetric(kind string) bool {
	marker := p.volumetricMarker
	if marker == "" {
		marker = DefaultVolumetricMarker
	}
	return strings.Contains(strings.ToLower(kind), marker)
}

// accepted enforces the dual acceptance rule.
func accepted(item Item, volumetric bool) bool {
	if volumetric {
		return item.ConnectionString != ""
	}
	return item.URL != ""
}

func connectionString(uri, accessKey, secretKey, sessionToken string, expiration time.Time) string {
	var b strings.Builder
	b.WriteString(uri)
	b.WriteString(";AccessKeyId=")
	b.WriteString(accessKey)
	b.WriteString(";SecretAccessKey=")
	b.WriteString(secretKey)
	b.WriteString(";SessionToken=")
	b.WriteString(sessionToken)
	b.WriteString(";Expiration=")
	b.WriteString(expiration.UTC().Format(time.RFC3339))
	return b.String()
}
