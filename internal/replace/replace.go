// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package replace finds substitute parts for an obsolete component. It
// ranks the part's parameters, queries the catalog with progressively
// looser filters, drops the least critical parameter after every empty
// round, filters out the original part and optionally its family, and
// enriches the survivors with their own attribute sets.
package replace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/internal/rank"
	"github.com/pdiddy/partswap/pkg/types"
)

// Notes attached to results that end without a catalog search.
const (
	NoteNoParameters = "no usable parameter values available for filtering"
	NoteBaseDegraded = "the part's own record could not be fetched; catalog may be unavailable"
	NoteCancelled    = "search was cancelled before it finished"
)

// ErrMissingPartNumber is returned for an empty part number.
var ErrMissingPartNumber = errors.New("missing part number")

// Catalog is what the search needs from the product catalog.
type Catalog interface {
	Search(ctx context.Context, q catalog.Query) ([]types.Candidate, error)
	Lookup(ctx context.Context, partNumber string) (types.PartRecord, error)
}

// Ranker orders a part's parameters into its searchable critical list.
type Ranker interface {
	Prioritize(ctx context.Context, params []types.Parameter, subject, category string) types.CriticalParameterList
}

// Options are the caller's per-search choices.
type Options struct {
	// RequireResults keeps relaxing until a candidate survives. When false
	// the first attempt's outcome is final.
	RequireResults bool

	FamilyMode types.FamilyMode
}

// DefaultOptions requires results and applies no family filter.
func DefaultOptions() Options {
	return Options{RequireResults: true, FamilyMode: types.FamilyNone}
}

// Finder runs replacement searches. It holds no per-search state and is
// safe for concurrent use.
type Finder struct {
	Catalog Catalog
	Ranker  Ranker
	Config  types.SearchConfig
	Log     *zap.Logger

	// newRunID is swapped in tests.
	newRunID func() string
}

// NewFinder builds a Finder with defaults applied to cfg. A nil ranker
// keeps parameters in catalog order.
func NewFinder(cat Catalog, ranker Ranker, cfg types.SearchConfig, log *zap.Logger) *Finder {
	if log == nil {
		log = zap.NewNop()
	}
	if ranker == nil {
		ranker = &rank.Prioritizer{Log: log}
	}
	return &Finder{
		Catalog: cat,
		Ranker:  ranker,
		Config:  cfg.WithDefaults(),
		Log:     log,
	}
}

// Find looks up partNumber's own record and searches for replacements.
// The returned result is always non-nil. The error is non-nil only for
// fatal outcomes (missing part number or catalog credentials), in which
// case result.Status is StatusFatal.
func (f *Finder) Find(ctx context.Context, partNumber string, opts Options) (*types.ReplacementResult, error) {
	pn := strings.TrimSpace(partNumber)
	if pn == "" {
		return f.fatal(pn, opts, ErrMissingPartNumber), ErrMissingPartNumber
	}

	rec, err := f.Catalog.Lookup(ctx, pn)
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNoCredentials):
		return f.fatal(pn, opts, err), err
	case errors.Is(err, catalog.ErrNotFound):
		f.logger().Info("part not found in catalog", zap.String("part_number", pn))
	default:
		f.logger().Warn("base part lookup failed", zap.String("part_number", pn), zap.Error(err))
		res := f.newResult(pn, opts)
		res.Status = types.StatusDegraded
		res.Note = NoteBaseDegraded
		return res, nil
	}
	if rec.PartNumber == "" {
		rec.PartNumber = pn
	}
	return f.Search(ctx, pn, rec, opts)
}

// Search runs the relaxation loop for partNumber using rec as the part's
// own record. It does not look rec up.
func (f *Finder) Search(ctx context.Context, partNumber string, rec types.PartRecord, opts Options) (*types.ReplacementResult, error) {
	log := f.logger()
	cfg := f.Config.WithDefaults()

	res := f.newResult(partNumber, opts)
	base := rec
	res.Base = &base
	res.BaseKeywords = PickBaseKeywords(rec)

	critical := f.prioritize(ctx, partNumber, rec)
	if len(critical) == 0 {
		res.Status = types.StatusEmpty
		res.Note = NoteNoParameters
		log.Info("no usable parameters", zap.String("run_id", res.RunID), zap.String("part_number", partNumber))
		return res, nil
	}

	log.Info("replacement search started",
		zap.String("run_id", res.RunID),
		zap.String("part_number", partNumber),
		zap.String("base_keywords", res.BaseKeywords),
		zap.Int("parameters", len(critical)),
		zap.String("family_mode", string(res.FamilyMode)),
	)

	used := critical.Clone()
	var dropped types.CriticalParameterList
	var products []types.Candidate
	pacer := newPacer(cfg.RoundDelay)
	cancelled := false

	// At most len(critical)+1 attempts: one per prefix including the empty one.
	for {
		if len(res.Iterations) > 0 {
			if err := pacer.Wait(ctx); err != nil {
				log.Warn("search cancelled", zap.String("run_id", res.RunID), zap.Error(err))
				cancelled = true
				break
			}
		}

		round, err := f.runAttempt(ctx, res.BaseKeywords, used, cfg)
		if err != nil {
			return f.fatal(partNumber, opts, err), err
		}

		products = FilterCandidates(round.candidates, partNumber, res.FamilyMode, res.BaseTokens)

		attempt := types.SearchAttempt{
			Ordinal:      len(res.Iterations) + 1,
			UsedCount:    len(used),
			DroppedCount: len(dropped),
			ResultCount:  len(products),
			Used:         paramsOrEmpty(used),
			Dropped:      paramsOrEmpty(dropped),
			Tier:         string(round.tier),
			Degraded:     round.degraded,
		}
		res.Iterations = append(res.Iterations, attempt)

		log.Debug("search attempt",
			zap.String("run_id", res.RunID),
			zap.Int("attempt", attempt.Ordinal),
			zap.Int("used", attempt.UsedCount),
			zap.Int("dropped", attempt.DroppedCount),
			zap.Int("raw", len(round.candidates)),
			zap.Int("results", attempt.ResultCount),
			zap.String("tier", attempt.Tier),
			zap.Bool("degraded", attempt.Degraded),
		)

		if err := ctx.Err(); err != nil {
			log.Warn("search cancelled", zap.String("run_id", res.RunID), zap.Error(err))
			cancelled = true
			break
		}
		if len(products) > 0 || !opts.RequireResults || len(used) == 0 {
			break
		}
		last := used[len(used)-1]
		used = used[:len(used)-1]
		dropped = append(dropped, last)
		log.Debug("dropping least critical parameter",
			zap.String("run_id", res.RunID),
			zap.String("parameter", last.String()),
		)
	}

	res.UsedParameters = paramsOrEmpty(used)
	res.DroppedParameters = paramsOrEmpty(dropped)

	attachMatchReasons(products, MatchReasons(used, cfg.MaxMatchReasons))
	f.enrich(ctx, products, cfg.Enrich)
	if products == nil {
		products = []types.Candidate{}
	}
	res.Products = products
	res.Status = finalStatus(res.Iterations, len(products))
	if cancelled && len(products) == 0 {
		res.Status = types.StatusDegraded
		res.Note = NoteCancelled
	}

	log.Info("replacement search finished",
		zap.String("run_id", res.RunID),
		zap.String("part_number", partNumber),
		zap.String("status", string(res.Status)),
		zap.Int("attempts", len(res.Iterations)),
		zap.Int("products", len(products)),
	)
	return res, nil
}

// attemptResult is the raw outcome of one round of queries.
type attemptResult struct {
	candidates []types.Candidate
	tier       catalog.Tier
	degraded   bool
}

// runAttempt issues the structured tiers, then the keyword fallback, and
// stops at the first non-empty page. Transport errors count as empty pages.
// Only missing credentials abort the round.
func (f *Finder) runAttempt(ctx context.Context, baseKeywords string, used types.CriticalParameterList, cfg types.SearchConfig) (attemptResult, error) {
	queries := BuildFilterVariants(baseKeywords, used, cfg.RecordCount)
	for _, kw := range BuildKeywordVariants(baseKeywords, used, cfg.KeywordTokens) {
		queries = append(queries, catalog.Query{Tier: catalog.TierKeyword, Keywords: kw, Limit: cfg.RecordCount})
	}

	failures := 0
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return attemptResult{degraded: failures > 0 && failures == len(queries)}, nil
		}
		got, err := f.Catalog.Search(ctx, q)
		if err != nil {
			if errors.Is(err, catalog.ErrNoCredentials) {
				return attemptResult{}, err
			}
			failures++
			f.logger().Warn("catalog query failed",
				zap.String("tier", string(q.Tier)),
				zap.String("keywords", q.Keywords),
				zap.Error(err),
			)
			continue
		}
		if len(got) > 0 {
			return attemptResult{candidates: got, tier: q.Tier}, nil
		}
	}
	return attemptResult{degraded: len(queries) > 0 && failures == len(queries)}, nil
}

// prioritize ranks the record's parameters into the searchable list.
func (f *Finder) prioritize(ctx context.Context, partNumber string, rec types.PartRecord) types.CriticalParameterList {
	params := rank.ParametersFromRecord(rec)
	if len(params) == 0 {
		return nil
	}
	ranker := f.Ranker
	if ranker == nil {
		ranker = &rank.Prioritizer{Log: f.logger()}
	}
	return ranker.Prioritize(ctx, params, partNumber, rec.Category)
}

func (f *Finder) enrich(ctx context.Context, products []types.Candidate, cfg types.EnrichConfig) {
	if len(products) == 0 {
		return
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	e := &Enricher{Lookup: f.Catalog, Workers: cfg.Workers, Log: f.logger()}
	e.Enrich(ctx, products)
}

func (f *Finder) newResult(partNumber string, opts Options) *types.ReplacementResult {
	mode := opts.FamilyMode
	if mode == "" {
		mode = types.FamilyNone
	}
	return &types.ReplacementResult{
		RunID:             f.runID(),
		PartNumber:        partNumber,
		Status:            types.StatusOK,
		OK:                true,
		FamilyMode:        mode,
		BaseTokens:        BaseTokens(partNumber),
		Iterations:        []types.SearchAttempt{},
		UsedParameters:    []types.Parameter{},
		DroppedParameters: []types.Parameter{},
		Products:          []types.Candidate{},
	}
}

func (f *Finder) fatal(partNumber string, opts Options, err error) *types.ReplacementResult {
	res := f.newResult(partNumber, opts)
	res.Status = types.StatusFatal
	res.OK = false
	res.Error = err.Error()
	f.logger().Error("replacement search failed",
		zap.String("run_id", res.RunID),
		zap.String("part_number", partNumber),
		zap.Error(err),
	)
	return res
}

func (f *Finder) runID() string {
	if f.newRunID != nil {
		return f.newRunID()
	}
	return uuid.NewString()
}

func (f *Finder) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}

// finalStatus is ok when products survived, degraded when nothing was found
// and every attempt failed in transport, and empty otherwise.
func finalStatus(iterations []types.SearchAttempt, products int) types.SearchStatus {
	if products > 0 {
		return types.StatusOK
	}
	if len(iterations) == 0 {
		return types.StatusEmpty
	}
	for _, it := range iterations {
		if !it.Degraded {
			return types.StatusEmpty
		}
	}
	return types.StatusDegraded
}

func paramsOrEmpty(l types.CriticalParameterList) []types.Parameter {
	if len(l) == 0 {
		return []types.Parameter{}
	}
	out := make([]types.Parameter, len(l))
	copy(out, l)
	return out
}

// newPacer returns a limiter allowing one round per delay, with the first
// round already spent. A zero delay never blocks.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	lim := rate.NewLimiter(rate.Every(delay), 1)
	lim.Allow()
	return lim
}

// Summary renders a result on one line.
func Summary(res *types.ReplacementResult) string {
	return fmt.Sprintf("status=%s results=%d attempts=%d family_mode=%s",
		res.Status, len(res.Products), len(res.Iterations), res.FamilyMode)
}
