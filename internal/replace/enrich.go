// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/pkg/types"
)

// dashRunRe matches runs of ASCII hyphens and the Unicode dash variants
// catalogs mix into part numbers.
var dashRunRe = regexp.MustCompile(`[\x{2010}\x{2011}\x{2012}\x{2013}\x{2014}\x{2015}\x{2212}\-]+`)

// PartNumberVariants returns the lookup keys tried for a part number, in
// order: the NFC-normalized string, dashes removed, dashes replaced by
// single spaces, and the first whitespace-delimited token. Duplicates and
// empty strings are dropped.
func PartNumberVariants(pn string) []string {
	s := norm.NFC.String(strings.TrimSpace(pn))
	if s == "" {
		return nil
	}

	var out []string
	add := func(v string) {
		if v == "" {
			return
		}
		for _, seen := range out {
			if seen == v {
				return
			}
		}
		out = append(out, v)
	}

	add(s)
	add(dashRunRe.ReplaceAllString(s, ""))
	add(collapseSpace(dashRunRe.ReplaceAllString(s, " ")))
	if fields := strings.Fields(s); len(fields) > 0 {
		add(fields[0])
	}
	return out
}

// Enricher fetches each candidate's full attribute set with bounded
// concurrency. Failures on one candidate are logged and skipped.
type Enricher struct {
	Lookup  Lookuper
	Workers int
	Log     *zap.Logger
}

// Lookuper is the attribute-lookup half of the catalog.
type Lookuper interface {
	Lookup(ctx context.Context, partNumber string) (types.PartRecord, error)
}

// Enrich updates candidates in place and returns how many were enriched.
// Each worker owns exactly one element of the slice. Enrich returns only
// after every lookup has finished.
func (e *Enricher) Enrich(ctx context.Context, candidates []types.Candidate) int {
	if len(candidates) == 0 || e.Lookup == nil {
		return 0
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	enriched := make([]bool, len(candidates))

	var g errgroup.Group
	g.SetLimit(types.ClampWorkers(e.Workers))
	for i := range candidates {
		g.Go(func() error {
			enriched[i] = e.enrichOne(ctx, &candidates[i], log)
			return nil
		})
	}
	g.Wait()

	n := 0
	for _, ok := range enriched {
		if ok {
			n++
		}
	}
	log.Debug("enrichment finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("enriched", n),
	)
	return n
}

// enrichOne tries each part-number variant until a lookup returns data.
func (e *Enricher) enrichOne(ctx context.Context, c *types.Candidate, log *zap.Logger) bool {
	for _, variant := range PartNumberVariants(c.PartNumber) {
		if ctx.Err() != nil {
			return false
		}
		rec, err := e.Lookup.Lookup(ctx, variant)
		if err != nil {
			level := zap.WarnLevel
			if errors.Is(err, catalog.ErrNotFound) {
				level = zap.DebugLevel
			}
			log.Log(level, "enrichment lookup failed",
				zap.String("part_number", c.PartNumber),
				zap.String("variant", variant),
				zap.Error(err),
			)
			continue
		}
		if rec.IsEmpty() {
			continue
		}
		mergeRecord(c, rec)
		return true
	}
	return false
}

// mergeRecord overwrites attributes and parameter rows from rec and fills
// links that normalization left empty.
func mergeRecord(c *types.Candidate, rec types.PartRecord) {
	if len(rec.Attributes) > 0 {
		attrs := make(map[string]string, len(rec.Attributes))
		for k, v := range rec.Attributes {
			attrs[k] = v
		}
		c.Attributes = attrs
	}
	if len(rec.Parameters) > 0 {
		c.Parameters = append([]types.Parameter(nil), rec.Parameters...)
	}
	if c.ProductURL == "" {
		c.ProductURL = rec.ProductURL
	}
	if len(c.VendorPartNumbers) == 0 && len(rec.VendorPartNumbers) > 0 {
		c.VendorPartNumbers = append([]string(nil), rec.VendorPartNumbers...)
	}
}
