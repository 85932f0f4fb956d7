// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare lines up the attributes of two parts side by side under
// canonical column names.
package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/pkg/types"
)

// Missing is shown for a column one side lacks.
const Missing = "—"

// Lookuper fetches one part's record.
type Lookuper interface {
	Lookup(ctx context.Context, partNumber string) (types.PartRecord, error)
}

// Row is one canonical column of the comparison.
type Row struct {
	Param string `json:"param" yaml:"param"`
	A     string `json:"a" yaml:"a"`
	B     string `json:"b" yaml:"b"`
	Match bool   `json:"match" yaml:"match"`
}

// Comparison is the side-by-side table for two parts.
type Comparison struct {
	PartA string `json:"part_a" yaml:"part_a"`
	PartB string `json:"part_b" yaml:"part_b"`
	URLA  string `json:"url_a,omitempty" yaml:"url_a,omitempty"`
	URLB  string `json:"url_b,omitempty" yaml:"url_b,omitempty"`
	Rows  []Row  `json:"rows" yaml:"rows"`
}

// Matches counts rows whose values agree.
func (c Comparison) Matches() int {
	n := 0
	for _, r := range c.Rows {
		if r.Match {
			n++
		}
	}
	return n
}

// columnRule maps raw attribute names to a canonical column. Rules are
// checked in order; the first hit wins.
type columnRule struct {
	column string
	match  func(k string) bool
}

func has(k string, frags ...string) bool {
	for _, f := range frags {
		if !strings.Contains(k, f) {
			return false
		}
	}
	return true
}

var columnRules = []columnRule{
	{"Size / Dimension", func(k string) bool { return has(k, "size") || has(k, "dimension") }},
	{"Width", func(k string) bool { return has(k, "width") }},
	{"Height", func(k string) bool { return has(k, "height") || has(k, "119mm h") }},
	{"Air Flow", func(k string) bool { return has(k, "air") && (has(k, "flow") || has(k, "cfm")) }},
	{"Static Pressure", func(k string) bool { return has(k, "static", "pressure") }},
	{"Bearing Type", func(k string) bool { return has(k, "bearing") }},
	{"Fan Type", func(k string) bool { return has(k, "fan", "type") }},
	{"Features", func(k string) bool { return has(k, "feature") }},
	{"Noise", func(k string) bool { return has(k, "noise") || has(k, "db") }},
	{"Power (Watts)", func(k string) bool { return has(k, "power", "w") || has(k, "watts") }},
	{"RPM", func(k string) bool { return has(k, "rpm") }},
	{"Termination", func(k string) bool { return has(k, "termination") || has(k, "lead") }},
	{"Ingress Protection", func(k string) bool { return has(k, "ingress") || has(k, "ip ") }},
	{"Operating Temperature", func(k string) bool { return has(k, "operating", "temp") || has(k, "temperature") }},
	{"Voltage - Rated", func(k string) bool { return has(k, "voltage", "rated") }},
	{"Approval Agency", func(k string) bool { return has(k, "approval") }},
	{"Weight", func(k string) bool { return has(k, "weight") }},
	{"Depth", func(k string) bool { return has(k, "depth") || has(k, "length") }},
}

var titleCaser = cases.Title(language.Und)

// CanonicalColumn maps a raw attribute name to its comparison column.
// Unknown names are title-cased word by word.
func CanonicalColumn(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	for _, r := range columnRules {
		if r.match(k) {
			return r.column
		}
	}
	words := strings.Fields(raw)
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// Canonicalize re-keys attrs by canonical column. Empty values are skipped;
// when two raw names map to one column the first in name order wins.
func Canonicalize(attrs map[string]string) map[string]string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(attrs))
	for _, k := range keys {
		v := attrs[k]
		if v == "" {
			continue
		}
		col := CanonicalColumn(k)
		if _, ok := out[col]; !ok {
			out[col] = v
		}
	}
	return out
}

func normValue(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "  ", " ")
}

// Table builds the comparison rows from two attribute maps: the union of
// canonical columns in name order, with Missing for absent values.
func Table(a, b map[string]string) []Row {
	ca, cb := Canonicalize(a), Canonicalize(b)
	cols := make(map[string]bool, len(ca)+len(cb))
	for k := range ca {
		cols[k] = true
	}
	for k := range cb {
		cols[k] = true
	}
	names := make([]string, 0, len(cols))
	for k := range cols {
		names = append(names, k)
	}
	sort.Strings(names)

	rows := make([]Row, 0, len(names))
	for _, col := range names {
		va, okA := ca[col]
		vb, okB := cb[col]
		if !okA {
			va = Missing
		}
		if !okB {
			vb = Missing
		}
		rows = append(rows, Row{
			Param: col,
			A:     va,
			B:     vb,
			Match: okA && okB && normValue(va) == normValue(vb),
		})
	}
	return rows
}

// Compare looks both parts up concurrently and builds their comparison.
// A part the catalog does not know compares as an empty record.
func Compare(ctx context.Context, lookup Lookuper, partA, partB string) (*Comparison, error) {
	partA, partB = strings.TrimSpace(partA), strings.TrimSpace(partB)
	if partA == "" || partB == "" {
		return nil, errors.New("two part numbers are required")
	}

	var recA, recB types.PartRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recA, err = lookupOrEmpty(gctx, lookup, partA)
		return err
	})
	g.Go(func() error {
		var err error
		recB, err = lookupOrEmpty(gctx, lookup, partB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Comparison{
		PartA: partA,
		PartB: partB,
		URLA:  recA.ProductURL,
		URLB:  recB.ProductURL,
		Rows:  Table(recA.Attributes, recB.Attributes),
	}, nil
}

func lookupOrEmpty(ctx context.Context, lookup Lookuper, pn string) (types.PartRecord, error) {
	rec, err := lookup.Lookup(ctx, pn)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return types.PartRecord{}, nil
		}
		return types.PartRecord{}, fmt.Errorf("looking up %s: %w", pn, err)
	}
	return rec, nil
}
