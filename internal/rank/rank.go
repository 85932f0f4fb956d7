// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders a part's specification parameters from most to least
// critical to preserve. Ordering is delegated to an Oracle; whatever the
// oracle returns, every input parameter comes back exactly once.
package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/partswap/pkg/types"
)

// Oracle ranks parameters by criticality. Implementations only see
// identifiers and names; values are context, never the sort key.
type Oracle interface {
	Rank(ctx context.Context, req Request) (Response, error)
}

// Request is the payload sent to an Oracle.
type Request struct {
	SubjectIdentifier string         `json:"mpn,omitempty"`
	SubjectCategory   string         `json:"category,omitempty"`
	Parameters        []RequestParam `json:"parameters"`
}

// RequestParam is one parameter as the oracle sees it.
type RequestParam struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Response is the oracle's ordering, most critical first.
type Response struct {
	Ranked []RankedParam `json:"ranked"`
}

// RankedParam is one entry of an oracle ordering.
type RankedParam struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// placeholders are value texts treated as empty.
var placeholders = map[string]bool{
	"":     true,
	"-":    true,
	"—":    true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"null": true,
}

// SynthesizedIDPrefix marks parameter IDs made up from an attribute name
// rather than issued by the catalog.
const SynthesizedIDPrefix = "attr:"

// IsSynthesizedID reports whether id was made up locally and so cannot be
// used as a catalog parameter identifier.
func IsSynthesizedID(id string) bool {
	return strings.HasPrefix(id, SynthesizedIDPrefix)
}

// IsPlaceholder reports whether v carries no usable value.
func IsPlaceholder(v string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(v))]
}

// Prioritizer turns raw parameter lists into ranked, searchable lists.
// A nil Oracle keeps input order.
type Prioritizer struct {
	Oracle Oracle
	Log    *zap.Logger
}

// entry is an input parameter keyed for ranking.
type entry struct {
	key   string
	param types.Parameter
}

// Rank returns params ordered most to least critical with Rank set 1..N.
// Parameters are deduplicated by ID (first occurrence wins). Parameters
// without an ID are ranked under a synthesized "attr:<name>" key that is
// not written back. Oracle failures fall back to input order.
func (p *Prioritizer) Rank(ctx context.Context, params []types.Parameter, subject, category string) []types.Parameter {
	entries := keyed(params)
	if len(entries) == 0 {
		return []types.Parameter{}
	}

	order := p.oracleOrder(ctx, entries, subject, category)

	out := make([]types.Parameter, 0, len(entries))
	for i, idx := range order {
		param := entries[idx].param
		param.Rank = i + 1
		out = append(out, param)
	}
	return out
}

// Prioritize ranks params and returns the searchable critical list:
// placeholder values are replaced by the parameter name, and parameters
// with neither a name nor a usable value are dropped.
func (p *Prioritizer) Prioritize(ctx context.Context, params []types.Parameter, subject, category string) types.CriticalParameterList {
	return Searchable(p.Rank(ctx, params, subject, category))
}

// Searchable filters a ranked list down to parameters usable as query
// filters, keeping order and ranks.
func Searchable(ranked []types.Parameter) types.CriticalParameterList {
	out := make(types.CriticalParameterList, 0, len(ranked))
	for _, param := range ranked {
		name := strings.TrimSpace(param.Name)
		value := strings.TrimSpace(param.Value)
		if IsPlaceholder(value) {
			// Boolean and enum style specs: the name is the discriminating token.
			value = name
		}
		if name == "" || IsPlaceholder(value) {
			continue
		}
		param.Name = name
		param.Value = value
		out = append(out, param)
	}
	return out
}

// oracleOrder returns indexes into entries in ranked order.
func (p *Prioritizer) oracleOrder(ctx context.Context, entries []entry, subject, category string) []int {
	identity := make([]int, len(entries))
	for i := range entries {
		identity[i] = i
	}
	if p.Oracle == nil {
		return identity
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	req := Request{SubjectIdentifier: subject, SubjectCategory: category}
	for _, e := range entries {
		rp := RequestParam{ID: e.key, Name: e.param.Name}
		if !IsPlaceholder(e.param.Value) {
			rp.Value = e.param.Value
		}
		req.Parameters = append(req.Parameters, rp)
	}

	resp, err := p.Oracle.Rank(ctx, req)
	if err != nil {
		log.Warn("ranking oracle failed, keeping input order",
			zap.String("part_number", subject),
			zap.Int("parameters", len(entries)),
			zap.Error(err),
		)
		return identity
	}

	byKey := make(map[string]int, len(entries))
	for i, e := range entries {
		byKey[e.key] = i
	}

	order := make([]int, 0, len(entries))
	seen := make(map[int]bool, len(entries))
	ignored := 0
	for _, r := range resp.Ranked {
		idx, ok := byKey[strings.TrimSpace(string(r.ID))]
		if !ok || seen[idx] {
			ignored++
			continue
		}
		seen[idx] = true
		order = append(order, idx)
	}
	omitted := 0
	for i := range entries {
		if !seen[i] {
			order = append(order, i)
			omitted++
		}
	}
	if ignored > 0 || omitted > 0 {
		log.Debug("ranking oracle output repaired",
			zap.Int("ignored", ignored),
			zap.Int("appended", omitted),
		)
	}
	return order
}

// keyed deduplicates params by ID and assigns each a ranking key.
func keyed(params []types.Parameter) []entry {
	var out []entry
	seenID := make(map[string]bool)
	seenKey := make(map[string]int)
	for _, param := range params {
		param.ID = strings.TrimSpace(param.ID)
		param.Rank = 0
		key := param.ID
		if key != "" {
			if seenID[key] {
				continue
			}
			seenID[key] = true
		} else {
			key = SynthesizedIDPrefix + strings.TrimSpace(param.Name)
		}
		// Synthesized keys can collide with each other or with a real ID.
		if n := seenKey[key]; n > 0 {
			seenKey[key] = n + 1
			key = fmt.Sprintf("%s#%d", key, n+1)
		}
		seenKey[key]++
		out = append(out, entry{key: key, param: param})
	}
	return out
}

// ParametersFromRecord returns the record's parameter rows, or, when it has
// none, parameters synthesized from its attribute map in name order.
func ParametersFromRecord(rec types.PartRecord) []types.Parameter {
	if len(rec.Parameters) > 0 {
		out := make([]types.Parameter, len(rec.Parameters))
		copy(out, rec.Parameters)
		return out
	}
	names := make([]string, 0, len(rec.Attributes))
	for k := range rec.Attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]types.Parameter, 0, len(names))
	for _, name := range names {
		out = append(out, types.Parameter{
			ID:    SynthesizedIDPrefix + name,
			Name:  name,
			Value: rec.Attributes[name],
		})
	}
	return out
}
