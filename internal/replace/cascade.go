// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"strings"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/internal/rank"
	"github.com/pdiddy/partswap/pkg/types"
)

// BuildFilterVariants returns the structured queries for one attempt, most
// selective first:
//
//  1. parameter id + value id
//  2. parameter id + value text
//  3. parameter id + raw value
//  4. parameter name + value text
//
// A tier is present only when at least one parameter supplies its fields.
// Every tier carries baseKeywords to anchor the part class.
func BuildFilterVariants(baseKeywords string, used types.CriticalParameterList, limit int) []catalog.Query {
	var idValueID, idValueText, idValue, textValueText []catalog.ParameterFilter
	for _, p := range used {
		id := catalogID(p.ID)
		valueID := strings.TrimSpace(p.ValueID)
		if id != "" && valueID != "" {
			idValueID = append(idValueID, catalog.ParameterFilter{ParameterID: id, ValueID: valueID})
		}
		if id != "" && p.Value != "" {
			idValueText = append(idValueText, catalog.ParameterFilter{ParameterID: id, ValueText: p.Value})
			idValue = append(idValue, catalog.ParameterFilter{ParameterID: id, Value: p.Value})
		}
		if p.Name != "" && p.Value != "" {
			textValueText = append(textValueText, catalog.ParameterFilter{ParameterText: p.Name, ValueText: p.Value})
		}
	}

	tiers := []struct {
		tier    catalog.Tier
		filters []catalog.ParameterFilter
	}{
		{catalog.TierParamIDValueID, idValueID},
		{catalog.TierParamIDValueText, idValueText},
		{catalog.TierParamIDValue, idValue},
		{catalog.TierParamTextValueText, textValueText},
	}

	var queries []catalog.Query
	for _, t := range tiers {
		if len(t.filters) == 0 {
			continue
		}
		queries = append(queries, catalog.Query{
			Tier:     t.tier,
			Keywords: baseKeywords,
			Limit:    limit,
			Filters:  t.filters,
		})
	}
	return queries
}

// catalogID returns id when it is a catalog-issued identifier, "" otherwise.
func catalogID(id string) string {
	id = strings.TrimSpace(id)
	if rank.IsSynthesizedID(id) {
		return ""
	}
	return id
}

// PickBaseKeywords chooses the keyword anchor for every query from the
// part's own record: its category, else its family. Fan classes are
// normalized to "DC Fans" or "Fans". Without either, a fan-like
// description still yields a fan anchor; anything else yields "".
func PickBaseKeywords(rec types.PartRecord) string {
	s := strings.TrimSpace(rec.Category)
	if s == "" {
		s = strings.TrimSpace(rec.Family)
	}
	if s == "" {
		return fanKeywords(rec.Description)
	}
	if fan := fanKeywords(s); fan != "" {
		return fan
	}
	return s
}

func fanKeywords(text string) string {
	low := strings.ToLower(text)
	if !strings.Contains(low, "fan") {
		return ""
	}
	if strings.Contains(low, "dc") {
		return "DC Fans"
	}
	return "Fans"
}
