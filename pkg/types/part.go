// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the replacement search:
// specification parameters, catalog candidates, the search trace, and the
// result returned to callers.
package types

import (
	"fmt"
	"strings"
)

// Parameter is one specification parameter of a part (e.g. "Voltage - Rated" = "24VDC").
type Parameter struct {
	// ID is the catalog parameter identifier. Empty means none.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Name is the human-readable parameter name.
	Name string `json:"name" yaml:"name"`

	// Value is the value text. Empty means none.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// ValueID is the catalog value identifier. Empty means none.
	ValueID string `json:"value_id,omitempty" yaml:"value_id,omitempty"`

	// Rank is the 1-based criticality position, 0 when unranked.
	Rank int `json:"rank,omitempty" yaml:"rank,omitempty"`
}

// String renders the parameter as "name = value".
func (p Parameter) String() string {
	return fmt.Sprintf("%s = %s", p.Name, p.Value)
}

// CriticalParameterList is an ordered parameter list, most critical first.
type CriticalParameterList []Parameter

// Clone returns an independent copy of l.
func (l CriticalParameterList) Clone() CriticalParameterList {
	if l == nil {
		return nil
	}
	out := make(CriticalParameterList, len(l))
	copy(out, l)
	return out
}

// PartRecord is a part's own catalog record, as returned by an attribute lookup.
type PartRecord struct {
	PartNumber   string `json:"part_number" yaml:"part_number"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Category     string `json:"category,omitempty" yaml:"category,omitempty"`
	Family       string `json:"family,omitempty" yaml:"family,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	ProductURL   string `json:"product_url,omitempty" yaml:"product_url,omitempty"`

	// VendorPartNumbers lists distributor part numbers (e.g. "259-1535-ND").
	VendorPartNumbers []string `json:"vendor_part_numbers,omitempty" yaml:"vendor_part_numbers,omitempty"`

	// Attributes maps parameter name to value text.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Parameters are the raw parameter rows (id, name, value, value_id).
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// IsEmpty reports whether the record carries neither attributes nor parameter rows.
func (r PartRecord) IsEmpty() bool {
	return len(r.Attributes) == 0 && len(r.Parameters) == 0
}

// Candidate is a normalized catalog product offered as a replacement.
type Candidate struct {
	PartNumber      string `json:"part_number" yaml:"part_number"`
	Manufacturer    string `json:"manufacturer" yaml:"manufacturer"`
	ProductURL      string `json:"product_url,omitempty" yaml:"product_url,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
	LifecycleStatus string `json:"lifecycle_status,omitempty" yaml:"lifecycle_status,omitempty"`
	Price           string `json:"price,omitempty" yaml:"price,omitempty"`
	Availability    string `json:"availability,omitempty" yaml:"availability,omitempty"`
	DatasheetURL    string `json:"datasheet_url,omitempty" yaml:"datasheet_url,omitempty"`
	Category        string `json:"category,omitempty" yaml:"category,omitempty"`

	VendorPartNumbers []string `json:"vendor_part_numbers,omitempty" yaml:"vendor_part_numbers,omitempty"`

	Attributes   map[string]string `json:"attributes" yaml:"attributes"`
	Parameters   []Parameter       `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	MatchReasons []string          `json:"match_reasons" yaml:"match_reasons"`
}

// SearchAttempt records one iteration of the relaxation loop.
type SearchAttempt struct {
	Ordinal      int `json:"attempt" yaml:"attempt"`
	UsedCount    int `json:"used_value_count" yaml:"used_value_count"`
	DroppedCount int `json:"dropped_value_count" yaml:"dropped_value_count"`
	ResultCount  int `json:"results" yaml:"results"`

	Used    []Parameter `json:"used_values" yaml:"used_values"`
	Dropped []Parameter `json:"dropped_values,omitempty" yaml:"dropped_values,omitempty"`

	// Tier names the query tier that returned the raw page; empty when none matched.
	Tier string `json:"tier,omitempty" yaml:"tier,omitempty"`

	// Degraded is set when every query of the attempt failed in transport.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// FamilyMode selects how candidates from the original part's family are treated.
type FamilyMode string

const (
	FamilyNone        FamilyMode = "none"
	FamilyExcludeBase FamilyMode = "exclude_base"
	FamilyOnlyBase    FamilyMode = "only_base"
)

// ParseFamilyMode maps a user-supplied string to a FamilyMode. The empty
// string maps to FamilyNone.
func ParseFamilyMode(s string) (FamilyMode, error) {
	switch FamilyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FamilyNone:
		return FamilyNone, nil
	case FamilyExcludeBase:
		return FamilyExcludeBase, nil
	case FamilyOnlyBase:
		return FamilyOnlyBase, nil
	default:
		return FamilyNone, fmt.Errorf("unknown family mode %q: use none, exclude_base, or only_base", s)
	}
}

// SearchStatus distinguishes search outcomes.
type SearchStatus string

const (
	// StatusOK means at least one candidate was found (or results were not required).
	StatusOK SearchStatus = "ok"
	// StatusEmpty means the search ran to exhaustion and found nothing.
	StatusEmpty SearchStatus = "empty"
	// StatusDegraded means the search found nothing and every attempt failed in transport.
	StatusDegraded SearchStatus = "degraded"
	// StatusFatal means the search could not run (missing part number or credentials).
	StatusFatal SearchStatus = "fatal"
)

// ReplacementResult is the structured answer to a replacement search.
type ReplacementResult struct {
	RunID      string       `json:"run_id" yaml:"run_id"`
	PartNumber string       `json:"part_number" yaml:"part_number"`
	Status     SearchStatus `json:"status" yaml:"status"`

	// OK is false only for fatal outcomes.
	OK    bool   `json:"ok" yaml:"ok"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	Note  string `json:"note,omitempty" yaml:"note,omitempty"`

	BaseKeywords string     `json:"base_keywords,omitempty" yaml:"base_keywords,omitempty"`
	FamilyMode   FamilyMode `json:"family_mode" yaml:"family_mode"`
	BaseTokens   []string   `json:"base_tokens" yaml:"base_tokens"`

	Iterations        []SearchAttempt `json:"iterations" yaml:"iterations"`
	UsedParameters    []Parameter     `json:"used_parameters" yaml:"used_parameters"`
	DroppedParameters []Parameter     `json:"dropped_parameters" yaml:"dropped_parameters"`
	Products          []Candidate     `json:"products" yaml:"products"`

	// Base is the original part's own record.
	Base *PartRecord `json:"base,omitempty" yaml:"base,omitempty"`
}
