// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog talks to the Digi-Key product catalog: structured and
// keyword product search, and per-part attribute lookup. Vendor JSON is
// decoded into one canonical schema and normalized into types.Candidate
// and types.PartRecord before it leaves the package.
package catalog

import (
	"context"
	"errors"

	"github.com/pdiddy/partswap/pkg/types"
)

// ErrNoCredentials is returned when the catalog client has no usable
// client-credentials pair. Searching cannot proceed without it.
var ErrNoCredentials = errors.New("catalog credentials not configured: set digikey-client-id and digikey-client-secret")

// ErrNotFound is returned by Lookup when the catalog has no such part.
var ErrNotFound = errors.New("part not found in catalog")

// Tier names one encoding of a catalog query, most selective first.
type Tier string

const (
	TierParamIDValueID     Tier = "param_id_value_id"
	TierParamIDValueText   Tier = "param_id_value_text"
	TierParamIDValue       Tier = "param_id_value"
	TierParamTextValueText Tier = "param_text_value_text"
	TierKeyword            Tier = "keyword"
)

// ParameterFilter is one parameter constraint of a structured query.
// Which fields are set depends on the query Tier.
type ParameterFilter struct {
	ParameterID   string `json:"parameter_id,omitempty"`
	ParameterText string `json:"parameter_text,omitempty"`
	ValueID       string `json:"value_id,omitempty"`
	ValueText     string `json:"value_text,omitempty"`
	Value         string `json:"value,omitempty"`
}

// Query is a catalog search request: either a structured filter query or a
// plain keyword query (Tier == TierKeyword, no Filters).
type Query struct {
	Tier     Tier              `json:"tier"`
	Keywords string            `json:"keywords"`
	Limit    int               `json:"limit"`
	Filters  []ParameterFilter `json:"filters,omitempty"`
}

// Backend is the contract both the live client and the caching wrapper satisfy.
type Backend interface {
	// Search runs one query and returns normalized candidates. An empty
	// page is (nil, nil).
	Search(ctx context.Context, q Query) ([]types.Candidate, error)

	// Lookup returns a part's own record, or ErrNotFound.
	Lookup(ctx context.Context, partNumber string) (types.PartRecord, error)
}
