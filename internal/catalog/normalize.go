// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pdiddy/partswap/pkg/types"
)

// Digi-Key v4 JSON structures. This is the only place vendor key names
// appear; everything downstream works on types.Candidate and
// types.PartRecord.

type dkKeywordResponse struct {
	Products      []dkProduct `json:"Products"`
	ProductsCount int         `json:"ProductsCount"`
}

type dkDetailsResponse struct {
	Product *dkProduct `json:"Product"`
}

type dkProduct struct {
	ManufacturerProductNumber string             `json:"ManufacturerProductNumber"`
	Manufacturer              dkNamed            `json:"Manufacturer"`
	ProductURL                string             `json:"ProductUrl"`
	DatasheetURL              string             `json:"DatasheetUrl"`
	Description               dkDescription      `json:"Description"`
	ProductStatus             dkNamed            `json:"ProductStatus"`
	QuantityAvailable         float64            `json:"QuantityAvailable"`
	UnitPrice                 float64            `json:"UnitPrice"`
	Category                  dkCategory         `json:"Category"`
	Parameters                []dkParameter      `json:"Parameters"`
	ProductVariations         []dkProductVariant `json:"ProductVariations"`
}

type dkNamed struct {
	ID     flexString `json:"Id"`
	Name   string     `json:"Name"`
	Status string     `json:"Status"`
}

type dkDescription struct {
	ProductDescription  string `json:"ProductDescription"`
	DetailedDescription string `json:"DetailedDescription"`
}

type dkCategory struct {
	CategoryID      flexString   `json:"CategoryId"`
	Name            string       `json:"Name"`
	ChildCategories []dkCategory `json:"ChildCategories"`
}

type dkParameter struct {
	ParameterID   flexString `json:"ParameterId"`
	ParameterText string     `json:"ParameterText"`
	ValueID       flexString `json:"ValueId"`
	ValueText     string     `json:"ValueText"`
}

type dkProductVariant struct {
	DigiKeyProductNumber string `json:"DigiKeyProductNumber"`
}

// flexString accepts a JSON string or number; Digi-Key mixes both for ids.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// leafName returns the most specific category name ("DC Fans" rather than
// "Fans, Blowers, Thermal Management").
func (c dkCategory) leafName() string {
	cur := c
	for len(cur.ChildCategories) > 0 {
		cur = cur.ChildCategories[0]
	}
	return strings.TrimSpace(cur.Name)
}

func (p dkProduct) description() string {
	if d := strings.TrimSpace(p.Description.DetailedDescription); d != "" {
		return d
	}
	return strings.TrimSpace(p.Description.ProductDescription)
}

func (p dkProduct) lifecycle() string {
	if s := strings.TrimSpace(p.ProductStatus.Status); s != "" {
		return s
	}
	return strings.TrimSpace(p.ProductStatus.Name)
}

func (p dkProduct) vendorPartNumbers() []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range p.ProductVariations {
		pn := strings.TrimSpace(v.DigiKeyProductNumber)
		if pn == "" || seen[pn] {
			continue
		}
		seen[pn] = true
		out = append(out, pn)
	}
	return out
}

func (p dkProduct) parameters() []types.Parameter {
	out := make([]types.Parameter, 0, len(p.Parameters))
	for _, dp := range p.Parameters {
		name := strings.TrimSpace(dp.ParameterText)
		if name == "" {
			continue
		}
		out = append(out, types.Parameter{
			ID:      strings.TrimSpace(string(dp.ParameterID)),
			Name:    name,
			Value:   strings.TrimSpace(dp.ValueText),
			ValueID: strings.TrimSpace(string(dp.ValueID)),
		})
	}
	return out
}

func attributesOf(params []types.Parameter) map[string]string {
	attrs := make(map[string]string, len(params))
	for _, p := range params {
		if p.Value == "" {
			continue
		}
		if _, ok := attrs[p.Name]; !ok {
			attrs[p.Name] = p.Value
		}
	}
	return attrs
}

// toCandidate normalizes one search hit.
func (p dkProduct) toCandidate() types.Candidate {
	params := p.parameters()
	c := types.Candidate{
		PartNumber:        strings.ToUpper(strings.TrimSpace(p.ManufacturerProductNumber)),
		Manufacturer:      strings.TrimSpace(p.Manufacturer.Name),
		ProductURL:        strings.TrimSpace(p.ProductURL),
		Description:       p.description(),
		LifecycleStatus:   p.lifecycle(),
		DatasheetURL:      strings.TrimSpace(p.DatasheetURL),
		Category:          p.Category.leafName(),
		VendorPartNumbers: p.vendorPartNumbers(),
		Attributes:        attributesOf(params),
		MatchReasons:      []string{},
	}
	if len(params) > 0 {
		c.Parameters = params
	}
	if p.UnitPrice > 0 {
		c.Price = strconv.FormatFloat(p.UnitPrice, 'f', -1, 64)
	}
	if p.QuantityAvailable > 0 {
		c.Availability = strconv.FormatFloat(p.QuantityAvailable, 'f', -1, 64)
	}
	return c
}

// toRecord normalizes a product-details response.
func (p dkProduct) toRecord() types.PartRecord {
	params := p.parameters()
	rec := types.PartRecord{
		PartNumber:        strings.TrimSpace(p.ManufacturerProductNumber),
		Manufacturer:      strings.TrimSpace(p.Manufacturer.Name),
		Category:          p.Category.leafName(),
		Family:            strings.TrimSpace(p.Category.Name),
		Description:       p.description(),
		ProductURL:        strings.TrimSpace(p.ProductURL),
		VendorPartNumbers: p.vendorPartNumbers(),
		Attributes:        attributesOf(params),
	}
	if len(params) > 0 {
		rec.Parameters = params
	}
	return rec
}

// normalizeProducts maps a raw keyword-search page to candidates. Records
// without a manufacturer part number are skipped.
func normalizeProducts(products []dkProduct) []types.Candidate {
	var out []types.Candidate
	for _, p := range products {
		c := p.toCandidate()
		if c.PartNumber == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
