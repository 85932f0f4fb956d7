// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/pkg/types"
)

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Size / Dimension", "Size / Dimension"},
		{"Air Flow", "Air Flow"},
		{"Air Flow (CFM)", "Air Flow"},
		{"Static Pressure", "Static Pressure"},
		{"Bearing Type", "Bearing Type"},
		{"Fan Type", "Fan Type"},
		{"Noise", "Noise"},
		{"Power (Watts)", "Power (Watts)"},
		{"RPM", "RPM"},
		{"Termination", "Termination"},
		{"Ingress Protection", "Ingress Protection"},
		{"Operating Temperature", "Operating Temperature"},
		{"Voltage - Rated", "Voltage - Rated"},
		{"Approval Agency", "Approval Agency"},
		{"Weight", "Weight"},
		{"Height - Seated (Max)", "Height"},
		{"mounting  TYPE", "Mounting Type"},
		{"current - rated", "Current - Rated"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalColumn(tt.raw))
		})
	}
}

func TestCanonicalizeFirstNameWins(t *testing.T) {
	got := Canonicalize(map[string]string{
		"Air Flow":       "100 CFM",
		"Air Flow (CFM)": "101 CFM",
		"Noise":          "",
	})
	assert.Equal(t, map[string]string{"Air Flow": "100 CFM"}, got)
}

func TestTable(t *testing.T) {
	rows := Table(
		map[string]string{"Voltage - Rated": "24VDC", "Air Flow": "100 CFM", "RPM": "3000"},
		map[string]string{"Voltage - Rated": " 24vdc", "Air Flow": "120 CFM", "Noise": "45 dB"},
	)

	require.Len(t, rows, 4)
	assert.Equal(t, Row{Param: "Air Flow", A: "100 CFM", B: "120 CFM"}, rows[0])
	assert.Equal(t, Row{Param: "Noise", A: Missing, B: "45 dB"}, rows[1])
	assert.Equal(t, Row{Param: "RPM", A: "3000", B: Missing}, rows[2])
	assert.Equal(t, "Voltage - Rated", rows[3].Param)
	assert.True(t, rows[3].Match)
}

type stubLookup map[string]types.PartRecord

func (s stubLookup) Lookup(_ context.Context, pn string) (types.PartRecord, error) {
	if pn == "BROKEN" {
		return types.PartRecord{}, errors.New("HTTP 500")
	}
	rec, ok := s[pn]
	if !ok {
		return types.PartRecord{}, catalog.ErrNotFound
	}
	return rec, nil
}

func TestCompare(t *testing.T) {
	lookup := stubLookup{
		"4414F": {ProductURL: "https://example.com/4414f", Attributes: map[string]string{"Voltage - Rated": "24VDC"}},
		"8214J": {Attributes: map[string]string{"Voltage - Rated": "24VDC", "RPM": "3000"}},
	}

	cmp, err := Compare(context.Background(), lookup, "4414F", " 8214J ")
	require.NoError(t, err)
	assert.Equal(t, "8214J", cmp.PartB)
	assert.Equal(t, "https://example.com/4414f", cmp.URLA)
	assert.Len(t, cmp.Rows, 2)
	assert.Equal(t, 1, cmp.Matches())

	cmp, err = Compare(context.Background(), lookup, "4414F", "UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, Missing, cmp.Rows[0].B)
}

func TestCompareErrors(t *testing.T) {
	_, err := Compare(context.Background(), stubLookup{}, "4414F", "")
	require.Error(t, err)

	_, err = Compare(context.Background(), stubLookup{}, "4414F", "BROKEN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "looking up BROKEN")
}
