// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/partswap/pkg/types"
)

// --- mock oracle ---

type mockOracle struct {
	resp Response
	err  error
	got  Request
}

func (m *mockOracle) Rank(_ context.Context, req Request) (Response, error) {
	m.got = req
	return m.resp, m.err
}

func ranked(ids ...string) Response {
	var r Response
	for _, id := range ids {
		r.Ranked = append(r.Ranked, RankedParam{ID: FlexibleID(id)})
	}
	return r
}

func fanParams() []types.Parameter {
	return []types.Parameter{
		{ID: "1", Name: "Voltage - Rated", Value: "24VDC"},
		{ID: "2", Name: "Air Flow", Value: "100 CFM"},
		{ID: "3", Name: "Bearing Type", Value: "Ball"},
	}
}

func ids(params []types.Parameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, p.ID)
	}
	return out
}

func TestRankFollowsOracleOrder(t *testing.T) {
	oracle := &mockOracle{resp: ranked("3", "1", "2")}
	p := &Prioritizer{Oracle: oracle}

	got := p.Rank(context.Background(), fanParams(), "4414F", "DC Fans")

	assert.Equal(t, []string{"3", "1", "2"}, ids(got))
	for i, param := range got {
		assert.Equal(t, i+1, param.Rank)
	}
	assert.Equal(t, "24VDC", got[1].Value, "values are reattached from the input")
	assert.Equal(t, "4414F", oracle.got.SubjectIdentifier)
	assert.Equal(t, "DC Fans", oracle.got.SubjectCategory)
}

func TestRankBijection(t *testing.T) {
	tests := []struct {
		name   string
		params []types.Parameter
		resp   Response
		want   []string
	}{
		{
			name:   "omitted entries appended in input order",
			params: fanParams(),
			resp:   ranked("2"),
			want:   []string{"2", "1", "3"},
		},
		{
			name:   "invented ids ignored",
			params: fanParams(),
			resp:   ranked("99", "3", "1", "2"),
			want:   []string{"3", "1", "2"},
		},
		{
			name:   "repeated ids ignored",
			params: fanParams(),
			resp:   ranked("1", "1", "3", "1"),
			want:   []string{"1", "3", "2"},
		},
		{
			name: "duplicate input ids collapse, first value wins",
			params: []types.Parameter{
				{ID: "1", Name: "Voltage - Rated", Value: "24VDC"},
				{ID: "1", Name: "Voltage - Rated", Value: "12VDC"},
				{ID: "2", Name: "Air Flow", Value: "100 CFM"},
			},
			resp: ranked("2", "1"),
			want: []string{"2", "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prioritizer{Oracle: &mockOracle{resp: tt.resp}}
			got := p.Rank(context.Background(), tt.params, "", "")
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRankDuplicateKeepsFirstValue(t *testing.T) {
	p := &Prioritizer{}
	got := p.Rank(context.Background(), []types.Parameter{
		{ID: "1", Name: "Voltage - Rated", Value: "24VDC"},
		{ID: "1", Name: "Voltage - Rated", Value: "12VDC"},
	}, "", "")
	require.Len(t, got, 1)
	assert.Equal(t, "24VDC", got[0].Value)
}

func TestRankFallsBackToInputOrder(t *testing.T) {
	tests := []struct {
		name   string
		oracle Oracle
	}{
		{"nil oracle", nil},
		{"oracle error", &mockOracle{err: errors.New("connection refused")}},
		{"empty ranking", &mockOracle{err: ErrEmptyRanking}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prioritizer{Oracle: tt.oracle}
			got := p.Rank(context.Background(), fanParams(), "4414F", "")
			assert.Equal(t, []string{"1", "2", "3"}, ids(got))
		})
	}
}

func TestRankParametersWithoutID(t *testing.T) {
	oracle := &mockOracle{resp: ranked("attr:RPM", "1")}
	p := &Prioritizer{Oracle: oracle}

	got := p.Rank(context.Background(), []types.Parameter{
		{ID: "1", Name: "Voltage - Rated", Value: "24VDC"},
		{Name: "RPM", Value: "3000"},
	}, "", "")

	require.Len(t, got, 2)
	assert.Equal(t, "RPM", got[0].Name)
	assert.Empty(t, got[0].ID, "synthesized keys are not written back")
	assert.Equal(t, "1", got[1].ID)
	assert.Equal(t, "attr:RPM", oracle.got.Parameters[1].ID)
}

func TestRankSendsValuesOnlyAsContext(t *testing.T) {
	oracle := &mockOracle{resp: ranked("1", "2")}
	p := &Prioritizer{Oracle: oracle}

	p.Rank(context.Background(), []types.Parameter{
		{ID: "1", Name: "Voltage - Rated", Value: "24VDC"},
		{ID: "2", Name: "Auto Restart", Value: "-"},
	}, "", "")

	require.Len(t, oracle.got.Parameters, 2)
	assert.Equal(t, "24VDC", oracle.got.Parameters[0].Value)
	assert.Empty(t, oracle.got.Parameters[1].Value, "placeholders are not sent")
}

func TestRankEmpty(t *testing.T) {
	oracle := &mockOracle{resp: ranked("1")}
	p := &Prioritizer{Oracle: oracle}
	got := p.Rank(context.Background(), nil, "", "")
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Empty(t, oracle.got.Parameters, "oracle not called for empty input")
}

func TestSearchable(t *testing.T) {
	in := []types.Parameter{
		{ID: "1", Name: "Voltage - Rated", Value: "24VDC", Rank: 1},
		{ID: "2", Name: "Auto Restart", Value: "N/A", Rank: 2},
		{ID: "3", Name: "", Value: "Ball", Rank: 3},
		{ID: "4", Name: "", Value: "null", Rank: 4},
		{ID: "5", Name: "  Air Flow ", Value: " 100 CFM ", Rank: 5},
	}

	got := Searchable(in)

	require.Len(t, got, 3)
	assert.Equal(t, types.Parameter{ID: "1", Name: "Voltage - Rated", Value: "24VDC", Rank: 1}, got[0])
	assert.Equal(t, "Auto Restart", got[1].Value, "name substitutes for a placeholder value")
	assert.Equal(t, types.Parameter{ID: "5", Name: "Air Flow", Value: "100 CFM", Rank: 5}, got[2])
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", " ", "-", "—", "N/A", "na", "None", "NULL"} {
		assert.True(t, IsPlaceholder(v), v)
	}
	for _, v := range []string{"0", "24VDC", "No"} {
		assert.False(t, IsPlaceholder(v), v)
	}
}

func TestParametersFromRecord(t *testing.T) {
	t.Run("prefers parameter rows", func(t *testing.T) {
		rec := types.PartRecord{
			Parameters: []types.Parameter{{ID: "7", Name: "Voltage - Rated", Value: "24VDC"}},
			Attributes: map[string]string{"Voltage - Rated": "24VDC"},
		}
		assert.Equal(t, rec.Parameters, ParametersFromRecord(rec))
	})
	t.Run("synthesizes from attributes", func(t *testing.T) {
		rec := types.PartRecord{Attributes: map[string]string{"RPM": "3000", "Air Flow": "100 CFM"}}
		assert.Equal(t, []types.Parameter{
			{ID: "attr:Air Flow", Name: "Air Flow", Value: "100 CFM"},
			{ID: "attr:RPM", Name: "RPM", Value: "3000"},
		}, ParametersFromRecord(rec))
	})
}
