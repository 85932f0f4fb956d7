// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"reflect"
	"testing"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/pkg/types"
)

func tiersOf(qs []catalog.Query) []catalog.Tier {
	out := make([]catalog.Tier, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Tier)
	}
	return out
}

// --- BuildFilterVariants ---

func TestBuildFilterVariantsTiers(t *testing.T) {
	tests := []struct {
		name string
		used types.CriticalParameterList
		want []catalog.Tier
	}{
		{
			name: "full ids",
			used: types.CriticalParameterList{{ID: "1", Name: "Voltage - Rated", Value: "24VDC", ValueID: "115"}},
			want: []catalog.Tier{catalog.TierParamIDValueID, catalog.TierParamIDValueText, catalog.TierParamIDValue, catalog.TierParamTextValueText},
		},
		{
			name: "no value ids",
			used: types.CriticalParameterList{{ID: "1", Name: "Voltage - Rated", Value: "24VDC"}},
			want: []catalog.Tier{catalog.TierParamIDValueText, catalog.TierParamIDValue, catalog.TierParamTextValueText},
		},
		{
			name: "synthesized ids count as none",
			used: types.CriticalParameterList{{ID: "attr:RPM", Name: "RPM", Value: "3000"}},
			want: []catalog.Tier{catalog.TierParamTextValueText},
		},
		{
			name: "empty",
			used: nil,
			want: []catalog.Tier{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tiersOf(BuildFilterVariants("DC Fans", tt.used, 50))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tiers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFilterVariantsFilters(t *testing.T) {
	used := types.CriticalParameterList{
		{ID: "1", Name: "Voltage - Rated", Value: "24VDC", ValueID: "115"},
		{ID: "2", Name: "Air Flow", Value: "100 CFM"},
		{Name: "Bearing Type", Value: "Ball"},
	}
	qs := BuildFilterVariants("DC Fans", used, 50)
	if len(qs) != 4 {
		t.Fatalf("got %d queries, want 4", len(qs))
	}
	for _, q := range qs {
		if q.Keywords != "DC Fans" || q.Limit != 50 {
			t.Errorf("tier %s: keywords=%q limit=%d", q.Tier, q.Keywords, q.Limit)
		}
	}

	wantIDValueID := []catalog.ParameterFilter{{ParameterID: "1", ValueID: "115"}}
	if !reflect.DeepEqual(qs[0].Filters, wantIDValueID) {
		t.Errorf("id+value_id filters = %+v", qs[0].Filters)
	}
	wantIDValue := []catalog.ParameterFilter{
		{ParameterID: "1", Value: "24VDC"},
		{ParameterID: "2", Value: "100 CFM"},
	}
	if !reflect.DeepEqual(qs[2].Filters, wantIDValue) {
		t.Errorf("id+value filters = %+v", qs[2].Filters)
	}
	if n := len(qs[3].Filters); n != 3 {
		t.Errorf("text+value_text carries %d filters, want 3", n)
	}
	if qs[3].Filters[2] != (catalog.ParameterFilter{ParameterText: "Bearing Type", ValueText: "Ball"}) {
		t.Errorf("text filter = %+v", qs[3].Filters[2])
	}
}

// --- PickBaseKeywords ---

func TestPickBaseKeywords(t *testing.T) {
	tests := []struct {
		name string
		rec  types.PartRecord
		want string
	}{
		{"dc fan category", types.PartRecord{Category: "DC Brushless Fans (BLDC)"}, "DC Fans"},
		{"plain fan category", types.PartRecord{Category: "AC Fans"}, "Fans"},
		{"other category kept", types.PartRecord{Category: "Aluminum Electrolytic Capacitors"}, "Aluminum Electrolytic Capacitors"},
		{"family when no category", types.PartRecord{Family: "Fans, Blowers, Thermal Management"}, "Fans"},
		{"fan description", types.PartRecord{Description: "FAN AXIAL 119X25MM 24VDC"}, "DC Fans"},
		{"description without fan", types.PartRecord{Description: "CAP ALUM 100UF"}, ""},
		{"nothing", types.PartRecord{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickBaseKeywords(tt.rec); got != tt.want {
				t.Errorf("PickBaseKeywords = %q, want %q", got, tt.want)
			}
		})
	}
}
