// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"reflect"
	"testing"

	"github.com/pdiddy/partswap/pkg/types"
)

func TestBuildKeywordVariants(t *testing.T) {
	fan := types.CriticalParameterList{
		{Name: "Voltage - Rated", Value: "24VDC"},
		{Name: "Air Flow", Value: "100  CFM"},
		{Name: "Bearing Type", Value: "Ball"},
		{Name: "Noise", Value: "45 dB"},
	}

	tests := []struct {
		name string
		base string
		used types.CriticalParameterList
		want []string
	}{
		{
			name: "base and top three values",
			base: "DC Fans",
			used: fan,
			want: []string{
				"DC Fans",
				"DC Fans 24VDC 100 CFM Ball",
				"DC Fans 24VDC",
				"DC Fans 100 CFM",
				"DC Fans Ball",
			},
		},
		{
			name: "single value collapses duplicates",
			base: "DC Fans",
			used: fan[:1],
			want: []string{"DC Fans", "DC Fans 24VDC"},
		},
		{
			name: "no base keywords",
			base: "",
			used: fan[:2],
			want: []string{"24VDC 100 CFM", "24VDC", "100 CFM"},
		},
		{
			name: "no values",
			base: "Fans",
			used: nil,
			want: []string{"Fans"},
		},
		{
			name: "nothing at all",
			base: "",
			used: nil,
			want: []string{},
		},
		{
			name: "empty values add nothing",
			base: "dc fans",
			used: types.CriticalParameterList{{Name: "Type", Value: ""}},
			want: []string{"dc fans"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildKeywordVariants(tt.base, tt.used, 3)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildKeywordVariants = %q, want %q", got, tt.want)
			}
		})
	}
}
