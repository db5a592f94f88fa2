package cli

import (
	"reflect"
	"testing"
)

func TestParseTargetList(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []string
	}{
		{"single", "claude", []string{"claude"}},
		{"multiple", "claude,root", []string{"claude", "root"}},
		{"whitespace", " claude , root ", []string{"claude", "root"}},
		{"duplicates", "claude,claude,root,claude", []string{"claude", "root"}},
		{"empty segments", "claude,,root,", []string{"claude", "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTargetList(tt.list)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTargetList(%q) = %v, want %v", tt.list, got, tt.want)
			}
		})
	}
}
