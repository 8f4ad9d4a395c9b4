package domain

import (
	"reflect"
	"testing"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "just words", nil},
		{"single", "ship it #golang", []string{"golang"}},
		{"lowercased", "#GoLang #TUI", []string{"golang", "tui"}},
		{"deduplicated", "#go #go #go", []string{"go"}},
		{"mid-word kept", "issue#42 and #42fix", []string{"42", "42fix"}},
		{"order of first appearance", "#b #a #b", []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTags(tt.content); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractTags(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}
