package version

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		delimiter  string
		want       []string
	}{
		{"simple", "build-x-20230101-v1", "-", []string{"build", "x", "20230101", "v1"}},
		{"no delimiter", "build", "-", []string{"build"}},
		{"empty identifier", "", "-", []string{""}},
		{"consecutive delimiters", "a--b", "-", []string{"a", "", "b"}},
		{"leading and trailing", "-a-", "-", []string{"", "a", ""}},
		{"multi-char delimiter", "Slim__hammerhead__4.4", "__", []string{"Slim", "hammerhead", "4.4"}},
		{"regex metachar is literal", "a.b.c", ".", []string{"a", "b", "c"}},
		{"pipe is literal", "a|b", "|", []string{"a", "b"}},
		{"empty delimiter", "abc", "", []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.identifier, tt.delimiter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q, %q) = %q, want %q", tt.identifier, tt.delimiter, got, tt.want)
			}
		})
	}
}

func TestSplit_JoinRoundTrip(t *testing.T) {
	sequences := [][]string{
		{"Slim", "hammerhead", "4.4.4", "build", "20150501"},
		{"", "x", ""},
		{"only"},
		{"a", "", "", "b"},
	}
	for _, d := range []string{"-", "_", "::"} {
		for _, seq := range sequences {
			got := Split(strings.Join(seq, d), d)
			if !reflect.DeepEqual(got, seq) {
				t.Errorf("Split(Join(%q, %q)) = %q", seq, d, got)
			}
		}
	}
}
