package api

import (
	"testing"
)

func TestNormalizeHostPort(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare host gains default port", in: "usher.ttvnw.net", want: "usher.ttvnw.net:443"},
		{name: "explicit port kept", in: "usher.ttvnw.net:8443", want: "usher.ttvnw.net:8443"},
		{name: "uppercase folded", in: "Usher.TTVNW.net", want: "usher.ttvnw.net:443"},
		{name: "surrounding space trimmed", in: "  example.com  ", want: "example.com:443"},
		{name: "unicode punycoded", in: "bücher.de", want: "xn--bcher-kva.de:443"},
		{name: "escaped segment decoded", in: "b%C3%BCcher.de", want: "xn--bcher-kva.de:443"},
		{name: "inner space rejected", in: "exa mple", wantErr: true},
		{name: "underscore rejected", in: "bad_host", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeHostPort(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("normalizeHostPort(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
