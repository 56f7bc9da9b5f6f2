// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"testing"
	"time"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		envSet       bool
		want         string
	}{
		{
			name:         "environment variable set",
			key:          "TEST_STRING",
			defaultValue: "default",
			envValue:     "from-env",
			envSet:       true,
			want:         "from-env",
		},
		{
			name:         "environment variable not set",
			key:          "TEST_STRING_UNSET",
			defaultValue: "default",
			envSet:       false,
			want:         "default",
		},
		{
			name:         "environment variable empty string",
			key:          "TEST_STRING_EMPTY",
			defaultValue: "default",
			envValue:     "",
			envSet:       true,
			want:         "default",
		},
		{
			name:         "sensitive variable (token)",
			key:          "TEST_TOKEN",
			defaultValue: "default",
			envValue:     "secret123",
			envSet:       true,
			want:         "secret123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseString(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		envSet       bool
		want         int
	}{
		{
			name:         "valid integer",
			key:          "TEST_INT",
			defaultValue: 10,
			envValue:     "42",
			envSet:       true,
			want:         42,
		},
		{
			name:         "invalid integer falls back",
			key:          "TEST_INT_BAD",
			defaultValue: 10,
			envValue:     "not-a-number",
			envSet:       true,
			want:         10,
		},
		{
			name:         "unset uses default",
			key:          "TEST_INT_UNSET",
			defaultValue: 10,
			envSet:       false,
			want:         10,
		},
		{
			name:         "empty uses default",
			key:          "TEST_INT_EMPTY",
			defaultValue: 10,
			envValue:     "",
			envSet:       true,
			want:         10,
		},
		{
			name:         "negative integer",
			key:          "TEST_INT_NEG",
			defaultValue: 10,
			envValue:     "-5",
			envSet:       true,
			want:         -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		envSet       bool
		want         time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DUR",
			defaultValue: 5 * time.Second,
			envValue:     "7s",
			envSet:       true,
			want:         7 * time.Second,
		},
		{
			name:         "invalid duration falls back",
			key:          "TEST_DUR_BAD",
			defaultValue: 5 * time.Second,
			envValue:     "seven seconds",
			envSet:       true,
			want:         5 * time.Second,
		},
		{
			name:         "unset uses default",
			key:          "TEST_DUR_UNSET",
			defaultValue: 5 * time.Second,
			envSet:       false,
			want:         5 * time.Second,
		},
		{
			name:         "millisecond granularity",
			key:          "TEST_DUR_MS",
			defaultValue: time.Second,
			envValue:     "1500ms",
			envSet:       true,
			want:         1500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		envSet       bool
		want         bool
	}{
		{name: "true", key: "TEST_BOOL", defaultValue: false, envValue: "true", envSet: true, want: true},
		{name: "one", key: "TEST_BOOL", defaultValue: false, envValue: "1", envSet: true, want: true},
		{name: "yes uppercase", key: "TEST_BOOL", defaultValue: false, envValue: "YES", envSet: true, want: true},
		{name: "false", key: "TEST_BOOL", defaultValue: true, envValue: "false", envSet: true, want: false},
		{name: "zero", key: "TEST_BOOL", defaultValue: true, envValue: "0", envSet: true, want: false},
		{name: "garbage falls back", key: "TEST_BOOL", defaultValue: true, envValue: "maybe", envSet: true, want: true},
		{name: "unset uses default", key: "TEST_BOOL_UNSET", defaultValue: true, envSet: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue float64
		envValue     string
		envSet       bool
		want         float64
	}{
		{name: "valid float", key: "TEST_FLOAT", defaultValue: 1.0, envValue: "0.25", envSet: true, want: 0.25},
		{name: "invalid float falls back", key: "TEST_FLOAT_BAD", defaultValue: 1.0, envValue: "one point five", envSet: true, want: 1.0},
		{name: "unset uses default", key: "TEST_FLOAT_UNSET", defaultValue: 1.0, envSet: false, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := ParseFloat(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}
