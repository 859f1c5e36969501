package deps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerCmp(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		// equality
		{"1.0", "1.0", 0},
		{"1.0-1", "1.0-1", 0},
		{"1.01", "1.1", 0}, // leading zeros are insignificant

		// plain numeric ordering
		{"1.0", "2.0", -1},
		{"1.2", "1.10", -1},
		{"2.0.1", "2.0", 1},

		// numeric segments beat alphabetic ones
		{"1.0a", "1.0.1", -1},
		{"2.0", "2.0rc1", 1},

		// alphabetic ordering within same kind
		{"1.0a", "1.0b", -1},

		// pkgrel is only compared when both sides carry one
		{"1.0-1", "1.0-2", -1},
		{"1.0-2", "1.0-1", 1},
		{"1.0", "1.0-5", 0},

		// epoch dominates everything
		{"1:0.5", "2.0", 1},
		{"1:1.0", "2:0.1", -1},
		{"0:1.0", "1.0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, VerCmp(tt.a, tt.b), "VerCmp(%q, %q)", tt.a, tt.b)
			assert.Equal(t, -tt.expected, VerCmp(tt.b, tt.a), "VerCmp(%q, %q)", tt.b, tt.a)
		})
	}
}
