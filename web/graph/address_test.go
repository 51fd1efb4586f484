package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badgeth/the-graph-indexer-badges/web/graph"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	t.Run("when address is a valid hex address", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name     string
			input    string
			expected graph.Address
		}{
			{
				name:     "checksummed address is lowercased",
				input:    "0x5aAEB6053F3e94c9B9A09F33669435e7EF1BEAED",
				expected: graph.Address("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
			},
			{
				name:     "lowercase address stays unchanged",
				input:    "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
				expected: graph.Address("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
			},
			{
				name:     "uppercase address is lowercased",
				input:    "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED",
				expected: graph.Address("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
			},
			{
				name:     "missing 0x prefix gains one",
				input:    "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
				expected: graph.Address("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				address, err := graph.ParseAddress(tc.input)

				// Assert
				require.NoError(t, err)
				assert.Equal(t, tc.expected, address)
				assert.Equal(t, string(tc.expected), address.String())
			})
		}
	})

	t.Run("when address is not a valid hex address", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name  string
			input string
		}{
			{
				name:  "empty string",
				input: "",
			},
			{
				name:  "too short",
				input: "0xdeadbeef",
			},
			{
				name:  "too long",
				input: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed00",
			},
			{
				name:  "non-hex characters",
				input: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaez",
			},
			{
				name:  "not an address at all",
				input: "not-an-address",
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				address, err := graph.ParseAddress(tc.input)

				// Assert
				assert.Error(t, err)
				assert.ErrorIs(t, err, graph.ErrAddressNotHex)
				assert.Equal(t, graph.Address(""), address, "Should return zero value on error")
			})
		}
	})
}
