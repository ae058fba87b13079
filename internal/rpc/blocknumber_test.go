package rpc

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockNumberString(t *testing.T) {
	tests := []struct {
		name string
		sel  BlockNumber
		want string
	}{
		{"latest", Latest, "latest"},
		{"earliest", Earliest, "earliest"},
		{"pending", Pending, "pending"},
		{"zero", Number(0), "0x0"},
		{"26", Number(26), "0x1a"},
		{"max", Number(math.MaxUint64), "0xffffffffffffffff"},
		{"zero value", BlockNumber{}, "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.String())
		})
	}
}

func TestParseBlockNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    BlockNumber
		wantErr bool
	}{
		{"latest", Latest, false},
		{"earliest", Earliest, false},
		{"pending", Pending, false},
		{"0x0", Number(0), false},
		{"0x1a", Number(26), false},
		{"0x001a", Number(26), false},
		{"1a", BlockNumber{}, true},
		{"26", BlockNumber{}, true},
		{"0xzz", BlockNumber{}, true},
		{"0x", BlockNumber{}, true},
		{"0x10000000000000000", BlockNumber{}, true},
		{"Latest", BlockNumber{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBlockNumber(tt.input)
			if tt.wantErr {
				var de *DecodeError
				require.ErrorAs(t, err, &de)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlockNumberRoundTrip(t *testing.T) {
	selectors := []BlockNumber{Latest, Earliest, Pending, Number(0), Number(1), Number(26), Number(1 << 40), Number(math.MaxUint64)}

	for _, sel := range selectors {
		t.Run(sel.String(), func(t *testing.T) {
			parsed, err := ParseBlockNumber(sel.String())
			require.NoError(t, err)
			assert.Equal(t, sel.String(), parsed.String())

			data, err := json.Marshal(sel)
			require.NoError(t, err)

			var decoded BlockNumber
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, sel, decoded)
		})
	}
}

func TestBlockNumberUnmarshalRejectsNonString(t *testing.T) {
	var sel BlockNumber
	err := json.Unmarshal([]byte(`26`), &sel)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestParseBlockArg(t *testing.T) {
	tests := []struct {
		input   string
		want    BlockNumber
		wantErr bool
	}{
		{"", Latest, false},
		{"  LATEST ", Latest, false},
		{"pending", Pending, false},
		{"12345", Number(12345), false},
		{"0x3039", Number(12345), false},
		{"0", Number(0), false},
		{"abc", BlockNumber{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBlockArg(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlockNumberUint64(t *testing.T) {
	n, ok := Number(42).Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), n)

	_, ok = Pending.Uint64()
	assert.False(t, ok)
}
