package rpc

import (
	"encoding/json"
	"math/big"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBlockFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/block.json")
	require.NoError(t, err)
	return data
}

func TestDecodeBlock(t *testing.T) {
	block, err := Decode[*HashBlock](loadBlockFixture(t))
	require.NoError(t, err)
	require.NotNil(t, block)

	assert.Equal(t, uint64(26), block.Number.Uint64())
	assert.Equal(t, uint64(0x5208), block.GasUsed.Uint64())
	assert.Equal(t, uint64(0x2a3), block.Size.Uint64())
	assert.Equal(t, uint64(0x65a1b2c3), block.Timestamp.Uint64())
	assert.Equal(t, uint64(2), block.TimestampFoS.Uint64())
	assert.Equal(t, "1", block.BlockScore.String())
	assert.Equal(t, "27", block.TotalBlockScore.String())
	assert.Equal(t, Hash("0x3a1e2b4c5d6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f801"), block.Hash)
	assert.Equal(t, "0x", block.ExtraData)
	assert.Equal(t, 2, block.TxCount())
	assert.Equal(t, Hash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), block.Transactions[0])

	reward, ok := new(big.Int).SetString("2f14b9d1e6b7e5c0b5b5f3d2a1c0b9a8f7e6d5c4", 16)
	require.True(t, ok)
	assert.Equal(t, 0, reward.Cmp(block.Reward.BigInt()))
}

func TestDecodeNullBlock(t *testing.T) {
	block, err := Decode[*HashBlock](json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, block)
}

func TestDecodeBlockErrors(t *testing.T) {
	fixture := string(loadBlockFixture(t))

	tests := []struct {
		name string
		body string
	}{
		{"missing field", strings.Replace(fixture, `"voteData": "0x"`, `"other": "0x"`, 1)},
		{"number without prefix", strings.Replace(fixture, `"number": "0x1a"`, `"number": "1a"`, 1)},
		{"number invalid hex", strings.Replace(fixture, `"number": "0x1a"`, `"number": "0xzz"`, 1)},
		{"number wrong kind", strings.Replace(fixture, `"number": "0x1a"`, `"number": 26`, 1)},
		{"short hash", strings.Replace(fixture, `"hash": "0x3a1e`, `"hash": "0x3a`, 1)},
		{"bad blockscore", strings.Replace(fixture, `"blockscore": "0x1"`, `"blockscore": "0xnope"`, 1)},
		{"not an object", `["0x1"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[*HashBlock](json.RawMessage(tt.body))
			var de *DecodeError
			require.ErrorAs(t, err, &de)
		})
	}
}

func TestDecodeFullTransactions(t *testing.T) {
	fixture := string(loadBlockFixture(t))
	body := strings.Replace(fixture,
		`"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",`,
		`{"hash":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","type":"TxTypeLegacyTransaction"},`, 1)

	block, err := Decode[*Block[json.RawMessage]](json.RawMessage(body))
	require.NoError(t, err)
	require.Len(t, block.Transactions, 2)
	assert.Contains(t, string(block.Transactions[0]), "TxTypeLegacyTransaction")
}

func TestBigQuantityForms(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{`"0x1b"`, "27", false},
		{`"27"`, "27", false},
		{`27`, "27", false},
		{`"0xffffffffffffffffffffffffffffffff"`, "340282366920938463463374607431768211455", false},
		{`"0x"`, "", true},
		{`"-1"`, "", true},
		{`"abc"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var q BigQuantity
			err := json.Unmarshal([]byte(tt.input), &q)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestQuantityMarshal(t *testing.T) {
	data, err := json.Marshal(Quantity(26))
	require.NoError(t, err)
	assert.JSONEq(t, `"0x1a"`, string(data))
}

func TestSerializePanicsOnUnsupportedType(t *testing.T) {
	assert.Panics(t, func() { Serialize(make(chan int)) })
	assert.JSONEq(t, `"latest"`, string(Serialize(Latest)))
	assert.JSONEq(t, `false`, string(Serialize(false)))
}
