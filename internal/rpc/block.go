package rpc

import (
	"encoding/json"
	"fmt"
)

// Block is a Klaytn block as returned by klay_getBlockByNumber. TX is the
// transaction representation: Hash when the call asks for hashes only,
// json.RawMessage (or a concrete type) for full transaction objects.
//
// Every field is required on the wire; a missing key fails decoding.
type Block[TX any] struct {
	BlockScore       *BigQuantity `json:"blockscore"`
	ExtraData        string       `json:"extraData"`
	GasUsed          Quantity     `json:"gasUsed"`
	GovernanceData   string       `json:"governanceData"`
	Hash             Hash         `json:"hash"`
	LogsBloom        string       `json:"logsBloom"`
	Number           Quantity     `json:"number"`
	ParentHash       Hash         `json:"parentHash"`
	ReceiptsRoot     Hash         `json:"receiptsRoot"`
	Reward           *BigQuantity `json:"reward"`
	Size             Quantity     `json:"size"`
	StateRoot        string       `json:"stateRoot"`
	Timestamp        Quantity     `json:"timestamp"`
	TimestampFoS     Quantity     `json:"timestampFoS"`
	TotalBlockScore  *BigQuantity `json:"totalBlockScore"`
	Transactions     []TX         `json:"transactions"`
	TransactionsRoot Hash         `json:"transactionsRoot"`
	VoteData         string       `json:"voteData"`
}

// HashBlock is a block whose transaction list holds hashes only.
type HashBlock = Block[Hash]

var blockFields = []string{
	"blockscore", "extraData", "gasUsed", "governanceData", "hash",
	"logsBloom", "number", "parentHash", "receiptsRoot", "reward", "size",
	"stateRoot", "timestamp", "timestampFoS", "totalBlockScore",
	"transactions", "transactionsRoot", "voteData",
}

// plainBlock has Block's fields without its methods, so decoding into it
// does not recurse into UnmarshalJSON.
type plainBlock[TX any] Block[TX]

// UnmarshalJSON decodes the block and rejects a payload missing any field
// in blockFields with a *DecodeError.
func (b *Block[TX]) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &DecodeError{Message: fmt.Sprintf("block must be an object: %v", err)}
	}
	for _, name := range blockFields {
		if _, ok := fields[name]; !ok {
			return &DecodeError{Message: fmt.Sprintf("missing field `%s`", name)}
		}
	}
	return json.Unmarshal(data, (*plainBlock[TX])(b))
}

// TxCount returns the number of transactions in the block.
func (b *Block[TX]) TxCount() int {
	return len(b.Transactions)
}
