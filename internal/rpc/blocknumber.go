package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type blockTag uint8

const (
	tagLatest blockTag = iota
	tagEarliest
	tagPending
	tagNumber
)

// BlockNumber selects a block: one of the tags Latest, Earliest, Pending, or
// an explicit height built with Number. The zero value is Latest.
type BlockNumber struct {
	tag    blockTag
	number uint64
}

var (
	Latest   = BlockNumber{tag: tagLatest}
	Earliest = BlockNumber{tag: tagEarliest}
	Pending  = BlockNumber{tag: tagPending}
)

// Number selects the block at height n.
func Number(n uint64) BlockNumber {
	return BlockNumber{tag: tagNumber, number: n}
}

// Uint64 returns the explicit height, or false for a tag.
func (b BlockNumber) Uint64() (uint64, bool) {
	return b.number, b.tag == tagNumber
}

// String returns the canonical wire text: "latest", "earliest", "pending"
// or "0x" followed by the height in lowercase hex without leading zeros.
func (b BlockNumber) String() string {
	switch b.tag {
	case tagEarliest:
		return "earliest"
	case tagPending:
		return "pending"
	case tagNumber:
		return "0x" + strconv.FormatUint(b.number, 16)
	default:
		return "latest"
	}
}

// MarshalJSON encodes the canonical wire text as a JSON string.
func (b BlockNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BlockNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Message: fmt.Sprintf("block number must be a string: %v", err)}
	}
	parsed, err := ParseBlockNumber(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBlockNumber parses canonical wire text. Anything that is not one of
// the three tags must carry the "0x" prefix.
func ParseBlockNumber(s string) (BlockNumber, error) {
	switch s {
	case "latest":
		return Latest, nil
	case "earliest":
		return Earliest, nil
	case "pending":
		return Pending, nil
	}
	if !strings.HasPrefix(s, "0x") {
		return BlockNumber{}, &DecodeError{Message: "invalid block number: missing 0x prefix"}
	}
	n, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return BlockNumber{}, &DecodeError{Message: fmt.Sprintf("invalid block number: %v", err)}
	}
	return Number(n), nil
}

// ParseBlockArg converts a user-supplied block identifier (tag, 0x hex or
// decimal) into a selector. An empty argument means latest.
func ParseBlockArg(arg string) (BlockNumber, error) {
	arg = strings.TrimSpace(strings.ToLower(arg))
	if arg == "" {
		return Latest, nil
	}
	if n, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return Number(n), nil
	}
	return ParseBlockNumber(arg)
}
