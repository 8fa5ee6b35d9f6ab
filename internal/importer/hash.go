package importer

import (
	"fmt"
	"hash/fnv"

	"github.com/shopspring/decimal"
)

// ComputeHash derives the dedup key for one imported row as the 64-bit
// FNV-1a digest of "account|rowIndex|date|description|amount", hex-encoded
// to 16 characters. The row position is part of the input: re-importing an
// identical file reproduces identical hashes, while identical content at
// different positions in one file stays distinct.
func ComputeHash(accountID int64, rowIndex int, date, description string, amount decimal.Decimal) string {
	input := fmt.Sprintf("%d|%d|%s|%s|%s", accountID, rowIndex, date, description, amount)
	return fmt.Sprintf("%016x", fnv1a(input))
}

func fnv1a(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
