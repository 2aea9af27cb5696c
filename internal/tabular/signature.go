package tabular

import (
	"encoding/json"
	"strconv"
)

// signatureSnippetLen bounds how much of a boundary record is serialized into
// a signature.
const signatureSnippetLen = 96

// Signature computes a cheap summary of a record slice: the count plus
// bounded-length serializations of the first and last record. Two outputs
// with equal signatures are treated as structurally unchanged, which lets the
// engine suppress redundant change notifications without deep comparison.
func Signature(records []Record) string {
	if len(records) == 0 {
		return "0"
	}

	first := recordSnippet(records[0])
	last := recordSnippet(records[len(records)-1])
	return strconv.Itoa(len(records)) + "|" + first + "|" + last
}

func recordSnippet(rec Record) string {
	// encoding/json sorts map keys, so the snippet is deterministic.
	data, err := json.Marshal(rec)
	if err != nil {
		return "len:" + strconv.Itoa(len(rec))
	}
	if len(data) > signatureSnippetLen {
		data = data[:signatureSnippetLen]
	}
	return string(data)
}
