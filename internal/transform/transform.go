// Package transform is the catalog of byte-to-byte stages the recovery
// pipeline composes into strategies: text decodes (base64, base64url, hex,
// rot13), decompression (zlib, raw deflate, gzip), and a keyed XOR stage.
// Every stage is a pure function. A stage whose preconditions are not met
// signals ErrInapplicable instead of failing hard, so the pipeline can move
// on to the next candidate.
package transform

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// ErrInapplicable marks a stage whose input does not meet its preconditions.
// It is expected, internal control flow, never a user-visible failure.
var ErrInapplicable = errors.New("transform: stage inapplicable")

// StageFunc is a single reversible byte-sequence operation.
type StageFunc func([]byte) ([]byte, error)

// Base64Decode decodes standard base64, tolerating missing padding and
// interleaved whitespace.
func Base64Decode(data []byte) ([]byte, error) {
	s := compact(string(data))
	if s == "" {
		return nil, fmt.Errorf("%w: empty base64 input", ErrInapplicable)
	}
	s = pad(s)
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInapplicable, err)
	}
	return out, nil
}

// Base64URLDecode maps the URL-safe alphabet onto the standard one before
// decoding.
func Base64URLDecode(data []byte) ([]byte, error) {
	s := strings.NewReplacer("-", "+", "_", "/").Replace(string(data))
	return Base64Decode([]byte(s))
}

// HexDecode decodes hexadecimal input. Odd length or a non-hex digit makes
// the stage inapplicable.
func HexDecode(data []byte) ([]byte, error) {
	s := compact(string(data))
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length hex input", ErrInapplicable)
	}
	out, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInapplicable, err)
	}
	return out, nil
}

// ROT13 applies the letter-substitution cipher. It always succeeds and is
// its own inverse; non-letter bytes pass through unchanged.
func ROT13(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	for i, b := range data {
		switch {
		case b >= 'a' && b <= 'z':
			out[i] = 'a' + (b-'a'+13)%26
		case b >= 'A' && b <= 'Z':
			out[i] = 'A' + (b-'A'+13)%26
		default:
			out[i] = b
		}
	}
	return out, nil
}

// ZlibInflate decompresses a zlib stream (with header).
func ZlibInflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInapplicable, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInapplicable, err)
	}
	return out, nil
}

// DeflateInflate decompresses a raw deflate stream (no wrapper).
func DeflateInflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInapplicable, err)
	}
	return out, nil
}

// GzipInflate decompresses a gzip stream (with header).
func GzipInflate(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInapplicable, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInapplicable, err)
	}
	return out, nil
}

// XORCycle returns a stage that XORs the data against key, cycling the key
// over the data length.
func XORCycle(key []byte) StageFunc {
	return func(data []byte) ([]byte, error) {
		if len(key) == 0 {
			return nil, fmt.Errorf("%w: empty XOR key", ErrInapplicable)
		}
		out := make([]byte, len(data))
		for i, b := range data {
			out[i] = b ^ key[i%len(key)]
		}
		return out, nil
	}
}

// XORKeys is the fixed dictionary of candidate XOR keys, single-byte keys
// seen across protected samples plus a few multi-byte patterns. Order is
// part of the pipeline's deterministic contract.
var XORKeys = [][]byte{
	{0x55}, {0xAA}, {0xFF}, {0x5A}, {0xA5},
	{0x33}, {0xCC}, {0x69}, {0x96},
	{0x5A, 0xA5},
	[]byte("ionc"),
	[]byte("cube"),
}

// compact strips blanks and newlines from encoded text input.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

// pad right-pads base64 text to a multiple of four.
func pad(s string) string {
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	return s
}
