package transform

import (
	"fmt"
	"math"
)

// Compression identifies a compression container by its magic bytes.
type Compression int

const (
	CompressionUnknown Compression = iota
	CompressionGzip
	CompressionZlib
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// SniffCompression matches the first two bytes against known magic pairs:
// gzip 1f 8b, zlib 78 01 / 78 9c / 78 da.
func SniffCompression(data []byte) Compression {
	if len(data) < 2 {
		return CompressionUnknown
	}
	if data[0] == 0x1f && data[1] == 0x8b {
		return CompressionGzip
	}
	if data[0] == 0x78 {
		switch data[1] {
		case 0x01, 0x9c, 0xda:
			return CompressionZlib
		}
	}
	return CompressionUnknown
}

// AutoInflate decompresses data, using the magic-byte signature when one
// matches (short-circuiting trial of the other codecs) and falling back to
// trying zlib, raw deflate, then gzip in order.
func AutoInflate(data []byte) ([]byte, error) {
	switch SniffCompression(data) {
	case CompressionGzip:
		return GzipInflate(data)
	case CompressionZlib:
		return ZlibInflate(data)
	}
	for _, inflate := range []StageFunc{ZlibInflate, DeflateInflate, GzipInflate} {
		if out, err := inflate(data); err == nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: no compression codec matched", ErrInapplicable)
}

// Entropy computes base-2 Shannon entropy over the byte-frequency
// distribution of data. Empty input has zero entropy.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	total := float64(len(data))
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// SectionEntropy splits data into n roughly equal sections and returns the
// entropy of each, for structure probing of undecoded payloads.
func SectionEntropy(data []byte, n int) []float64 {
	if n <= 0 || len(data) == 0 {
		return nil
	}
	size := len(data) / n
	if size == 0 {
		size = len(data)
	}
	var out []float64
	for i := 0; i < len(data); i += size {
		end := i + size
		if end > len(data) {
			end = len(data)
		}
		out = append(out, Entropy(data[i:end]))
	}
	return out
}
