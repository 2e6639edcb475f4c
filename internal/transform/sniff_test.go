package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffCompression(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Compression
	}{
		{"gzip magic", []byte{0x1f, 0x8b, 0x08, 0x00}, CompressionGzip},
		{"zlib default", []byte{0x78, 0x9c, 0x01}, CompressionZlib},
		{"zlib fastest", []byte{0x78, 0x01, 0x01}, CompressionZlib},
		{"zlib best", []byte{0x78, 0xda, 0x01}, CompressionZlib},
		{"plain text", []byte("hello"), CompressionUnknown},
		{"too short", []byte{0x78}, CompressionUnknown},
		{"empty", nil, CompressionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffCompression(tt.input))
		})
	}
}

func TestAutoInflate(t *testing.T) {
	original := []byte("<?php class Config { }")

	out, err := AutoInflate(zlibCompress(t, original))
	require.NoError(t, err)
	assert.Equal(t, original, out)

	out, err = AutoInflate(gzipCompress(t, original))
	require.NoError(t, err)
	assert.Equal(t, original, out)

	// Raw deflate has no magic bytes; AutoInflate falls through to trial
	// decompression.
	out, err = AutoInflate(deflateCompress(t, original))
	require.NoError(t, err)
	assert.Equal(t, original, out)

	_, err = AutoInflate([]byte{0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrInapplicable)
}

func TestEntropy(t *testing.T) {
	assert.Equal(t, 0.0, Entropy(nil))
	assert.Equal(t, 0.0, Entropy([]byte("aaaaaaaa")), "single symbol has zero entropy")

	// Two equally likely symbols carry exactly one bit each.
	assert.InDelta(t, 1.0, Entropy([]byte("abababab")), 1e-9)

	// All 256 byte values once: maximal entropy of 8 bits.
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	assert.InDelta(t, 8.0, Entropy(all), 1e-9)

	// Compressed data sits near the top of the scale, text well below.
	text := []byte("the quick brown fox jumps over the lazy dog and keeps running")
	assert.Less(t, Entropy(text), 5.0)
}

func TestSectionEntropy(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}
	sections := SectionEntropy(data, 4)
	require.Len(t, sections, 4)
	for _, e := range sections {
		assert.InDelta(t, 8.0, e, 1e-9, "each 256-byte section covers every value once")
	}
}
