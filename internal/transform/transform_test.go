package transform

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func deflateCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func gzipCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestBase64Decode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "aGVsbG8=", "hello", false},
		{"missing padding", "aGVsbG8", "hello", false},
		{"interleaved whitespace", "aGVs\nbG8=\n", "hello", false},
		{"empty", "", "", true},
		{"invalid alphabet", "a*b#c!", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Base64Decode([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInapplicable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestBase64URLDecode(t *testing.T) {
	input := base64.URLEncoding.EncodeToString([]byte{0xfb, 0xff, 0x00, 0x01})
	out, err := Base64URLDecode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfb, 0xff, 0x00, 0x01}, out)
}

func TestHexDecode(t *testing.T) {
	out, err := HexDecode([]byte("48656C6C6F"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(out))

	_, err = HexDecode([]byte("abc"))
	assert.ErrorIs(t, err, ErrInapplicable, "odd length")

	_, err = HexDecode([]byte("zzzz"))
	assert.ErrorIs(t, err, ErrInapplicable, "non-hex digit")
}

func TestROT13(t *testing.T) {
	out, err := ROT13([]byte("Hello, World! 123"))
	require.NoError(t, err)
	assert.Equal(t, "Uryyb, Jbeyq! 123", string(out))

	back, err := ROT13(out)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World! 123", string(back), "rot13 is its own inverse")
}

func TestInflateRoundTrips(t *testing.T) {
	original := []byte("<?php function f() { return 42; }")

	out, err := ZlibInflate(zlibCompress(t, original))
	require.NoError(t, err)
	assert.Equal(t, original, out)

	out, err = DeflateInflate(deflateCompress(t, original))
	require.NoError(t, err)
	assert.Equal(t, original, out)

	out, err = GzipInflate(gzipCompress(t, original))
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestInflateRejectsGarbage(t *testing.T) {
	garbage := []byte("this is not a compressed stream")

	_, err := ZlibInflate(garbage)
	assert.ErrorIs(t, err, ErrInapplicable)

	_, err = GzipInflate(garbage)
	assert.ErrorIs(t, err, ErrInapplicable)

	_, err = DeflateInflate([]byte{0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrInapplicable)
}

func TestXORCycle(t *testing.T) {
	data := []byte("payload bytes")

	xored, err := XORCycle([]byte{0x55})(data)
	require.NoError(t, err)
	assert.NotEqual(t, data, xored)

	back, err := XORCycle([]byte{0x55})(xored)
	require.NoError(t, err)
	assert.Equal(t, data, back)

	multi, err := XORCycle([]byte("cube"))(data)
	require.NoError(t, err)
	back, err = XORCycle([]byte("cube"))(multi)
	require.NoError(t, err)
	assert.Equal(t, data, back)

	_, err = XORCycle(nil)(data)
	assert.ErrorIs(t, err, ErrInapplicable)
}

func TestXORKeyDictionaryOrder(t *testing.T) {
	// The single-byte sweep comes first, multi-byte keys last. Order is
	// load-bearing for reproducible strategy output.
	require.GreaterOrEqual(t, len(XORKeys), 12)
	assert.Equal(t, []byte{0x55}, XORKeys[0])
	assert.Equal(t, []byte("ionc"), XORKeys[len(XORKeys)-2])
	assert.Equal(t, []byte("cube"), XORKeys[len(XORKeys)-1])
}
