package container

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArtifact = `<?php //ICB0 83:0 82:1437d 81:2841c
if(!extension_loaded('ionCube Loader')){die('The file '.__FILE__." requires the ionCube PHP Loader");}
?>
HR+cPzd3K1f0bm9wU3lQWm5hY2tlZFBheWxvYWRCbG9ja0FBQUFB
QkJCQkNDQ0NERERERUVFRUZGRkZHR0dHSEhISElJSUlKSkpKS0tLSw==
`

func TestParseHeader(t *testing.T) {
	c, err := Parse([]byte(sampleArtifact))
	require.NoError(t, err)

	assert.Equal(t, "ICB0", c.Header.Format)
	assert.Equal(t, 83, c.Header.VersionMajor)
	assert.Equal(t, 0, c.Header.VersionMinor)
	assert.Equal(t, 82, c.Header.EncoderCounter)
	assert.Equal(t, "1437d", c.Header.EncoderID)
	assert.Equal(t, 81, c.Header.FileCounter)
	assert.Equal(t, "2841c", c.Header.FileID)
	assert.Equal(t, "83.0", c.Header.Version())
}

func TestParseHeaderFields(t *testing.T) {
	c, err := Parse([]byte(sampleArtifact))
	require.NoError(t, err)

	fields := c.Header.Fields()
	assert.Equal(t, "ICB0", fields["format"])
	assert.Equal(t, "83", fields["version_major"])
	assert.Equal(t, "1437d", fields["encoder_id"])
	assert.Equal(t, "2841c", fields["file_id"])
}

func TestParsePayloadConcatenation(t *testing.T) {
	c, err := Parse([]byte(sampleArtifact))
	require.NoError(t, err)

	payload := string(c.Payload)
	assert.True(t, strings.HasPrefix(payload, "HR+cPzd3K1f0"))
	assert.True(t, strings.HasSuffix(payload, "S0tLSw=="))
	assert.NotContains(t, payload, "\n")
	assert.NotContains(t, payload, "ICB0")
	assert.NotContains(t, payload, "extension_loaded")
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"plain php", "<?php echo 'hello'; ?>"},
		{"header tag without fields", "<?php //ICB0\n?>"},
		{"uppercase hex rejected", "<?php //ICB0 83:0 82:1437D 81:2841C\n?>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedContainer)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "header signature not found", perr.Reason)
		})
	}
}

func TestParseSkipsShortAndForeignLines(t *testing.T) {
	input := strings.Join([]string{
		"<?php //ICB0 83:0 82:1437d 81:2841c",
		"?>",
		"short==",
		"this line has spaces so it is not payload at all",
		"QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo0NTY3ODkw",
		"",
	}, "\n")

	c, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo0NTY3ODkw", string(c.Payload))
}

func TestDefaultBoundaryStopsAfterPayload(t *testing.T) {
	input := strings.Join([]string{
		"<?php //ICB0 83:0 82:1437d 81:2841c",
		"?>",
		"QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo0NTY3ODkw",
		"",
		"VGhpc0xpbmVDb21lc0FmdGVyVGhlQmxhbmtCb3VuZGFyeUxpbmU=",
	}, "\n")

	c, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo0NTY3ODkw", string(c.Payload))
}

func TestParseWithOptionsCustomBoundary(t *testing.T) {
	input := strings.Join([]string{
		"<?php //ICB0 83:0 82:1437d 81:2841c",
		"?>",
		"QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo0NTY3ODkw",
		"",
		"VGhpc0xpbmVDb21lc0FmdGVyVGhlQmxhbmtCb3VuZGFyeUxpbmU=",
	}, "\n")

	// Never stop: both payload runs are concatenated.
	c, err := ParseWithOptions([]byte(input), Options{
		Boundary: func(line string, started bool) bool { return false },
	})
	require.NoError(t, err)
	assert.Equal(t,
		"QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo0NTY3ODkw"+
			"VGhpc0xpbmVDb21lc0FmdGVyVGhlQmxhbmtCb3VuZGFyeUxpbmU=",
		string(c.Payload))
}

func TestParseWithOptionsMinLineLen(t *testing.T) {
	input := strings.Join([]string{
		"<?php //ICB0 83:0 82:1437d 81:2841c",
		"?>",
		"c2hvcnRsaW5l",
		"",
	}, "\n")

	c, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Empty(t, c.Payload, "12-char line is below the default threshold")

	c, err = ParseWithOptions([]byte(input), Options{MinLineLen: 5})
	require.NoError(t, err)
	assert.Equal(t, "c2hvcnRsaW5l", string(c.Payload))
}

func TestParseKeepsRawBytes(t *testing.T) {
	raw := []byte(sampleArtifact)
	c, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, c.Raw)
}
