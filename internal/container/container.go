// Package container parses wrapped, loader-protected PHP artifacts into
// header metadata and the encoded payload region. Parsing is pure: the input
// bytes are never mutated and a Container is immutable once returned.
package container

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedContainer is returned (wrapped in *ParseError) when the input
// carries no recognizable header signature.
var ErrMalformedContainer = errors.New("container: no recognizable header")

// ParseError describes why an artifact could not be parsed.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse container: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Header holds the positional fields of the container header line:
// a format tag, a dotted version pair, and two counter:hex-id fields.
type Header struct {
	Format         string
	VersionMajor   int
	VersionMinor   int
	EncoderCounter int
	EncoderID      string
	FileCounter    int
	FileID         string
}

// Version returns the dotted version pair as declared in the header,
// e.g. "83.0".
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor)
}

// Fields returns the header as a flat string map for reporting.
func (h Header) Fields() map[string]string {
	return map[string]string{
		"format":          h.Format,
		"version_major":   strconv.Itoa(h.VersionMajor),
		"version_minor":   strconv.Itoa(h.VersionMinor),
		"encoder_counter": strconv.Itoa(h.EncoderCounter),
		"encoder_id":      h.EncoderID,
		"file_counter":    strconv.Itoa(h.FileCounter),
		"file_id":         h.FileID,
	}
}

// Container is a parsed artifact: the raw bytes, the header, and the
// extracted payload region. Immutable after Parse; safe for concurrent
// read-only reuse across pipeline runs.
type Container struct {
	Raw     []byte
	Header  Header
	Payload []byte
}

// BoundaryFunc decides where payload extraction stops. It is consulted for
// every line; started reports whether payload lines have begun accumulating.
// Returning true ends extraction. The default stops at the first blank line
// after the payload has started, which is a heuristic boundary, not a
// guaranteed-correct one.
type BoundaryFunc func(line string, started bool) bool

// DefaultBoundary stops extraction at the first blank line once payload
// lines have started accumulating.
func DefaultBoundary(line string, started bool) bool {
	return started && strings.TrimSpace(line) == ""
}

// Options tune payload extraction. The zero value uses the defaults.
type Options struct {
	// Boundary overrides the extraction stop predicate.
	Boundary BoundaryFunc

	// MinLineLen is the minimum length for a line to count as payload.
	// Defaults to 20; shorter alphabet-matching lines are framing noise.
	MinLineLen int
}

func (o *Options) defaults() {
	if o.Boundary == nil {
		o.Boundary = DefaultBoundary
	}
	if o.MinLineLen <= 0 {
		o.MinLineLen = 20
	}
}

// headerPattern matches the fixed positional header: format tag, dotted
// version pair, and two counter:hex-id fields, e.g.
// "ICB0 83:0 82:1437d 81:2841c". A leading "//" comment marker may precede
// the tag.
var headerPattern = regexp.MustCompile(`ICB(\d+)\s+(\d+):(\d+)\s+(\d+):([0-9a-f]+)\s+(\d+):([0-9a-f]+)`)

// payloadLine matches the strict payload alphabet.
var payloadLine = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// loaderGuards are substrings that mark loader boilerplate lines, never
// payload.
var loaderGuards = []string{
	"extension_loaded",
	"ionCube Loader",
}

// Parse splits a wrapped artifact into header metadata and payload using
// default extraction options.
func Parse(raw []byte) (*Container, error) {
	return ParseWithOptions(raw, Options{})
}

// ParseWithOptions is Parse with explicit extraction options.
func ParseWithOptions(raw []byte, opts Options) (*Container, error) {
	opts.defaults()

	text := string(raw)

	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, &ParseError{Reason: "header signature not found", Err: ErrMalformedContainer}
	}

	hdr := Header{
		Format:    "ICB" + m[1],
		EncoderID: m[5],
		FileID:    m[7],
	}
	// The pattern guarantees digits; Atoi cannot fail here.
	hdr.VersionMajor, _ = strconv.Atoi(m[2])
	hdr.VersionMinor, _ = strconv.Atoi(m[3])
	hdr.EncoderCounter, _ = strconv.Atoi(m[4])
	hdr.FileCounter, _ = strconv.Atoi(m[6])

	payload := extractPayload(text, opts)

	return &Container{
		Raw:     raw,
		Header:  hdr,
		Payload: payload,
	}, nil
}

// extractPayload scans line by line, skips framing and loader-guard lines,
// and concatenates the remaining strict-alphabet lines into one payload.
func extractPayload(text string, opts Options) []byte {
	var b strings.Builder
	started := false

	for _, line := range strings.Split(text, "\n") {
		if opts.Boundary(line, started) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isFraming(trimmed) {
			continue
		}
		if len(trimmed) <= opts.MinLineLen || !payloadLine.MatchString(trimmed) {
			continue
		}
		b.WriteString(trimmed)
		started = true
	}

	return []byte(b.String())
}

func isFraming(line string) bool {
	if strings.HasPrefix(line, "<?") || line == "?>" || strings.HasPrefix(line, "//") {
		return true
	}
	if headerPattern.MatchString(line) {
		return true
	}
	for _, guard := range loaderGuards {
		if strings.Contains(line, guard) {
			return true
		}
	}
	return false
}
