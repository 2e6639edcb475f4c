package pipeline

import (
	"errors"

	"github.com/iSundram/ion/internal/transform"
	"github.com/iSundram/ion/internal/verification"
)

// CheckFunc is the validation oracle consulted for every candidate output.
type CheckFunc func([]byte) verification.Verdict

// Strategy is a named, ordered composition of transform stages tried as a
// unit against the payload. Strategies are declared once at pipeline
// construction and never mutated; list order is the tie-break when several
// would validate.
type Strategy struct {
	// Name identifies the strategy in reports, e.g. "base64+zlib".
	Name string

	// MinEntropy gates the strategy: when the entropy gate is enabled and
	// the decoded payload's entropy falls below this threshold, the
	// strategy is skipped. Zero means ungated.
	MinEntropy float64

	stages []transform.StageFunc

	// keys, when non-nil, makes this a keyed strategy: after the decode
	// stages run, every key is XORed over the data and the inflate stage
	// applied, until one output validates.
	keys    [][]byte
	inflate transform.StageFunc
}

// StrategyResult is the product of one strategy attempt. Produced fresh per
// invocation and owned by the runner; never persisted.
type StrategyResult struct {
	StrategyName string
	Output       []byte
	Verdict      verification.Verdict
}

// run applies the strategy's transform chain to payload and submits the
// result to check. A stage signalling inapplicability aborts the strategy
// with transform.ErrInapplicable so the runner advances to the next one.
func (s *Strategy) run(payload []byte, check CheckFunc) (*StrategyResult, error) {
	data := payload
	for _, stage := range s.stages {
		out, err := stage(data)
		if err != nil {
			return nil, err
		}
		data = out
	}

	if s.keys == nil {
		verdict := check(data)
		return &StrategyResult{StrategyName: s.Name, Output: data, Verdict: verdict}, nil
	}

	// Keyed variant: try every key in dictionary order until one yields a
	// validated output.
	for _, key := range s.keys {
		xored, err := transform.XORCycle(key)(data)
		if err != nil {
			continue
		}
		inflated, err := s.inflate(xored)
		if err != nil {
			continue
		}
		if verdict := check(inflated); verdict.IsValid {
			return &StrategyResult{StrategyName: s.Name, Output: inflated, Verdict: verdict}, nil
		}
	}
	return nil, errors.Join(transform.ErrInapplicable, errNoKeyValidated)
}

var errNoKeyValidated = errors.New("pipeline: no XOR key yielded a validated output")

// entropy thresholds for the gate, tuned per strategy family: plain inflate
// strategies give up below the compressed-data range, the XOR sweep only
// runs on near-random data.
const (
	inflateMinEntropy = 5.5
	xorMinEntropy     = 7.5
)

// defaultStrategies is the static ordered strategy list. Determinism of
// this order is part of the pipeline contract: running the same payload
// twice yields the same chosen strategy and identical output.
func defaultStrategies(xorKeys [][]byte) []Strategy {
	return []Strategy{
		{
			Name:   "base64",
			stages: []transform.StageFunc{transform.Base64Decode},
		},
		{
			Name:       "base64+zlib",
			MinEntropy: inflateMinEntropy,
			stages:     []transform.StageFunc{transform.Base64Decode, transform.ZlibInflate},
		},
		{
			Name:       "base64+deflate",
			MinEntropy: inflateMinEntropy,
			stages:     []transform.StageFunc{transform.Base64Decode, transform.DeflateInflate},
		},
		{
			Name:       "base64+gzip",
			MinEntropy: inflateMinEntropy,
			stages:     []transform.StageFunc{transform.Base64Decode, transform.GzipInflate},
		},
		{
			Name:       "base64url+zlib",
			MinEntropy: inflateMinEntropy,
			stages:     []transform.StageFunc{transform.Base64URLDecode, transform.ZlibInflate},
		},
		{
			Name:       "hex+zlib",
			MinEntropy: inflateMinEntropy,
			stages:     []transform.StageFunc{transform.HexDecode, transform.ZlibInflate},
		},
		{
			Name:       "rot13+base64+zlib",
			MinEntropy: inflateMinEntropy,
			stages:     []transform.StageFunc{transform.ROT13, transform.Base64Decode, transform.ZlibInflate},
		},
		{
			Name:       "base64+xor+zlib",
			MinEntropy: xorMinEntropy,
			stages:     []transform.StageFunc{transform.Base64Decode},
			keys:       xorKeys,
			inflate:    transform.ZlibInflate,
		},
	}
}
