// Package report aggregates the outcome of a recovery run into a write-once
// diagnostics record, serializable as JSON for machine consumers and
// renderable as a styled summary for humans.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iSundram/ion/internal/verification"
)

// RecoveryKind labels how the output bytes were produced. Synthesized
// output is fabricated replacement source, never to be mistaken for a
// genuine recovery.
type RecoveryKind string

const (
	KindDecoded     RecoveryKind = "decoded"
	KindSynthesized RecoveryKind = "synthesized"
)

// Diagnostics is the structured record of a single pipeline run. Built once
// at the end of the run; never mutated afterwards.
type Diagnostics struct {
	RunID            string               `json:"run_id"`
	Basename         string               `json:"basename"`
	HeaderFields     map[string]string    `json:"header_fields"`
	PayloadLength    int                  `json:"payload_length"`
	PayloadEntropy   float64              `json:"payload_entropy"`
	RecoveryKind     RecoveryKind         `json:"recovery_kind"`
	StrategyName     string               `json:"strategy_name,omitempty"`
	TemplateCategory string               `json:"template_category,omitempty"`
	OutputLength     int                  `json:"output_length"`
	Verdict          verification.Verdict `json:"verdict"`
	StrictValid      *bool                `json:"strict_valid,omitempty"`
	Analysis         verification.Summary `json:"analysis"`
}

// New creates a Diagnostics with a fresh run ID.
func New(basename string) *Diagnostics {
	return &Diagnostics{
		RunID:    uuid.NewString(),
		Basename: basename,
	}
}

// JSON serializes the report for machine consumers.
func (d *Diagnostics) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal diagnostics: %w", err)
	}
	return out, nil
}

// Provenance is a one-line statement of how the output was produced.
func (d *Diagnostics) Provenance() string {
	if d.RecoveryKind == KindDecoded {
		return fmt.Sprintf("decoded via strategy %q", d.StrategyName)
	}
	return fmt.Sprintf("synthesized from template %q (not genuine recovery)", d.TemplateCategory)
}
