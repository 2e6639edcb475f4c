package report

import (
	"github.com/iSundram/ion/internal/container"
	"github.com/iSundram/ion/internal/pipeline"
	"github.com/iSundram/ion/internal/verification"
)

// Build aggregates a pipeline outcome into a diagnostics record. Pure
// aggregation: no retries, no I/O.
func Build(c *container.Container, basename string, o pipeline.Outcome) *Diagnostics {
	d := New(basename)
	d.HeaderFields = c.Header.Fields()
	d.PayloadLength = len(c.Payload)
	d.PayloadEntropy = o.PayloadEntropy
	d.OutputLength = len(o.Output)
	d.Verdict = o.Verdict
	d.StrictValid = o.StrictValid
	d.Analysis = verification.Analyze(o.Output)

	if o.Decoded {
		d.RecoveryKind = KindDecoded
		d.StrategyName = o.StrategyName
	} else {
		d.RecoveryKind = KindSynthesized
		d.TemplateCategory = string(o.TemplateCategory)
	}
	return d
}
