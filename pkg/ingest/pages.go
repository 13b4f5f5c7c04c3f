package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go-doc-ingest/internal/observer"
	"go-doc-ingest/internal/ocr"
	"go-doc-ingest/pkg/models"
)

// pageResult pairs a tier outcome with its page index so concurrent pages
// reduce back into document order.
type pageResult struct {
	index   int
	outcome ocr.PageOutcome
}

type pageSummary struct {
	text       string
	states     []models.TierState
	method     models.ProcessingMethod
	engine     string
	confidence float64
	agreement  float64
	failed     int
	skipped    int
}

// processPages runs tiered recognition on every page concurrently and
// reduces the results by page index, so the delimiter sequence in the
// output is always 1..N regardless of completion order.
func (p *Pipeline) processPages(ctx context.Context, pages [][]byte, opts models.Options) pageSummary {
	results := make([]pageResult, len(pages))

	// The pool is shared across concurrent requests, so completion is
	// tracked with a per-batch WaitGroup rather than pool-level state.
	var wg sync.WaitGroup
	for i, pageData := range pages {
		i, pageData := i, pageData
		wg.Add(1)
		p.workers.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = pageResult{index: i, outcome: ocr.PageOutcome{State: models.TierFailed, Agreement: -1, Err: err}}
				return
			}
			in := p.preparePage(pageData, opts)
			results[i] = pageResult{index: i, outcome: p.engine.ProcessPage(ctx, in, opts)}
		})
	}
	wg.Wait()

	summary := pageSummary{
		states: make([]models.TierState, 0, len(pages)),
		method: models.MethodOCR,
	}
	var sb strings.Builder
	var confidenceSum, agreementSum float64
	accepted, agreed := 0, 0

	for _, r := range results {
		outcome := r.outcome
		summary.states = append(summary.states, outcome.State)

		switch outcome.State {
		case models.TierSkippedBlank:
			summary.skipped++
		case models.TierFailed:
			summary.failed++
			p.notify(ctx, observer.IngestEvent{
				EventType: observer.PageFailed,
				Metadata:  map[string]interface{}{"page": r.index + 1},
			})
		case models.TierAcceptedLocal, models.TierAcceptedVision:
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "--- Page %d ---\n", r.index+1)
			sb.WriteString(outcome.Text)

			accepted++
			confidenceSum += outcome.Confidence
			if outcome.Engine != "" {
				summary.engine = outcome.Engine
			}
			if outcome.State == models.TierAcceptedVision {
				summary.method = models.MethodVision
				if !opts.UseVisionOnly {
					p.notify(ctx, observer.IngestEvent{
						EventType: observer.TierEscalated,
						Metadata:  map[string]interface{}{"page": r.index + 1},
					})
				}
			}
			if outcome.Agreement >= 0 {
				agreementSum += outcome.Agreement
				agreed++
			}
		}
	}

	summary.text = sb.String()
	if accepted > 0 {
		summary.confidence = confidenceSum / float64(accepted)
	}
	if agreed > 0 {
		summary.agreement = agreementSum / float64(agreed)
	}
	return summary
}
