package consent

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"assent/pkg/consent/tracer"
)

// CheckBatch fetches the consent status of every email concurrently.
//
// The result slice aligns one-to-one with the input: same length, same
// order, duplicates included. An individual lookup failure never aborts
// the batch; it lands as BatchResult.Err on its own slot while sibling
// lookups continue, so total latency is bounded by the slowest single
// lookup (or by the configured concurrency limit). The method-level error
// stays nil for per-item failures.
func (c *Client) CheckBatch(ctx context.Context, emails []string) ([]BatchResult, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanBatch,
		tracer.Int64(tracer.AttrBatchSize, int64(len(emails))),
	)
	start := time.Now()
	if c.metrics != nil {
		c.metrics.ObserveBatchSize(float64(len(emails)))
	}

	results := make([]BatchResult, len(emails))
	g, gctx := errgroup.WithContext(ctx)
	if c.batchConcurrency > 0 {
		g.SetLimit(c.batchConcurrency)
	}

	for i, email := range emails {
		g.Go(func() error {
			status, err := c.ConsentStatus(gctx, email)
			if err != nil {
				results[i] = BatchResult{Email: email, Err: err.Error()}
				return nil
			}
			results[i] = BatchResult{
				Email:      email,
				HasConsent: status.HasConsent,
				Consents:   status.Consents,
			}
			return nil
		})
	}

	// Each lookup records its failure in its own slot and returns nil, so
	// Wait cannot surface a per-item error here.
	if err := g.Wait(); err != nil {
		c.observe(opBatch, start, err)
		span.End(err)
		return nil, err
	}

	failures := int64(0)
	for _, result := range results {
		if result.Err != "" {
			failures++
		}
	}
	span.SetAttributes(tracer.Int64(tracer.AttrBatchErrors, failures))
	span.End(nil)
	c.observe(opBatch, start, nil)
	return results, nil
}
