package batch

import (
	"context"

	"github.com/billrun/billrun/internal/logger"
)

// FetchFunc loads the next page of unfinished work. Implementations must
// return rows with id > afterID ordered by id ascending, at most limit rows.
// The keyset cursor keeps iteration stable when rows are inserted or deleted
// while the batch is running.
type FetchFunc[T any] func(ctx context.Context, afterID string, limit int) ([]T, error)

// IDFunc extracts the cursor key of an item
type IDFunc[T any] func(item T) string

// HandleFunc processes a single item. Returning an error produced by Skip
// records the item as skipped; any other error records it as failed. Either
// way the pipeline moves on to the next item.
type HandleFunc[T any] func(ctx context.Context, item T) error

// Pipeline is a paginated, resumable, per-item-isolated batch processor.
// Idempotency comes from the fetch query excluding items whose completion
// marker is already set, so a re-run only touches unfinished work.
type Pipeline[T any] struct {
	pageSize int
	fetch    FetchFunc[T]
	id       IDFunc[T]
	handle   HandleFunc[T]
	logger   *logger.Logger
}

// NewPipeline creates a pipeline over the given fetch/handle pair
func NewPipeline[T any](
	pageSize int,
	fetch FetchFunc[T],
	id IDFunc[T],
	handle HandleFunc[T],
	logger *logger.Logger,
) *Pipeline[T] {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Pipeline[T]{
		pageSize: pageSize,
		fetch:    fetch,
		id:       id,
		handle:   handle,
		logger:   logger,
	}
}

// Run drains the pipeline. Items within a page are processed sequentially to
// bound load on downstream collaborators. A fetch error aborts the run; a
// handler error never does.
func (p *Pipeline[T]) Run(ctx context.Context) (*Result, error) {
	result := NewResult()
	afterID := ""

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, err := p.fetch(ctx, afterID, p.pageSize)
		if err != nil {
			return result, err
		}
		if len(page) == 0 {
			break
		}

		p.logger.Debugw("processing batch page",
			"after_id", afterID,
			"page_size", len(page),
		)

		for _, item := range page {
			p.processItem(ctx, item, result)
		}

		afterID = p.id(page[len(page)-1])
		if len(page) < p.pageSize {
			break
		}
	}

	return result, nil
}

func (p *Pipeline[T]) processItem(ctx context.Context, item T, result *Result) {
	id := p.id(item)

	err := p.handle(ctx, item)
	if err == nil {
		result.Succeeded++
		return
	}

	if reason, ok := SkipReason(err); ok {
		p.logger.Warnw("batch item skipped",
			"item_id", id,
			"reason", reason,
		)
		result.Skipped = append(result.Skipped, Skipped{ID: id, Reason: reason})
		return
	}

	p.logger.Errorw("batch item failed",
		"item_id", id,
		"error", err,
	)
	result.Failed = append(result.Failed, Failure{ID: id, Err: err})
}
