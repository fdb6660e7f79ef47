package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/repository"
)

// run executes fn under the operation timeout. Concurrency conflicts and
// transient persistence faults are retried up to MaxAttempts; everything
// else returns at once. The result always carries exactly one domain error.
func (c *core) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.opts.OperationTimeout)
	defer cancel()

	var err error
	attempt := 1
	for ; ; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) || attempt >= c.opts.MaxAttempts {
			break
		}
		c.metrics.Retry(op)
		c.log.Debug("retrying ledger transaction", "operation", op, "attempt", attempt, "error", err)

		timer := time.NewTimer(c.opts.RetryBackoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			err = fmt.Errorf("%v: %w", err, ctx.Err())
		case <-timer.C:
			continue
		}
		break
	}

	err = classify(op, attempt, err)
	c.metrics.ObserveOperation(op, outcome(err), time.Since(start).Seconds())
	if err != nil && !domain.IsBusinessError(err) {
		c.log.Error("ledger operation failed", "operation", op, "attempts", attempt, "error", err)
	}
	return err
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrConcurrencyConflict) || repository.IsTransient(err)
}

func classify(op string, attempts int, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsBusinessError(err), errors.Is(err, domain.ErrInternalFault):
		return err
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return fmt.Errorf("%w: %s gave up after %d attempts: %v", domain.ErrInternalFault, op, attempts, err)
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrInternalFault, op, err)
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.ErrorCode(err)
}

func notFound(err error, format string, args ...any) error {
	if repository.IsNoRows(err) {
		return fmt.Errorf("%w: "+format, append([]any{domain.ErrNotFound}, args...)...)
	}
	return err
}
