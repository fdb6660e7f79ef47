package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/metrics"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/shopspring/decimal"
)

type Options struct {
	OperationTimeout      time.Duration
	MaxAttempts           int
	RetryBackoff          time.Duration
	// DefaultCommissionRate applies to coaches initialized without a rate.
	// Nil means 15%; a pointer to zero is an explicit 0%.
	DefaultCommissionRate *decimal.Decimal
	PublicCoachID         string
	// NotifyWorkers bounds in-flight background notifications. Zero
	// delivers inline on the caller's goroutine.
	NotifyWorkers         int
}

func DefaultOptions() Options {
	return Options{
		OperationTimeout:      5 * time.Second,
		MaxAttempts:           3,
		RetryBackoff:          50 * time.Millisecond,
		DefaultCommissionRate: rate(decimal.NewFromInt(15)),
		PublicCoachID:         "public",
	}
}

// Deps wires the services. Only Store is required.
type Deps struct {
	Store    repository.Store
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Codes    *domain.CodeGenerator
	Clock    func() time.Time
	Options  Options
}

type core struct {
	store    repository.Store
	notifier Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	codes    *domain.CodeGenerator
	clock    func() time.Time
	opts     Options

	notifySlots chan struct{}
	pending     sync.WaitGroup
}

func newCore(d Deps) *core {
	c := &core{
		store:    d.Store,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		log:      d.Logger,
		codes:    d.Codes,
		clock:    d.Clock,
		opts:     d.Options,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.log}
	}
	if c.codes == nil {
		c.codes = domain.MustCodeGenerator()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	defaults := DefaultOptions()
	if c.opts.OperationTimeout <= 0 {
		c.opts.OperationTimeout = defaults.OperationTimeout
	}
	if c.opts.MaxAttempts <= 0 {
		c.opts.MaxAttempts = defaults.MaxAttempts
	}
	if c.opts.RetryBackoff < 0 {
		c.opts.RetryBackoff = 0
	}
	if c.opts.PublicCoachID == "" {
		c.opts.PublicCoachID = defaults.PublicCoachID
	}
	if c.opts.DefaultCommissionRate == nil {
		c.opts.DefaultCommissionRate = defaults.DefaultCommissionRate
	}
	if c.opts.NotifyWorkers > 0 {
		c.notifySlots = make(chan struct{}, c.opts.NotifyWorkers)
	}
	return c
}

func rate(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// defaultRate is the commission rate given to coaches initialized without one.
func (c *core) defaultRate() decimal.Decimal {
	return *c.opts.DefaultCommissionRate
}

// now is truncated to the precision PostgreSQL keeps.
func (c *core) now() time.Time {
	return c.clock().UTC().Truncate(time.Microsecond)
}

// notify publishes after commit. Failures are logged and counted only.
// With NotifyWorkers set, delivery runs in the background and is dropped
// when every slot is busy.
func (c *core) notify(ctx context.Context, n domain.Notification) {
	if n.OccurredAt.IsZero() {
		n.OccurredAt = c.now()
	}
	if c.notifySlots == nil {
		c.deliver(ctx, n)
		return
	}

	select {
	case c.notifySlots <- struct{}{}:
	default:
		c.metrics.NotificationFailed(string(n.Kind))
		c.log.Warn("notification dropped, all workers busy",
			"kind", n.Kind,
			"recipient_id", n.RecipientID,
			"reference", n.Reference,
		)
		return
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		defer func() { <-c.notifySlots }()
		c.deliver(context.WithoutCancel(ctx), n)
	}()
}

func (c *core) deliver(ctx context.Context, n domain.Notification) {
	if err := c.notifier.Notify(ctx, n); err != nil {
		c.metrics.NotificationFailed(string(n.Kind))
		c.log.Warn("notification failed",
			"kind", n.Kind,
			"recipient_id", n.RecipientID,
			"reference", n.Reference,
			"error", err,
		)
	}
}

// Ledger groups the services that share one store.
type Ledger struct {
	GiftCards   *GiftCardService
	Discounts   *DiscountService
	Earnings    *EarningsService
	Withdrawals *WithdrawalService

	core *core
}

func NewLedger(d Deps) *Ledger {
	c := newCore(d)
	return &Ledger{
		core:        c,
		GiftCards:   &GiftCardService{core: c},
		Discounts:   &DiscountService{core: c},
		Earnings:    &EarningsService{core: c},
		Withdrawals: &WithdrawalService{core: c},
	}
}

// Close waits for background notifications to finish or ctx to expire.
func (l *Ledger) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.core.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
