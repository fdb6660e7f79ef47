package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/metrics"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/azizikri/coach-ledger/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]domain.NotificationKind, 0, len(n.sent))
	for _, msg := range n.sent {
		kinds = append(kinds, msg.Kind)
	}
	return kinds
}

type fixture struct {
	ledger   *Ledger
	store    repository.Store
	notifier *recordingNotifier
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	opts := DefaultOptions()
	opts.RetryBackoff = time.Millisecond
	f.ledger = NewLedger(Deps{
		Store:    store,
		Notifier: f.notifier,
		Metrics:  f.metrics,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:    func() time.Time { return testNow },
		Options:  opts,
	})
	return f
}

func (f *fixture) giftCard(t *testing.T, code, issuer string, amount string) domain.GiftCard {
	t.Helper()
	issuerType, err := domain.IssuerTypeFromCode(code)
	require.NoError(t, err)
	card, err := f.ledger.GiftCards.CreateGiftCard(context.Background(), CreateGiftCardInput{
		Code:         code,
		IssuerID:     issuer,
		IssuerType:   string(issuerType),
		BusinessName: "Studio " + issuer,
		TotalAmount:  dec(amount),
	})
	require.NoError(t, err)
	return card
}

// faultStore wraps a real store and lets a test replace single statements,
// inside and outside transactions.
type faultStore struct {
	repository.Store
	updateGiftCardBalanceFn  func(ctx context.Context, next repository.Querier, arg db.UpdateGiftCardBalanceParams) (int64, error)
	incrementDiscountUsageFn func(ctx context.Context, next repository.Querier, arg db.IncrementDiscountUsageParams) (db.DiscountCard, error)
	addCoachEarningFn        func(ctx context.Context, next repository.Querier, arg db.AddCoachEarningParams) (db.CoachEarning, error)
}

type faultQuerier struct {
	repository.Querier
	f *faultStore
}

func (s *faultStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	return s.Store.ExecTx(ctx, func(q repository.Querier) error {
		return fn(&faultQuerier{Querier: q, f: s})
	})
}

func (q *faultQuerier) UpdateGiftCardBalance(ctx context.Context, arg db.UpdateGiftCardBalanceParams) (int64, error) {
	if q.f.updateGiftCardBalanceFn != nil {
		return q.f.updateGiftCardBalanceFn(ctx, q.Querier, arg)
	}
	return q.Querier.UpdateGiftCardBalance(ctx, arg)
}

func (q *faultQuerier) IncrementDiscountUsage(ctx context.Context, arg db.IncrementDiscountUsageParams) (db.DiscountCard, error) {
	if q.f.incrementDiscountUsageFn != nil {
		return q.f.incrementDiscountUsageFn(ctx, q.Querier, arg)
	}
	return q.Querier.IncrementDiscountUsage(ctx, arg)
}

func (q *faultQuerier) AddCoachEarning(ctx context.Context, arg db.AddCoachEarningParams) (db.CoachEarning, error) {
	if q.f.addCoachEarningFn != nil {
		return q.f.addCoachEarningFn(ctx, q.Querier, arg)
	}
	return q.Querier.AddCoachEarning(ctx, arg)
}
