package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/azizikri/coach-ledger/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redeemInput(code, amount string) GiftCardRedeemInput {
	return GiftCardRedeemInput{
		Code:            code,
		Amount:          dec(amount),
		CustomerID:      "cust-1",
		CustomerName:    "Mia Keller",
		BusinessID:      "coach1",
		TransactionType: "course",
	}
}

func TestGiftCardRedeem_PartialThenFull(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")

	first, err := f.ledger.GiftCards.Redeem(ctx, redeemInput("COACH-AB12-999-XYZ", "40"))
	require.NoError(t, err)
	assert.True(t, first.RemainingAmount.Equal(dec("60")))
	assert.True(t, first.AmountAvailable.Equal(dec("100")))
	assert.Equal(t, domain.PartialRedemption, first.Kind)

	card, err := f.ledger.GiftCards.GetGiftCard(ctx, "coach-ab12-999-xyz")
	require.NoError(t, err)
	assert.False(t, card.IsUsed)

	second, err := f.ledger.GiftCards.Redeem(ctx, redeemInput("COACH-AB12-999-XYZ", "60"))
	require.NoError(t, err)
	assert.True(t, second.RemainingAmount.IsZero())
	assert.Equal(t, domain.FullRedemption, second.Kind)

	card, err = f.ledger.GiftCards.GetGiftCard(ctx, "COACH-AB12-999-XYZ")
	require.NoError(t, err)
	assert.True(t, card.IsUsed)
	assert.Equal(t, "cust-1", card.UsedBy)
	require.NotNil(t, card.UsedAt)

	_, err = f.ledger.GiftCards.Redeem(ctx, redeemInput("COACH-AB12-999-XYZ", "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	txns, err := f.ledger.GiftCards.ListGiftCardTransactions(ctx, "COACH-AB12-999-XYZ")
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	assert.Equal(t, []domain.NotificationKind{
		domain.NotifyGiftCardRedeemed,
		domain.NotifyGiftCardRedeemed,
		domain.NotifyGiftCardDepleted,
	}, f.notifier.kinds())
	assert.InDelta(t, 100.0, testutil.ToFloat64(f.metrics.GiftCardRedeemed), 0.001)
}

func TestGiftCardQuote_Failures(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")
	f.giftCard(t, "SELLER-QQ11-123-ABC", "shop9", "50")
	_, err := f.ledger.GiftCards.SetGiftCardActive(ctx, "SELLER-QQ11-123-ABC", false)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input GiftCardQuoteInput
		want  error
	}{
		{"empty code", GiftCardQuoteInput{Code: " ", Amount: dec("10"), TransactionType: "course"}, domain.ErrValidation},
		{"unknown prefix", GiftCardQuoteInput{Code: "GIFT-1", Amount: dec("10"), TransactionType: "course"}, domain.ErrValidation},
		{"zero amount", GiftCardQuoteInput{Code: "COACH-AB12-999-XYZ", Amount: dec("0"), TransactionType: "course"}, domain.ErrValidation},
		{"unknown transaction type", GiftCardQuoteInput{Code: "COACH-AB12-999-XYZ", Amount: dec("10"), TransactionType: "rental"}, domain.ErrValidation},
		{"missing card", GiftCardQuoteInput{Code: "COACH-0000-000-000", Amount: dec("10"), TransactionType: "course"}, domain.ErrNotFound},
		{"inactive card", GiftCardQuoteInput{Code: "SELLER-QQ11-123-ABC", Amount: dec("10"), TransactionType: "product"}, domain.ErrInvalidState},
		{"coach card for product", GiftCardQuoteInput{Code: "COACH-AB12-999-XYZ", Amount: dec("10"), TransactionType: "product"}, domain.ErrScopeMismatch},
		{"other business", GiftCardQuoteInput{Code: "COACH-AB12-999-XYZ", Amount: dec("10"), TransactionType: "token", BusinessID: "coach2"}, domain.ErrScopeMismatch},
		{"over balance", GiftCardQuoteInput{Code: "COACH-AB12-999-XYZ", Amount: dec("100.01"), TransactionType: "course"}, domain.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.GiftCards.Quote(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGiftCardQuote_DoesNotMutate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")

	quote, err := f.ledger.GiftCards.Quote(ctx, GiftCardQuoteInput{
		Code:            "coach-ab12-999-xyz",
		Amount:          dec("35.50"),
		TransactionType: "token",
		BusinessID:      "coach1",
	})
	require.NoError(t, err)
	assert.Equal(t, "COACH-AB12-999-XYZ", quote.CardCode)
	assert.True(t, quote.RemainingAfter.Equal(dec("64.50")))

	card, err := f.ledger.GiftCards.GetGiftCard(ctx, "COACH-AB12-999-XYZ")
	require.NoError(t, err)
	assert.True(t, card.RemainingAmount.Equal(dec("100")))
	assert.Empty(t, f.notifier.kinds())
}

func TestGiftCardRedeem_IdempotencyKey(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")

	in := redeemInput("COACH-AB12-999-XYZ", "25")
	in.IdempotencyKey = "checkout-77"
	first, err := f.ledger.GiftCards.Redeem(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	again, err := f.ledger.GiftCards.Redeem(ctx, in)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.True(t, again.RemainingAmount.Equal(dec("75")))
	assert.Equal(t, first.Transaction.ID, again.Transaction.ID)

	card, err := f.ledger.GiftCards.GetGiftCard(ctx, "COACH-AB12-999-XYZ")
	require.NoError(t, err)
	assert.True(t, card.RemainingAmount.Equal(dec("75")))
	assert.Len(t, f.notifier.kinds(), 1)

	in.Amount = dec("30")
	_, err = f.ledger.GiftCards.Redeem(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGiftCardRedeem_OrderPaidWithTwoCards(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.giftCard(t, "COACH-AAAA-111-AAA", "coach1", "30")
	f.giftCard(t, "COACH-BBBB-222-BBB", "coach1", "30")

	a := redeemInput("COACH-AAAA-111-AAA", "30")
	a.OrderID = "order-5"
	b := redeemInput("COACH-BBBB-222-BBB", "20")
	b.OrderID = "order-5"

	_, err := f.ledger.GiftCards.Redeem(ctx, a)
	require.NoError(t, err)
	res, err := f.ledger.GiftCards.Redeem(ctx, b)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, "order:order-5:COACH-BBBB-222-BBB", res.Transaction.IdempotencyKey)

	replay, err := f.ledger.GiftCards.Redeem(ctx, a)
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
}

func TestGiftCardRedeem_ConcurrentNeverOverdraws(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.giftCard(t, "COACH-CONC-100-XYZ", "coach1", "100")

	const workers = 25
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.GiftCards.Redeem(ctx, redeemInput("COACH-CONC-100-XYZ", "10"))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrInsufficientFunds):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, succeeded.Load())
	assert.EqualValues(t, workers-10, rejected.Load())
	card, err := f.ledger.GiftCards.GetGiftCard(ctx, "COACH-CONC-100-XYZ")
	require.NoError(t, err)
	assert.True(t, card.RemainingAmount.IsZero())
	assert.True(t, card.IsUsed)
}

func TestGiftCardRedeem_ConflictRetried(t *testing.T) {
	var calls atomic.Int32
	store := &faultStore{
		Store: memory.New(),
		updateGiftCardBalanceFn: func(ctx context.Context, next repository.Querier, arg db.UpdateGiftCardBalanceParams) (int64, error) {
			if calls.Add(1) == 1 {
				return 0, nil
			}
			return next.UpdateGiftCardBalance(ctx, arg)
		},
	}
	f := newFixture(t, store)
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")

	res, err := f.ledger.GiftCards.Redeem(context.Background(), redeemInput("COACH-AB12-999-XYZ", "10"))
	require.NoError(t, err)
	assert.True(t, res.RemainingAmount.Equal(dec("90")))
	assert.EqualValues(t, 2, calls.Load())
	assert.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.TxRetries.WithLabelValues("gift_card_redeem")), 0.001)
}

func TestGiftCardRedeem_ConflictExhaustedIsInternalFault(t *testing.T) {
	var calls atomic.Int32
	store := &faultStore{
		Store: memory.New(),
		updateGiftCardBalanceFn: func(context.Context, repository.Querier, db.UpdateGiftCardBalanceParams) (int64, error) {
			calls.Add(1)
			return 0, nil
		},
	}
	f := newFixture(t, store)
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")

	_, err := f.ledger.GiftCards.Redeem(context.Background(), redeemInput("COACH-AB12-999-XYZ", "10"))
	require.ErrorIs(t, err, domain.ErrInternalFault)
	assert.NotErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, domain.CodeInternalFault, domain.ErrorCode(err))
	assert.EqualValues(t, DefaultOptions().MaxAttempts, calls.Load())

	card, err := f.ledger.GiftCards.GetGiftCard(context.Background(), "COACH-AB12-999-XYZ")
	require.NoError(t, err)
	assert.True(t, card.RemainingAmount.Equal(dec("100")))
	assert.Empty(t, f.notifier.kinds())
}

func TestGiftCardRedeem_NotifierFailureKeepsRedemption(t *testing.T) {
	f := newFixture(t, nil)
	f.notifier.err = errors.New("broker unavailable")
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")

	_, err := f.ledger.GiftCards.Redeem(context.Background(), redeemInput("COACH-AB12-999-XYZ", "100"))
	require.NoError(t, err)

	card, err := f.ledger.GiftCards.GetGiftCard(context.Background(), "COACH-AB12-999-XYZ")
	require.NoError(t, err)
	assert.True(t, card.IsUsed)
	assert.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.NotificationErrors.WithLabelValues(string(domain.NotifyGiftCardRedeemed))), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.NotificationErrors.WithLabelValues(string(domain.NotifyGiftCardDepleted))), 0.001)
}

func TestCreateGiftCard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	card, err := f.ledger.GiftCards.CreateGiftCard(ctx, CreateGiftCardInput{
		IssuerID:    "shop9",
		IssuerType:  "seller",
		TotalAmount: dec("80"),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^SELLER-[A-Z0-9]{4}-[0-9]{3}-[A-Z0-9]{3}$`, card.Code)
	assert.True(t, card.RemainingAmount.Equal(dec("80")))
	assert.True(t, card.IsActive)

	_, err = f.ledger.GiftCards.CreateGiftCard(ctx, CreateGiftCardInput{
		Code:        card.Code,
		IssuerID:    "shop9",
		IssuerType:  "SELLER",
		TotalAmount: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.ledger.GiftCards.CreateGiftCard(ctx, CreateGiftCardInput{
		Code:        "COACH-AB12-999-XYZ",
		IssuerID:    "shop9",
		IssuerType:  "SELLER",
		TotalAmount: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	cards, err := f.ledger.GiftCards.ListGiftCardsByIssuer(ctx, "shop9")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestCreateGiftCard_GeneratedCodesReturnPromptly(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	type created struct {
		code string
		err  error
	}
	done := make(chan created, 1)
	go func() {
		var last created
		for i := 0; i < 20; i++ {
			card, err := f.ledger.GiftCards.CreateGiftCard(ctx, CreateGiftCardInput{
				IssuerID:    "coach1",
				IssuerType:  "COACH",
				TotalAmount: dec("100"),
			})
			last = created{code: card.Code, err: err}
			if err != nil {
				break
			}
		}
		done <- last
	}()

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Regexp(t, `^COACH-[A-Z0-9]{4}-[0-9]{3}-[A-Z]{3}$`, got.code)
	case <-time.After(5 * time.Second):
		t.Fatal("CreateGiftCard without a code did not return")
	}

	cards, err := f.ledger.GiftCards.ListGiftCardsByIssuer(context.Background(), "coach1")
	require.NoError(t, err)
	assert.Len(t, cards, 20)
}

func TestDeleteGiftCard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.giftCard(t, "COACH-AB12-999-XYZ", "coach1", "100")
	f.giftCard(t, "COACH-UNUS-000-EDX", "coach1", "100")

	_, err := f.ledger.GiftCards.Redeem(ctx, redeemInput("COACH-AB12-999-XYZ", "5"))
	require.NoError(t, err)

	err = f.ledger.GiftCards.DeleteGiftCard(ctx, "COACH-AB12-999-XYZ")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	require.NoError(t, f.ledger.GiftCards.DeleteGiftCard(ctx, "COACH-UNUS-000-EDX"))
	_, err = f.ledger.GiftCards.GetGiftCard(ctx, "COACH-UNUS-000-EDX")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.ledger.GiftCards.DeleteGiftCard(ctx, "COACH-UNUS-000-EDX")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
