package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/azizikri/coach-ledger/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limit(n int) *int { return &n }

func (f *fixture) discountCard(t *testing.T, in CreateDiscountCardInput) domain.DiscountCard {
	t.Helper()
	card, err := f.ledger.Discounts.CreateDiscountCard(context.Background(), in)
	require.NoError(t, err)
	return card
}

func TestDiscountCard_SingleUse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.discountCard(t, CreateDiscountCardInput{
		Code:    "DISC-MEMBER20",
		CoachID: "coach1",
		DiscountTerms: DiscountTerms{
			MemberName:         "Lena",
			DiscountPercentage: decimal.NewNullDecimal(dec("20")),
			UsageLimit:         limit(1),
		},
	})

	quote, err := f.ledger.Discounts.Quote(ctx, DiscountQuoteInput{Code: "disc-member20", OrderAmount: dec("100")})
	require.NoError(t, err)
	assert.True(t, quote.DiscountAmount.Equal(dec("20")))
	assert.True(t, quote.FinalAmount.Equal(dec("80")))
	assert.True(t, quote.DiscountPercentage.Equal(dec("20")))
	assert.Equal(t, "Lena", quote.MemberName)

	res, err := f.ledger.Discounts.Redeem(ctx, DiscountRedeemInput{
		Code:        "DISC-MEMBER20",
		CustomerID:  "cust-1",
		OrderAmount: dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Card.UsageCount)
	assert.False(t, res.Card.IsActive)
	assert.True(t, res.Redemption.FinalAmount.Equal(dec("80")))

	_, err = f.ledger.Discounts.Quote(ctx, DiscountQuoteInput{Code: "DISC-MEMBER20", OrderAmount: dec("100")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Equal(t, []domain.NotificationKind{domain.NotifyDiscountCardRedeemed}, f.notifier.kinds())
}

func TestDiscountQuote_Advantages(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.discountCard(t, CreateDiscountCardInput{Code: "DISC-FREE", CoachID: "coach1", DiscountTerms: DiscountTerms{AdvantageType: "free"}})
	f.discountCard(t, CreateDiscountCardInput{Code: "DISC-SPECIAL", CoachID: "coach1", DiscountTerms: DiscountTerms{
		AdvantageType:  "special_price",
		AdvantageValue: decimal.NewNullDecimal(dec("30")),
	}})
	f.discountCard(t, CreateDiscountCardInput{Code: "DISC-PCT", CoachID: "coach1", DiscountTerms: DiscountTerms{
		AdvantageType:  "percentage_discount",
		AdvantageValue: decimal.NewNullDecimal(dec("12.5")),
	}})

	tests := []struct {
		code         string
		order        string
		wantDiscount string
		wantFinal    string
	}{
		{"DISC-FREE", "80", "80", "0"},
		{"DISC-SPECIAL", "80", "50", "30"},
		{"DISC-SPECIAL", "20", "0", "20"},
		{"DISC-PCT", "99.99", "12.50", "87.49"},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.order, func(t *testing.T) {
			quote, err := f.ledger.Discounts.Quote(ctx, DiscountQuoteInput{Code: tt.code, OrderAmount: dec(tt.order)})
			require.NoError(t, err)
			assert.True(t, quote.DiscountAmount.Equal(dec(tt.wantDiscount)), "discount %s", quote.DiscountAmount)
			assert.True(t, quote.FinalAmount.Equal(dec(tt.wantFinal)), "final %s", quote.FinalAmount)
		})
	}
}

func TestDiscountQuote_Failures(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	yesterday := testNow.Add(-24 * time.Hour)
	f.discountCard(t, CreateDiscountCardInput{Code: "DISC-A", CoachID: "coach1", DiscountTerms: DiscountTerms{AdvantageType: "free"}})

	// Expired cards can only exist once time has moved past their expiry.
	_, err := f.store.CreateDiscountCard(ctx, db.CreateDiscountCardParams{
		ID:            uuid.New(),
		Code:          "DISC-OLD",
		CoachID:       "coach1",
		AdvantageType: "free",
		ExpiryDate:    optTimestamptz(&yesterday),
		CreatedAt:     timestamptz(yesterday.Add(-time.Hour)),
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input DiscountQuoteInput
		want  error
	}{
		{"empty code", DiscountQuoteInput{OrderAmount: dec("10")}, domain.ErrValidation},
		{"negative order", DiscountQuoteInput{Code: "DISC-A", OrderAmount: dec("-1")}, domain.ErrValidation},
		{"missing", DiscountQuoteInput{Code: "DISC-NONE", OrderAmount: dec("10")}, domain.ErrNotFound},
		{"other coach", DiscountQuoteInput{Code: "DISC-A", CoachID: "coach2", OrderAmount: dec("10")}, domain.ErrScopeMismatch},
		{"expired", DiscountQuoteInput{Code: "DISC-OLD", OrderAmount: dec("10")}, domain.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Discounts.Quote(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDiscountRedeem_ConcurrentLastUse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.discountCard(t, CreateDiscountCardInput{Code: "DISC-LAST", CoachID: "coach1", DiscountTerms: DiscountTerms{
		AdvantageType: "free",
		UsageLimit:    limit(3),
	}})

	const workers = 12
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Discounts.Redeem(ctx, DiscountRedeemInput{Code: "DISC-LAST", CustomerID: "c", OrderAmount: dec("10")})
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidState)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, succeeded.Load())
	card, err := f.ledger.Discounts.GetDiscountCard(ctx, "DISC-LAST")
	require.NoError(t, err)
	assert.Equal(t, 3, card.UsageCount)
	assert.False(t, card.IsActive)
}

func TestDiscountRedeem_IdempotentByOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.discountCard(t, CreateDiscountCardInput{Code: "DISC-TEN", CoachID: "coach1", DiscountTerms: DiscountTerms{
		DiscountPercentage: decimal.NewNullDecimal(dec("10")),
	}})

	in := DiscountRedeemInput{Code: "DISC-TEN", CustomerID: "c", OrderAmount: dec("50"), OrderID: "o-1"}
	_, err := f.ledger.Discounts.Redeem(ctx, in)
	require.NoError(t, err)
	again, err := f.ledger.Discounts.Redeem(ctx, in)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.True(t, again.Quote.FinalAmount.Equal(dec("45")))
	assert.Equal(t, 1, again.Card.UsageCount)

	in.OrderAmount = dec("60")
	_, err = f.ledger.Discounts.Redeem(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDiscountRedeem_ConflictRetried(t *testing.T) {
	var calls atomic.Int32
	store := &faultStore{
		Store: memory.New(),
		incrementDiscountUsageFn: func(ctx context.Context, next repository.Querier, arg db.IncrementDiscountUsageParams) (db.DiscountCard, error) {
			if calls.Add(1) == 1 {
				return next.IncrementDiscountUsage(ctx, db.IncrementDiscountUsageParams{ID: arg.ID, Version: arg.Version + 100, UpdatedAt: arg.UpdatedAt})
			}
			return next.IncrementDiscountUsage(ctx, arg)
		},
	}
	f := newFixture(t, store)
	card := f.discountCard(t, CreateDiscountCardInput{Code: "DISC-R", CoachID: "coach1", DiscountTerms: DiscountTerms{AdvantageType: "free"}})

	updated, err := f.ledger.Discounts.RedeemByID(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageCount)
	assert.True(t, updated.IsActive)
	assert.EqualValues(t, 2, calls.Load())
}

func TestUpdateDiscountCardTerms(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	card := f.discountCard(t, CreateDiscountCardInput{CoachID: "coach1", DiscountTerms: DiscountTerms{AdvantageType: "free"}})
	assert.Regexp(t, `^DISC-[A-Z0-9]{8}$`, card.Code)

	updated, err := f.ledger.Discounts.UpdateDiscountCardTerms(ctx, card.Code, DiscountTerms{
		Description:    "Spring offer",
		AdvantageType:  "special_price",
		AdvantageValue: decimal.NewNullDecimal(dec("25")),
		UsageLimit:     limit(2),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AdvantageSpecialPrice, updated.Advantage.Type())
	assert.Equal(t, "Spring offer", updated.Description)
	require.NotNil(t, updated.UsageLimit)
	assert.Equal(t, 2, *updated.UsageLimit)

	_, err = f.ledger.Discounts.RedeemByID(ctx, card.ID)
	require.NoError(t, err)

	_, err = f.ledger.Discounts.UpdateDiscountCardTerms(ctx, card.Code, DiscountTerms{AdvantageType: "free"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.ledger.Discounts.CreateDiscountCard(ctx, CreateDiscountCardInput{CoachID: "coach1", DiscountTerms: DiscountTerms{AdvantageType: "free", UsageLimit: limit(0)}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	cards, err := f.ledger.Discounts.ListDiscountCardsByCoach(ctx, "coach1")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
