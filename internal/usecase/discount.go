package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountService struct {
	*core
}

// DiscountTerms are the editable parts of a discount card. DiscountPercentage
// is the legacy way of asking for a percentage advantage.
type DiscountTerms struct {
	Description        string
	MemberName         string
	AdvantageType      string
	AdvantageValue     decimal.NullDecimal
	DiscountPercentage decimal.NullDecimal
	ExpiryDate         *time.Time
	UsageLimit         *int
}

type CreateDiscountCardInput struct {
	Code    string
	CoachID string
	DiscountTerms
}

type DiscountQuoteInput struct {
	Code        string
	CoachID     string
	OrderAmount decimal.Decimal
}

type DiscountRedeemInput struct {
	Code           string
	CoachID        string
	CustomerID     string
	CustomerName   string
	OrderAmount    decimal.Decimal
	OrderID        string
	IdempotencyKey string
}

func (t DiscountTerms) validate(now time.Time) (domain.Advantage, error) {
	advantage, err := domain.ResolveAdvantage(t.AdvantageType, t.AdvantageValue, t.DiscountPercentage)
	if err != nil {
		return nil, err
	}
	if t.UsageLimit != nil && *t.UsageLimit < 1 {
		return nil, fmt.Errorf("%w: usage limit must be at least 1", domain.ErrValidation)
	}
	if t.ExpiryDate != nil && !t.ExpiryDate.After(now) {
		return nil, fmt.Errorf("%w: expiry date must be in the future", domain.ErrValidation)
	}
	return advantage, nil
}

func (s *DiscountService) CreateDiscountCard(ctx context.Context, in CreateDiscountCardInput) (domain.DiscountCard, error) {
	coachID := strings.TrimSpace(in.CoachID)
	if coachID == "" {
		return domain.DiscountCard{}, fmt.Errorf("%w: coach id is required", domain.ErrValidation)
	}
	now := s.now()
	advantage, err := in.validate(now)
	if err != nil {
		return domain.DiscountCard{}, err
	}
	code := domain.NormalizeCode(in.Code)
	if code == "" {
		code = s.codes.DiscountCardCode()
	}

	var card domain.DiscountCard
	err = s.run(ctx, "discount_card_create", func(ctx context.Context) error {
		row, err := s.store.CreateDiscountCard(ctx, db.CreateDiscountCardParams{
			ID:             uuid.New(),
			Code:           code,
			CoachID:        coachID,
			Description:    in.Description,
			MemberName:     in.MemberName,
			AdvantageType:  string(advantage.Type()),
			AdvantageValue: advantage.Value(),
			ExpiryDate:     optTimestamptz(in.ExpiryDate),
			UsageLimit:     int4(in.UsageLimit),
			CreatedAt:      timestamptz(now),
		})
		if repository.IsUniqueViolation(err) {
			return fmt.Errorf("%w: discount card code %s already exists", domain.ErrValidation, code)
		}
		if err != nil {
			return err
		}
		card, err = toDiscountCard(row)
		return err
	})
	return card, err
}

func (s *DiscountService) GetDiscountCard(ctx context.Context, code string) (domain.DiscountCard, error) {
	code = domain.NormalizeCode(code)
	var card domain.DiscountCard
	err := s.run(ctx, "discount_card_get", func(ctx context.Context) error {
		row, err := s.store.GetDiscountCardByCode(ctx, code)
		if err != nil {
			return notFound(err, "discount card %s", code)
		}
		card, err = toDiscountCard(row)
		return err
	})
	return card, err
}

func (s *DiscountService) ListDiscountCardsByCoach(ctx context.Context, coachID string) ([]domain.DiscountCard, error) {
	cards := []domain.DiscountCard{}
	err := s.run(ctx, "discount_card_list", func(ctx context.Context) error {
		rows, err := s.store.ListDiscountCardsByCoach(ctx, coachID)
		if err != nil {
			return err
		}
		cards = cards[:0]
		for _, row := range rows {
			card, err := toDiscountCard(row)
			if err != nil {
				return err
			}
			cards = append(cards, card)
		}
		return nil
	})
	return cards, err
}

// UpdateDiscountCardTerms replaces the terms of a card nobody has used yet.
func (s *DiscountService) UpdateDiscountCardTerms(ctx context.Context, code string, terms DiscountTerms) (domain.DiscountCard, error) {
	code = domain.NormalizeCode(code)
	now := s.now()
	advantage, err := terms.validate(now)
	if err != nil {
		return domain.DiscountCard{}, err
	}

	var card domain.DiscountCard
	err = s.run(ctx, "discount_card_update", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			row, err := q.GetDiscountCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "discount card %s", code)
			}
			if row.UsageCount > 0 {
				return fmt.Errorf("%w: discount card %s has already been used", domain.ErrInvalidState, code)
			}
			n, err := q.UpdateDiscountCardTerms(ctx, db.UpdateDiscountCardTermsParams{
				ID:             row.ID,
				Version:        row.Version,
				Description:    terms.Description,
				MemberName:     terms.MemberName,
				AdvantageType:  string(advantage.Type()),
				AdvantageValue: advantage.Value(),
				ExpiryDate:     optTimestamptz(terms.ExpiryDate),
				UsageLimit:     int4(terms.UsageLimit),
				UpdatedAt:      timestamptz(now),
			})
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: discount card %s was modified concurrently", domain.ErrConcurrencyConflict, code)
			}
			row, err = q.GetDiscountCardByID(ctx, row.ID)
			if err != nil {
				return err
			}
			card, err = toDiscountCard(row)
			return err
		})
	})
	return card, err
}

func parseDiscountRequest(code string, orderAmount decimal.Decimal) (string, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return "", fmt.Errorf("%w: card code is required", domain.ErrValidation)
	}
	if err := domain.ValidateAmount("order amount", orderAmount); err != nil {
		return "", err
	}
	return code, nil
}

// Quote prices an order with the card without consuming a use.
func (s *DiscountService) Quote(ctx context.Context, in DiscountQuoteInput) (domain.DiscountQuote, error) {
	var quote domain.DiscountQuote
	code, err := parseDiscountRequest(in.Code, in.OrderAmount)
	if err != nil {
		s.metrics.ObserveOperation("discount_card_quote", outcome(err), 0)
		return quote, err
	}

	err = s.run(ctx, "discount_card_quote", func(ctx context.Context) error {
		return s.store.ReadTx(ctx, func(q repository.Querier) error {
			row, err := q.GetDiscountCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "discount card %s", code)
			}
			card, err := toDiscountCard(row)
			if err != nil {
				return err
			}
			if err := card.CheckUsable(strings.TrimSpace(in.CoachID), s.now()); err != nil {
				return err
			}
			quote = card.Quote(in.OrderAmount)
			return nil
		})
	})
	return quote, err
}

// Redeem quotes the order and consumes one use of the card in the same
// transaction, logging a redemption.
func (s *DiscountService) Redeem(ctx context.Context, in DiscountRedeemInput) (domain.DiscountRedeemResult, error) {
	var result domain.DiscountRedeemResult
	code, err := parseDiscountRequest(in.Code, in.OrderAmount)
	if err == nil && strings.TrimSpace(in.CustomerID) == "" {
		err = fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	if err != nil {
		s.metrics.ObserveOperation("discount_card_redeem", outcome(err), 0)
		return result, err
	}
	key := domain.RedemptionKey(in.IdempotencyKey, in.OrderID, "", code)

	err = s.run(ctx, "discount_card_redeem", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			if key != "" {
				prior, err := q.GetDiscountRedemptionByKey(ctx, text(key))
				switch {
				case err == nil:
					return replayDiscount(ctx, q, prior, code, in.OrderAmount, &result)
				case !repository.IsNoRows(err):
					return err
				}
			}

			row, err := q.GetDiscountCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "discount card %s", code)
			}
			card, err := toDiscountCard(row)
			if err != nil {
				return err
			}
			now := s.now()
			if err := card.CheckUsable(strings.TrimSpace(in.CoachID), now); err != nil {
				return err
			}
			quote := card.Quote(in.OrderAmount)

			updated, err := s.consume(ctx, q, card, now)
			if err != nil {
				return err
			}
			red, err := q.InsertDiscountRedemption(ctx, db.InsertDiscountRedemptionParams{
				ID:             uuid.New(),
				DiscountCardID: card.ID,
				CustomerID:     in.CustomerID,
				CustomerName:   in.CustomerName,
				OrderAmount:    quote.OrderAmount,
				DiscountAmount: quote.DiscountAmount,
				FinalAmount:    quote.FinalAmount,
				IdempotencyKey: text(key),
				CreatedAt:      timestamptz(now),
			})
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: redemption %s recorded concurrently", domain.ErrConcurrencyConflict, key)
			}
			if err != nil {
				return err
			}
			result = domain.DiscountRedeemResult{
				Quote:      quote,
				Card:       updated,
				Redemption: toDiscountRedemption(red),
			}
			return nil
		})
	})
	if err != nil || result.Replayed {
		return result, err
	}

	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyDiscountCardRedeemed,
		RecipientID: result.Card.CoachID,
		Reference:   result.Card.Code,
		Amount:      result.Quote.DiscountAmount,
		Attributes: map[string]string{
			"customer_id":   in.CustomerID,
			"customer_name": in.CustomerName,
			"final_amount":  result.Quote.FinalAmount.StringFixed(domain.MoneyPlaces),
		},
	})
	return result, nil
}

// RedeemByID consumes one use of a card without pricing an order.
func (s *DiscountService) RedeemByID(ctx context.Context, id uuid.UUID) (domain.DiscountCard, error) {
	var card domain.DiscountCard
	err := s.run(ctx, "discount_card_redeem_id", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			row, err := q.GetDiscountCardByID(ctx, id)
			if err != nil {
				return notFound(err, "discount card %s", id)
			}
			current, err := toDiscountCard(row)
			if err != nil {
				return err
			}
			now := s.now()
			if err := current.CheckUsable("", now); err != nil {
				return err
			}
			card, err = s.consume(ctx, q, current, now)
			return err
		})
	})
	return card, err
}

// consume increments usage under the version guard. A blocked update means
// the card changed since it was read.
func (s *DiscountService) consume(ctx context.Context, q repository.Querier, card domain.DiscountCard, now time.Time) (domain.DiscountCard, error) {
	row, err := q.IncrementDiscountUsage(ctx, db.IncrementDiscountUsageParams{
		ID:        card.ID,
		Version:   card.Version,
		UpdatedAt: timestamptz(now),
	})
	if repository.IsNoRows(err) {
		return domain.DiscountCard{}, fmt.Errorf("%w: discount card %s was modified concurrently", domain.ErrConcurrencyConflict, card.Code)
	}
	if err != nil {
		return domain.DiscountCard{}, err
	}
	return toDiscountCard(row)
}

func replayDiscount(ctx context.Context, q repository.Querier, prior db.DiscountRedemption, code string, orderAmount decimal.Decimal, out *domain.DiscountRedeemResult) error {
	row, err := q.GetDiscountCardByID(ctx, prior.DiscountCardID)
	if err != nil {
		return err
	}
	if row.Code != code || !prior.OrderAmount.Equal(orderAmount) {
		return fmt.Errorf("%w: idempotency key %s was already used for a different redemption", domain.ErrValidation, prior.IdempotencyKey.String)
	}
	card, err := toDiscountCard(row)
	if err != nil {
		return err
	}
	red := toDiscountRedemption(prior)
	quote := card.Quote(red.OrderAmount)
	quote.DiscountAmount = red.DiscountAmount
	quote.FinalAmount = red.FinalAmount
	*out = domain.DiscountRedeemResult{
		Quote:      quote,
		Card:       card,
		Redemption: red,
		Replayed:   true,
	}
	return nil
}
