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

type GiftCardService struct {
	*core
}

type CreateGiftCardInput struct {
	Code           string
	IssuerID       string
	IssuerType     string
	BusinessName   string
	TotalAmount    decimal.Decimal
	ExpirationDate *time.Time
}

type GiftCardQuoteInput struct {
	Code            string
	Amount          decimal.Decimal
	TransactionType string
	BusinessID      string
}

type GiftCardRedeemInput struct {
	Code            string
	Amount          decimal.Decimal
	CustomerID      string
	CustomerName    string
	BusinessID      string
	OrderID         string
	BookingID       string
	TransactionType string
	IdempotencyKey  string
}

func (s *GiftCardService) CreateGiftCard(ctx context.Context, in CreateGiftCardInput) (domain.GiftCard, error) {
	issuerType, err := domain.ParseIssuerType(in.IssuerType)
	if err != nil {
		return domain.GiftCard{}, err
	}
	if strings.TrimSpace(in.IssuerID) == "" {
		return domain.GiftCard{}, fmt.Errorf("%w: issuer id is required", domain.ErrValidation)
	}
	if err := domain.ValidateAmount("total amount", in.TotalAmount); err != nil {
		return domain.GiftCard{}, err
	}
	now := s.now()
	if in.ExpirationDate != nil && !in.ExpirationDate.After(now) {
		return domain.GiftCard{}, fmt.Errorf("%w: expiration date must be in the future", domain.ErrValidation)
	}

	code := domain.NormalizeCode(in.Code)
	if code == "" {
		code = s.codes.GiftCardCode(issuerType)
	}
	prefix, err := domain.IssuerTypeFromCode(code)
	if err != nil {
		return domain.GiftCard{}, err
	}
	if prefix != issuerType {
		return domain.GiftCard{}, fmt.Errorf("%w: code prefix %s does not match issuer type %s", domain.ErrValidation, prefix, issuerType)
	}

	var card domain.GiftCard
	err = s.run(ctx, "gift_card_create", func(ctx context.Context) error {
		row, err := s.store.CreateGiftCard(ctx, db.CreateGiftCardParams{
			ID:             uuid.New(),
			Code:           code,
			IssuerID:       strings.TrimSpace(in.IssuerID),
			IssuerType:     string(issuerType),
			BusinessName:   strings.TrimSpace(in.BusinessName),
			TotalAmount:    in.TotalAmount,
			ExpirationDate: optTimestamptz(in.ExpirationDate),
			CreatedAt:      timestamptz(now),
		})
		if repository.IsUniqueViolation(err) {
			return fmt.Errorf("%w: gift card code %s already exists", domain.ErrValidation, code)
		}
		if err != nil {
			return err
		}
		card = toGiftCard(row)
		return nil
	})
	return card, err
}

func (s *GiftCardService) GetGiftCard(ctx context.Context, code string) (domain.GiftCard, error) {
	code = domain.NormalizeCode(code)
	var card domain.GiftCard
	err := s.run(ctx, "gift_card_get", func(ctx context.Context) error {
		row, err := s.store.GetGiftCardByCode(ctx, code)
		if err != nil {
			return notFound(err, "gift card %s", code)
		}
		card = toGiftCard(row)
		return nil
	})
	return card, err
}

func (s *GiftCardService) ListGiftCardsByIssuer(ctx context.Context, issuerID string) ([]domain.GiftCard, error) {
	cards := []domain.GiftCard{}
	err := s.run(ctx, "gift_card_list", func(ctx context.Context) error {
		rows, err := s.store.ListGiftCardsByIssuer(ctx, issuerID)
		if err != nil {
			return err
		}
		cards = cards[:0]
		for _, row := range rows {
			cards = append(cards, toGiftCard(row))
		}
		return nil
	})
	return cards, err
}

func (s *GiftCardService) ListGiftCardTransactions(ctx context.Context, code string) ([]domain.GiftCardTransaction, error) {
	code = domain.NormalizeCode(code)
	txns := []domain.GiftCardTransaction{}
	err := s.run(ctx, "gift_card_transactions", func(ctx context.Context) error {
		return s.store.ReadTx(ctx, func(q repository.Querier) error {
			card, err := q.GetGiftCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "gift card %s", code)
			}
			rows, err := q.ListGiftCardTransactions(ctx, card.ID)
			if err != nil {
				return err
			}
			txns = txns[:0]
			for _, row := range rows {
				txns = append(txns, toGiftCardTransaction(row))
			}
			return nil
		})
	})
	return txns, err
}

func (s *GiftCardService) SetGiftCardActive(ctx context.Context, code string, active bool) (domain.GiftCard, error) {
	code = domain.NormalizeCode(code)
	var card domain.GiftCard
	err := s.run(ctx, "gift_card_set_active", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			row, err := q.GetGiftCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "gift card %s", code)
			}
			row, err = q.SetGiftCardActive(ctx, db.SetGiftCardActiveParams{
				ID:        row.ID,
				IsActive:  active,
				UpdatedAt: timestamptz(s.now()),
			})
			if err != nil {
				return err
			}
			card = toGiftCard(row)
			return nil
		})
	})
	return card, err
}

// DeleteGiftCard removes a card that has never been redeemed.
func (s *GiftCardService) DeleteGiftCard(ctx context.Context, code string) error {
	code = domain.NormalizeCode(code)
	return s.run(ctx, "gift_card_delete", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			row, err := q.GetGiftCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "gift card %s", code)
			}
			used, err := q.CountGiftCardTransactions(ctx, row.ID)
			if err != nil {
				return err
			}
			if used > 0 {
				return fmt.Errorf("%w: gift card %s has %d transactions and cannot be deleted", domain.ErrInvalidState, code, used)
			}
			n, err := q.DeleteGiftCard(ctx, row.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: gift card %s changed while deleting", domain.ErrConcurrencyConflict, code)
			}
			return nil
		})
	})
}

func parseGiftCardRequest(code string, amount decimal.Decimal, transactionType string) (string, domain.TransactionType, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return "", "", fmt.Errorf("%w: card code is required", domain.ErrValidation)
	}
	if _, err := domain.IssuerTypeFromCode(code); err != nil {
		return "", "", err
	}
	if err := domain.ValidateAmount("amount", amount); err != nil {
		return "", "", err
	}
	txType, err := domain.ParseTransactionType(transactionType)
	if err != nil {
		return "", "", err
	}
	return code, txType, nil
}

// Quote checks whether amount could be paid with the card. It never writes.
func (s *GiftCardService) Quote(ctx context.Context, in GiftCardQuoteInput) (domain.GiftCardQuote, error) {
	var quote domain.GiftCardQuote
	code, txType, err := parseGiftCardRequest(in.Code, in.Amount, in.TransactionType)
	if err != nil {
		s.metrics.ObserveOperation("gift_card_quote", outcome(err), 0)
		return quote, err
	}

	err = s.run(ctx, "gift_card_quote", func(ctx context.Context) error {
		return s.store.ReadTx(ctx, func(q repository.Querier) error {
			row, err := q.GetGiftCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "gift card %s", code)
			}
			card := toGiftCard(row)
			if err := card.CheckRedeemable(domain.GiftCardCheck{
				Amount:          in.Amount,
				TransactionType: txType,
				BusinessID:      strings.TrimSpace(in.BusinessID),
				Now:             s.now(),
			}); err != nil {
				return err
			}
			quote = domain.GiftCardQuote{
				CardCode:        card.Code,
				AmountAvailable: card.RemainingAmount,
				AmountPayable:   in.Amount,
				RemainingAfter:  card.RemainingAmount.Sub(in.Amount),
			}
			return nil
		})
	})
	return quote, err
}

// Redeem debits exactly in.Amount from the card and logs the transaction.
// A repeated call with the same idempotency key returns the first result.
func (s *GiftCardService) Redeem(ctx context.Context, in GiftCardRedeemInput) (domain.GiftCardRedemption, error) {
	var result domain.GiftCardRedemption
	code, txType, err := parseGiftCardRequest(in.Code, in.Amount, in.TransactionType)
	if err == nil && strings.TrimSpace(in.CustomerID) == "" {
		err = fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	if err != nil {
		s.metrics.ObserveOperation("gift_card_redeem", outcome(err), 0)
		return result, err
	}
	key := domain.RedemptionKey(in.IdempotencyKey, in.OrderID, in.BookingID, code)

	var issuerID string
	err = s.run(ctx, "gift_card_redeem", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			if key != "" {
				prior, err := q.GetGiftCardTransactionByKey(ctx, text(key))
				switch {
				case err == nil:
					return s.replayRedemption(ctx, q, prior, code, in.Amount, &result)
				case !repository.IsNoRows(err):
					return err
				}
			}

			row, err := q.GetGiftCardByCode(ctx, code)
			if err != nil {
				return notFound(err, "gift card %s", code)
			}
			card := toGiftCard(row)
			now := s.now()
			if err := card.CheckRedeemable(domain.GiftCardCheck{
				Amount:          in.Amount,
				TransactionType: txType,
				BusinessID:      strings.TrimSpace(in.BusinessID),
				Now:             now,
			}); err != nil {
				return err
			}

			after, kind := card.Debit(in.Amount, in.CustomerID, in.CustomerName, now)
			n, err := q.UpdateGiftCardBalance(ctx, db.UpdateGiftCardBalanceParams{
				ID:              card.ID,
				Version:         card.Version,
				RemainingAmount: after.RemainingAmount,
				IsUsed:          after.IsUsed,
				UsedBy:          text(after.UsedBy),
				UsedByName:      text(after.UsedByName),
				UsedAt:          optTimestamptz(after.UsedAt),
				UpdatedAt:       timestamptz(now),
			})
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: gift card %s was modified concurrently", domain.ErrConcurrencyConflict, code)
			}

			txRow, err := q.InsertGiftCardTransaction(ctx, db.InsertGiftCardTransactionParams{
				ID:              uuid.New(),
				GiftCardID:      card.ID,
				CustomerID:      in.CustomerID,
				CustomerName:    in.CustomerName,
				AmountUsed:      in.Amount,
				BalanceAfter:    after.RemainingAmount,
				Kind:            string(kind),
				TransactionType: string(txType),
				OrderID:         text(in.OrderID),
				BookingID:       text(in.BookingID),
				IdempotencyKey:  text(key),
				CreatedAt:       timestamptz(now),
			})
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: redemption %s recorded concurrently", domain.ErrConcurrencyConflict, key)
			}
			if err != nil {
				return err
			}

			issuerID = card.IssuerID
			result = domain.GiftCardRedemption{
				CardCode:        card.Code,
				AmountToUse:     in.Amount,
				AmountAvailable: card.RemainingAmount,
				RemainingAmount: after.RemainingAmount,
				Kind:            kind,
				Transaction:     toGiftCardTransaction(txRow),
			}
			return nil
		})
	})
	if err != nil || result.Replayed {
		return result, err
	}

	s.metrics.Redeemed(result.AmountToUse)
	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyGiftCardRedeemed,
		RecipientID: issuerID,
		Reference:   result.CardCode,
		Amount:      result.AmountToUse,
		Attributes: map[string]string{
			"customer_id":      in.CustomerID,
			"customer_name":    in.CustomerName,
			"remaining_amount": result.RemainingAmount.StringFixed(domain.MoneyPlaces),
		},
	})
	if result.Kind == domain.FullRedemption {
		s.notify(ctx, domain.Notification{
			Kind:        domain.NotifyGiftCardDepleted,
			RecipientID: issuerID,
			Reference:   result.CardCode,
			Amount:      result.AmountToUse,
		})
	}
	return result, nil
}

func (s *GiftCardService) replayRedemption(ctx context.Context, q repository.Querier, prior db.GiftCardTransaction, code string, amount decimal.Decimal, out *domain.GiftCardRedemption) error {
	card, err := q.GetGiftCardByID(ctx, prior.GiftCardID)
	if err != nil {
		return err
	}
	if card.Code != code || !prior.AmountUsed.Equal(amount) {
		return fmt.Errorf("%w: idempotency key %s was already used for a different redemption", domain.ErrValidation, prior.IdempotencyKey.String)
	}
	*out = domain.RedemptionFromTransaction(card.Code, toGiftCardTransaction(prior))
	return nil
}
