package usecase

import (
	"context"
	"fmt"
	"strings"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EarningsService struct {
	*core
}

type RecordSaleInput struct {
	CoachID       string
	SaleType      string
	UnitPrice     decimal.Decimal
	SessionCount  int
	SaleReference string
}

func (s *EarningsService) coachID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.opts.PublicCoachID
}

func (s *EarningsService) ensureLedger(ctx context.Context, q repository.Querier, coachID string, rate decimal.Decimal) error {
	_, err := q.InitCoachEarnings(ctx, db.InitCoachEarningsParams{
		CoachID:        coachID,
		CommissionRate: rate,
		CreatedAt:      timestamptz(s.now()),
	})
	return err
}

// InitializeCoachEarnings creates the coach ledger if it does not exist and
// returns the current row. A nil rate falls back to the configured default.
func (s *EarningsService) InitializeCoachEarnings(ctx context.Context, coachID string, rate *decimal.Decimal) (domain.CoachEarnings, error) {
	coachID = s.coachID(coachID)
	r := s.defaultRate()
	if rate != nil {
		r = *rate
	}
	if err := domain.ValidateRate(r); err != nil {
		return domain.CoachEarnings{}, err
	}

	var earnings domain.CoachEarnings
	err := s.run(ctx, "earnings_init", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			if err := s.ensureLedger(ctx, q, coachID, r); err != nil {
				return err
			}
			row, err := q.GetCoachEarnings(ctx, coachID)
			if err != nil {
				return err
			}
			earnings = toCoachEarnings(row)
			return nil
		})
	})
	return earnings, err
}

func (s *EarningsService) GetCoachEarnings(ctx context.Context, coachID string) (domain.CoachEarnings, error) {
	coachID = s.coachID(coachID)
	var earnings domain.CoachEarnings
	err := s.run(ctx, "earnings_get", func(ctx context.Context) error {
		row, err := s.store.GetCoachEarnings(ctx, coachID)
		if err != nil {
			return notFound(err, "earnings for coach %s", coachID)
		}
		earnings = toCoachEarnings(row)
		return nil
	})
	return earnings, err
}

// UpdateCommissionRate changes the rate used for future sales. Recorded
// transactions keep the rate they were booked with.
func (s *EarningsService) UpdateCommissionRate(ctx context.Context, coachID string, rate decimal.Decimal) (domain.CoachEarnings, error) {
	coachID = s.coachID(coachID)
	if err := domain.ValidateRate(rate); err != nil {
		return domain.CoachEarnings{}, err
	}
	var earnings domain.CoachEarnings
	err := s.run(ctx, "earnings_update_rate", func(ctx context.Context) error {
		row, err := s.store.UpdateCommissionRate(ctx, db.UpdateCommissionRateParams{
			CoachID:        coachID,
			CommissionRate: rate,
			UpdatedAt:      timestamptz(s.now()),
		})
		if err != nil {
			return notFound(err, "earnings for coach %s", coachID)
		}
		earnings = toCoachEarnings(row)
		return nil
	})
	return earnings, err
}

// AddEarning credits gross minus commission to the coach in one statement.
func (s *EarningsService) AddEarning(ctx context.Context, coachID string, gross, commission decimal.Decimal) (domain.CoachEarnings, error) {
	coachID = s.coachID(coachID)
	if err := domain.ValidateEarning(gross, commission); err != nil {
		return domain.CoachEarnings{}, err
	}
	var earnings domain.CoachEarnings
	err := s.run(ctx, "earnings_add", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			if err := s.ensureLedger(ctx, q, coachID, s.defaultRate()); err != nil {
				return err
			}
			row, err := q.AddCoachEarning(ctx, db.AddCoachEarningParams{
				CoachID:          coachID,
				GrossAmount:      gross,
				CommissionAmount: commission,
				NetAmount:        gross.Sub(commission),
				UpdatedAt:        timestamptz(s.now()),
			})
			if err != nil {
				return err
			}
			earnings = toCoachEarnings(row)
			return nil
		})
	})
	if err != nil {
		return earnings, err
	}
	s.metrics.Earned(gross, commission)
	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyEarningAdded,
		RecipientID: coachID,
		Reference:   coachID,
		Amount:      gross.Sub(commission),
		Attributes: map[string]string{
			"gross_amount":      gross.StringFixed(domain.MoneyPlaces),
			"commission_amount": commission.StringFixed(domain.MoneyPlaces),
		},
	})
	return earnings, nil
}

// RecordSale books a completed sale at the coach's current rate. A sale
// reference seen before returns the booked transaction unchanged.
func (s *EarningsService) RecordSale(ctx context.Context, in RecordSaleInput) (domain.SaleResult, error) {
	var result domain.SaleResult
	sale, err := s.parseSale(in)
	if err != nil {
		s.metrics.ObserveOperation("earnings_record_sale", outcome(err), 0)
		return result, err
	}

	err = s.run(ctx, "earnings_record_sale", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			if sale.SaleReference != "" {
				prior, err := q.GetEarningTransactionByReference(ctx, db.GetEarningTransactionByReferenceParams{
					CoachID:       sale.CoachID,
					SaleReference: text(sale.SaleReference),
				})
				switch {
				case err == nil:
					row, err := q.GetCoachEarnings(ctx, sale.CoachID)
					if err != nil {
						return err
					}
					result = domain.SaleResult{
						Earnings:    toCoachEarnings(row),
						Transaction: toEarningTransaction(prior),
						Replayed:    true,
					}
					return nil
				case !repository.IsNoRows(err):
					return err
				}
			}

			if err := s.ensureLedger(ctx, q, sale.CoachID, s.defaultRate()); err != nil {
				return err
			}
			ledger, err := q.GetCoachEarnings(ctx, sale.CoachID)
			if err != nil {
				return err
			}
			split, err := domain.ComputeCommission(sale.SaleType, sale.UnitPrice, sale.SessionCount, ledger.CommissionRate)
			if err != nil {
				return err
			}

			now := timestamptz(s.now())
			row, err := q.AddCoachEarning(ctx, db.AddCoachEarningParams{
				CoachID:          sale.CoachID,
				GrossAmount:      split.Gross,
				CommissionAmount: split.Commission,
				NetAmount:        split.Net,
				UpdatedAt:        now,
			})
			if err != nil {
				return err
			}
			tx, err := q.InsertEarningTransaction(ctx, db.InsertEarningTransactionParams{
				ID:               uuid.New(),
				CoachID:          sale.CoachID,
				SaleType:         string(sale.SaleType),
				SaleReference:    text(sale.SaleReference),
				SessionCount:     int32(sale.SessionCount),
				GrossAmount:      split.Gross,
				CommissionRate:   ledger.CommissionRate,
				CommissionAmount: split.Commission,
				NetAmount:        split.Net,
				Status:           domain.EarningCompleted,
				TransactionDate:  now,
			})
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: sale %s recorded concurrently", domain.ErrConcurrencyConflict, sale.SaleReference)
			}
			if err != nil {
				return err
			}
			result = domain.SaleResult{
				Earnings:    toCoachEarnings(row),
				Transaction: toEarningTransaction(tx),
			}
			return nil
		})
	})
	if err != nil || result.Replayed {
		return result, err
	}

	t := result.Transaction
	s.metrics.Earned(t.GrossAmount, t.CommissionAmount)
	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyEarningAdded,
		RecipientID: t.CoachID,
		Reference:   t.ID.String(),
		Amount:      t.NetAmount,
		Attributes: map[string]string{
			"sale_type":         string(t.SaleType),
			"sale_reference":    t.SaleReference,
			"gross_amount":      t.GrossAmount.StringFixed(domain.MoneyPlaces),
			"commission_amount": t.CommissionAmount.StringFixed(domain.MoneyPlaces),
		},
	})
	return result, nil
}

func (s *EarningsService) parseSale(in RecordSaleInput) (domain.Sale, error) {
	saleType, err := domain.ParseSaleType(in.SaleType)
	if err != nil {
		return domain.Sale{}, err
	}
	sessions := in.SessionCount
	if saleType != domain.SaleCourse {
		sessions = 1
	}
	if sessions < 1 {
		return domain.Sale{}, fmt.Errorf("%w: session count must be at least 1", domain.ErrValidation)
	}
	if err := domain.ValidateAmount("unit price", in.UnitPrice); err != nil {
		return domain.Sale{}, err
	}
	return domain.Sale{
		CoachID:       s.coachID(in.CoachID),
		SaleType:      saleType,
		UnitPrice:     in.UnitPrice,
		SessionCount:  sessions,
		SaleReference: strings.TrimSpace(in.SaleReference),
	}, nil
}

func (s *EarningsService) ListEarningTransactions(ctx context.Context, coachID string) ([]domain.EarningTransaction, error) {
	coachID = s.coachID(coachID)
	txns := []domain.EarningTransaction{}
	err := s.run(ctx, "earnings_transactions", func(ctx context.Context) error {
		rows, err := s.store.ListEarningTransactions(ctx, coachID)
		if err != nil {
			return err
		}
		txns = txns[:0]
		for _, row := range rows {
			txns = append(txns, toEarningTransaction(row))
		}
		return nil
	})
	return txns, err
}
