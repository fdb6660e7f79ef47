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

type WithdrawalService struct {
	*core
}

type RequestWithdrawalInput struct {
	CoachID        string
	Amount         decimal.Decimal
	PaymentMethod  string
	PaymentDetails string
	IdempotencyKey string
}

type ResolveWithdrawalInput struct {
	ID          uuid.UUID
	Status      domain.WithdrawalStatus
	ProcessedBy string
	Note        string
}

// RequestWithdrawal reserves amount from the available balance and opens a
// pending request. The balance is deducted here and nowhere else.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, in RequestWithdrawalInput) (domain.WithdrawalResult, error) {
	var result domain.WithdrawalResult
	coachID := strings.TrimSpace(in.CoachID)
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err == nil && coachID == "" {
		err = fmt.Errorf("%w: coach id is required", domain.ErrValidation)
	}
	if err == nil {
		err = domain.ValidateAmount("amount", in.Amount)
	}
	if err != nil {
		s.metrics.ObserveOperation("withdrawal_request", outcome(err), 0)
		return result, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	err = s.run(ctx, "withdrawal_request", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			if key != "" {
				prior, err := q.GetWithdrawalRequestByKey(ctx, text(key))
				switch {
				case err == nil:
					if prior.CoachID != coachID || !prior.Amount.Equal(in.Amount) {
						return fmt.Errorf("%w: idempotency key %s was already used for a different withdrawal", domain.ErrValidation, key)
					}
					return replayWithdrawal(ctx, q, prior, &result)
				case !repository.IsNoRows(err):
					return err
				}
			}

			if _, err := q.GetCoachEarnings(ctx, coachID); err != nil {
				return notFound(err, "earnings for coach %s", coachID)
			}
			now := timestamptz(s.now())
			earnings, err := q.ReserveBalance(ctx, db.ReserveBalanceParams{
				CoachID:   coachID,
				Amount:    in.Amount,
				UpdatedAt: now,
			})
			if repository.IsNoRows(err) {
				return fmt.Errorf("%w: withdrawal of %s exceeds the available balance", domain.ErrInsufficientFunds, in.Amount.StringFixed(domain.MoneyPlaces))
			}
			if err != nil {
				return err
			}
			req, err := q.CreateWithdrawalRequest(ctx, db.CreateWithdrawalRequestParams{
				ID:             uuid.New(),
				CoachID:        coachID,
				Amount:         in.Amount,
				PaymentMethod:  string(method),
				PaymentDetails: in.PaymentDetails,
				RequestDate:    now,
				IdempotencyKey: text(key),
			})
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: withdrawal %s recorded concurrently", domain.ErrConcurrencyConflict, key)
			}
			if err != nil {
				return err
			}
			result = domain.WithdrawalResult{
				Request:  toWithdrawalRequest(req),
				Earnings: toCoachEarnings(earnings),
			}
			return nil
		})
	})
	if err != nil || result.Replayed {
		return result, err
	}

	s.notify(ctx, domain.Notification{
		Kind:        domain.NotifyWithdrawalRequested,
		RecipientID: coachID,
		Reference:   result.Request.ID.String(),
		Amount:      result.Request.Amount,
		Attributes: map[string]string{
			"payment_method": string(method),
		},
	})
	return result, nil
}

func (s *WithdrawalService) Approve(ctx context.Context, id uuid.UUID, processedBy, note string) (domain.WithdrawalResult, error) {
	return s.Resolve(ctx, ResolveWithdrawalInput{
		ID:          id,
		Status:      domain.WithdrawalApproved,
		ProcessedBy: processedBy,
		Note:        note,
	})
}

func (s *WithdrawalService) Reject(ctx context.Context, id uuid.UUID, processedBy, reason string) (domain.WithdrawalResult, error) {
	return s.Resolve(ctx, ResolveWithdrawalInput{
		ID:          id,
		Status:      domain.WithdrawalRejected,
		ProcessedBy: processedBy,
		Note:        reason,
	})
}

// Resolve moves a pending request to a terminal state. Approval books the
// reserved amount as withdrawn; rejection returns it to the available
// balance. Resolving to the state a request already has is a replay.
func (s *WithdrawalService) Resolve(ctx context.Context, in ResolveWithdrawalInput) (domain.WithdrawalResult, error) {
	var result domain.WithdrawalResult
	target, err := domain.ParseResolution(string(in.Status))
	if err == nil && strings.TrimSpace(in.ProcessedBy) == "" {
		err = fmt.Errorf("%w: processed by is required", domain.ErrValidation)
	}
	if err == nil && target == domain.WithdrawalRejected && strings.TrimSpace(in.Note) == "" {
		err = fmt.Errorf("%w: a rejection reason is required", domain.ErrValidation)
	}
	if err != nil {
		s.metrics.ObserveOperation("withdrawal_resolve", outcome(err), 0)
		return result, err
	}

	err = s.run(ctx, "withdrawal_resolve", func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			row, err := q.GetWithdrawalRequest(ctx, in.ID)
			if err != nil {
				return notFound(err, "withdrawal %s", in.ID)
			}
			current := toWithdrawalRequest(row)
			replay, err := current.CheckResolve(target)
			if err != nil {
				return err
			}
			if replay {
				return replayWithdrawal(ctx, q, row, &result)
			}

			now := timestamptz(s.now())
			row, err = q.ResolveWithdrawalRequest(ctx, db.ResolveWithdrawalRequestParams{
				ID:            in.ID,
				Status:        string(target),
				ProcessedDate: now,
				ProcessedBy:   text(strings.TrimSpace(in.ProcessedBy)),
				Note:          text(strings.TrimSpace(in.Note)),
			})
			if repository.IsNoRows(err) {
				return fmt.Errorf("%w: withdrawal %s was resolved concurrently", domain.ErrConcurrencyConflict, in.ID)
			}
			if err != nil {
				return err
			}

			var earnings db.CoachEarning
			if target == domain.WithdrawalApproved {
				earnings, err = q.RecordWithdrawal(ctx, db.RecordWithdrawalParams{
					CoachID:   row.CoachID,
					Amount:    row.Amount,
					UpdatedAt: now,
				})
			} else {
				earnings, err = q.ReleaseReservation(ctx, db.ReleaseReservationParams{
					CoachID:   row.CoachID,
					Amount:    row.Amount,
					UpdatedAt: now,
				})
			}
			if err != nil {
				return err
			}
			result = domain.WithdrawalResult{
				Request:  toWithdrawalRequest(row),
				Earnings: toCoachEarnings(earnings),
			}
			return nil
		})
	})
	if err != nil || result.Replayed {
		return result, err
	}

	kind := domain.NotifyWithdrawalApproved
	if target == domain.WithdrawalRejected {
		kind = domain.NotifyWithdrawalRejected
	}
	s.notify(ctx, domain.Notification{
		Kind:        kind,
		RecipientID: result.Request.CoachID,
		Reference:   result.Request.ID.String(),
		Amount:      result.Request.Amount,
		Attributes: map[string]string{
			"processed_by": result.Request.ProcessedBy,
			"note":         result.Request.Note,
		},
	})
	return result, nil
}

func (s *WithdrawalService) GetWithdrawalRequest(ctx context.Context, id uuid.UUID) (domain.WithdrawalRequest, error) {
	var req domain.WithdrawalRequest
	err := s.run(ctx, "withdrawal_get", func(ctx context.Context) error {
		row, err := s.store.GetWithdrawalRequest(ctx, id)
		if err != nil {
			return notFound(err, "withdrawal %s", id)
		}
		req = toWithdrawalRequest(row)
		return nil
	})
	return req, err
}

func (s *WithdrawalService) ListWithdrawalRequests(ctx context.Context, f domain.WithdrawalFilter) ([]domain.WithdrawalRequest, error) {
	if f.Status != "" {
		st, err := domain.ParseWithdrawalStatus(string(f.Status))
		if err != nil {
			return nil, err
		}
		f.Status = st
	}
	reqs := []domain.WithdrawalRequest{}
	err := s.run(ctx, "withdrawal_list", func(ctx context.Context) error {
		rows, err := s.store.ListWithdrawalRequests(ctx, db.ListWithdrawalRequestsParams{
			CoachID: text(strings.TrimSpace(f.CoachID)),
			Status:  text(string(f.Status)),
		})
		if err != nil {
			return err
		}
		reqs = reqs[:0]
		for _, row := range rows {
			reqs = append(reqs, toWithdrawalRequest(row))
		}
		return nil
	})
	return reqs, err
}

func replayWithdrawal(ctx context.Context, q repository.Querier, req db.WithdrawalRequest, out *domain.WithdrawalResult) error {
	earnings, err := q.GetCoachEarnings(ctx, req.CoachID)
	if err != nil {
		return err
	}
	*out = domain.WithdrawalResult{
		Request:  toWithdrawalRequest(req),
		Earnings: toCoachEarnings(earnings),
		Replayed: true,
	}
	return nil
}
