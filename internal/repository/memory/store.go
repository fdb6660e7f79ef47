// Package memory is an in-process repository.Store. Transactions are
// serialized and applied to a private copy of the data that replaces the
// shared state only on commit.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type state struct {
	giftCards     map[uuid.UUID]db.GiftCard
	giftCardTxns  []db.GiftCardTransaction
	discountCards map[uuid.UUID]db.DiscountCard
	redemptions   []db.DiscountRedemption
	earnings      map[string]db.CoachEarning
	earningTxns   []db.EarningTransaction
	withdrawals   map[uuid.UUID]db.WithdrawalRequest
}

func newState() *state {
	return &state{
		giftCards:     map[uuid.UUID]db.GiftCard{},
		discountCards: map[uuid.UUID]db.DiscountCard{},
		earnings:      map[string]db.CoachEarning{},
		withdrawals:   map[uuid.UUID]db.WithdrawalRequest{},
	}
}

func (s *state) clone() *state {
	c := &state{
		giftCards:     make(map[uuid.UUID]db.GiftCard, len(s.giftCards)),
		giftCardTxns:  slices.Clone(s.giftCardTxns),
		discountCards: make(map[uuid.UUID]db.DiscountCard, len(s.discountCards)),
		redemptions:   slices.Clone(s.redemptions),
		earnings:      make(map[string]db.CoachEarning, len(s.earnings)),
		earningTxns:   slices.Clone(s.earningTxns),
		withdrawals:   make(map[uuid.UUID]db.WithdrawalRequest, len(s.withdrawals)),
	}
	for k, v := range s.giftCards {
		c.giftCards[k] = v
	}
	for k, v := range s.discountCards {
		c.discountCards[k] = v
	}
	for k, v := range s.earnings {
		c.earnings[k] = v
	}
	for k, v := range s.withdrawals {
		c.withdrawals[k] = v
	}
	return c
}

type Store struct {
	*queries
	mu    sync.RWMutex
	state *state
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	s := &Store{state: newState()}
	s.queries = &queries{run: s.autocommit}
	return s
}

func (s *Store) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&queries{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) ReadTx(ctx context.Context, fn func(repository.Querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(&queries{st: snapshot})
}

// autocommit runs a single statement outside an explicit transaction.
func (s *Store) autocommit(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

// queries evaluates statements either against a transaction's working copy
// (st) or, for the Store itself, through run.
type queries struct {
	st  *state
	run func(func(*state) error) error
}

func (q *queries) do(fn func(*state) error) error {
	if q.st != nil {
		return fn(q.st)
	}
	return q.run(fn)
}

func checkViolation(constraint string) error {
	return &pgconn.PgError{Severity: "ERROR", Code: "23514", Message: "new row violates check constraint \"" + constraint + "\"", ConstraintName: constraint}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Severity: "ERROR", Code: "23503", Message: "insert or update violates foreign key constraint \"" + constraint + "\"", ConstraintName: constraint}
}

func sameKey(a, b pgtype.Text) bool {
	return a.Valid && b.Valid && a.String == b.String
}

// Gift cards

func (q *queries) CreateGiftCard(_ context.Context, arg db.CreateGiftCardParams) (db.GiftCard, error) {
	var out db.GiftCard
	err := q.do(func(st *state) error {
		for _, g := range st.giftCards {
			if g.Code == arg.Code {
				return repository.UniqueViolation("gift_cards_code_key")
			}
		}
		if !arg.TotalAmount.IsPositive() {
			return checkViolation("gift_cards_total_amount_check")
		}
		out = db.GiftCard{
			ID:              arg.ID,
			Code:            arg.Code,
			IssuerID:        arg.IssuerID,
			IssuerType:      arg.IssuerType,
			BusinessName:    arg.BusinessName,
			TotalAmount:     arg.TotalAmount,
			RemainingAmount: arg.TotalAmount,
			IsActive:        true,
			ExpirationDate:  arg.ExpirationDate,
			CreatedAt:       arg.CreatedAt,
			UpdatedAt:       arg.CreatedAt,
		}
		st.giftCards[out.ID] = out
		return nil
	})
	return out, err
}

func (q *queries) GetGiftCardByCode(_ context.Context, code string) (db.GiftCard, error) {
	var out db.GiftCard
	err := q.do(func(st *state) error {
		for _, g := range st.giftCards {
			if g.Code == code {
				out = g
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (q *queries) GetGiftCardByID(_ context.Context, id uuid.UUID) (db.GiftCard, error) {
	var out db.GiftCard
	err := q.do(func(st *state) error {
		g, ok := st.giftCards[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = g
		return nil
	})
	return out, err
}

func (q *queries) ListGiftCardsByIssuer(_ context.Context, issuerID string) ([]db.GiftCard, error) {
	var out []db.GiftCard
	err := q.do(func(st *state) error {
		for _, g := range st.giftCards {
			if g.IssuerID == issuerID {
				out = append(out, g)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time)
		})
		return nil
	})
	return out, err
}

func (q *queries) UpdateGiftCardBalance(_ context.Context, arg db.UpdateGiftCardBalanceParams) (int64, error) {
	var n int64
	err := q.do(func(st *state) error {
		g, ok := st.giftCards[arg.ID]
		if !ok || g.Version != arg.Version {
			return nil
		}
		if arg.RemainingAmount.IsNegative() || arg.RemainingAmount.GreaterThan(g.TotalAmount) {
			return checkViolation("gift_cards_remaining_bounds")
		}
		if arg.IsUsed != arg.RemainingAmount.IsZero() {
			return checkViolation("gift_cards_used_flag")
		}
		g.RemainingAmount = arg.RemainingAmount
		g.IsUsed = arg.IsUsed
		g.UsedBy = arg.UsedBy
		g.UsedByName = arg.UsedByName
		g.UsedAt = arg.UsedAt
		g.Version++
		g.UpdatedAt = arg.UpdatedAt
		st.giftCards[g.ID] = g
		n = 1
		return nil
	})
	return n, err
}

func (q *queries) SetGiftCardActive(_ context.Context, arg db.SetGiftCardActiveParams) (db.GiftCard, error) {
	var out db.GiftCard
	err := q.do(func(st *state) error {
		g, ok := st.giftCards[arg.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		g.IsActive = arg.IsActive
		g.Version++
		g.UpdatedAt = arg.UpdatedAt
		st.giftCards[g.ID] = g
		out = g
		return nil
	})
	return out, err
}

func (q *queries) DeleteGiftCard(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := q.do(func(st *state) error {
		if _, ok := st.giftCards[id]; !ok {
			return nil
		}
		for _, t := range st.giftCardTxns {
			if t.GiftCardID == id {
				return nil
			}
		}
		delete(st.giftCards, id)
		n = 1
		return nil
	})
	return n, err
}

func (q *queries) CountGiftCardTransactions(_ context.Context, giftCardID uuid.UUID) (int64, error) {
	var n int64
	err := q.do(func(st *state) error {
		for _, t := range st.giftCardTxns {
			if t.GiftCardID == giftCardID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (q *queries) InsertGiftCardTransaction(_ context.Context, arg db.InsertGiftCardTransactionParams) (db.GiftCardTransaction, error) {
	var out db.GiftCardTransaction
	err := q.do(func(st *state) error {
		if _, ok := st.giftCards[arg.GiftCardID]; !ok {
			return foreignKeyViolation("gift_card_transactions_gift_card_id_fkey")
		}
		for _, t := range st.giftCardTxns {
			if sameKey(t.IdempotencyKey, arg.IdempotencyKey) {
				return repository.UniqueViolation("gift_card_transactions_idempotency_key_key")
			}
		}
		out = db.GiftCardTransaction(arg)
		st.giftCardTxns = append(st.giftCardTxns, out)
		return nil
	})
	return out, err
}

func (q *queries) GetGiftCardTransactionByKey(_ context.Context, key pgtype.Text) (db.GiftCardTransaction, error) {
	var out db.GiftCardTransaction
	err := q.do(func(st *state) error {
		for _, t := range st.giftCardTxns {
			if sameKey(t.IdempotencyKey, key) {
				out = t
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (q *queries) ListGiftCardTransactions(_ context.Context, giftCardID uuid.UUID) ([]db.GiftCardTransaction, error) {
	var out []db.GiftCardTransaction
	err := q.do(func(st *state) error {
		for _, t := range st.giftCardTxns {
			if t.GiftCardID == giftCardID {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

// Discount cards

func (q *queries) CreateDiscountCard(_ context.Context, arg db.CreateDiscountCardParams) (db.DiscountCard, error) {
	var out db.DiscountCard
	err := q.do(func(st *state) error {
		for _, c := range st.discountCards {
			if c.Code == arg.Code {
				return repository.UniqueViolation("discount_cards_code_key")
			}
		}
		out = db.DiscountCard{
			ID:             arg.ID,
			Code:           arg.Code,
			CoachID:        arg.CoachID,
			Description:    arg.Description,
			MemberName:     arg.MemberName,
			AdvantageType:  arg.AdvantageType,
			AdvantageValue: arg.AdvantageValue,
			ExpiryDate:     arg.ExpiryDate,
			UsageLimit:     arg.UsageLimit,
			IsActive:       true,
			CreatedAt:      arg.CreatedAt,
			UpdatedAt:      arg.CreatedAt,
		}
		st.discountCards[out.ID] = out
		return nil
	})
	return out, err
}

func (q *queries) GetDiscountCardByCode(_ context.Context, code string) (db.DiscountCard, error) {
	var out db.DiscountCard
	err := q.do(func(st *state) error {
		for _, c := range st.discountCards {
			if c.Code == code {
				out = c
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (q *queries) GetDiscountCardByID(_ context.Context, id uuid.UUID) (db.DiscountCard, error) {
	var out db.DiscountCard
	err := q.do(func(st *state) error {
		c, ok := st.discountCards[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = c
		return nil
	})
	return out, err
}

func (q *queries) ListDiscountCardsByCoach(_ context.Context, coachID string) ([]db.DiscountCard, error) {
	var out []db.DiscountCard
	err := q.do(func(st *state) error {
		for _, c := range st.discountCards {
			if c.CoachID == coachID {
				out = append(out, c)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time)
		})
		return nil
	})
	return out, err
}

func (q *queries) UpdateDiscountCardTerms(_ context.Context, arg db.UpdateDiscountCardTermsParams) (int64, error) {
	var n int64
	err := q.do(func(st *state) error {
		c, ok := st.discountCards[arg.ID]
		if !ok || c.Version != arg.Version || c.UsageCount != 0 {
			return nil
		}
		c.Description = arg.Description
		c.MemberName = arg.MemberName
		c.AdvantageType = arg.AdvantageType
		c.AdvantageValue = arg.AdvantageValue
		c.ExpiryDate = arg.ExpiryDate
		c.UsageLimit = arg.UsageLimit
		c.Version++
		c.UpdatedAt = arg.UpdatedAt
		st.discountCards[c.ID] = c
		n = 1
		return nil
	})
	return n, err
}

func (q *queries) IncrementDiscountUsage(_ context.Context, arg db.IncrementDiscountUsageParams) (db.DiscountCard, error) {
	var out db.DiscountCard
	err := q.do(func(st *state) error {
		c, ok := st.discountCards[arg.ID]
		if !ok || c.Version != arg.Version || !c.IsActive {
			return pgx.ErrNoRows
		}
		if c.UsageLimit.Valid && c.UsageCount >= c.UsageLimit.Int32 {
			return pgx.ErrNoRows
		}
		c.UsageCount++
		c.IsActive = !c.UsageLimit.Valid || c.UsageCount < c.UsageLimit.Int32
		c.Version++
		c.UpdatedAt = arg.UpdatedAt
		st.discountCards[c.ID] = c
		out = c
		return nil
	})
	return out, err
}

func (q *queries) InsertDiscountRedemption(_ context.Context, arg db.InsertDiscountRedemptionParams) (db.DiscountRedemption, error) {
	var out db.DiscountRedemption
	err := q.do(func(st *state) error {
		if _, ok := st.discountCards[arg.DiscountCardID]; !ok {
			return foreignKeyViolation("discount_redemptions_discount_card_id_fkey")
		}
		for _, r := range st.redemptions {
			if sameKey(r.IdempotencyKey, arg.IdempotencyKey) {
				return repository.UniqueViolation("discount_redemptions_idempotency_key_key")
			}
		}
		out = db.DiscountRedemption(arg)
		st.redemptions = append(st.redemptions, out)
		return nil
	})
	return out, err
}

func (q *queries) GetDiscountRedemptionByKey(_ context.Context, key pgtype.Text) (db.DiscountRedemption, error) {
	var out db.DiscountRedemption
	err := q.do(func(st *state) error {
		for _, r := range st.redemptions {
			if sameKey(r.IdempotencyKey, key) {
				out = r
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

// Earnings

func (q *queries) InitCoachEarnings(_ context.Context, arg db.InitCoachEarningsParams) (int64, error) {
	var n int64
	err := q.do(func(st *state) error {
		if _, ok := st.earnings[arg.CoachID]; ok {
			return nil
		}
		st.earnings[arg.CoachID] = db.CoachEarning{
			CoachID:                 arg.CoachID,
			TotalEarnings:           decimal.Zero,
			TotalCommissionDeducted: decimal.Zero,
			NetEarnings:             decimal.Zero,
			AvailableBalance:        decimal.Zero,
			TotalWithdrawn:          decimal.Zero,
			CommissionRate:          arg.CommissionRate,
			CreatedAt:               arg.CreatedAt,
			UpdatedAt:               arg.CreatedAt,
		}
		n = 1
		return nil
	})
	return n, err
}

func (q *queries) GetCoachEarnings(_ context.Context, coachID string) (db.CoachEarning, error) {
	var out db.CoachEarning
	err := q.do(func(st *state) error {
		e, ok := st.earnings[coachID]
		if !ok {
			return pgx.ErrNoRows
		}
		out = e
		return nil
	})
	return out, err
}

// updateEarnings applies fn to one ledger row, like an UPDATE ... RETURNING
// whose WHERE clause is cond.
func (q *queries) updateEarnings(coachID string, cond func(db.CoachEarning) bool, fn func(*db.CoachEarning)) (db.CoachEarning, error) {
	var out db.CoachEarning
	err := q.do(func(st *state) error {
		e, ok := st.earnings[coachID]
		if !ok || (cond != nil && !cond(e)) {
			return pgx.ErrNoRows
		}
		fn(&e)
		if e.AvailableBalance.IsNegative() {
			return checkViolation("coach_earnings_available_balance_check")
		}
		if !e.TotalEarnings.Equal(e.TotalCommissionDeducted.Add(e.NetEarnings)) {
			return checkViolation("coach_earnings_conservation")
		}
		st.earnings[coachID] = e
		out = e
		return nil
	})
	return out, err
}

func (q *queries) AddCoachEarning(_ context.Context, arg db.AddCoachEarningParams) (db.CoachEarning, error) {
	return q.updateEarnings(arg.CoachID, nil, func(e *db.CoachEarning) {
		e.TotalEarnings = e.TotalEarnings.Add(arg.GrossAmount)
		e.TotalCommissionDeducted = e.TotalCommissionDeducted.Add(arg.CommissionAmount)
		e.NetEarnings = e.NetEarnings.Add(arg.NetAmount)
		e.AvailableBalance = e.AvailableBalance.Add(arg.NetAmount)
		e.UpdatedAt = arg.UpdatedAt
	})
}

func (q *queries) UpdateCommissionRate(_ context.Context, arg db.UpdateCommissionRateParams) (db.CoachEarning, error) {
	return q.updateEarnings(arg.CoachID, nil, func(e *db.CoachEarning) {
		e.CommissionRate = arg.CommissionRate
		e.UpdatedAt = arg.UpdatedAt
	})
}

func (q *queries) ReserveBalance(_ context.Context, arg db.ReserveBalanceParams) (db.CoachEarning, error) {
	return q.updateEarnings(arg.CoachID,
		func(e db.CoachEarning) bool { return e.AvailableBalance.GreaterThanOrEqual(arg.Amount) },
		func(e *db.CoachEarning) {
			e.AvailableBalance = e.AvailableBalance.Sub(arg.Amount)
			e.UpdatedAt = arg.UpdatedAt
		})
}

func (q *queries) ReleaseReservation(_ context.Context, arg db.ReleaseReservationParams) (db.CoachEarning, error) {
	return q.updateEarnings(arg.CoachID, nil, func(e *db.CoachEarning) {
		e.AvailableBalance = e.AvailableBalance.Add(arg.Amount)
		e.UpdatedAt = arg.UpdatedAt
	})
}

func (q *queries) RecordWithdrawal(_ context.Context, arg db.RecordWithdrawalParams) (db.CoachEarning, error) {
	return q.updateEarnings(arg.CoachID, nil, func(e *db.CoachEarning) {
		e.TotalWithdrawn = e.TotalWithdrawn.Add(arg.Amount)
		e.UpdatedAt = arg.UpdatedAt
	})
}

func (q *queries) InsertEarningTransaction(_ context.Context, arg db.InsertEarningTransactionParams) (db.EarningTransaction, error) {
	var out db.EarningTransaction
	err := q.do(func(st *state) error {
		if _, ok := st.earnings[arg.CoachID]; !ok {
			return foreignKeyViolation("earning_transactions_coach_id_fkey")
		}
		for _, t := range st.earningTxns {
			if t.CoachID == arg.CoachID && sameKey(t.SaleReference, arg.SaleReference) {
				return repository.UniqueViolation("earning_transactions_sale_reference_key")
			}
		}
		out = db.EarningTransaction(arg)
		st.earningTxns = append(st.earningTxns, out)
		return nil
	})
	return out, err
}

func (q *queries) GetEarningTransactionByReference(_ context.Context, arg db.GetEarningTransactionByReferenceParams) (db.EarningTransaction, error) {
	var out db.EarningTransaction
	err := q.do(func(st *state) error {
		for _, t := range st.earningTxns {
			if t.CoachID == arg.CoachID && sameKey(t.SaleReference, arg.SaleReference) {
				out = t
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (q *queries) ListEarningTransactions(_ context.Context, coachID string) ([]db.EarningTransaction, error) {
	var out []db.EarningTransaction
	err := q.do(func(st *state) error {
		for _, t := range st.earningTxns {
			if t.CoachID == coachID {
				out = append(out, t)
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].TransactionDate.Time.After(out[j].TransactionDate.Time)
		})
		return nil
	})
	return out, err
}

// Withdrawals

func (q *queries) CreateWithdrawalRequest(_ context.Context, arg db.CreateWithdrawalRequestParams) (db.WithdrawalRequest, error) {
	var out db.WithdrawalRequest
	err := q.do(func(st *state) error {
		if _, ok := st.earnings[arg.CoachID]; !ok {
			return foreignKeyViolation("withdrawal_requests_coach_id_fkey")
		}
		for _, w := range st.withdrawals {
			if sameKey(w.IdempotencyKey, arg.IdempotencyKey) {
				return repository.UniqueViolation("withdrawal_requests_idempotency_key_key")
			}
		}
		out = db.WithdrawalRequest{
			ID:             arg.ID,
			CoachID:        arg.CoachID,
			Amount:         arg.Amount,
			PaymentMethod:  arg.PaymentMethod,
			PaymentDetails: arg.PaymentDetails,
			Status:         "pending",
			RequestDate:    arg.RequestDate,
			IdempotencyKey: arg.IdempotencyKey,
		}
		st.withdrawals[out.ID] = out
		return nil
	})
	return out, err
}

func (q *queries) GetWithdrawalRequest(_ context.Context, id uuid.UUID) (db.WithdrawalRequest, error) {
	var out db.WithdrawalRequest
	err := q.do(func(st *state) error {
		w, ok := st.withdrawals[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = w
		return nil
	})
	return out, err
}

func (q *queries) GetWithdrawalRequestByKey(_ context.Context, key pgtype.Text) (db.WithdrawalRequest, error) {
	var out db.WithdrawalRequest
	err := q.do(func(st *state) error {
		for _, w := range st.withdrawals {
			if sameKey(w.IdempotencyKey, key) {
				out = w
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (q *queries) ResolveWithdrawalRequest(_ context.Context, arg db.ResolveWithdrawalRequestParams) (db.WithdrawalRequest, error) {
	var out db.WithdrawalRequest
	err := q.do(func(st *state) error {
		w, ok := st.withdrawals[arg.ID]
		if !ok || w.Status != "pending" {
			return pgx.ErrNoRows
		}
		w.Status = arg.Status
		w.ProcessedDate = arg.ProcessedDate
		w.ProcessedBy = arg.ProcessedBy
		w.Note = arg.Note
		st.withdrawals[w.ID] = w
		out = w
		return nil
	})
	return out, err
}

func (q *queries) ListWithdrawalRequests(_ context.Context, arg db.ListWithdrawalRequestsParams) ([]db.WithdrawalRequest, error) {
	var out []db.WithdrawalRequest
	err := q.do(func(st *state) error {
		for _, w := range st.withdrawals {
			if arg.CoachID.Valid && w.CoachID != arg.CoachID.String {
				continue
			}
			if arg.Status.Valid && w.Status != arg.Status.String {
				continue
			}
			out = append(out, w)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].RequestDate.Time.Equal(out[j].RequestDate.Time) {
				return out[i].ID.String() < out[j].ID.String()
			}
			return out[i].RequestDate.Time.After(out[j].RequestDate.Time)
		})
		return nil
	})
	return out, err
}
