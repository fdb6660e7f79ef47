package repository

import (
	"context"
	"fmt"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs ledger queries. ExecTx wraps fn in a read-write transaction that
// commits only when fn returns nil; ReadTx uses a read-only one.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
	ReadTx(ctx context.Context, fn func(Querier) error) error
}

type Querier interface {
	CreateGiftCard(ctx context.Context, arg db.CreateGiftCardParams) (db.GiftCard, error)
	GetGiftCardByCode(ctx context.Context, code string) (db.GiftCard, error)
	GetGiftCardByID(ctx context.Context, id uuid.UUID) (db.GiftCard, error)
	ListGiftCardsByIssuer(ctx context.Context, issuerID string) ([]db.GiftCard, error)
	UpdateGiftCardBalance(ctx context.Context, arg db.UpdateGiftCardBalanceParams) (int64, error)
	SetGiftCardActive(ctx context.Context, arg db.SetGiftCardActiveParams) (db.GiftCard, error)
	DeleteGiftCard(ctx context.Context, id uuid.UUID) (int64, error)
	CountGiftCardTransactions(ctx context.Context, giftCardID uuid.UUID) (int64, error)
	InsertGiftCardTransaction(ctx context.Context, arg db.InsertGiftCardTransactionParams) (db.GiftCardTransaction, error)
	GetGiftCardTransactionByKey(ctx context.Context, idempotencyKey pgtype.Text) (db.GiftCardTransaction, error)
	ListGiftCardTransactions(ctx context.Context, giftCardID uuid.UUID) ([]db.GiftCardTransaction, error)

	CreateDiscountCard(ctx context.Context, arg db.CreateDiscountCardParams) (db.DiscountCard, error)
	GetDiscountCardByCode(ctx context.Context, code string) (db.DiscountCard, error)
	GetDiscountCardByID(ctx context.Context, id uuid.UUID) (db.DiscountCard, error)
	ListDiscountCardsByCoach(ctx context.Context, coachID string) ([]db.DiscountCard, error)
	UpdateDiscountCardTerms(ctx context.Context, arg db.UpdateDiscountCardTermsParams) (int64, error)
	IncrementDiscountUsage(ctx context.Context, arg db.IncrementDiscountUsageParams) (db.DiscountCard, error)
	InsertDiscountRedemption(ctx context.Context, arg db.InsertDiscountRedemptionParams) (db.DiscountRedemption, error)
	GetDiscountRedemptionByKey(ctx context.Context, idempotencyKey pgtype.Text) (db.DiscountRedemption, error)

	InitCoachEarnings(ctx context.Context, arg db.InitCoachEarningsParams) (int64, error)
	GetCoachEarnings(ctx context.Context, coachID string) (db.CoachEarning, error)
	AddCoachEarning(ctx context.Context, arg db.AddCoachEarningParams) (db.CoachEarning, error)
	UpdateCommissionRate(ctx context.Context, arg db.UpdateCommissionRateParams) (db.CoachEarning, error)
	ReserveBalance(ctx context.Context, arg db.ReserveBalanceParams) (db.CoachEarning, error)
	ReleaseReservation(ctx context.Context, arg db.ReleaseReservationParams) (db.CoachEarning, error)
	RecordWithdrawal(ctx context.Context, arg db.RecordWithdrawalParams) (db.CoachEarning, error)
	InsertEarningTransaction(ctx context.Context, arg db.InsertEarningTransactionParams) (db.EarningTransaction, error)
	GetEarningTransactionByReference(ctx context.Context, arg db.GetEarningTransactionByReferenceParams) (db.EarningTransaction, error)
	ListEarningTransactions(ctx context.Context, coachID string) ([]db.EarningTransaction, error)

	CreateWithdrawalRequest(ctx context.Context, arg db.CreateWithdrawalRequestParams) (db.WithdrawalRequest, error)
	GetWithdrawalRequest(ctx context.Context, id uuid.UUID) (db.WithdrawalRequest, error)
	GetWithdrawalRequestByKey(ctx context.Context, idempotencyKey pgtype.Text) (db.WithdrawalRequest, error)
	ResolveWithdrawalRequest(ctx context.Context, arg db.ResolveWithdrawalRequestParams) (db.WithdrawalRequest, error)
	ListWithdrawalRequests(ctx context.Context, arg db.ListWithdrawalRequestsParams) ([]db.WithdrawalRequest, error)
}

var _ Querier = (*db.Queries)(nil)

type store struct {
	*db.Queries
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) Store {
	return &store{
		Queries: db.New(pool),
		pool:    pool,
	}
}

func (s *store) ExecTx(ctx context.Context, fn func(Querier) error) error {
	return s.runTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (s *store) ReadTx(ctx context.Context, fn func(Querier) error) error {
	return s.runTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadOnly}, fn)
}

func (s *store) runTx(ctx context.Context, opts pgx.TxOptions, fn func(Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	q := s.Queries.WithTx(tx)
	if err := fn(q); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %w, rollback err: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
