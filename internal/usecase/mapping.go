package usecase

import (
	"fmt"
	"time"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timestamptz(*t)
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func int4(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

func intPtr(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

func toGiftCard(g db.GiftCard) domain.GiftCard {
	return domain.GiftCard{
		ID:              g.ID,
		Code:            g.Code,
		IssuerID:        g.IssuerID,
		IssuerType:      domain.IssuerType(g.IssuerType),
		BusinessName:    g.BusinessName,
		TotalAmount:     g.TotalAmount,
		RemainingAmount: g.RemainingAmount,
		IsActive:        g.IsActive,
		IsUsed:          g.IsUsed,
		ExpirationDate:  timePtr(g.ExpirationDate),
		UsedBy:          g.UsedBy.String,
		UsedByName:      g.UsedByName.String,
		UsedAt:          timePtr(g.UsedAt),
		Version:         g.Version,
		CreatedAt:       g.CreatedAt.Time,
		UpdatedAt:       g.UpdatedAt.Time,
	}
}

func toGiftCardTransaction(t db.GiftCardTransaction) domain.GiftCardTransaction {
	return domain.GiftCardTransaction{
		ID:              t.ID,
		GiftCardID:      t.GiftCardID,
		CustomerID:      t.CustomerID,
		CustomerName:    t.CustomerName,
		AmountUsed:      t.AmountUsed,
		BalanceAfter:    t.BalanceAfter,
		Kind:            domain.RedemptionKind(t.Kind),
		TransactionType: domain.TransactionType(t.TransactionType),
		OrderID:         t.OrderID.String,
		BookingID:       t.BookingID.String,
		IdempotencyKey:  t.IdempotencyKey.String,
		CreatedAt:       t.CreatedAt.Time,
	}
}

func toDiscountCard(c db.DiscountCard) (domain.DiscountCard, error) {
	advantage, err := domain.NewAdvantage(domain.AdvantageType(c.AdvantageType), c.AdvantageValue)
	if err != nil {
		return domain.DiscountCard{}, fmt.Errorf("%w: discount card %s has a corrupt advantage: %v", domain.ErrInternalFault, c.Code, err)
	}
	return domain.DiscountCard{
		ID:          c.ID,
		Code:        c.Code,
		CoachID:     c.CoachID,
		Description: c.Description,
		MemberName:  c.MemberName,
		Advantage:   advantage,
		ExpiryDate:  timePtr(c.ExpiryDate),
		UsageCount:  int(c.UsageCount),
		UsageLimit:  intPtr(c.UsageLimit),
		IsActive:    c.IsActive,
		Version:     c.Version,
		CreatedAt:   c.CreatedAt.Time,
		UpdatedAt:   c.UpdatedAt.Time,
	}, nil
}

func toDiscountRedemption(r db.DiscountRedemption) domain.DiscountRedemption {
	return domain.DiscountRedemption{
		ID:             r.ID,
		DiscountCardID: r.DiscountCardID,
		CustomerID:     r.CustomerID,
		CustomerName:   r.CustomerName,
		OrderAmount:    r.OrderAmount,
		DiscountAmount: r.DiscountAmount,
		FinalAmount:    r.FinalAmount,
		IdempotencyKey: r.IdempotencyKey.String,
		CreatedAt:      r.CreatedAt.Time,
	}
}

func toCoachEarnings(e db.CoachEarning) domain.CoachEarnings {
	return domain.CoachEarnings{
		CoachID:                 e.CoachID,
		TotalEarnings:           e.TotalEarnings,
		TotalCommissionDeducted: e.TotalCommissionDeducted,
		NetEarnings:             e.NetEarnings,
		AvailableBalance:        e.AvailableBalance,
		TotalWithdrawn:          e.TotalWithdrawn,
		CommissionRate:          e.CommissionRate,
		CreatedAt:               e.CreatedAt.Time,
		UpdatedAt:               e.UpdatedAt.Time,
	}
}

func toEarningTransaction(t db.EarningTransaction) domain.EarningTransaction {
	return domain.EarningTransaction{
		ID:               t.ID,
		CoachID:          t.CoachID,
		SaleType:         domain.SaleType(t.SaleType),
		SaleReference:    t.SaleReference.String,
		SessionCount:     int(t.SessionCount),
		GrossAmount:      t.GrossAmount,
		CommissionRate:   t.CommissionRate,
		CommissionAmount: t.CommissionAmount,
		NetAmount:        t.NetAmount,
		Status:           t.Status,
		TransactionDate:  t.TransactionDate.Time,
	}
}

func toWithdrawalRequest(w db.WithdrawalRequest) domain.WithdrawalRequest {
	return domain.WithdrawalRequest{
		ID:             w.ID,
		CoachID:        w.CoachID,
		Amount:         w.Amount,
		PaymentMethod:  domain.PaymentMethod(w.PaymentMethod),
		PaymentDetails: w.PaymentDetails,
		Status:         domain.WithdrawalStatus(w.Status),
		RequestDate:    w.RequestDate.Time,
		ProcessedDate:  timePtr(w.ProcessedDate),
		ProcessedBy:    w.ProcessedBy.String,
		Note:           w.Note.String,
		IdempotencyKey: w.IdempotencyKey.String,
	}
}
