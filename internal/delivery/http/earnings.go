package http

import (
	"net/http"
	"time"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type InitEarningsRequest struct {
	CommissionRate *decimal.Decimal `json:"commissionRate"`
}

type CommissionRateRequest struct {
	CommissionRate decimal.Decimal `json:"commissionRate"`
}

type AddEarningRequest struct {
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
}

type RecordSaleRequest struct {
	SaleType      string          `json:"saleType"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	SessionCount  int             `json:"sessionCount"`
	SaleReference string          `json:"saleReference"`
}

type EarningsResponse struct {
	CoachID                 string          `json:"coachId"`
	TotalEarnings           decimal.Decimal `json:"totalEarnings"`
	TotalCommissionDeducted decimal.Decimal `json:"totalCommissionDeducted"`
	NetEarnings             decimal.Decimal `json:"netEarnings"`
	AvailableBalance        decimal.Decimal `json:"availableBalance"`
	TotalWithdrawn          decimal.Decimal `json:"totalWithdrawn"`
	CommissionRate          decimal.Decimal `json:"commissionRate"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

type EarningTransactionResponse struct {
	ID               string          `json:"id"`
	SaleType         string          `json:"saleType"`
	SaleReference    string          `json:"saleReference,omitempty"`
	SessionCount     int             `json:"sessionCount"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	CommissionRate   decimal.Decimal `json:"commissionRate"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	Status           string          `json:"status"`
	TransactionDate  time.Time       `json:"transactionDate"`
}

type SaleResponse struct {
	Earnings    EarningsResponse           `json:"earnings"`
	Transaction EarningTransactionResponse `json:"transaction"`
	Replayed    bool                       `json:"replayed,omitempty"`
}

func toEarningsResponse(e domain.CoachEarnings) EarningsResponse {
	return EarningsResponse{
		CoachID:                 e.CoachID,
		TotalEarnings:           e.TotalEarnings,
		TotalCommissionDeducted: e.TotalCommissionDeducted,
		NetEarnings:             e.NetEarnings,
		AvailableBalance:        e.AvailableBalance,
		TotalWithdrawn:          e.TotalWithdrawn,
		CommissionRate:          e.CommissionRate,
		UpdatedAt:               e.UpdatedAt,
	}
}

func toEarningTransactionResponse(t domain.EarningTransaction) EarningTransactionResponse {
	return EarningTransactionResponse{
		ID:               t.ID.String(),
		SaleType:         string(t.SaleType),
		SaleReference:    t.SaleReference,
		SessionCount:     t.SessionCount,
		GrossAmount:      t.GrossAmount,
		CommissionRate:   t.CommissionRate,
		CommissionAmount: t.CommissionAmount,
		NetAmount:        t.NetAmount,
		Status:           t.Status,
		TransactionDate:  t.TransactionDate,
	}
}

func (h *Handler) InitializeCoachEarnings(w http.ResponseWriter, r *http.Request) {
	var req InitEarningsRequest
	if err := decode(r, &req, true); err != nil {
		badBody(w, err)
		return
	}

	earnings, err := h.ledger.Earnings.InitializeCoachEarnings(r.Context(), chi.URLParam(r, "coachID"), req.CommissionRate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEarningsResponse(earnings))
}

func (h *Handler) GetCoachEarnings(w http.ResponseWriter, r *http.Request) {
	earnings, err := h.ledger.Earnings.GetCoachEarnings(r.Context(), chi.URLParam(r, "coachID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEarningsResponse(earnings))
}

func (h *Handler) UpdateCommissionRate(w http.ResponseWriter, r *http.Request) {
	var req CommissionRateRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	earnings, err := h.ledger.Earnings.UpdateCommissionRate(r.Context(), chi.URLParam(r, "coachID"), req.CommissionRate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEarningsResponse(earnings))
}

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}
	reference := req.SaleReference
	if reference == "" {
		reference = idempotencyKey(r)
	}

	res, err := h.ledger.Earnings.RecordSale(r.Context(), usecase.RecordSaleInput{
		CoachID:       chi.URLParam(r, "coachID"),
		SaleType:      req.SaleType,
		UnitPrice:     req.UnitPrice,
		SessionCount:  req.SessionCount,
		SaleReference: reference,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, SaleResponse{
		Earnings:    toEarningsResponse(res.Earnings),
		Transaction: toEarningTransactionResponse(res.Transaction),
		Replayed:    res.Replayed,
	})
}

// AddEarning books a pre-computed earning for sales settled elsewhere.
func (h *Handler) AddEarning(w http.ResponseWriter, r *http.Request) {
	var req AddEarningRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	earnings, err := h.ledger.Earnings.AddEarning(r.Context(), chi.URLParam(r, "coachID"), req.GrossAmount, req.CommissionAmount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEarningsResponse(earnings))
}

func (h *Handler) ListEarningTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.ledger.Earnings.ListEarningTransactions(r.Context(), chi.URLParam(r, "coachID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]EarningTransactionResponse, 0, len(txns))
	for _, t := range txns {
		resp = append(resp, toEarningTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}
