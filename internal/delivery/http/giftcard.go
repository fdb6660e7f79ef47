package http

import (
	"net/http"
	"time"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CreateGiftCardRequest struct {
	Code           string          `json:"code"`
	IssuerID       string          `json:"issuerId"`
	IssuerType     string          `json:"issuerType"`
	BusinessName   string          `json:"businessName"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ExpirationDate *time.Time      `json:"expirationDate"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

type GiftCardQuoteRequest struct {
	CardCode        string          `json:"cardCode"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transactionType"`
	BusinessID      string          `json:"businessId"`
}

type GiftCardRedeemRequest struct {
	CardCode        string          `json:"cardCode"`
	Amount          decimal.Decimal `json:"amount"`
	CustomerID      string          `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	BusinessID      string          `json:"businessId"`
	OrderID         string          `json:"orderId"`
	BookingID       string          `json:"bookingId"`
	TransactionType string          `json:"transactionType"`
}

type GiftCardResponse struct {
	Code            string          `json:"code"`
	IssuerID        string          `json:"issuerId"`
	IssuerType      string          `json:"issuerType"`
	BusinessName    string          `json:"businessName"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	IsActive        bool            `json:"isActive"`
	IsUsed          bool            `json:"isUsed"`
	ExpirationDate  *time.Time      `json:"expirationDate,omitempty"`
	UsedBy          string          `json:"usedBy,omitempty"`
	UsedByName      string          `json:"usedByName,omitempty"`
	UsedAt          *time.Time      `json:"usedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type GiftCardTransactionResponse struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	AmountUsed      decimal.Decimal `json:"amountUsed"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	Kind            string          `json:"kind"`
	TransactionType string          `json:"transactionType"`
	OrderID         string          `json:"orderId,omitempty"`
	BookingID       string          `json:"bookingId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type GiftCardQuoteResponse struct {
	Success         bool            `json:"success"`
	Valid           bool            `json:"valid"`
	CardCode        string          `json:"cardCode"`
	AmountAvailable decimal.Decimal `json:"amountAvailable"`
	AmountPayable   decimal.Decimal `json:"amountPayable"`
	RemainingAfter  decimal.Decimal `json:"remainingAfter"`
}

type GiftCardRedeemResponse struct {
	Success         bool            `json:"success"`
	Valid           bool            `json:"valid"`
	CardCode        string          `json:"cardCode"`
	AmountToUse     decimal.Decimal `json:"amountToUse"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	AmountAvailable decimal.Decimal `json:"amountAvailable"`
	RedemptionType  string          `json:"redemptionType"`
	TransactionID   string          `json:"transactionId"`
	Replayed        bool            `json:"replayed,omitempty"`
}

func toGiftCardResponse(c domain.GiftCard) GiftCardResponse {
	return GiftCardResponse{
		Code:            c.Code,
		IssuerID:        c.IssuerID,
		IssuerType:      string(c.IssuerType),
		BusinessName:    c.BusinessName,
		TotalAmount:     c.TotalAmount,
		RemainingAmount: c.RemainingAmount,
		IsActive:        c.IsActive,
		IsUsed:          c.IsUsed,
		ExpirationDate:  c.ExpirationDate,
		UsedBy:          c.UsedBy,
		UsedByName:      c.UsedByName,
		UsedAt:          c.UsedAt,
		CreatedAt:       c.CreatedAt,
	}
}

func (h *Handler) CreateGiftCard(w http.ResponseWriter, r *http.Request) {
	var req CreateGiftCardRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	card, err := h.ledger.GiftCards.CreateGiftCard(r.Context(), usecase.CreateGiftCardInput{
		Code:           req.Code,
		IssuerID:       req.IssuerID,
		IssuerType:     req.IssuerType,
		BusinessName:   req.BusinessName,
		TotalAmount:    req.TotalAmount,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGiftCardResponse(card))
}

func (h *Handler) GetGiftCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.ledger.GiftCards.GetGiftCard(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGiftCardResponse(card))
}

func (h *Handler) ListGiftCardsByIssuer(w http.ResponseWriter, r *http.Request) {
	cards, err := h.ledger.GiftCards.ListGiftCardsByIssuer(r.Context(), chi.URLParam(r, "issuerID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]GiftCardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, toGiftCardResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetGiftCardActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}
	if req.IsActive == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "isActive is required", Code: domain.CodeValidation})
		return
	}

	card, err := h.ledger.GiftCards.SetGiftCardActive(r.Context(), chi.URLParam(r, "code"), *req.IsActive)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGiftCardResponse(card))
}

func (h *Handler) DeleteGiftCard(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.GiftCards.DeleteGiftCard(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGiftCardTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.ledger.GiftCards.ListGiftCardTransactions(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]GiftCardTransactionResponse, 0, len(txns))
	for _, t := range txns {
		resp = append(resp, GiftCardTransactionResponse{
			ID:              t.ID.String(),
			CustomerID:      t.CustomerID,
			CustomerName:    t.CustomerName,
			AmountUsed:      t.AmountUsed,
			BalanceAfter:    t.BalanceAfter,
			Kind:            string(t.Kind),
			TransactionType: string(t.TransactionType),
			OrderID:         t.OrderID,
			BookingID:       t.BookingID,
			CreatedAt:       t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) QuoteGiftCard(w http.ResponseWriter, r *http.Request) {
	var req GiftCardQuoteRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	quote, err := h.ledger.GiftCards.Quote(r.Context(), usecase.GiftCardQuoteInput{
		Code:            req.CardCode,
		Amount:          req.Amount,
		TransactionType: req.TransactionType,
		BusinessID:      req.BusinessID,
	})
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GiftCardQuoteResponse{
		Success:         true,
		Valid:           true,
		CardCode:        quote.CardCode,
		AmountAvailable: quote.AmountAvailable,
		AmountPayable:   quote.AmountPayable,
		RemainingAfter:  quote.RemainingAfter,
	})
}

func (h *Handler) RedeemGiftCard(w http.ResponseWriter, r *http.Request) {
	var req GiftCardRedeemRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	res, err := h.ledger.GiftCards.Redeem(r.Context(), usecase.GiftCardRedeemInput{
		Code:            req.CardCode,
		Amount:          req.Amount,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		BusinessID:      req.BusinessID,
		OrderID:         req.OrderID,
		BookingID:       req.BookingID,
		TransactionType: req.TransactionType,
		IdempotencyKey:  idempotencyKey(r),
	})
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GiftCardRedeemResponse{
		Success:         true,
		Valid:           true,
		CardCode:        res.CardCode,
		AmountToUse:     res.AmountToUse,
		RemainingAmount: res.RemainingAmount,
		AmountAvailable: res.AmountAvailable,
		RedemptionType:  string(res.Kind),
		TransactionID:   res.Transaction.ID.String(),
		Replayed:        res.Replayed,
	})
}
