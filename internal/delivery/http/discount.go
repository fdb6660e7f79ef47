package http

import (
	"net/http"
	"time"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type DiscountTermsRequest struct {
	Description        string              `json:"description"`
	MemberName         string              `json:"memberName"`
	AdvantageType      string              `json:"advantageType"`
	AdvantageValue     decimal.NullDecimal `json:"advantageValue"`
	DiscountPercentage decimal.NullDecimal `json:"discountPercentage"`
	ExpiryDate         *time.Time          `json:"expiryDate"`
	UsageLimit         *int                `json:"usageLimit"`
}

func (t DiscountTermsRequest) terms() usecase.DiscountTerms {
	return usecase.DiscountTerms{
		Description:        t.Description,
		MemberName:         t.MemberName,
		AdvantageType:      t.AdvantageType,
		AdvantageValue:     t.AdvantageValue,
		DiscountPercentage: t.DiscountPercentage,
		ExpiryDate:         t.ExpiryDate,
		UsageLimit:         t.UsageLimit,
	}
}

type CreateDiscountCardRequest struct {
	Code    string `json:"code"`
	CoachID string `json:"coachId"`
	DiscountTermsRequest
}

type DiscountQuoteRequest struct {
	CardCode    string          `json:"cardCode"`
	CoachID     string          `json:"coachId"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
}

type DiscountRedeemRequest struct {
	CardCode     string          `json:"cardCode"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	CoachID      string          `json:"coachId"`
	OrderAmount  decimal.Decimal `json:"orderAmount"`
	OrderID      string          `json:"orderId"`
}

type DiscountCardResponse struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	CoachID        string              `json:"coachId"`
	Description    string              `json:"description"`
	MemberName     string              `json:"memberName"`
	AdvantageType  string              `json:"advantageType"`
	AdvantageValue decimal.NullDecimal `json:"advantageValue"`
	ExpiryDate     *time.Time          `json:"expiryDate,omitempty"`
	UsageCount     int                 `json:"usageCount"`
	UsageLimit     *int                `json:"usageLimit,omitempty"`
	IsActive       bool                `json:"isActive"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type DiscountQuoteResponse struct {
	Valid              bool            `json:"valid"`
	CardCode           string          `json:"cardCode"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	FinalAmount        decimal.Decimal `json:"finalAmount"`
	MemberName         string          `json:"memberName"`
	ExpirationDate     *time.Time      `json:"expirationDate"`
	Description        string          `json:"description"`
	UsageCount         *int            `json:"usageCount,omitempty"`
	Replayed           bool            `json:"replayed,omitempty"`
}

func toDiscountCardResponse(c domain.DiscountCard) DiscountCardResponse {
	return DiscountCardResponse{
		ID:             c.ID.String(),
		Code:           c.Code,
		CoachID:        c.CoachID,
		Description:    c.Description,
		MemberName:     c.MemberName,
		AdvantageType:  string(c.Advantage.Type()),
		AdvantageValue: c.Advantage.Value(),
		ExpiryDate:     c.ExpiryDate,
		UsageCount:     c.UsageCount,
		UsageLimit:     c.UsageLimit,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
	}
}

func toDiscountQuoteResponse(q domain.DiscountQuote) DiscountQuoteResponse {
	return DiscountQuoteResponse{
		Valid:              true,
		CardCode:           q.CardCode,
		DiscountPercentage: q.DiscountPercentage,
		DiscountAmount:     q.DiscountAmount,
		FinalAmount:        q.FinalAmount,
		MemberName:         q.MemberName,
		ExpirationDate:     q.ExpirationDate,
		Description:        q.Description,
	}
}

func (h *Handler) CreateDiscountCard(w http.ResponseWriter, r *http.Request) {
	var req CreateDiscountCardRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	card, err := h.ledger.Discounts.CreateDiscountCard(r.Context(), usecase.CreateDiscountCardInput{
		Code:          req.Code,
		CoachID:       req.CoachID,
		DiscountTerms: req.terms(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDiscountCardResponse(card))
}

func (h *Handler) GetDiscountCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.ledger.Discounts.GetDiscountCard(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDiscountCardResponse(card))
}

func (h *Handler) UpdateDiscountCard(w http.ResponseWriter, r *http.Request) {
	var req DiscountTermsRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	card, err := h.ledger.Discounts.UpdateDiscountCardTerms(r.Context(), chi.URLParam(r, "code"), req.terms())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDiscountCardResponse(card))
}

func (h *Handler) ListDiscountCardsByCoach(w http.ResponseWriter, r *http.Request) {
	cards, err := h.ledger.Discounts.ListDiscountCardsByCoach(r.Context(), chi.URLParam(r, "coachID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]DiscountCardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, toDiscountCardResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) QuoteDiscountCard(w http.ResponseWriter, r *http.Request) {
	var req DiscountQuoteRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	quote, err := h.ledger.Discounts.Quote(r.Context(), usecase.DiscountQuoteInput{
		Code:        req.CardCode,
		CoachID:     req.CoachID,
		OrderAmount: req.OrderAmount,
	})
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDiscountQuoteResponse(quote))
}

func (h *Handler) RedeemDiscountCard(w http.ResponseWriter, r *http.Request) {
	var req DiscountRedeemRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	res, err := h.ledger.Discounts.Redeem(r.Context(), usecase.DiscountRedeemInput{
		Code:           req.CardCode,
		CoachID:        req.CoachID,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		OrderAmount:    req.OrderAmount,
		OrderID:        req.OrderID,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}
	resp := toDiscountQuoteResponse(res.Quote)
	resp.UsageCount = &res.Card.UsageCount
	resp.Replayed = res.Replayed
	writeJSON(w, http.StatusOK, resp)
}

// RedeemDiscountCardByID consumes one use of a card without pricing an order.
func (h *Handler) RedeemDiscountCardByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	card, err := h.ledger.Discounts.RedeemByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDiscountCardResponse(card))
}
