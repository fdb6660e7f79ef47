package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const idempotencyHeader = "Idempotency-Key"

type Handler struct {
	ledger *usecase.Ledger
	log    *slog.Logger
}

func NewHandler(ledger *usecase.Ledger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ledger: ledger, log: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/gift-cards", func(r chi.Router) {
			r.Post("/", h.CreateGiftCard)
			r.Post("/quote", h.QuoteGiftCard)
			r.Post("/redeem", h.RedeemGiftCard)
			r.Get("/{code}", h.GetGiftCard)
			r.Delete("/{code}", h.DeleteGiftCard)
			r.Patch("/{code}/active", h.SetGiftCardActive)
			r.Get("/{code}/transactions", h.ListGiftCardTransactions)
		})
		r.Get("/issuers/{issuerID}/gift-cards", h.ListGiftCardsByIssuer)

		r.Route("/discount-cards", func(r chi.Router) {
			r.Post("/", h.CreateDiscountCard)
			r.Post("/quote", h.QuoteDiscountCard)
			r.Post("/redeem", h.RedeemDiscountCard)
			r.Get("/{code}", h.GetDiscountCard)
			r.Put("/{code}", h.UpdateDiscountCard)
			r.Post("/id/{id}/redeem", h.RedeemDiscountCardByID)
		})

		r.Route("/coaches/{coachID}", func(r chi.Router) {
			r.Get("/discount-cards", h.ListDiscountCardsByCoach)
			r.Post("/earnings", h.InitializeCoachEarnings)
			r.Get("/earnings", h.GetCoachEarnings)
			r.Get("/earnings/transactions", h.ListEarningTransactions)
			r.Post("/earnings/entries", h.AddEarning)
			r.Put("/commission-rate", h.UpdateCommissionRate)
			r.Post("/sales", h.RecordSale)
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", h.RequestWithdrawal)
			r.Get("/", h.ListWithdrawals)
			r.Get("/{id}", h.GetWithdrawal)
			r.Post("/{id}/resolve", h.ResolveWithdrawal)
		})
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// checkoutFailure is the body of a quote or redeem call that was refused for
// a business reason.
type checkoutFailure struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// decode reads a JSON body into dst. An empty body is allowed when optional
// is set.
func decode(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrScopeMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal server error", Code: domain.CodeInternalFault})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: domain.ErrorCode(err)})
}

// writeCheckoutError answers business refusals with 200 so checkout clients
// can read the reason from the payload.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsBusinessError(err) {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutFailure{Error: err.Error(), Code: domain.ErrorCode(err)})
}

func badBody(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: domain.CodeValidation})
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", domain.ErrValidation, chi.URLParam(r, "id"))
	}
	return id, nil
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(idempotencyHeader))
}
