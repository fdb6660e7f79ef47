package http

import (
	"net/http"
	"time"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/shopspring/decimal"
)

type WithdrawalRequestBody struct {
	CoachID        string          `json:"coachId"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod"`
	PaymentDetails string          `json:"paymentDetails"`
}

type ResolveWithdrawalRequest struct {
	Status      string `json:"status"`
	ProcessedBy string `json:"processedBy"`
	Note        string `json:"note"`
}

type WithdrawalResponse struct {
	ID             string          `json:"id"`
	CoachID        string          `json:"coachId"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod"`
	PaymentDetails string          `json:"paymentDetails"`
	Status         string          `json:"status"`
	RequestDate    time.Time       `json:"requestDate"`
	ProcessedDate  *time.Time      `json:"processedDate,omitempty"`
	ProcessedBy    string          `json:"processedBy,omitempty"`
	Note           string          `json:"note,omitempty"`
}

type WithdrawalResultResponse struct {
	Request  WithdrawalResponse `json:"request"`
	Earnings EarningsResponse   `json:"earnings"`
	Replayed bool               `json:"replayed,omitempty"`
}

func toWithdrawalResponse(w domain.WithdrawalRequest) WithdrawalResponse {
	return WithdrawalResponse{
		ID:             w.ID.String(),
		CoachID:        w.CoachID,
		Amount:         w.Amount,
		PaymentMethod:  string(w.PaymentMethod),
		PaymentDetails: w.PaymentDetails,
		Status:         string(w.Status),
		RequestDate:    w.RequestDate,
		ProcessedDate:  w.ProcessedDate,
		ProcessedBy:    w.ProcessedBy,
		Note:           w.Note,
	}
}

func toWithdrawalResult(res domain.WithdrawalResult) WithdrawalResultResponse {
	return WithdrawalResultResponse{
		Request:  toWithdrawalResponse(res.Request),
		Earnings: toEarningsResponse(res.Earnings),
		Replayed: res.Replayed,
	}
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req WithdrawalRequestBody
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	res, err := h.ledger.Withdrawals.RequestWithdrawal(r.Context(), usecase.RequestWithdrawalInput{
		CoachID:        req.CoachID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		PaymentDetails: req.PaymentDetails,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, toWithdrawalResult(res))
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reqs, err := h.ledger.Withdrawals.ListWithdrawalRequests(r.Context(), domain.WithdrawalFilter{
		CoachID: q.Get("coachId"),
		Status:  domain.WithdrawalStatus(q.Get("status")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]WithdrawalResponse, 0, len(reqs))
	for _, req := range reqs {
		resp = append(resp, toWithdrawalResponse(req))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.ledger.Withdrawals.GetWithdrawalRequest(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResponse(req))
}

// ResolveWithdrawal approves or rejects a pending request. Repeating the same
// resolution is answered from the stored state.
func (h *Handler) ResolveWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ResolveWithdrawalRequest
	if err := decode(r, &req, false); err != nil {
		badBody(w, err)
		return
	}

	res, err := h.ledger.Withdrawals.Resolve(r.Context(), usecase.ResolveWithdrawalInput{
		ID:          id,
		Status:      domain.WithdrawalStatus(req.Status),
		ProcessedBy: req.ProcessedBy,
		Note:        req.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResult(res))
}
