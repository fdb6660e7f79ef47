package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	db "github.com/azizikri/coach-ledger/db/gen"
	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/repository"
	"github.com/azizikri/coach-ledger/internal/repository/memory"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, store repository.Store) *httptest.Server {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := usecase.NewLedger(usecase.Deps{
		Store:  store,
		Logger: logger,
		Clock:  func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	})
	r := chi.NewRouter()
	NewHandler(ledger, logger).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeInto[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func seedGiftCard(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, raw := call(t, srv, http.MethodPost, "/api/gift-cards", map[string]any{
		"code":         "COACH-AB12-999-XYZ",
		"issuerId":     "coach1",
		"issuerType":   "COACH",
		"businessName": "Yoga Loft",
		"totalAmount":  100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
}

func redeemBody(amount float64) map[string]any {
	return map[string]any{
		"cardCode":        "COACH-AB12-999-XYZ",
		"amount":          amount,
		"customerId":      "cust-1",
		"customerName":    "Mia",
		"businessId":      "coach1",
		"transactionType": "course",
	}
}

func TestRedeemGiftCard_Flow(t *testing.T) {
	srv := newTestServer(t, nil)
	seedGiftCard(t, srv)

	resp, raw := call(t, srv, http.MethodPost, "/api/gift-cards/quote", map[string]any{
		"cardCode":        "coach-ab12-999-xyz",
		"amount":          40,
		"transactionType": "course",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := decodeInto[GiftCardQuoteResponse](t, raw)
	assert.True(t, quote.Valid)
	assert.True(t, quote.RemainingAfter.Equal(decimal.NewFromInt(60)))

	resp, raw = call(t, srv, http.MethodPost, "/api/gift-cards/redeem", redeemBody(40))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	redeemed := decodeInto[GiftCardRedeemResponse](t, raw)
	assert.True(t, redeemed.Success)
	assert.True(t, redeemed.AmountToUse.Equal(decimal.NewFromInt(40)))
	assert.True(t, redeemed.RemainingAmount.Equal(decimal.NewFromInt(60)))
	assert.True(t, redeemed.AmountAvailable.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "COACH-AB12-999-XYZ", redeemed.CardCode)

	resp, raw = call(t, srv, http.MethodPost, "/api/gift-cards/redeem", redeemBody(61))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	failed := decodeInto[checkoutFailure](t, raw)
	assert.False(t, failed.Success)
	assert.False(t, failed.Valid)
	assert.Equal(t, domain.CodeInsufficientFunds, failed.Code)
	assert.NotEmpty(t, failed.Error)

	body := redeemBody(10)
	body["transactionType"] = "product"
	_, raw = call(t, srv, http.MethodPost, "/api/gift-cards/redeem", body)
	assert.Equal(t, domain.CodeScopeMismatch, decodeInto[checkoutFailure](t, raw).Code)

	resp, raw = call(t, srv, http.MethodGet, "/api/gift-cards/COACH-AB12-999-XYZ/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeInto[[]GiftCardTransactionResponse](t, raw), 1)
}

func TestRedeemGiftCard_IdempotencyHeader(t *testing.T) {
	srv := newTestServer(t, nil)
	seedGiftCard(t, srv)

	_, raw := call(t, srv, http.MethodPost, "/api/gift-cards/redeem", redeemBody(30), idempotencyHeader, "pay-1")
	first := decodeInto[GiftCardRedeemResponse](t, raw)
	require.True(t, first.Success)

	_, raw = call(t, srv, http.MethodPost, "/api/gift-cards/redeem", redeemBody(30), idempotencyHeader, "pay-1")
	again := decodeInto[GiftCardRedeemResponse](t, raw)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.TransactionID, again.TransactionID)

	_, raw = call(t, srv, http.MethodGet, "/api/gift-cards/COACH-AB12-999-XYZ", nil)
	card := decodeInto[GiftCardResponse](t, raw)
	assert.True(t, card.RemainingAmount.Equal(decimal.NewFromInt(70)))
}

func TestRedeemGiftCard_MalformedBody(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, raw := call(t, srv, http.MethodPost, "/api/gift-cards/redeem", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.CodeValidation, decodeInto[errorResponse](t, raw).Code)
}

func TestGiftCardAdmin_StatusCodes(t *testing.T) {
	srv := newTestServer(t, nil)
	seedGiftCard(t, srv)

	resp, raw := call(t, srv, http.MethodGet, "/api/gift-cards/COACH-NONE-000-AAA", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.CodeNotFound, decodeInto[errorResponse](t, raw).Code)

	resp, _ = call(t, srv, http.MethodPost, "/api/gift-cards", map[string]any{"issuerId": "x", "issuerType": "ADMIN", "totalAmount": 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodPatch, "/api/gift-cards/COACH-AB12-999-XYZ/active", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = call(t, srv, http.MethodPatch, "/api/gift-cards/COACH-AB12-999-XYZ/active", map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeInto[GiftCardResponse](t, raw).IsActive)

	_, raw = call(t, srv, http.MethodPost, "/api/gift-cards/redeem", redeemBody(1))
	assert.Equal(t, domain.CodeInvalidState, decodeInto[checkoutFailure](t, raw).Code)

	resp, _ = call(t, srv, http.MethodGet, "/api/issuers/coach1/gift-cards", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodDelete, "/api/gift-cards/COACH-AB12-999-XYZ", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDiscountCard_QuoteAndRedeem(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, raw := call(t, srv, http.MethodPost, "/api/discount-cards", map[string]any{
		"code":               "DISC-VIP20",
		"coachId":            "coach1",
		"memberName":         "Lena",
		"discountPercentage": 20,
		"usageLimit":         1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	card := decodeInto[DiscountCardResponse](t, raw)
	assert.Equal(t, string(domain.AdvantagePercentageDiscount), card.AdvantageType)

	_, raw = call(t, srv, http.MethodPost, "/api/discount-cards/quote", map[string]any{"cardCode": "DISC-VIP20", "orderAmount": 100})
	quote := decodeInto[DiscountQuoteResponse](t, raw)
	assert.True(t, quote.Valid)
	assert.True(t, quote.DiscountAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, "Lena", quote.MemberName)

	_, raw = call(t, srv, http.MethodPost, "/api/discount-cards/quote", map[string]any{"cardCode": "DISC-VIP20", "coachId": "coach2", "orderAmount": 100})
	assert.Equal(t, domain.CodeScopeMismatch, decodeInto[checkoutFailure](t, raw).Code)

	resp, raw = call(t, srv, http.MethodPost, "/api/discount-cards/redeem", map[string]any{
		"cardCode":     "DISC-VIP20",
		"customerId":   "cust-1",
		"customerName": "Mia",
		"orderAmount":  100,
		"orderId":      "order-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	redeemed := decodeInto[DiscountQuoteResponse](t, raw)
	assert.True(t, redeemed.Valid)
	require.NotNil(t, redeemed.UsageCount)
	assert.Equal(t, 1, *redeemed.UsageCount)

	_, raw = call(t, srv, http.MethodPost, "/api/discount-cards/quote", map[string]any{"cardCode": "DISC-VIP20", "orderAmount": 100})
	failed := decodeInto[checkoutFailure](t, raw)
	assert.False(t, failed.Valid)
	assert.Equal(t, domain.CodeInvalidState, failed.Code)

	resp, raw = call(t, srv, http.MethodPut, "/api/discount-cards/DISC-VIP20", map[string]any{"advantageType": "free"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.CodeInvalidState, decodeInto[errorResponse](t, raw).Code)

	_, raw = call(t, srv, http.MethodGet, "/api/coaches/coach1/discount-cards", nil)
	assert.Len(t, decodeInto[[]DiscountCardResponse](t, raw), 1)
}

func TestEarningsAndWithdrawal_Flow(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, raw := call(t, srv, http.MethodPost, "/api/coaches/coach1/earnings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decodeInto[EarningsResponse](t, raw).CommissionRate.Equal(decimal.NewFromInt(15)))

	resp, raw = call(t, srv, http.MethodPost, "/api/coaches/coach1/sales", map[string]any{"saleType": "product", "unitPrice": 200}, idempotencyHeader, "sale-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	sale := decodeInto[SaleResponse](t, raw)
	assert.True(t, sale.Transaction.CommissionAmount.Equal(decimal.NewFromInt(30)))
	assert.True(t, sale.Earnings.AvailableBalance.Equal(decimal.NewFromInt(170)))
	assert.Equal(t, "sale-1", sale.Transaction.SaleReference)

	resp, _ = call(t, srv, http.MethodPost, "/api/coaches/coach1/sales", map[string]any{"saleType": "product", "unitPrice": 200}, idempotencyHeader, "sale-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = call(t, srv, http.MethodPost, "/api/withdrawals", map[string]any{
		"coachId":        "coach1",
		"amount":         50,
		"paymentMethod":  "bank_transfer",
		"paymentDetails": "CH93 0076 2011 6238 5295 7",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decodeInto[WithdrawalResultResponse](t, raw)
	assert.Equal(t, "pending", created.Request.Status)
	assert.True(t, created.Earnings.AvailableBalance.Equal(decimal.NewFromInt(120)))

	resp, raw = call(t, srv, http.MethodPost, "/api/withdrawals/"+created.Request.ID+"/resolve", map[string]any{"status": "approved", "processedBy": "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	approved := decodeInto[WithdrawalResultResponse](t, raw)
	assert.Equal(t, "approved", approved.Request.Status)
	assert.True(t, approved.Earnings.AvailableBalance.Equal(decimal.NewFromInt(120)))
	assert.True(t, approved.Earnings.TotalWithdrawn.Equal(decimal.NewFromInt(50)))

	resp, raw = call(t, srv, http.MethodPost, "/api/withdrawals/"+created.Request.ID+"/resolve", map[string]any{"status": "rejected", "processedBy": "admin", "note": "late"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.CodeInvalidState, decodeInto[errorResponse](t, raw).Code)

	resp, raw = call(t, srv, http.MethodPost, "/api/withdrawals", map[string]any{
		"coachId":       "coach1",
		"amount":        500,
		"paymentMethod": "paypal",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, domain.CodeInsufficientFunds, decodeInto[errorResponse](t, raw).Code)

	_, raw = call(t, srv, http.MethodGet, "/api/withdrawals?coachId=coach1&status=approved", nil)
	assert.Len(t, decodeInto[[]WithdrawalResponse](t, raw), 1)

	resp, _ = call(t, srv, http.MethodGet, "/api/withdrawals/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, raw = call(t, srv, http.MethodGet, "/api/coaches/coach1/earnings/transactions", nil)
	assert.Len(t, decodeInto[[]EarningTransactionResponse](t, raw), 1)

	resp, _ = call(t, srv, http.MethodPut, "/api/coaches/coach1/commission-rate", map[string]any{"commissionRate": 150})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type brokenStore struct {
	repository.Store
}

func (brokenStore) GetGiftCardByCode(context.Context, string) (db.GiftCard, error) {
	return db.GiftCard{}, errors.New("connection reset by peer")
}

func (s brokenStore) ReadTx(ctx context.Context, fn func(repository.Querier) error) error {
	return fn(s)
}

func TestInternalFault_Returns500(t *testing.T) {
	srv := newTestServer(t, brokenStore{Store: memory.New()})

	resp, raw := call(t, srv, http.MethodGet, "/api/gift-cards/COACH-AB12-999-XYZ", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", decodeInto[errorResponse](t, raw).Error)

	resp, raw = call(t, srv, http.MethodPost, "/api/gift-cards/quote", map[string]any{
		"cardCode":        "COACH-AB12-999-XYZ",
		"amount":          5,
		"transactionType": "course",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(raw), "connection reset")
}

func TestAddEarningEntry(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, raw := call(t, srv, http.MethodPost, "/api/coaches/coach1/earnings/entries", map[string]any{"grossAmount": 120, "commissionAmount": 18})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	earnings := decodeInto[EarningsResponse](t, raw)
	assert.True(t, earnings.AvailableBalance.Equal(decimal.NewFromInt(102)))
	assert.True(t, earnings.CommissionRate.Equal(decimal.NewFromInt(15)))

	resp, raw = call(t, srv, http.MethodPost, "/api/coaches/coach1/earnings/entries", map[string]any{"grossAmount": 10, "commissionAmount": 20})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.CodeValidation, decodeInto[errorResponse](t, raw).Code)
}

func TestRedeemDiscountCardByID(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, raw := call(t, srv, http.MethodPost, "/api/discount-cards", map[string]any{
		"code":               "DISC-DESK01",
		"coachId":            "coach1",
		"memberName":         "Lena",
		"discountPercentage": 10,
		"usageLimit":         2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	card := decodeInto[DiscountCardResponse](t, raw)

	for want := 1; want <= 2; want++ {
		resp, raw = call(t, srv, http.MethodPost, "/api/discount-cards/id/"+card.ID+"/redeem", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
		assert.Equal(t, want, decodeInto[DiscountCardResponse](t, raw).UsageCount)
	}

	resp, raw = call(t, srv, http.MethodPost, "/api/discount-cards/id/"+card.ID+"/redeem", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))

	resp, _ = call(t, srv, http.MethodPost, "/api/discount-cards/id/00000000-0000-0000-0000-000000000001/redeem", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
