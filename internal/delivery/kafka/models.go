package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/azizikri/coach-ledger/internal/domain"
	"github.com/azizikri/coach-ledger/internal/usecase"
	"github.com/shopspring/decimal"
)

const SchemaVersion = 1

// SaleEvent is a completed purchase announced by the checkout service.
type SaleEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventID       string          `json:"event_id"`
	SaleReference string          `json:"sale_reference,omitempty"`
	CoachID       string          `json:"coach_id,omitempty"`
	SaleType      string          `json:"sale_type"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	SessionCount  int             `json:"session_count,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Reference is the idempotency key of the sale: its own reference when the
// producer set one, otherwise the event id.
func (e SaleEvent) Reference() string {
	if ref := strings.TrimSpace(e.SaleReference); ref != "" {
		return ref
	}
	return strings.TrimSpace(e.EventID)
}

func (e SaleEvent) validate() error {
	if e.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %d", domain.ErrValidation, e.SchemaVersion)
	}
	if e.Reference() == "" {
		return fmt.Errorf("%w: sale event needs an event id or sale reference", domain.ErrValidation)
	}
	return nil
}

func (e SaleEvent) input() usecase.RecordSaleInput {
	return usecase.RecordSaleInput{
		CoachID:       e.CoachID,
		SaleType:      e.SaleType,
		UnitPrice:     e.UnitPrice,
		SessionCount:  e.SessionCount,
		SaleReference: e.Reference(),
	}
}

type NotificationEvent struct {
	SchemaVersion int               `json:"schema_version"`
	Kind          string            `json:"kind"`
	RecipientID   string            `json:"recipient_id"`
	Reference     string            `json:"reference"`
	Amount        decimal.Decimal   `json:"amount"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

func newNotificationEvent(n domain.Notification) NotificationEvent {
	return NotificationEvent{
		SchemaVersion: SchemaVersion,
		Kind:          string(n.Kind),
		RecipientID:   n.RecipientID,
		Reference:     n.Reference,
		Amount:        n.Amount,
		OccurredAt:    n.OccurredAt,
		Attributes:    n.Attributes,
	}
}
