package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationKind string

const (
	NotifyGiftCardRedeemed     NotificationKind = "gift_card_redeemed"
	NotifyGiftCardDepleted     NotificationKind = "gift_card_depleted"
	NotifyDiscountCardRedeemed NotificationKind = "discount_card_redeemed"
	NotifyEarningAdded         NotificationKind = "earning_added"
	NotifyWithdrawalRequested  NotificationKind = "withdrawal_requested"
	NotifyWithdrawalApproved   NotificationKind = "withdrawal_approved"
	NotifyWithdrawalRejected   NotificationKind = "withdrawal_rejected"
)

// Notification records that a recipient should be told about a committed
// ledger change. Delivery is someone else's job.
type Notification struct {
	Kind        NotificationKind
	RecipientID string
	Reference   string
	Amount      decimal.Decimal
	OccurredAt  time.Time
	Attributes  map[string]string
}
