package usecase

import (
	"context"
	"log/slog"

	"github.com/azizikri/coach-ledger/internal/domain"
)

// Notifier hands a committed ledger event to whatever delivers messages.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// LogNotifier writes notifications to the log. It is used when no broker is
// configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n domain.Notification) error {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification",
		"kind", n.Kind,
		"recipient_id", n.RecipientID,
		"reference", n.Reference,
		"amount", n.Amount.StringFixed(domain.MoneyPlaces),
	)
	return nil
}
