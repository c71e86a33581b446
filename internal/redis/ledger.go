package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roadlines/internal/domain"
)

// NotificationLedgerTTL keeps a claim alive past the end of its day in any time zone.
const NotificationLedgerTTL = 48 * time.Hour

// NotificationLedger records which overdue reminders were already sent,
// one claim per trip, rule and day.
type NotificationLedger struct {
	client *redis.Client
}

// NewNotificationLedger creates a new NotificationLedger.
func NewNotificationLedger(client *redis.Client) *NotificationLedger {
	return &NotificationLedger{client: client}
}

func ledgerKey(tripID string, kind domain.NotificationType, day time.Time) string {
	return fmt.Sprintf("notify:%s:%s:%s", tripID, kind, domain.FormatDate(day))
}

// Claim marks the reminder as sent for day. It returns false if another
// run already claimed it.
func (l *NotificationLedger) Claim(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, ledgerKey(tripID, kind, day), "1", NotificationLedgerTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release drops a claim so the reminder can be retried, used when every send failed.
func (l *NotificationLedger) Release(ctx context.Context, tripID string, kind domain.NotificationType, day time.Time) error {
	return l.client.Del(ctx, ledgerKey(tripID, kind, day)).Err()
}
