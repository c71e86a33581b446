package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"roadlines/internal/domain"
	"roadlines/internal/push"
	"roadlines/internal/redis"
	"roadlines/internal/repository"
)

const (
	// podGraceDays is how long after unloading a POD may stay pending.
	podGraceDays = 8

	// advanceGrace is how long after loading the party advance may stay unrecorded.
	advanceGrace = 36 * time.Hour
)

// PODCutoff returns the latest unloading date that makes a pending POD overdue.
func PODCutoff(now time.Time, loc *time.Location) time.Time {
	return domain.DateOf(now.In(loc)).AddDate(0, 0, -podGraceDays)
}

// AdvanceCutoff returns the latest loading date that makes a missing party
// advance overdue. Loading dates carry no time of day, so the comparison
// is between calendar dates.
func AdvanceCutoff(now time.Time, loc *time.Location) time.Time {
	return domain.DateOf(now.In(loc).Add(-advanceGrace))
}

// PODOverdue reports whether trip was unloaded on or before cutoff and its POD is still pending.
func PODOverdue(trip *domain.Trip, cutoff time.Time) bool {
	return !trip.IsDeleted &&
		trip.Unloaded() &&
		trip.PODStatus == domain.PODStatusPending &&
		!trip.UnloadingDate.After(cutoff)
}

// AdvanceOverdue reports whether trip was loaded on or before cutoff without a party advance.
func AdvanceOverdue(trip *domain.Trip, cutoff time.Time) bool {
	return !trip.IsDeleted &&
		!trip.LoadingDate.IsZero() &&
		!trip.LoadingDate.After(cutoff) &&
		domain.IsZeroOrAbsent(trip.PartyAdvance)
}

// overdueRule ties a predicate to the query that narrows its candidates and
// the reminder it produces.
type overdueRule struct {
	kind       domain.NotificationType
	cutoff     func(now time.Time, loc *time.Location) time.Time
	candidates func(ctx context.Context, repo repository.TripRepository, cutoff time.Time) ([]*domain.Trip, error)
	eligible   func(trip *domain.Trip, cutoff time.Time) bool
	message    func(trip *domain.Trip) (title, body string)
}

var overdueRules = []overdueRule{
	{
		kind:   domain.NotificationPODPending,
		cutoff: PODCutoff,
		candidates: func(ctx context.Context, repo repository.TripRepository, cutoff time.Time) ([]*domain.Trip, error) {
			return repo.ListUnloadedOnOrBefore(ctx, cutoff)
		},
		eligible: PODOverdue,
		message: func(trip *domain.Trip) (string, string) {
			return "POD Pending: " + trip.VehicleNumber,
				"Unloading was on " + domain.FormatDate(trip.UnloadingDate) + ". Upload POD now."
		},
	},
	{
		kind:   domain.NotificationAdvancePending,
		cutoff: AdvanceCutoff,
		candidates: func(ctx context.Context, repo repository.TripRepository, cutoff time.Time) ([]*domain.Trip, error) {
			return repo.ListLoadedOnOrBefore(ctx, cutoff)
		},
		eligible: AdvanceOverdue,
		message: func(trip *domain.Trip) (string, string) {
			return "Party Advance Pending: " + trip.VehicleNumber,
				"Loading was on " + domain.FormatDate(trip.LoadingDate) + ". Enter party advance now."
		},
	},
}

// MessageResult is the outcome of one reminder multicast.
type MessageResult struct {
	TripID       string                  `json:"tripId"`
	Type         domain.NotificationType `json:"type"`
	Title        string                  `json:"title"`
	SuccessCount int                     `json:"successCount"`
	FailureCount int                     `json:"failureCount"`
	Skipped      bool                    `json:"skipped,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

// RunResult is the structured outcome of one notifier run.
type RunResult struct {
	Success      bool            `json:"success"`
	MessagesSent int             `json:"messagesSent"`
	Results      []MessageResult `json:"results"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// NotifierService scans for overdue trips and pushes reminders to every
// registered device. Runs are independent; nothing stops two runs from
// overlapping.
type NotifierService struct {
	tripRepo  repository.TripRepository
	tokenRepo repository.DeviceTokenRepository
	sender    push.Sender
	ledger    redis.NotificationLedgerInterface
	nrApp     *newrelic.Application
	loc       *time.Location
	now       func() time.Time
}

// NewNotifierService creates a new NotifierService. A nil ledger means every
// run re-notifies every still-overdue trip.
func NewNotifierService(
	tripRepo repository.TripRepository,
	tokenRepo repository.DeviceTokenRepository,
	sender push.Sender,
	ledger redis.NotificationLedgerInterface,
	nrApp *newrelic.Application,
	loc *time.Location,
) *NotifierService {
	if loc == nil {
		loc = time.UTC
	}
	return &NotifierService{
		tripRepo:  tripRepo,
		tokenRepo: tokenRepo,
		sender:    sender,
		ledger:    ledger,
		nrApp:     nrApp,
		loc:       loc,
		now:       time.Now,
	}
}

type reminder struct {
	trip  *domain.Trip
	kind  domain.NotificationType
	title string
	body  string
}

// Run performs one scan-and-send pass. A read failure aborts the run: the
// returned result has Success false and the error is also returned.
func (s *NotifierService) Run(ctx context.Context) (*RunResult, error) {
	if s.nrApp != nil {
		txn := s.nrApp.StartTransaction("notifier.run")
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}

	result, err := s.run(ctx)
	if err != nil {
		if txn := newrelic.FromContext(ctx); txn != nil {
			txn.NoticeError(err)
		}
		log.Printf("notifier: run aborted: %v", err)
		return &RunResult{Success: false, Error: err.Error(), Results: []MessageResult{}}, err
	}

	return result, nil
}

func (s *NotifierService) run(ctx context.Context) (*RunResult, error) {
	tokens, err := s.tokenRepo.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("read device tokens: %w", err)
	}

	if len(tokens) == 0 {
		log.Println("notifier: no devices registered")
		return &RunResult{Success: true, Message: "No devices registered", Results: []MessageResult{}}, nil
	}

	now := s.now()
	today := domain.DateOf(now.In(s.loc))

	// Every rule is read before anything is sent, so a read failure never
	// leaves a run half delivered.
	var reminders []reminder
	for _, rule := range overdueRules {
		cutoff := rule.cutoff(now, s.loc)

		trips, err := rule.candidates(ctx, s.tripRepo, cutoff)
		if err != nil {
			return nil, fmt.Errorf("read %s candidates: %w", rule.kind, err)
		}

		for _, trip := range trips {
			if !rule.eligible(trip, cutoff) {
				continue
			}
			title, body := rule.message(trip)
			reminders = append(reminders, reminder{trip: trip, kind: rule.kind, title: title, body: body})
		}
	}

	log.Printf("notifier: %d overdue reminders, %d devices", len(reminders), len(tokens))

	result := &RunResult{Success: true, Results: make([]MessageResult, 0, len(reminders))}
	var unregistered []string

	for _, r := range reminders {
		msgResult := MessageResult{TripID: r.trip.ID, Type: r.kind, Title: r.title}

		if !s.sender.Enabled() {
			// Evaluated and logged only; nothing counts as sent.
			_, _ = s.sender.SendMulticast(ctx, s.multicast(r, tokens))
			msgResult.Skipped = true
			result.Results = append(result.Results, msgResult)
			continue
		}

		if s.ledger != nil {
			claimed, err := s.ledger.Claim(ctx, r.trip.ID, r.kind, today)
			if err != nil {
				log.Printf("notifier: ledger unavailable for trip=%s type=%s, sending anyway: %v", r.trip.ID, r.kind, err)
			} else if !claimed {
				msgResult.Skipped = true
				result.Results = append(result.Results, msgResult)
				continue
			}
		}

		batch, err := s.sender.SendMulticast(ctx, s.multicast(r, tokens))
		result.MessagesSent++

		switch {
		case err != nil:
			msgResult.Error = err.Error()
			log.Printf("notifier: send failed trip=%s type=%s: %v", r.trip.ID, r.kind, err)
		case batch != nil:
			msgResult.SuccessCount = batch.SuccessCount
			msgResult.FailureCount = batch.FailureCount
			for _, resp := range batch.Responses {
				if resp.Unregistered {
					unregistered = append(unregistered, resp.Token)
				}
			}
		}

		if s.ledger != nil && msgResult.SuccessCount == 0 {
			if err := s.ledger.Release(ctx, r.trip.ID, r.kind, today); err != nil {
				log.Printf("notifier: failed to release ledger claim trip=%s type=%s: %v", r.trip.ID, r.kind, err)
			}
		}

		result.Results = append(result.Results, msgResult)
	}

	if !s.sender.Enabled() && len(reminders) > 0 {
		result.Message = "Push notifications disabled"
	}

	s.pruneTokens(ctx, unregistered)

	return result, nil
}

func (s *NotifierService) multicast(r reminder, tokens []string) push.MulticastMessage {
	return push.MulticastMessage{
		Tokens: tokens,
		Title:  r.title,
		Body:   r.body,
		Data: map[string]string{
			"tripId": r.trip.ID,
			"type":   string(r.kind),
		},
	}
}

// pruneTokens drops tokens the push service no longer recognizes.
func (s *NotifierService) pruneTokens(ctx context.Context, tokens []string) {
	if len(tokens) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(tokens))
	unique := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}

	deleted, err := s.tokenRepo.DeleteTokens(ctx, unique)
	if err != nil {
		log.Printf("notifier: failed to prune %d unregistered tokens: %v", len(unique), err)
		return
	}
	log.Printf("notifier: pruned %d unregistered tokens", deleted)
}
