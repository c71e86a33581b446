package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roadlines/internal/domain"
)

// 2026-10-18 10:00 UTC: POD cutoff is 2026-10-10, advance cutoff 2026-10-16.
var notifierNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func newTestNotifier(trips *MockTripRepository, tokens *MockDeviceTokenRepository, sender *MockSender, ledger *MockLedger) *NotifierService {
	var s *NotifierService
	if ledger != nil {
		s = NewNotifierService(trips, tokens, sender, ledger, nil, time.UTC)
	} else {
		s = NewNotifierService(trips, tokens, sender, nil, nil, time.UTC)
	}
	s.now = func() time.Time { return notifierNow }
	return s
}

func podOverdueTrip() *domain.Trip {
	return &domain.Trip{
		ID:            "pod-late",
		VehicleNumber: "MH12AB1234",
		LoadingDate:   date("2026-10-05"),
		UnloadingDate: date("2026-10-09"),
		PartyAdvance:  amount("5000"),
		PODStatus:     domain.PODStatusPending,
	}
}

func advanceOverdueTrip() *domain.Trip {
	return &domain.Trip{
		ID:            "advance-late",
		VehicleNumber: "GJ01XY9876",
		LoadingDate:   date("2026-10-15"),
		PartyAdvance:  amount("0"),
		PODStatus:     domain.PODStatusPending,
	}
}

// ──────────────────────────────────────────────
// RULES
// ──────────────────────────────────────────────

func TestPODOverdue(t *testing.T) {
	t.Parallel()

	cutoff := PODCutoff(notifierNow, time.UTC)
	if got := domain.FormatDate(cutoff); got != "2026-10-10" {
		t.Fatalf("expected cutoff 2026-10-10, got %s", got)
	}

	tests := []struct {
		name      string
		unloading string
		pod       domain.PODStatus
		deleted   bool
		want      bool
	}{
		{"nine days ago pending", "2026-10-09", domain.PODStatusPending, false, true},
		{"nine days ago received", "2026-10-09", domain.PODStatusReceived, false, false},
		{"exactly eight days ago", "2026-10-10", domain.PODStatusPending, false, true},
		{"seven days ago", "2026-10-11", domain.PODStatusPending, false, false},
		{"not unloaded", "", domain.PODStatusPending, false, false},
		{"deleted", "2026-10-01", domain.PODStatusPending, true, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			trip := &domain.Trip{LoadingDate: date("2026-10-01"), PODStatus: tt.pod, IsDeleted: tt.deleted}
			if tt.unloading != "" {
				trip.UnloadingDate = date(tt.unloading)
			}
			if got := PODOverdue(trip, cutoff); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAdvanceOverdue(t *testing.T) {
	t.Parallel()

	cutoff := AdvanceCutoff(notifierNow, time.UTC)
	if got := domain.FormatDate(cutoff); got != "2026-10-16" {
		t.Fatalf("expected cutoff 2026-10-16, got %s", got)
	}

	absent := domain.ParseAmount("")
	tests := []struct {
		name    string
		loading string
		advance string
		want    bool
	}{
		{"three days ago zero advance", "2026-10-15", "0", true},
		{"three days ago absent advance", "2026-10-15", "", true},
		{"three days ago advance paid", "2026-10-15", "500", false},
		{"on the cutoff date", "2026-10-16", "", true},
		{"yesterday", "2026-10-17", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			trip := &domain.Trip{LoadingDate: date(tt.loading), PartyAdvance: absent}
			if tt.advance != "" {
				trip.PartyAdvance = amount(tt.advance)
			}
			if got := AdvanceOverdue(trip, cutoff); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAdvanceCutoff_DateGranularity(t *testing.T) {
	t.Parallel()

	// 36h before 01:00 on the 18th is 13:00 on the 16th; the whole 16th qualifies.
	now := time.Date(2026, 10, 18, 1, 0, 0, 0, time.UTC)
	if got := domain.FormatDate(AdvanceCutoff(now, time.UTC)); got != "2026-10-16" {
		t.Errorf("expected 2026-10-16, got %s", got)
	}
}

func TestCutoffs_UseLocation(t *testing.T) {
	t.Parallel()

	// 20:00 UTC on the 18th is already the 19th in IST.
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

	if got := domain.FormatDate(PODCutoff(now, ist)); got != "2026-10-11" {
		t.Errorf("expected 2026-10-11, got %s", got)
	}
	if got := domain.FormatDate(PODCutoff(now, time.UTC)); got != "2026-10-10" {
		t.Errorf("expected 2026-10-10, got %s", got)
	}
}

// ──────────────────────────────────────────────
// RUN
// ──────────────────────────────────────────────

func TestNotifier_SendsOneMulticastPerOverdueTrip(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	trips.AddTrip(advanceOverdueTrip())
	trips.AddTrip(&domain.Trip{ID: "fine", VehicleNumber: "KA01", LoadingDate: date("2026-10-17")})

	sender := NewMockSender()
	s := newTestNotifier(trips, NewMockDeviceTokenRepository("tok-a", "tok-b"), sender, nil)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success || result.MessagesSent != 2 {
		t.Fatalf("expected success with 2 messages, got %+v", result)
	}

	messages := sender.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 multicasts, got %d", len(messages))
	}

	pod := messages[0]
	if pod.Title != "POD Pending: MH12AB1234" {
		t.Errorf("unexpected title %q", pod.Title)
	}
	if pod.Body != "Unloading was on 2026-10-09. Upload POD now." {
		t.Errorf("unexpected body %q", pod.Body)
	}
	if pod.Data["tripId"] != "pod-late" || pod.Data["type"] != "POD_PENDING" {
		t.Errorf("unexpected data %v", pod.Data)
	}
	if len(pod.Tokens) != 2 {
		t.Errorf("expected multicast to every token, got %v", pod.Tokens)
	}

	advance := messages[1]
	if advance.Title != "Party Advance Pending: GJ01XY9876" {
		t.Errorf("unexpected title %q", advance.Title)
	}
	if advance.Body != "Loading was on 2026-10-15. Enter party advance now." {
		t.Errorf("unexpected body %q", advance.Body)
	}
	if advance.Data["type"] != "ADVANCE_PENDING" {
		t.Errorf("unexpected type %q", advance.Data["type"])
	}

	for _, r := range result.Results {
		if r.SuccessCount != 2 || r.FailureCount != 0 {
			t.Errorf("unexpected counts for %s: %+v", r.TripID, r)
		}
	}
}

func TestNotifier_TripMatchingBothRulesGetsTwoReminders(t *testing.T) {
	t.Parallel()

	trip := podOverdueTrip()
	trip.PartyAdvance = domain.ParseAmount("")

	trips := NewMockTripRepository()
	trips.AddTrip(trip)

	sender := NewMockSender()
	result, err := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MessagesSent != 2 {
		t.Errorf("expected 2 messages, got %d", result.MessagesSent)
	}
}

func TestNotifier_NoDevicesRegistered(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())

	sender := NewMockSender()
	result, err := newTestNotifier(trips, NewMockDeviceTokenRepository(), sender, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success || result.MessagesSent != 0 || result.Message != "No devices registered" {
		t.Errorf("unexpected result %+v", result)
	}
	if n := len(sender.Messages()); n != 0 {
		t.Errorf("expected no sends, got %d", n)
	}
}

func TestNotifier_TokenReadFailureAborts(t *testing.T) {
	t.Parallel()

	tokens := NewMockDeviceTokenRepository()
	tokens.ListError = errors.New("connection refused")

	result, err := newTestNotifier(NewMockTripRepository(), tokens, NewMockSender(), nil).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Success || result.Error == "" {
		t.Errorf("expected failed result with error, got %+v", result)
	}
}

func TestNotifier_TripReadFailureAbortsBeforeSending(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	trips.LoadedError = errors.New("statement timeout")

	sender := NewMockSender()
	result, err := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, nil).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Success {
		t.Error("expected success=false")
	}
	if n := len(sender.Messages()); n != 0 {
		t.Errorf("expected no sends after aborted read, got %d", n)
	}
}

func TestNotifier_SendFailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	trips.AddTrip(advanceOverdueTrip())

	sender := NewMockSender()
	sender.FailTrips["pod-late"] = errors.New("quota exceeded")

	result, err := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("partial send failure must not fail the run")
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Results))
	}
	if result.Results[0].Error == "" {
		t.Error("expected failed send to be recorded")
	}
	if result.Results[1].SuccessCount != 1 {
		t.Errorf("expected second send to succeed, got %+v", result.Results[1])
	}
}

func TestNotifier_DisabledSenderSendsNothing(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())

	sender := NewMockSender()
	sender.Disabled = true

	result, err := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success || result.MessagesSent != 0 {
		t.Errorf("expected success with 0 sent, got %+v", result)
	}
	if len(result.Results) != 1 || !result.Results[0].Skipped {
		t.Errorf("expected eligible reminder reported as skipped, got %+v", result.Results)
	}
}

func TestNotifier_RepeatsWithoutLedger(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	sender := NewMockSender()
	s := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, nil)

	for i := 0; i < 2; i++ {
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if n := len(sender.Messages()); n != 2 {
		t.Errorf("expected a reminder on every run, got %d", n)
	}
}

func TestNotifier_LedgerSuppressesSameDayRepeats(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	sender := NewMockSender()
	ledger := NewMockLedger()
	s := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, ledger)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(sender.Messages()); n != 1 {
		t.Errorf("expected 1 send across both runs, got %d", n)
	}
	if second.MessagesSent != 0 || !second.Results[0].Skipped {
		t.Errorf("expected second run to skip, got %+v", second)
	}

	// Next day the reminder goes out again.
	s.now = func() time.Time { return notifierNow.Add(24 * time.Hour) }
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(sender.Messages()); n != 2 {
		t.Errorf("expected a new reminder the next day, got %d sends", n)
	}
}

func TestNotifier_LedgerReleasedWhenSendFails(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	sender := NewMockSender()
	sender.FailTrips["pod-late"] = errors.New("unavailable")
	ledger := NewMockLedger()

	if _, err := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, ledger).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ledger.IsClaimed("pod-late", domain.NotificationPODPending, date("2026-10-18")) {
		t.Error("expected claim to be released after failed send")
	}
}

func TestNotifier_LedgerErrorFailsOpen(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	sender := NewMockSender()
	ledger := NewMockLedger()
	ledger.ClaimError = errors.New("redis down")

	result, err := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, ledger).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MessagesSent != 1 {
		t.Errorf("expected send despite ledger error, got %d", result.MessagesSent)
	}
}

func TestNotifier_PrunesUnregisteredTokens(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(podOverdueTrip())
	trips.AddTrip(advanceOverdueTrip())

	tokens := NewMockDeviceTokenRepository("good", "stale")
	sender := NewMockSender()
	sender.UnregisteredTokens["stale"] = true

	if _, err := newTestNotifier(trips, tokens, sender, nil).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tokens.Deleted) != 1 || tokens.Deleted[0] != "stale" {
		t.Errorf("expected stale token pruned once, got %v", tokens.Deleted)
	}

	remaining, _ := tokens.ListTokens(context.Background())
	if len(remaining) != 1 || remaining[0] != "good" {
		t.Errorf("expected only good token left, got %v", remaining)
	}
}

func TestNotifier_SkipsDeletedTrips(t *testing.T) {
	t.Parallel()

	trip := podOverdueTrip()
	trip.IsDeleted = true
	trips := NewMockTripRepository()
	trips.AddTrip(trip)

	sender := NewMockSender()
	result, err := newTestNotifier(trips, NewMockDeviceTokenRepository("tok"), sender, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MessagesSent != 0 {
		t.Errorf("expected no reminders for deleted trip, got %d", result.MessagesSent)
	}
}
