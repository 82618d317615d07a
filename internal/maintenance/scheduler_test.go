package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rentals/pkg/logger"
)

type mockExpiredOTPs struct {
	mu      sync.Mutex
	calls   []time.Time
	deleted int64
	err     error
}

func (m *mockExpiredOTPs) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, now)
	return m.deleted, m.err
}

func (m *mockExpiredOTPs) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestSweepOTPs_UsesCurrentTime(t *testing.T) {
	otps := &mockExpiredOTPs{deleted: 3}
	s := NewScheduler(otps, "@every 1h", time.Second, logger.Discard())
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	deleted, err := s.SweepOTPs(context.Background())
	if err != nil {
		t.Fatalf("SweepOTPs: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}
	if len(otps.calls) != 1 || !otps.calls[0].Equal(fixed) {
		t.Errorf("unexpected calls: %v", otps.calls)
	}
}

func TestSweepOTPs_PropagatesError(t *testing.T) {
	otps := &mockExpiredOTPs{err: errors.New("mongo down")}
	s := NewScheduler(otps, "@every 1h", time.Second, logger.Discard())

	if _, err := s.SweepOTPs(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestStart(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		expectErr bool
	}{
		{name: "disabled", spec: ""},
		{name: "standard", spec: "*/15 * * * *"},
		{name: "descriptor", spec: "@hourly"},
		{name: "invalid", spec: "every now and then", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(&mockExpiredOTPs{}, tt.spec, time.Second, logger.Discard())
			err := s.Start(context.Background())
			if (err != nil) != tt.expectErr {
				t.Fatalf("Start error = %v, expectErr %v", err, tt.expectErr)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			s.Stop(ctx)
		})
	}
}

func TestStart_RunsOnSchedule(t *testing.T) {
	otps := &mockExpiredOTPs{}
	s := NewScheduler(otps, "@every 1s", time.Second, logger.Discard())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for otps.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if otps.callCount() == 0 {
		t.Fatal("sweep never ran")
	}
}
