package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"briefly/internal/session"
)

func TestSweepSessions(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)

	sessions := session.NewStore(10, time.Hour)
	sessions.Update(1, now.Add(-2*time.Hour), func(s *session.Session) {
		s.PageURL = "https://example.com/old"
	})
	sessions.Update(2, now.Add(-10*time.Minute), func(s *session.Session) {
		s.PageURL = "https://example.com/new"
	})

	s := New(context.Background(), sessions, slog.Default())
	s.now = func() time.Time { return now }

	s.sweepSessions()

	if got := sessions.Len(); got != 1 {
		t.Fatalf("Expected 1 session left, got %d", got)
	}
}

func TestSweepSessionsSkipsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	now := time.Now()
	sessions := session.NewStore(10, time.Minute)
	sessions.Update(1, now.Add(-time.Hour), func(*session.Session) {})

	s := New(ctx, sessions, slog.Default())
	s.sweepSessions()

	if got := sessions.Len(); got != 1 {
		t.Fatalf("Expected sweep to be skipped, got %d sessions", got)
	}
}

func TestStartRegistersSweep(t *testing.T) {
	s := New(context.Background(), session.NewStore(1, time.Minute), slog.Default())

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("Expected 1 cron entry, got %d", got)
	}
}
