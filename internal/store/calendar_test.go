package store

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/staff-portal/internal/models"
)

func TestUpsertCalendarEventSingleRowPerDate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	inputs := []EventInput{
		{Date: "2026-03-14", Time: "09:00", Timezone: "UTC", Location: "HQ", Mission: "Briefing"},
		{Date: "2026-03-14", Time: "10:30", Timezone: "UTC", Location: "Annex", Mission: "Drill"},
		{Date: "2026-03-14", Time: "14:00", Timezone: "CET", Location: "Range", Mission: "Qualification"},
	}
	for _, in := range inputs {
		if _, err := s.UpsertCalendarEvent(ctx, in); err != nil {
			t.Fatalf("upsert %v: %v", in, err)
		}
	}

	var count int64
	s.db.Model(&models.CalendarEvent{}).Where("date = ?", "2026-03-14").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row for the date, got %d", count)
	}
	ev, err := s.GetCalendarEvent(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if ev.Time != "14:00" || ev.Location != "Range" || ev.Mission != "Qualification" {
		t.Errorf("expected last write to win, got %+v", ev)
	}
}

func TestUpsertCalendarEventRejectsBadDate(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.UpsertCalendarEvent(context.Background(), EventInput{Date: "14/03/2026"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteCalendarEventAbsentIsNoop(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.DeleteCalendarEvent(ctx, "2026-01-01"); err != nil {
		t.Fatalf("delete of absent date should be a no-op, got %v", err)
	}

	if _, err := s.UpsertCalendarEvent(ctx, EventInput{Date: "2026-01-01", Time: "08:00"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.DeleteCalendarEvent(ctx, "2026-01-01"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetCalendarEvent(ctx, "2026-01-01"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestListCalendarEventsDateOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for _, d := range []string{"2026-05-02", "2026-04-30", "2026-05-01"} {
		if _, err := s.UpsertCalendarEvent(ctx, EventInput{Date: d}); err != nil {
			t.Fatalf("upsert %s: %v", d, err)
		}
	}
	evs, err := s.ListCalendarEvents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"2026-04-30", "2026-05-01", "2026-05-02"}
	if len(evs) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(evs))
	}
	for i, d := range want {
		if evs[i].Date != d {
			t.Errorf("event %d date = %s, want %s", i, evs[i].Date, d)
		}
	}
}
