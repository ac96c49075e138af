package store

import (
	"testing"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/database"
	"github.com/pablodelgado26/family-organizer/internal/model"
)

func setupEventTestDB(t *testing.T) (*EventStore, int64, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("Alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	g, err := NewGroupStore(db).Create("Silva Family", "ABC123XYZ")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return NewEventStore(db), g.ID, u.ID
}

func TestEventCreate(t *testing.T) {
	es, groupID, userID := setupEventTestDB(t)

	e, err := es.Create(groupID, "Grandma's birthday", "cake at noon", model.EventTypeBirthday, day(2026, time.May, 3), "12:00", userID)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if e.Type != model.EventTypeBirthday {
		t.Errorf("type = %q, want birthday", e.Type)
	}
	if !e.Date.Equal(day(2026, time.May, 3)) {
		t.Errorf("date = %v, want 2026-05-03", e.Date)
	}
}

func TestEventListByType(t *testing.T) {
	es, groupID, userID := setupEventTestDB(t)

	es.Create(groupID, "Birthday", "", model.EventTypeBirthday, day(2026, time.May, 3), "", userID)
	es.Create(groupID, "Party", "", model.EventTypeParty, day(2026, time.May, 10), "", userID)
	es.Create(groupID, "Meeting", "", model.EventTypeMeeting, day(2026, time.May, 12), "", userID)

	events, err := es.ListByType(groupID, model.EventTypeParty)
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 party, got %d", len(events))
	}
	if events[0].Title != "Party" {
		t.Errorf("title = %q, want Party", events[0].Title)
	}
}

func TestEventListBirthdaysByMonth(t *testing.T) {
	es, groupID, userID := setupEventTestDB(t)

	es.Create(groupID, "May birthday 2025", "", model.EventTypeBirthday, day(2025, time.May, 3), "", userID)
	es.Create(groupID, "May birthday 2026", "", model.EventTypeBirthday, day(2026, time.May, 20), "", userID)
	es.Create(groupID, "June birthday", "", model.EventTypeBirthday, day(2026, time.June, 1), "", userID)
	es.Create(groupID, "May party", "", model.EventTypeParty, day(2026, time.May, 8), "", userID)

	events, err := es.ListBirthdays(groupID, time.May)
	if err != nil {
		t.Fatalf("list birthdays: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 May birthdays across years, got %d", len(events))
	}
	for _, e := range events {
		if e.Type != model.EventTypeBirthday {
			t.Errorf("type = %q, want birthday", e.Type)
		}
		if e.Date.Month() != time.May {
			t.Errorf("month = %v, want May", e.Date.Month())
		}
	}

	empty, err := es.ListBirthdays(groupID, time.December)
	if err != nil {
		t.Fatalf("list birthdays for empty month: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no December birthdays, got %d", len(empty))
	}
}

func TestEventListUpcoming(t *testing.T) {
	es, groupID, userID := setupEventTestDB(t)

	es.Create(groupID, "Past", "", model.EventTypeOther, day(2026, time.April, 1), "", userID)
	es.Create(groupID, "Future", "", model.EventTypeOther, day(2026, time.May, 10), "", userID)

	events, err := es.ListUpcoming(groupID, day(2026, time.May, 1), 5)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 upcoming, got %d", len(events))
	}
	if events[0].Title != "Future" {
		t.Errorf("title = %q, want Future", events[0].Title)
	}
}

func TestEventListByDateRange(t *testing.T) {
	es, groupID, userID := setupEventTestDB(t)

	es.Create(groupID, "First of month", "", model.EventTypeOther, day(2026, time.May, 1), "", userID)
	es.Create(groupID, "Mid month", "", model.EventTypeOther, day(2026, time.May, 15), "", userID)
	es.Create(groupID, "Next month", "", model.EventTypeOther, day(2026, time.June, 1), "", userID)

	events, err := es.ListByDateRange(groupID, day(2026, time.May, 1), day(2026, time.June, 1))
	if err != nil {
		t.Fatalf("list by date range: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 in May, got %d", len(events))
	}
}

func TestEventUpdate(t *testing.T) {
	es, groupID, userID := setupEventTestDB(t)

	e, _ := es.Create(groupID, "Party", "", model.EventTypeParty, day(2026, time.May, 10), "19:00", userID)

	updated, err := es.Update(e.ID, "Party", "moved to saturday", model.EventTypeParty, day(2026, time.May, 16), "20:00")
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if !updated.Date.Equal(day(2026, time.May, 16)) {
		t.Errorf("date = %v, want 2026-05-16", updated.Date)
	}
	if updated.Description != "moved to saturday" {
		t.Errorf("description = %q", updated.Description)
	}
}

func TestEventDelete(t *testing.T) {
	es, groupID, userID := setupEventTestDB(t)

	e, _ := es.Create(groupID, "Party", "", model.EventTypeParty, day(2026, time.May, 10), "", userID)

	if err := es.Delete(e.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	got, err := es.GetByID(e.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
