package audit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLogFiltersNewestFirst(t *testing.T) {
	log := NewMemoryLog(10)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	events := []Event{
		{Actor: "asha", Action: ActionCreate, EntityType: "department", EntityID: "1", CreatedAt: base},
		{Actor: "asha", Action: ActionDelete, EntityType: "department", EntityID: "1", CreatedAt: base.Add(time.Minute)},
		{Actor: "vikram", Action: ActionApprove, EntityType: "leave", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, evt := range events {
		if err := log.Record(ctx, evt, map[string]string{"entity": evt.EntityType}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := log.List(ctx, Filter{}, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Action != ActionApprove {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[0].ID == "" || len(all[0].After) == 0 {
		t.Fatalf("expected id and payload filled in, got %+v", all[0])
	}

	dept, _ := log.List(ctx, Filter{EntityType: "department", Actor: "asha"}, 1)
	if len(dept) != 1 || dept[0].Action != ActionDelete {
		t.Fatalf("unexpected filtered list %+v", dept)
	}
}

func TestMemoryLogDropsOldest(t *testing.T) {
	log := NewMemoryLog(2)
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3"} {
		if err := log.Record(ctx, Event{Action: ActionCreate, EntityType: "category", EntityID: id}, nil); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	events, _ := log.List(ctx, Filter{}, 0)
	if len(events) != 2 {
		t.Fatalf("expected 2 events kept, got %d", len(events))
	}
	for _, evt := range events {
		if evt.EntityID == "1" {
			t.Fatal("oldest event should have been dropped")
		}
	}
}
