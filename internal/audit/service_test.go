package audit

import (
	"context"
	"testing"
)

func TestAppend_RequiresWorkspaceAndType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeTransition}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := svc.Append(context.Background(), Event{WorkspaceID: "ws"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if len(repo.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(repo.Events))
	}
}

func TestLogTransition_FillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogTransition(context.Background(), "ws", "u1", "owner", "c1", "draft", "testing"); err != nil {
		t.Fatalf("append: %v", err)
	}

	events := repo.ByCampaign("c1")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp set: %+v", e)
	}
	if e.FromStatus != "draft" || e.ToStatus != "testing" {
		t.Fatalf("unexpected statuses: %+v", e)
	}
}
