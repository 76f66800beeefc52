package conversation

import (
	"reflect"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestAppend_AddsAtEnd(t *testing.T) {
	existing := []domain.Message{
		{Body: "first", Sender: domain.SenderCustomer},
		{Body: "second", Sender: domain.SenderSupport},
	}
	msg := domain.Message{Body: "third", Sender: domain.SenderCustomer}

	got := Append(existing, msg)

	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[2].Body != "third" {
		t.Errorf("expected new message at end, got %q", got[2].Body)
	}
	if got[0].Body != "first" || got[1].Body != "second" {
		t.Error("existing entries reordered")
	}
}

func TestAppend_DoesNotMutateInput(t *testing.T) {
	existing := []domain.Message{
		{Body: "first", Sender: domain.SenderCustomer},
	}
	snapshot := make([]domain.Message, len(existing))
	copy(snapshot, existing)

	updated := Append(existing, domain.Message{Body: "second", Sender: domain.SenderSupport})
	updated[0].Body = "tampered"

	if !reflect.DeepEqual(existing, snapshot) {
		t.Errorf("input slice mutated: %+v", existing)
	}
}

func TestAppend_EmptyLog(t *testing.T) {
	got := Append(nil, domain.Message{Body: "hello", Sender: domain.SenderSupport})
	if len(got) != 1 || got[0].Body != "hello" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParseMessages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"valid pair", `[{"message":"hi","sender":"customer","createdAt":"2024-05-01T10:00:00Z"},{"message":"hello","sender":"support","createdAt":"2024-05-01T10:05:00Z"}]`, 2},
		{"empty array", `[]`, 0},
		{"not an array", `{"message":"hi"}`, 0},
		{"not json", `garbage`, 0},
		{"empty input", ``, 0},
		{"unknown sender dropped", `[{"message":"hi","sender":"robot"},{"message":"ok","sender":"support"}]`, 1},
		{"missing body dropped", `[{"sender":"customer"},{"message":"ok","sender":"customer"}]`, 1},
		{"wrong element type dropped", `[42,{"message":"ok","sender":"support"}]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMessages([]byte(tt.raw))
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != tt.want {
				t.Errorf("expected %d messages, got %d: %+v", tt.want, len(got), got)
			}
		})
	}
}

func TestParseMessages_KeepsOrder(t *testing.T) {
	raw := `[{"message":"a","sender":"customer"},{"message":"b","sender":"support"},{"message":"c","sender":"customer"}]`
	got := ParseMessages([]byte(raw))
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].Body != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].Body)
		}
	}
}

func TestSortByCreatedAt_StableOnTies(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	messages := []domain.Message{
		{Body: "later", CreatedAt: ts.Add(time.Minute)},
		{Body: "tie-1", CreatedAt: ts},
		{Body: "tie-2", CreatedAt: ts},
	}

	got := SortByCreatedAt(messages)

	if got[0].Body != "tie-1" || got[1].Body != "tie-2" || got[2].Body != "later" {
		t.Errorf("unexpected order: %+v", got)
	}
	if messages[0].Body != "later" {
		t.Error("input slice reordered")
	}
}
