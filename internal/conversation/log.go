// Package conversation holds the pure rules of the ticket conversation
// engine: the append-only message log and the status/unread lifecycle.
// Nothing in this package performs I/O.
package conversation

import (
	"encoding/json"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Append returns a new slice equal to existing with msg at the end. The input
// slice is never written through, so callers may keep reading it concurrently.
func Append(existing []domain.Message, msg domain.Message) []domain.Message {
	updated := make([]domain.Message, 0, len(existing)+1)
	updated = append(updated, existing...)
	return append(updated, msg)
}

// ParseMessages decodes a stored conversation document into validated
// messages. Elements that do not match the message shape are dropped
// silently: older tickets may carry records written under an incompatible
// shape, and the ticket must stay usable regardless. A raw value that is not
// a JSON array at all yields an empty conversation.
func ParseMessages(raw []byte) []domain.Message {
	if len(raw) == 0 {
		return []domain.Message{}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return []domain.Message{}
	}

	messages := make([]domain.Message, 0, len(elements))
	for _, element := range elements {
		var msg domain.Message
		if err := json.Unmarshal(element, &msg); err != nil {
			continue
		}
		if !validMessage(msg) {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// EncodeMessages serializes a conversation for storage.
func EncodeMessages(messages []domain.Message) ([]byte, error) {
	if messages == nil {
		messages = []domain.Message{}
	}
	return json.Marshal(messages)
}

// SortByCreatedAt returns a copy of messages ordered by timestamp for
// display. The sort is stable: entries with equal timestamps keep their
// append order.
func SortByCreatedAt(messages []domain.Message) []domain.Message {
	sorted := make([]domain.Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

func validMessage(msg domain.Message) bool {
	if msg.Body == "" {
		return false
	}
	return msg.Sender == domain.SenderCustomer || msg.Sender == domain.SenderSupport
}
