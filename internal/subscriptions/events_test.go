package subscriptions

import (
	"testing"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRemovalEvent(t *testing.T) {
	category := domain.Category{ID: 5, Name: "Investing"}

	tests := []struct {
		name      string
		requester string
		username  string
		wantEvent bool
	}{
		{"self removal", "alice", "alice", false},
		{"cross user", "alice", "bob", true},
		{"case differs", "Alice", "alice", true},
		{"empty requester", "", "bob", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := RemovalEvent(tt.requester, tt.username, category)

			assert.Equal(t, tt.wantEvent, ok)
			if !tt.wantEvent {
				assert.Equal(t, domain.NotificationEvent{}, event)
				return
			}
			assert.Equal(t, tt.username, event.Recipient)
			assert.Equal(t, int64(5), event.CategoryID)
			assert.Equal(t, "Investing", event.CategoryName)
		})
	}
}
