package subscriptions

import "github.com/bissquit/journal-templates/internal/domain"

// RemovalEvent returns the notification owed to username after requester removed
// one of their subscriptions in category. Users removing their own subscription
// are not notified.
func RemovalEvent(requester, username string, category domain.Category) (domain.NotificationEvent, bool) {
	if requester == username {
		return domain.NotificationEvent{}, false
	}
	return domain.NotificationEvent{
		Recipient:    username,
		CategoryID:   category.ID,
		CategoryName: category.Name,
	}, true
}
