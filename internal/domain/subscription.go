package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// selectionSeparator delimits ids in the persisted form of a SelectionSet.
const selectionSeparator = ","

// SubscriptionKey identifies a subscription row. No two rows share a key.
type SubscriptionKey struct {
	UserID     int64
	CategoryID int64
	Keyword    string
}

func (k SubscriptionKey) String() string {
	return fmt.Sprintf("%d/%d/%s", k.UserID, k.CategoryID, k.Keyword)
}

// Subscription is a user's accumulated selections for a category keyword.
type Subscription struct {
	Key        SubscriptionKey `json:"-"`
	UserID     int64           `json:"user_id"`
	Category   Category        `json:"category"`
	ProjectID  int64           `json:"project_id"`
	Keyword    string          `json:"keyword"`
	Selections SelectionSet    `json:"selections"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SelectionSet is a sorted, duplicate-free set of selection ids.
type SelectionSet []int64

// NewSelectionSet builds a set from ids, dropping duplicates.
func NewSelectionSet(ids ...int64) SelectionSet {
	set := make(SelectionSet, len(ids))
	copy(set, ids)
	slices.Sort(set)
	return slices.Compact(set)
}

// ParseSelectionSet parses the persisted form produced by SelectionSet.String.
// Tokens may appear in any order and repeat; the result is always canonical.
func ParseSelectionSet(s string) (SelectionSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SelectionSet{}, nil
	}

	parts := strings.Split(s, selectionSeparator)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse selection id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return NewSelectionSet(ids...), nil
}

// String returns the persisted form: ids in ascending order joined by commas.
func (s SelectionSet) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, selectionSeparator)
}

// Union returns a new set holding the members of both s and other.
func (s SelectionSet) Union(other SelectionSet) SelectionSet {
	merged := make([]int64, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewSelectionSet(merged...)
}

// Contains reports whether id is a member of s.
func (s SelectionSet) Contains(id int64) bool {
	_, found := slices.BinarySearch(s, id)
	return found
}

// Equal reports set equality.
func (s SelectionSet) Equal(other SelectionSet) bool {
	return slices.Equal(s, other)
}

// Len returns the number of members.
func (s SelectionSet) Len() int {
	return len(s)
}

// IDs returns the members as a plain slice.
func (s SelectionSet) IDs() []int64 {
	return slices.Clone([]int64(s))
}

// NotificationEvent tells a user that one of their subscriptions was removed.
type NotificationEvent struct {
	Recipient    string `json:"recipient"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
}
