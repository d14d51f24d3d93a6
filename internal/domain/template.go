package domain

import "time"

// Category groups template steps and the keywords users subscribe to.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Keyword is a metadata tag attached to a selection.
type Keyword struct {
	Keyword     string `json:"keyword"`
	SelectionID int64  `json:"selection_id"`
}

// Selection is one choosable option of a Choice.
type Selection struct {
	ID       int64  `json:"id"`
	ChoiceID int64  `json:"choice_id"`
	Text     string `json:"text"`
}

// Choice is a question offering selections.
type Choice struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Multiple   bool        `json:"multiple"`
	Selections []Selection `json:"selections"`
}

// Step is a template step. Its excluded selections are replaced as a whole on update.
type Step struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Choices            []Choice  `json:"choices"`
	ExcludedSelections []int64   `json:"excluded_selections"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// StepWithExclusions is a step together with its resolved excluded selections.
type StepWithExclusions struct {
	Step
	Excluded []Selection `json:"excluded"`
}
