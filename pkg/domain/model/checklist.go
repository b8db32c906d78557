package model

import (
	"cmp"
	"time"

	"github.com/google/uuid"
)

// ChecklistItemID is a unique identifier for a checklist item
type ChecklistItemID string

// NewChecklistItemID generates a new ChecklistItemID
func NewChecklistItemID() ChecklistItemID {
	return ChecklistItemID(uuid.Must(uuid.NewV7()).String())
}

func (id ChecklistItemID) String() string {
	return string(id)
}

// ChecklistItem is a sub-task belonging to exactly one action
type ChecklistItem struct {
	ID          ChecklistItemID
	ActionID    ActionID
	Description string
	IsCompleted bool
	CompletedAt *time.Time
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Toggle flips the completion state. CompletedAt is set to now when the item
// becomes completed and cleared otherwise.
func (c *ChecklistItem) Toggle(now time.Time) {
	if c.IsCompleted {
		c.IsCompleted = false
		c.CompletedAt = nil
		return
	}
	c.IsCompleted = true
	c.CompletedAt = &now
}

// Copy returns a deep copy of the item
func (c *ChecklistItem) Copy() *ChecklistItem {
	copied := *c
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		copied.CompletedAt = &t
	}
	return &copied
}

// CompareChecklistItem orders items by Order, then CreatedAt, then ID
func CompareChecklistItem(a, b *ChecklistItem) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
