package model

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/types"
)

// MovementID is a unique identifier for an action movement (UUIDv7, time ordered)
type MovementID string

// NewMovementID generates a new MovementID
func NewMovementID() MovementID {
	return MovementID(uuid.Must(uuid.NewV7()).String())
}

func (id MovementID) String() string {
	return string(id)
}

// ActionMovement is an immutable audit record of a status change
type ActionMovement struct {
	ID         MovementID
	ActionID   ActionID
	FromStatus types.ActionStatus
	ToStatus   types.ActionStatus
	ActorID    string
	Notes      string
	CreatedAt  time.Time
}

// Copy returns a copy of the movement
func (m *ActionMovement) Copy() *ActionMovement {
	copied := *m
	return &copied
}

// MovementCursor points at the last movement of a history page. The next page
// starts strictly after it in (CreatedAt desc, ID desc) order.
type MovementCursor struct {
	CreatedAt time.Time
	ID        MovementID
}

// CursorOf returns the cursor positioned at m
func CursorOf(m *ActionMovement) *MovementCursor {
	return &MovementCursor{CreatedAt: m.CreatedAt, ID: m.ID}
}

// After reports whether m comes after the cursor in descending history order
func (c *MovementCursor) After(m *ActionMovement) bool {
	if c == nil {
		return true
	}
	if m.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return m.CreatedAt.Equal(c.CreatedAt) && m.ID < c.ID
}

// Encode serializes the cursor into an opaque token
func (c *MovementCursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + string(c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeMovementCursor parses a token produced by Encode. Empty token yields nil.
func DecodeMovementCursor(token string) (*MovementCursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid cursor encoding", goerr.V("cursor", token))
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, goerr.New("malformed cursor", goerr.V("cursor", token))
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid cursor timestamp", goerr.V("cursor", token))
	}
	return &MovementCursor{CreatedAt: createdAt, ID: MovementID(id)}, nil
}

// MovementQuery selects one page of an action's movements
type MovementQuery struct {
	Limit int
	After *MovementCursor
}
