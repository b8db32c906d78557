package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-process backend. Transactions are serialized by a single
// mutex and run against a clone of the state that replaces the live state
// only when the transaction body succeeds.
//
// Stored values are never mutated in place: every write stores a fresh copy,
// so a clone only needs to copy the maps.
type Memory struct {
	mu    sync.Mutex
	state *state
}

var _ interfaces.Repository = &Memory{}

type state struct {
	actions   map[string]map[model.ActionID]*model.Action
	orders    map[string]map[model.ActionID]*model.KanbanOrder
	items     map[string]map[model.ChecklistItemID]*model.ChecklistItem
	movements map[string][]*model.ActionMovement
}

func newState() *state {
	return &state{
		actions:   make(map[string]map[model.ActionID]*model.Action),
		orders:    make(map[string]map[model.ActionID]*model.KanbanOrder),
		items:     make(map[string]map[model.ChecklistItemID]*model.ChecklistItem),
		movements: make(map[string][]*model.ActionMovement),
	}
}

func cloneNested[K comparable, V any](src map[string]map[K]V) map[string]map[K]V {
	dst := make(map[string]map[K]V, len(src))
	for ws, inner := range src {
		dst[ws] = maps.Clone(inner)
	}
	return dst
}

func (s *state) clone() *state {
	movements := make(map[string][]*model.ActionMovement, len(s.movements))
	for ws, list := range s.movements {
		// Append-only: the clone may share the backing array up to len.
		movements[ws] = list[:len(list):len(list)]
	}
	return &state{
		actions:   cloneNested(s.actions),
		orders:    cloneNested(s.orders),
		items:     cloneNested(s.items),
		movements: movements,
	}
}

func New() *Memory {
	return &Memory{state: newState()}
}

// RunTransaction executes fn with exclusive access to a working copy of the state
func (m *Memory) RunTransaction(ctx context.Context, fn interfaces.TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "transaction cancelled before start")
	}

	work := m.state.clone()
	if err := fn(ctx, &transaction{state: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "transaction cancelled before commit")
	}

	m.state = work
	return nil
}

func (m *Memory) Close() error {
	return nil
}

type transaction struct {
	state *state
}

func (t *transaction) Action() interfaces.ActionRepository {
	return &actionRepository{state: t.state}
}

func (t *transaction) Order() interfaces.OrderRepository {
	return &orderRepository{state: t.state}
}

func (t *transaction) Checklist() interfaces.ChecklistRepository {
	return &checklistRepository{state: t.state}
}

func (t *transaction) Movement() interfaces.MovementRepository {
	return &movementRepository{state: t.state}
}
