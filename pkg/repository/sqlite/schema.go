package sqlite

// SchemaSQL creates every table and index used by the backend. Timestamps are
// stored as unix nanoseconds so that history ordering keeps full precision.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS actions (
	workspace_id   TEXT NOT NULL,
	id             TEXT NOT NULL,
	team_id        TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	assignee_ids   TEXT NOT NULL DEFAULT '[]',
	due_date       INTEGER,
	status         TEXT NOT NULL,
	is_blocked     INTEGER NOT NULL DEFAULT 0,
	blocked_reason TEXT,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL,
	deleted_at     INTEGER,
	PRIMARY KEY (workspace_id, id)
);

CREATE INDEX IF NOT EXISTS idx_actions_team ON actions(workspace_id, team_id, created_at);

CREATE TABLE IF NOT EXISTS kanban_orders (
	workspace_id  TEXT NOT NULL,
	action_id     TEXT NOT NULL,
	team_id       TEXT NOT NULL,
	column_id     TEXT NOT NULL,
	position      INTEGER NOT NULL,
	sort_order    INTEGER NOT NULL,
	last_moved_at INTEGER NOT NULL,
	PRIMARY KEY (workspace_id, action_id)
);

CREATE INDEX IF NOT EXISTS idx_kanban_orders_column ON kanban_orders(workspace_id, team_id, column_id, position);

CREATE TABLE IF NOT EXISTS checklist_items (
	workspace_id TEXT NOT NULL,
	id           TEXT NOT NULL,
	action_id    TEXT NOT NULL,
	description  TEXT NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0,
	completed_at INTEGER,
	item_order   INTEGER NOT NULL,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL,
	PRIMARY KEY (workspace_id, id)
);

CREATE INDEX IF NOT EXISTS idx_checklist_items_action ON checklist_items(workspace_id, action_id, item_order);

CREATE TABLE IF NOT EXISTS action_movements (
	workspace_id TEXT NOT NULL,
	id           TEXT NOT NULL,
	action_id    TEXT NOT NULL,
	from_status  TEXT NOT NULL,
	to_status    TEXT NOT NULL,
	actor_id     TEXT NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	PRIMARY KEY (workspace_id, id)
);

CREATE INDEX IF NOT EXISTS idx_action_movements_action ON action_movements(workspace_id, action_id, created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_action_movements_history ON action_movements(workspace_id, created_at DESC, id DESC);
`
