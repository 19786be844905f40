package sqlite

const schemaSQL = `
-- Mission definitions
CREATE TABLE IF NOT EXISTS missions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	instructions TEXT NOT NULL,
	keywords TEXT,
	platform TEXT NOT NULL,
	max_results INTEGER NOT NULL,
	quality_threshold REAL NOT NULL,
	cadence TEXT,
	enabled INTEGER NOT NULL DEFAULT 1,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_missions_enabled ON missions(enabled);

-- Scout runs
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	mission_id TEXT NOT NULL,
	status TEXT NOT NULL,
	found INTEGER NOT NULL DEFAULT 0,
	processed INTEGER NOT NULL DEFAULT 0,
	stored INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	started_at INTEGER NOT NULL,
	completed_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_runs_mission ON runs(mission_id, started_at);

-- Gate decision audit trail (append-only)
CREATE TABLE IF NOT EXISTS gate_decisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	item_key TEXT NOT NULL,
	verdict TEXT NOT NULL,
	score REAL NOT NULL,
	rationale TEXT,
	sentiment TEXT,
	decided_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_run ON gate_decisions(run_id, stage);

-- Persisted discoveries
CREATE TABLE IF NOT EXISTS discoveries (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	mission_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	external_id TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	developer TEXT,
	content TEXT,
	engagement_score REAL NOT NULL DEFAULT 0,
	relevance_score REAL NOT NULL DEFAULT 0,
	sentiment TEXT,
	metadata TEXT,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_discoveries_mission ON discoveries(mission_id, created_at);
CREATE INDEX IF NOT EXISTS idx_discoveries_run ON discoveries(run_id);
CREATE INDEX IF NOT EXISTS idx_discoveries_url ON discoveries(mission_id, url);
`
