package db

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS creators (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	email    TEXT NOT NULL DEFAULT '',
	url      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS entries (
	id            TEXT PRIMARY KEY,
	position      INTEGER NOT NULL,
	unicode       TEXT NOT NULL DEFAULT '',
	display       TEXT NOT NULL DEFAULT '',
	controversial INTEGER NOT NULL DEFAULT 0,
	pinyin        TEXT NOT NULL DEFAULT '',
	jyutping      TEXT NOT NULL DEFAULT '',
	bbak_lau      TEXT NOT NULL DEFAULT '',
	head          TEXT NOT NULL DEFAULT '',
	tail          TEXT NOT NULL DEFAULT '',
	ref           TEXT NOT NULL DEFAULT '',
	body          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_jyutping ON entries(jyutping);

CREATE TABLE IF NOT EXISTS relations (
	entry_id    TEXT NOT NULL REFERENCES entries(id),
	kind        TEXT NOT NULL,
	position    INTEGER NOT NULL,
	member_id   TEXT NOT NULL,
	member_char TEXT NOT NULL,
	PRIMARY KEY (entry_id, kind, position)
);
`
