package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/jyutdb/internal/model"
)

// ErrNotFound is returned when an entry is not in the mirror
var ErrNotFound = errors.New("entry not found")

// Metadata keys
const (
	keyName       = "name"
	keyVersion    = "version"
	keyCreateTime = "createTime"
	keyUpdateTime = "updateTime"
)

// Write replaces the mirror contents with d inside one transaction
func Write(conn *sql.DB, d *model.Database) (err error) {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = clearTables(tx); err != nil {
		return err
	}
	if err = writeMetadata(tx, d); err != nil {
		return err
	}
	for i, c := range d.Creators {
		if _, err = tx.Exec(`INSERT INTO creators (position, name, email, url) VALUES (?, ?, ?, ?)`,
			i, c.Name, c.Email, c.URL); err != nil {
			return fmt.Errorf("insert creator %q: %w", c.Name, err)
		}
	}
	for i, rec := range d.Data {
		if err = InsertEntry(tx, i, rec.ID, rec.Entry); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func clearTables(db DBExecutor) error {
	for _, table := range []string{"relations", "entries", "creators", "metadata"} {
		if _, err := db.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func writeMetadata(db DBExecutor, d *model.Database) error {
	meta := [][2]string{
		{keyName, d.Name},
		{keyVersion, d.Version},
		{keyCreateTime, d.CreateTime},
		{keyUpdateTime, d.UpdateTime},
	}
	for _, kv := range meta {
		if _, err := db.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("insert metadata %s: %w", kv[0], err)
		}
	}
	return nil
}

// InsertEntry writes one entry row and its relation members. A duplicate id replaces the earlier row.
func InsertEntry(db DBExecutor, position int, id string, e *model.Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", id, err)
	}
	display, _ := e.DisplayForm()

	_, err = db.Exec(`INSERT INTO entries
		(id, position, unicode, display, controversial, pinyin, jyutping, bbak_lau, head, tail, ref, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			unicode = excluded.unicode, display = excluded.display,
			controversial = excluded.controversial, pinyin = excluded.pinyin,
			jyutping = excluded.jyutping, bbak_lau = excluded.bbak_lau,
			head = excluded.head, tail = excluded.tail, ref = excluded.ref, body = excluded.body`,
		id, position, e.Unicode, display, int(e.Controversial), e.Pinyin, e.Jyutping, e.BbakLau,
		e.Head, e.Tail, e.Ref, string(body))
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", id, err)
	}

	if _, err := db.Exec(`DELETE FROM relations WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("clear relations of %s: %w", id, err)
	}
	if err := insertRelation(db, id, "related", e.Related); err != nil {
		return err
	}
	return insertRelation(db, id, "refBy", e.RefBy)
}

// insertRelation stores resolved groups member by member; raw lists use the id as char
func insertRelation(db DBExecutor, id, kind string, r model.Relation) error {
	members := r.Group()
	if !r.IsResolved() {
		for _, m := range r.IDs() {
			members = append(members, model.Member{ID: m, Char: m})
		}
	}
	for i, m := range members {
		if _, err := db.Exec(`INSERT INTO relations (entry_id, kind, position, member_id, member_char) VALUES (?, ?, ?, ?, ?)`,
			id, kind, i, m.ID, m.Char); err != nil {
			return fmt.Errorf("insert %s member %s of %s: %w", kind, m.ID, id, err)
		}
	}
	return nil
}

// GetEntry decodes the stored entry body for id
func GetEntry(db DBExecutor, id string) (*model.Entry, error) {
	var body string
	err := db.QueryRow(`SELECT body FROM entries WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query entry %s: %w", id, err)
	}
	var e model.Entry
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return &e, nil
}

// EntryIDs returns every entry id in output order
func EntryIDs(db DBExecutor) ([]string, error) {
	rows, err := db.Query(`SELECT id FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query entry ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ByJyutping returns the ids of entries read as jyutping, in output order
func ByJyutping(db DBExecutor, jyutping string) ([]string, error) {
	rows, err := db.Query(`SELECT id FROM entries WHERE jyutping = ? ORDER BY position`, jyutping)
	if err != nil {
		return nil, fmt.Errorf("query jyutping %s: %w", jyutping, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Members returns the relation members of one kind stored for id
func Members(db DBExecutor, id, kind string) ([]model.Member, error) {
	rows, err := db.Query(`SELECT member_id, member_char FROM relations
		WHERE entry_id = ? AND kind = ? ORDER BY position`, id, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s of %s: %w", kind, id, err)
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Char); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Metadata returns the stored document metadata
func Metadata(db DBExecutor) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
