package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultVersion is the version stamped on a freshly created database
const DefaultVersion = "0.0.1"

// Creator is a contributor listed in a database's metadata
type Creator struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Record is one keyed entry of a database document
type Record struct {
	ID    string
	Entry *Entry
}

// Records is the entry map of a database document in document order.
// It encodes as a JSON object; decoding keeps duplicated keys so callers can see them.
type Records []Record

// Database is one partition file, or the merged output document
type Database struct {
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	CreateTime string    `json:"createTime"`
	UpdateTime string    `json:"updateTime"`
	Creators   []Creator `json:"creators"`
	Data       Records   `json:"data"`
}

// NewDatabase returns an empty database with fresh timestamps
func NewDatabase(name string, now time.Time) *Database {
	if name == "" {
		name = "newDatabase"
	}
	ts := Timestamp(now)
	return &Database{
		Name:       name,
		Version:    DefaultVersion,
		CreateTime: ts,
		UpdateTime: ts,
		Creators:   []Creator{},
		Data:       Records{},
	}
}

// Timestamp formats t the way database metadata stores it (UTC, millisecond ISO-8601)
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// AddCreator appends c unless a creator with the same name and email is already listed
func (d *Database) AddCreator(c Creator) bool {
	for _, existing := range d.Creators {
		if existing.Name == c.Name && existing.Email == c.Email {
			return false
		}
	}
	d.Creators = append(d.Creators, c)
	return true
}

// MarshalJSON writes the records as an object in order
func (r Records) MarshalJSON() ([]byte, error) {
	return encodeObject(len(r), func(i int) (string, any) {
		return r[i].ID, r[i].Entry
	})
}

// UnmarshalJSON reads an object, preserving key order and duplicates
func (r *Records) UnmarshalJSON(data []byte) error {
	records := Records{}
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("entry %s: %w", key, err)
		}
		records = append(records, Record{ID: key, Entry: &e})
		return nil
	})
	if err != nil {
		return err
	}
	*r = records
	return nil
}

// Clone deep-copies the database document
func (d *Database) Clone() *Database {
	c := *d
	c.Creators = append([]Creator(nil), d.Creators...)
	c.Data = make(Records, len(d.Data))
	for i, rec := range d.Data {
		c.Data[i] = Record{ID: rec.ID, Entry: rec.Entry.Clone()}
	}
	return &c
}
