// Package store is the portal's domain store: the only component that talks
// to the database. Each operation validates its invariant inside the write
// transaction, so either the invariant holds and the write commits, or
// nothing is written and a typed error comes back.
package store

import (
	"html"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// sanitize escapes rich-text input at the storage boundary. The old portal
// persisted and rendered raw HTML from the editor; everything that reaches a
// Details or Message column goes through here instead.
func sanitize(s string) string {
	return html.EscapeString(s)
}
