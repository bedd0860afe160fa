package model

import "github.com/google/uuid"

// ensureID assigns a fresh UUID when the caller left the primary key empty.
// IDs are generated client-side so the same models work on SQLite in tests.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
