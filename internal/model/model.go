package model

import "github.com/google/uuid"

// ensureID assigns a random UUID when the primary key has not been set.
// Used from BeforeCreate hooks so ids work on postgres and sqlite alike.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
