package repository

import "errors"

// ErrReferenced is returned by guarded deletes when other rows still point
// at the entity. Nothing is deleted.
var ErrReferenced = errors.New("entity is still referenced")
