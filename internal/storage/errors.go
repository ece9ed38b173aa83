package storage

import "errors"

var (
	// ErrProjectNotFound is returned when no storage tree exists for a name.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectExists is returned when creating a project whose storage
	// tree is already present.
	ErrProjectExists = errors.New("project already exists")
)
