package domain

import "errors"

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrEmptySnapshot    = errors.New("empty snapshot")
)
