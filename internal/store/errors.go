package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreClosed is returned by any operation issued after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrSourceMissing is returned by Backup when the live store file
	// does not exist on disk.
	ErrSourceMissing = errors.New("store file does not exist")

	// ErrBackupMissing is returned by Restore when the named backup file
	// does not exist. The live store is left untouched.
	ErrBackupMissing = errors.New("backup file does not exist")
)

// MigrationError is fatal: Open fails and the store must not be used.
type MigrationError struct {
	Version int
	Name    string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("schema migration %d (%s) failed: %v", e.Version, e.Name, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// InvalidRecordError names the field that violated a domain constraint.
type InvalidRecordError struct {
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &InvalidRecordError{Field: field, Reason: reason}
}

// ImportError wraps whatever failed during a rolled-back import.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed, no changes applied: %v", e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
