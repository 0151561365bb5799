// Package history reads the version log the store keeps for every CV and
// turns a past version back into an editable document.
package history

import (
	"context"
	"log/slog"

	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// Log lists history entries. Entries are written by the store itself on
// every update, never by this package.
type Log struct {
	store database.Store
	log   *slog.Logger
}

func New(store database.Store, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{store: store, log: logger}
}

// List returns the versions of cvID, highest version first. A CV that was
// never updated, does not exist, or belongs to someone else has no history.
func (l *Log) List(ctx context.Context, cvID string) ([]models.CVHistoryEntry, error) {
	owner, err := gateway.Principal(ctx)
	if err != nil {
		return nil, err
	}

	l.log.Debug("listing history", "op", "history", "cv_id", cvID, "owner", owner)
	rows, err := l.store.ListHistory(ctx, owner, cvID)
	if err != nil {
		l.log.Warn("store operation failed", "op", "history", "cv_id", cvID, "owner", owner, "error", err)
		return nil, &gateway.RemoteStoreError{Op: "history", Err: err}
	}

	entries := make([]models.CVHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := gateway.DecodeHistoryRow(row)
		if err != nil {
			return nil, &gateway.RemoteStoreError{Op: "decode", Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Find returns the entry with the given version number
func (l *Log) Find(ctx context.Context, cvID string, version int) (models.CVHistoryEntry, error) {
	entries, err := l.List(ctx, cvID)
	if err != nil {
		return models.CVHistoryEntry{}, err
	}
	for _, e := range entries {
		if e.VersionNumber == version {
			return e, nil
		}
	}
	return models.CVHistoryEntry{}, gateway.ErrNotFound
}

// Restore returns the document stored in entry, keeping the CV identity so
// the next save updates the same row. Nothing is written until that save.
func Restore(entry models.CVHistoryEntry) models.CVDocument {
	doc := entry.Document.Clone().Normalized()
	doc.ID = entry.CVID
	return doc
}
