// Package gateway persists CV documents for the authenticated principal.
// Every operation is scoped to the principal carried by the context.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khrees2412/cvbuilder/internal/auth"
	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// Gateway saves, lists, loads and deletes CVs. Concurrent saves of the
// same CV are last-write-wins.
type Gateway struct {
	store database.Store
	log   *slog.Logger
	now   func() time.Time
}

func New(store database.Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: store, log: logger, now: time.Now}
}

// ValidateTitle rejects blank titles
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

// Principal returns the user id from ctx or ErrAuthenticationRequired
func Principal(ctx context.Context) (string, error) {
	owner, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return "", ErrAuthenticationRequired
	}
	return owner, nil
}

// Save inserts doc when it has no identity and updates the owned row
// otherwise. The returned document carries the (possibly new) identity.
func (g *Gateway) Save(ctx context.Context, title string, doc models.CVDocument) (models.SavedCV, error) {
	owner, err := Principal(ctx)
	if err != nil {
		return models.SavedCV{}, err
	}

	now := g.now().UTC()
	row := database.CVRow{ID: doc.ID, OwnerID: owner, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := encodeRow(&row, doc); err != nil {
		return models.SavedCV{}, err
	}

	if row.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return models.SavedCV{}, err
		}
		row.ID = id.String()

		g.log.Debug("inserting cv", "op", "save", "cv_id", row.ID, "owner", owner)
		if err := g.store.InsertCV(ctx, row); err != nil {
			return models.SavedCV{}, g.remoteErr("insert", row.ID, owner, err)
		}
		return g.decode(row, owner)
	}

	g.log.Debug("updating cv", "op", "save", "cv_id", row.ID, "owner", owner)
	if err := g.store.UpdateCV(ctx, row); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			g.log.Warn("update matched no cv", "op", "save", "cv_id", row.ID, "owner", owner)
			return models.SavedCV{}, ErrNotFound
		}
		return models.SavedCV{}, g.remoteErr("update", row.ID, owner, err)
	}

	// created_at is not known to the caller; read the row back
	stored, err := g.store.GetCV(ctx, owner, row.ID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return models.SavedCV{}, ErrNotFound
		}
		return models.SavedCV{}, g.remoteErr("get", row.ID, owner, err)
	}
	return g.decode(stored, owner)
}

// List returns the principal's CVs, most recently updated first
func (g *Gateway) List(ctx context.Context) ([]models.SavedCV, error) {
	owner, err := Principal(ctx)
	if err != nil {
		return nil, err
	}

	g.log.Debug("listing cvs", "op", "list", "owner", owner)
	rows, err := g.store.ListCVs(ctx, owner)
	if err != nil {
		return nil, g.remoteErr("list", "", owner, err)
	}

	cvs := make([]models.SavedCV, 0, len(rows))
	for _, row := range rows {
		cv, err := g.decode(row, owner)
		if err != nil {
			return nil, err
		}
		cvs = append(cvs, cv)
	}
	return cvs, nil
}

// LoadByID returns one CV. Unknown ids and ids owned by someone else are
// both ErrNotFound.
func (g *Gateway) LoadByID(ctx context.Context, id string) (models.SavedCV, error) {
	owner, err := Principal(ctx)
	if err != nil {
		return models.SavedCV{}, err
	}

	g.log.Debug("loading cv", "op", "load", "cv_id", id, "owner", owner)
	row, err := g.store.GetCV(ctx, owner, id)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return models.SavedCV{}, ErrNotFound
		}
		return models.SavedCV{}, g.remoteErr("get", id, owner, err)
	}
	return g.decode(row, owner)
}

// Delete removes the CV and its history
func (g *Gateway) Delete(ctx context.Context, id string) error {
	owner, err := Principal(ctx)
	if err != nil {
		return err
	}

	g.log.Debug("deleting cv", "op", "delete", "cv_id", id, "owner", owner)
	if err := g.store.DeleteCV(ctx, owner, id); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return ErrNotFound
		}
		return g.remoteErr("delete", id, owner, err)
	}
	return nil
}

// Store exposes the backing store to collaborators sharing it
func (g *Gateway) Store() database.Store {
	return g.store
}

func (g *Gateway) decode(row database.CVRow, owner string) (models.SavedCV, error) {
	cv, err := DecodeRow(row)
	if err != nil {
		return models.SavedCV{}, g.remoteErr("decode", row.ID, owner, err)
	}
	return cv, nil
}

func (g *Gateway) remoteErr(op, id, owner string, err error) error {
	g.log.Warn("store operation failed", "op", op, "cv_id", id, "owner", owner, "error", err)
	return &RemoteStoreError{Op: op, Err: err}
}
