// Package profile keeps the account profile of the authenticated user.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// MaxBioLength is the longest bio accepted, in characters
const MaxBioLength = 500

// Patch lists the fields to change. Nil fields are left as they are.
type Patch struct {
	Email     *string
	FullName  *string
	AvatarURL *string
	Phone     *string
	Bio       *string
	Location  *string
	Website   *string
}

// Service reads and writes the profile of the principal in the context
type Service struct {
	store database.Store
	log   *slog.Logger
	now   func() time.Time
}

func New(store database.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger, now: time.Now}
}

// Get returns the profile of the principal. A user who never saved a
// profile gets an empty one.
func (s *Service) Get(ctx context.Context) (models.Profile, error) {
	userID, err := gateway.Principal(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	row, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, database.ErrNoRows) {
		return models.Profile{UserID: userID}, nil
	}
	if err != nil {
		s.log.Warn("store operation failed", "op", "profile", "owner", userID, "error", err)
		return models.Profile{}, &gateway.RemoteStoreError{Op: "profile", Err: err}
	}
	return fromRow(row), nil
}

// Update applies p to the stored profile and returns the result
func (s *Service) Update(ctx context.Context, p Patch) (models.Profile, error) {
	if p.Bio != nil && utf8.RuneCountInString(*p.Bio) > MaxBioLength {
		return models.Profile{}, &gateway.ValidationError{
			Field:   "bio",
			Message: "bio must be at most 500 characters",
		}
	}

	current, err := s.Get(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	apply(&current.Email, p.Email)
	apply(&current.FullName, p.FullName)
	apply(&current.AvatarURL, p.AvatarURL)
	apply(&current.Phone, p.Phone)
	apply(&current.Bio, p.Bio)
	apply(&current.Location, p.Location)
	apply(&current.Website, p.Website)

	now := s.now().UTC()
	if current.CreatedAt.IsZero() {
		current.CreatedAt = now
	}
	current.UpdatedAt = now

	s.log.Debug("saving profile", "op", "profile", "owner", current.UserID)
	if err := s.store.UpsertProfile(ctx, toRow(current)); err != nil {
		s.log.Warn("store operation failed", "op", "profile", "owner", current.UserID, "error", err)
		return models.Profile{}, &gateway.RemoteStoreError{Op: "profile", Err: err}
	}
	return current, nil
}

func apply(field *string, v *string) {
	if v != nil {
		*field = *v
	}
}

func fromRow(r database.ProfileRow) models.Profile {
	return models.Profile{
		UserID:    r.UserID,
		Email:     r.Email,
		FullName:  r.FullName,
		AvatarURL: r.AvatarURL,
		Phone:     r.Phone,
		Bio:       r.Bio,
		Location:  r.Location,
		Website:   r.Website,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toRow(p models.Profile) database.ProfileRow {
	return database.ProfileRow{
		UserID:    p.UserID,
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Phone:     p.Phone,
		Bio:       p.Bio,
		Location:  p.Location,
		Website:   p.Website,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
