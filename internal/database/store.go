package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNoRows is returned when a row does not exist or belongs to another owner
var ErrNoRows = errors.New("no rows")

// CVRow is one row of the cvs table. Document sections are stored as
// opaque JSON.
type CVRow struct {
	ID             string
	OwnerID        string
	Title          string
	PersonalData   json.RawMessage
	Objective      json.RawMessage
	Experiences    json.RawMessage
	Education      json.RawMessage
	Skills         string
	Languages      json.RawMessage
	SelectedDesign string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HistoryRow is one row of the cv_history table
type HistoryRow struct {
	ID                string
	CVID              string
	VersionNumber     int
	Title             string
	PersonalData      json.RawMessage
	Objective         json.RawMessage
	Experiences       json.RawMessage
	Education         json.RawMessage
	Skills            string
	Languages         json.RawMessage
	SelectedDesign    string
	ChangeDescription *string
	CreatedAt         time.Time
}

// DesignUsage is the template and creation time of a CV, across all owners
type DesignUsage struct {
	Design    string
	CreatedAt time.Time
}

// ProfileRow is one row of the profiles table, keyed by the owning user
type ProfileRow struct {
	UserID    string
	Email     string
	FullName  string
	AvatarURL string
	Phone     string
	Bio       string
	Location  string
	Website   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the relational store behind the persistence gateway. Every
// UPDATE of a cvs row appends the previous row values to cv_history, and
// deleting a cv removes its history.
type Store interface {
	InsertCV(ctx context.Context, row CVRow) error
	// UpdateCV overwrites the row matching row.ID and row.OwnerID.
	// It returns ErrNoRows when nothing matched.
	UpdateCV(ctx context.Context, row CVRow) error
	ListCVs(ctx context.Context, ownerID string) ([]CVRow, error)
	GetCV(ctx context.Context, ownerID, id string) (CVRow, error)
	DeleteCV(ctx context.Context, ownerID, id string) error
	// ListHistory returns the history of a cv owned by ownerID, newest
	// version first. Unknown or foreign cvs yield an empty list.
	ListHistory(ctx context.Context, ownerID, cvID string) ([]HistoryRow, error)
	DesignUsage(ctx context.Context) ([]DesignUsage, error)
	// GetProfile returns ErrNoRows when the user has no profile yet.
	GetProfile(ctx context.Context, userID string) (ProfileRow, error)
	// UpsertProfile creates or overwrites the profile of row.UserID. An
	// existing row keeps its created_at.
	UpsertProfile(ctx context.Context, row ProfileRow) error
	Close() error
}

// timeLayout has a fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
