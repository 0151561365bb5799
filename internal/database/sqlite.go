package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// Schema versions:
// 0 - empty database
// 1 - cvs and cv_history with the history trigger; objective column backfilled
// 2 - profiles table; history trigger writes uuid ids
const currentSchemaVersion = 2

// SQLite is the default Store, a single local database file
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and applies the schema.
// It is safe to call on an existing database.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One writer at a time; also keeps the foreign_keys pragma on the only connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// DB returns the underlying handle
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database connection
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	// Databases written before the objective block existed lack the column.
	// The ALTER must run before the schema script builds the trigger over it.
	if err := addColumnIfMissing(db, "cvs", "objective", "TEXT NOT NULL DEFAULT '{}'"); err != nil {
		return err
	}
	if err := addColumnIfMissing(db, "cv_history", "objective", "TEXT NOT NULL DEFAULT '{}'"); err != nil {
		return err
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// addColumnIfMissing is a no-op when the table does not exist yet
func addColumnIfMissing(db *sql.DB, table, column, decl string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	exists := false
	found := false
	for rows.Next() {
		exists = true
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if !exists || found {
		return nil
	}
	rows.Close()

	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("add %s.%s: %w", table, column, err)
	}
	return nil
}

func (s *SQLite) InsertCV(ctx context.Context, row CVRow) error {
	query := `INSERT INTO cvs (id, owner_id, title, personal_data, objective, experiences,
			  education, skills, languages, selected_design, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, row.ID, row.OwnerID, row.Title,
		string(row.PersonalData), string(row.Objective), string(row.Experiences),
		string(row.Education), row.Skills, string(row.Languages), row.SelectedDesign,
		formatTime(row.CreatedAt), formatTime(row.UpdatedAt))
	return err
}

func (s *SQLite) UpdateCV(ctx context.Context, row CVRow) error {
	query := `UPDATE cvs SET title=?, personal_data=?, objective=?, experiences=?, education=?,
			  skills=?, languages=?, selected_design=?, updated_at=? WHERE id=? AND owner_id=?`
	result, err := s.db.ExecContext(ctx, query, row.Title,
		string(row.PersonalData), string(row.Objective), string(row.Experiences),
		string(row.Education), row.Skills, string(row.Languages), row.SelectedDesign,
		formatTime(row.UpdatedAt), row.ID, row.OwnerID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

const cvColumns = `id, owner_id, title, personal_data, objective, experiences, education,
	skills, languages, selected_design, created_at, updated_at`

func (s *SQLite) ListCVs(ctx context.Context, ownerID string) ([]CVRow, error) {
	query := `SELECT ` + cvColumns + ` FROM cvs WHERE owner_id=? ORDER BY updated_at DESC, id`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cvs := []CVRow{}
	for rows.Next() {
		row, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		cvs = append(cvs, row)
	}
	return cvs, rows.Err()
}

func (s *SQLite) GetCV(ctx context.Context, ownerID, id string) (CVRow, error) {
	query := `SELECT ` + cvColumns + ` FROM cvs WHERE id=? AND owner_id=?`
	row, err := scanCV(s.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return CVRow{}, ErrNoRows
	}
	return row, err
}

func (s *SQLite) DeleteCV(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cvs WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

func (s *SQLite) ListHistory(ctx context.Context, ownerID, cvID string) ([]HistoryRow, error) {
	query := `SELECT h.id, h.cv_id, h.version_number, h.title, h.personal_data, h.objective,
			  h.experiences, h.education, h.skills, h.languages, h.selected_design,
			  h.change_description, h.created_at
			  FROM cv_history h JOIN cvs c ON c.id = h.cv_id
			  WHERE h.cv_id=? AND c.owner_id=?
			  ORDER BY h.version_number DESC`
	rows, err := s.db.QueryContext(ctx, query, cvID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []HistoryRow{}
	for rows.Next() {
		var h HistoryRow
		var personal, objective, experiences, education, langs, created string
		if err := rows.Scan(&h.ID, &h.CVID, &h.VersionNumber, &h.Title, &personal, &objective,
			&experiences, &education, &h.Skills, &langs, &h.SelectedDesign,
			&h.ChangeDescription, &created); err != nil {
			return nil, err
		}
		h.PersonalData = []byte(personal)
		h.Objective = []byte(objective)
		h.Experiences = []byte(experiences)
		h.Education = []byte(education)
		h.Languages = []byte(langs)
		if h.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("history %s: %w", h.ID, err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (s *SQLite) DesignUsage(ctx context.Context) ([]DesignUsage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT selected_design, created_at FROM cvs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := []DesignUsage{}
	for rows.Next() {
		var u DesignUsage
		var created string
		if err := rows.Scan(&u.Design, &created); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

func (s *SQLite) GetProfile(ctx context.Context, userID string) (ProfileRow, error) {
	query := `SELECT user_id, email, full_name, avatar_url, phone, bio, location, website,
			  created_at, updated_at FROM profiles WHERE user_id=?`
	var p ProfileRow
	var created, updated string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Email, &p.FullName,
		&p.AvatarURL, &p.Phone, &p.Bio, &p.Location, &p.Website, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return ProfileRow{}, ErrNoRows
	}
	if err != nil {
		return ProfileRow{}, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return ProfileRow{}, fmt.Errorf("profile %s: %w", userID, err)
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return ProfileRow{}, fmt.Errorf("profile %s: %w", userID, err)
	}
	return p, nil
}

func (s *SQLite) UpsertProfile(ctx context.Context, row ProfileRow) error {
	query := `INSERT INTO profiles (user_id, email, full_name, avatar_url, phone, bio, location,
			  website, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(user_id) DO UPDATE SET email=excluded.email, full_name=excluded.full_name,
			  avatar_url=excluded.avatar_url, phone=excluded.phone, bio=excluded.bio,
			  location=excluded.location, website=excluded.website, updated_at=excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query, row.UserID, row.Email, row.FullName, row.AvatarURL,
		row.Phone, row.Bio, row.Location, row.Website,
		formatTime(row.CreatedAt), formatTime(row.UpdatedAt))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCV(sc scanner) (CVRow, error) {
	var row CVRow
	var personal, objective, experiences, education, langs, created, updated string
	if err := sc.Scan(&row.ID, &row.OwnerID, &row.Title, &personal, &objective, &experiences,
		&education, &row.Skills, &langs, &row.SelectedDesign, &created, &updated); err != nil {
		return CVRow{}, err
	}
	row.PersonalData = []byte(personal)
	row.Objective = []byte(objective)
	row.Experiences = []byte(experiences)
	row.Education = []byte(education)
	row.Languages = []byte(langs)

	var err error
	if row.CreatedAt, err = parseTime(created); err != nil {
		return CVRow{}, fmt.Errorf("cv %s: %w", row.ID, err)
	}
	if row.UpdatedAt, err = parseTime(updated); err != nil {
		return CVRow{}, fmt.Errorf("cv %s: %w", row.ID, err)
	}
	return row, nil
}
