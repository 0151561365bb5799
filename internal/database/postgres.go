package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema_postgres.sql
var postgresSchema string

// Postgres is the hosted Store backed by a pgx connection pool
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, pings, and ensures the schema exists
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)
	return err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// validID reports whether id can match a uuid column. Anything else can
// never match a row, so lookups short-circuit to ErrNoRows.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (p *Postgres) InsertCV(ctx context.Context, row CVRow) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO cvs (id, owner_id, title, personal_data, objective, experiences,
	education, skills, languages, selected_design, created_at, updated_at)
VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, $7::jsonb, $8, $9::jsonb, $10, $11, $12)
`, row.ID, row.OwnerID, row.Title, string(row.PersonalData), string(row.Objective),
		string(row.Experiences), string(row.Education), row.Skills, string(row.Languages),
		row.SelectedDesign, row.CreatedAt.UTC(), row.UpdatedAt.UTC())
	return err
}

func (p *Postgres) UpdateCV(ctx context.Context, row CVRow) error {
	if !validID(row.ID) {
		return ErrNoRows
	}
	tag, err := p.pool.Exec(ctx, `
UPDATE cvs SET title = $3, personal_data = $4::jsonb, objective = $5::jsonb,
	experiences = $6::jsonb, education = $7::jsonb, skills = $8, languages = $9::jsonb,
	selected_design = $10, updated_at = $11
WHERE id = $1 AND owner_id = $2
`, row.ID, row.OwnerID, row.Title, string(row.PersonalData), string(row.Objective),
		string(row.Experiences), string(row.Education), row.Skills, string(row.Languages),
		row.SelectedDesign, row.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

const pgCVColumns = `id::text, owner_id, title, personal_data::text, objective::text,
	experiences::text, education::text, skills, languages::text, selected_design,
	created_at, updated_at`

func (p *Postgres) ListCVs(ctx context.Context, ownerID string) ([]CVRow, error) {
	rows, err := p.pool.Query(ctx, `
SELECT `+pgCVColumns+`
FROM cvs WHERE owner_id = $1
ORDER BY updated_at DESC, id
`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cvs := []CVRow{}
	for rows.Next() {
		row, err := scanPgCV(rows)
		if err != nil {
			return nil, err
		}
		cvs = append(cvs, row)
	}
	return cvs, rows.Err()
}

func (p *Postgres) GetCV(ctx context.Context, ownerID, id string) (CVRow, error) {
	if !validID(id) {
		return CVRow{}, ErrNoRows
	}
	row, err := scanPgCV(p.pool.QueryRow(ctx, `
SELECT `+pgCVColumns+`
FROM cvs WHERE id = $1 AND owner_id = $2
`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return CVRow{}, ErrNoRows
	}
	return row, err
}

func (p *Postgres) DeleteCV(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return ErrNoRows
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM cvs WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (p *Postgres) ListHistory(ctx context.Context, ownerID, cvID string) ([]HistoryRow, error) {
	entries := []HistoryRow{}
	if !validID(cvID) {
		return entries, nil
	}
	rows, err := p.pool.Query(ctx, `
SELECT h.id::text, h.cv_id::text, h.version_number, h.title, h.personal_data::text,
	h.objective::text, h.experiences::text, h.education::text, h.skills,
	h.languages::text, h.selected_design, h.change_description, h.created_at
FROM cv_history h JOIN cvs c ON c.id = h.cv_id
WHERE h.cv_id = $1 AND c.owner_id = $2
ORDER BY h.version_number DESC
`, cvID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var h HistoryRow
		var personal, objective, experiences, education, langs string
		if err := rows.Scan(&h.ID, &h.CVID, &h.VersionNumber, &h.Title, &personal, &objective,
			&experiences, &education, &h.Skills, &langs, &h.SelectedDesign,
			&h.ChangeDescription, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.PersonalData = []byte(personal)
		h.Objective = []byte(objective)
		h.Experiences = []byte(experiences)
		h.Education = []byte(education)
		h.Languages = []byte(langs)
		h.CreatedAt = h.CreatedAt.UTC()
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (p *Postgres) DesignUsage(ctx context.Context) ([]DesignUsage, error) {
	rows, err := p.pool.Query(ctx, `SELECT selected_design, created_at FROM cvs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := []DesignUsage{}
	for rows.Next() {
		var u DesignUsage
		if err := rows.Scan(&u.Design, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = u.CreatedAt.UTC()
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

func (p *Postgres) GetProfile(ctx context.Context, userID string) (ProfileRow, error) {
	var pr ProfileRow
	err := p.pool.QueryRow(ctx, `
SELECT user_id, email, full_name, avatar_url, phone, bio, location, website, created_at, updated_at
FROM profiles WHERE user_id = $1
`, userID).Scan(&pr.UserID, &pr.Email, &pr.FullName, &pr.AvatarURL, &pr.Phone, &pr.Bio,
		&pr.Location, &pr.Website, &pr.CreatedAt, &pr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProfileRow{}, ErrNoRows
	}
	if err != nil {
		return ProfileRow{}, err
	}
	pr.CreatedAt = pr.CreatedAt.UTC()
	pr.UpdatedAt = pr.UpdatedAt.UTC()
	return pr, nil
}

func (p *Postgres) UpsertProfile(ctx context.Context, row ProfileRow) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO profiles (user_id, email, full_name, avatar_url, phone, bio, location, website,
	created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name,
	avatar_url = EXCLUDED.avatar_url, phone = EXCLUDED.phone, bio = EXCLUDED.bio,
	location = EXCLUDED.location, website = EXCLUDED.website, updated_at = EXCLUDED.updated_at
`, row.UserID, row.Email, row.FullName, row.AvatarURL, row.Phone, row.Bio, row.Location,
		row.Website, row.CreatedAt.UTC(), row.UpdatedAt.UTC())
	return err
}

func scanPgCV(row pgx.Row) (CVRow, error) {
	var cv CVRow
	var personal, objective, experiences, education, langs string
	if err := row.Scan(&cv.ID, &cv.OwnerID, &cv.Title, &personal, &objective, &experiences,
		&education, &cv.Skills, &langs, &cv.SelectedDesign, &cv.CreatedAt, &cv.UpdatedAt); err != nil {
		return CVRow{}, err
	}
	cv.PersonalData = []byte(personal)
	cv.Objective = []byte(objective)
	cv.Experiences = []byte(experiences)
	cv.Education = []byte(education)
	cv.Languages = []byte(langs)
	cv.CreatedAt = cv.CreatedAt.UTC()
	cv.UpdatedAt = cv.UpdatedAt.UTC()
	return cv, nil
}

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Postgres)(nil)
)
