package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory opens an empty Store for one test
type storeFactory func(t *testing.T) Store

// runStoreContract checks the behaviour every Store implementation shares
func runStoreContract(t *testing.T, open storeFactory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store Store)
	}{
		{"insert and get", testInsertAndGetCV},
		{"owner scoped", testCVsAreOwnerScoped},
		{"unknown ids", testUnknownIDs},
		{"list newest first", testListCVsNewestFirst},
		{"list empty", testListCVsEmpty},
		{"json round trip", testJSONColumnsRoundTrip},
		{"update appends history", testUpdateAppendsPreviousRowToHistory},
		{"unchanged update records history", testUnchangedUpdateStillRecordsHistory},
		{"history owner scoped", testHistoryIsOwnerScoped},
		{"delete cascades", testDeleteCascadesToHistory},
		{"design usage", testDesignUsageSpansOwners},
		{"profile upsert", testProfileUpsert},
		{"profile owner scoped", testProfilesAreOwnerScoped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func testRow(id, owner, title string, at time.Time) CVRow {
	return CVRow{
		ID:             id,
		OwnerID:        owner,
		Title:          title,
		PersonalData:   json.RawMessage(`{"full_name":"Ana Silva"}`),
		Objective:      json.RawMessage(`{}`),
		Experiences:    json.RawMessage(`[]`),
		Education:      json.RawMessage(`[]`),
		Skills:         "Go, SQL",
		Languages:      json.RawMessage(`[]`),
		SelectedDesign: "modern",
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func testInsertAndGetCV(t *testing.T, store Store) {
	ctx := context.Background()
	// microseconds: the finest precision every backend keeps
	now := time.Date(2025, 3, 1, 10, 0, 0, 123456000, time.UTC)
	id := uuid.NewString()

	require.NoError(t, store.InsertCV(ctx, testRow(id, "user-1", "Backend", now)))

	got, err := store.GetCV(ctx, "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Backend", got.Title)
	assert.JSONEq(t, `{"full_name":"Ana Silva"}`, string(got.PersonalData))
	assert.Equal(t, "Go, SQL", got.Skills)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.True(t, now.Equal(got.UpdatedAt))
}

func testCVsAreOwnerScoped(t *testing.T, store Store) {
	ctx := context.Background()
	id := uuid.NewString()
	require.NoError(t, store.InsertCV(ctx, testRow(id, "user-1", "Backend", time.Now())))

	_, err := store.GetCV(ctx, "user-2", id)
	assert.ErrorIs(t, err, ErrNoRows)

	err = store.UpdateCV(ctx, testRow(id, "user-2", "Stolen", time.Now()))
	assert.ErrorIs(t, err, ErrNoRows)

	err = store.DeleteCV(ctx, "user-2", id)
	assert.ErrorIs(t, err, ErrNoRows)

	got, err := store.GetCV(ctx, "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, "Backend", got.Title)
}

func testUnknownIDs(t *testing.T, store Store) {
	ctx := context.Background()

	for _, id := range []string{"missing", uuid.NewString()} {
		_, err := store.GetCV(ctx, "user-1", id)
		assert.ErrorIs(t, err, ErrNoRows, id)

		assert.ErrorIs(t, store.UpdateCV(ctx, testRow(id, "user-1", "x", time.Now())), ErrNoRows, id)
		assert.ErrorIs(t, store.DeleteCV(ctx, "user-1", id), ErrNoRows, id)

		history, err := store.ListHistory(ctx, "user-1", id)
		require.NoError(t, err, id)
		assert.NotNil(t, history)
		assert.Empty(t, history, id)
	}
}

func testListCVsNewestFirst(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 3)
	for i, title := range []string{"first", "second", "third"} {
		ids[i] = uuid.NewString()
		require.NoError(t, store.InsertCV(ctx, testRow(ids[i], "user-1", title, base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, store.InsertCV(ctx, testRow(uuid.NewString(), "user-2", "foreign", base)))

	// Touching the oldest row moves it to the front.
	require.NoError(t, store.UpdateCV(ctx, testRow(ids[0], "user-1", "first, edited", base.Add(5*time.Hour))))

	rows, err := store.ListCVs(ctx, "user-1")
	require.NoError(t, err)
	titles := make([]string, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"first, edited", "third", "second"}, titles)
}

func testListCVsEmpty(t *testing.T, store Store) {
	rows, err := store.ListCVs(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func testJSONColumnsRoundTrip(t *testing.T, store Store) {
	ctx := context.Background()
	id := uuid.NewString()
	row := testRow(id, "user-1", "Full", time.Now())
	row.Objective = json.RawMessage(`{"position":"Backend Engineer","stack":"Go","goal":""}`)
	row.Experiences = json.RawMessage(`[{"id":"e1","company":"Acme","narrative":{"schema_version":2,"achievements":[{"id":"a","result":"2x"}]}}]`)
	row.Education = json.RawMessage(`[{"id":"ed1","category":"academic","institution":"USP"}]`)
	row.Languages = json.RawMessage(`[{"id":"l1","language":"Português","proficiency":"native"}]`)
	require.NoError(t, store.InsertCV(ctx, row))

	got, err := store.GetCV(ctx, "user-1", id)
	require.NoError(t, err)
	assert.JSONEq(t, string(row.Objective), string(got.Objective))
	assert.JSONEq(t, string(row.Experiences), string(got.Experiences))
	assert.JSONEq(t, string(row.Education), string(got.Education))
	assert.JSONEq(t, string(row.Languages), string(got.Languages))

	require.NoError(t, store.UpdateCV(ctx, testRow(id, "user-1", "Trimmed", time.Now())))
	history, err := store.ListHistory(ctx, "user-1", id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.JSONEq(t, string(row.Experiences), string(history[0].Experiences))
	assert.JSONEq(t, string(row.Languages), string(history[0].Languages))
}

func testUpdateAppendsPreviousRowToHistory(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now()
	id := uuid.NewString()

	require.NoError(t, store.InsertCV(ctx, testRow(id, "user-1", "v0", now)))

	history, err := store.ListHistory(ctx, "user-1", id)
	require.NoError(t, err)
	assert.Empty(t, history, "creating a cv records no history")

	require.NoError(t, store.UpdateCV(ctx, testRow(id, "user-1", "v1", now)))
	require.NoError(t, store.UpdateCV(ctx, testRow(id, "user-1", "v2", now)))

	history, err = store.ListHistory(ctx, "user-1", id)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, 2, history[0].VersionNumber)
	assert.Equal(t, "v1", history[0].Title)
	assert.Equal(t, 1, history[1].VersionNumber)
	assert.Equal(t, "v0", history[1].Title)
	assert.Equal(t, id, history[1].CVID)
	assert.JSONEq(t, `{"full_name":"Ana Silva"}`, string(history[1].PersonalData))
	assert.Nil(t, history[1].ChangeDescription)
	assert.False(t, history[1].CreatedAt.IsZero())
	assert.NotEqual(t, history[0].ID, history[1].ID)

	for _, h := range history {
		parsed, err := uuid.Parse(h.ID)
		require.NoError(t, err, "history id %q", h.ID)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.Equal(t, uuid.RFC4122, parsed.Variant())
	}
}

func testUnchangedUpdateStillRecordsHistory(t *testing.T, store Store) {
	ctx := context.Background()
	row := testRow(uuid.NewString(), "user-1", "same", time.Now())

	require.NoError(t, store.InsertCV(ctx, row))
	require.NoError(t, store.UpdateCV(ctx, row))

	history, err := store.ListHistory(ctx, "user-1", row.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func testHistoryIsOwnerScoped(t *testing.T, store Store) {
	ctx := context.Background()
	row := testRow(uuid.NewString(), "user-1", "mine", time.Now())
	require.NoError(t, store.InsertCV(ctx, row))
	require.NoError(t, store.UpdateCV(ctx, row))

	history, err := store.ListHistory(ctx, "user-2", row.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func testDeleteCascadesToHistory(t *testing.T, store Store) {
	ctx := context.Background()
	row := testRow(uuid.NewString(), "user-1", "doomed", time.Now())
	require.NoError(t, store.InsertCV(ctx, row))
	require.NoError(t, store.UpdateCV(ctx, row))

	require.NoError(t, store.DeleteCV(ctx, "user-1", row.ID))
	assert.ErrorIs(t, store.DeleteCV(ctx, "user-1", row.ID), ErrNoRows)

	// A row reusing the id starts without the old versions.
	require.NoError(t, store.InsertCV(ctx, row))
	history, err := store.ListHistory(ctx, "user-1", row.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func testDesignUsageSpansOwners(t *testing.T, store Store) {
	ctx := context.Background()
	a := testRow(uuid.NewString(), "user-1", "a", time.Now())
	b := testRow(uuid.NewString(), "user-2", "b", time.Now())
	b.SelectedDesign = "classic"
	require.NoError(t, store.InsertCV(ctx, a))
	require.NoError(t, store.InsertCV(ctx, b))

	usage, err := store.DesignUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	designs := []string{usage[0].Design, usage[1].Design}
	assert.ElementsMatch(t, []string{"modern", "classic"}, designs)
}

func testProfileUpsert(t *testing.T, store Store) {
	ctx := context.Background()
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	_, err := store.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNoRows)

	row := ProfileRow{
		UserID:    "user-1",
		Email:     "ana@example.com",
		FullName:  "Ana Silva",
		Bio:       "Backend engineer",
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, store.UpsertProfile(ctx, row))

	later := created.Add(48 * time.Hour)
	row.Location = "São Paulo"
	row.Website = "https://ana.dev"
	row.AvatarURL = "https://cdn.example.com/ana.png"
	row.CreatedAt = later
	row.UpdatedAt = later
	require.NoError(t, store.UpsertProfile(ctx, row))

	got, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", got.FullName)
	assert.Equal(t, "São Paulo", got.Location)
	assert.Equal(t, "https://ana.dev", got.Website)
	assert.Equal(t, "https://cdn.example.com/ana.png", got.AvatarURL)
	assert.True(t, created.Equal(got.CreatedAt), "created_at is kept on update")
	assert.True(t, later.Equal(got.UpdatedAt))
}

func testProfilesAreOwnerScoped(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.UpsertProfile(ctx, ProfileRow{UserID: "user-1", FullName: "Ana", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.UpsertProfile(ctx, ProfileRow{UserID: "user-2", FullName: "Bruno", CreatedAt: now, UpdatedAt: now}))

	one, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	two, err := store.GetProfile(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", one.FullName)
	assert.Equal(t, "Bruno", two.FullName)
}
