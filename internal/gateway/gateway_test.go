package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/khrees2412/cvbuilder/internal/auth"
	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestGateway(t *testing.T) *Gateway {
	t.Helper()
	store, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, discardLogger())
}

func asUser(id string) context.Context {
	return auth.WithPrincipal(context.Background(), id)
}

func anaDocument() models.CVDocument {
	doc := models.NewDocument()
	doc.PersonalData = models.PersonalData{FullName: "Ana Silva", Email: "ana@x.com"}
	doc.Objective = models.Objective{Position: "Backend Engineer", Stack: "Go"}
	doc.Experiences = []models.ExperienceEntry{
		{ID: "e1", Company: "Acme", Position: "Engineer", StartDate: "2021-03", Current: true,
			Narrative: models.NewSTARNarrative(models.Achievement{ID: "a1", Situation: "legacy", Result: "faster"})},
		{ID: "e2", Company: "Side", IsPersonalProject: true,
			Narrative: models.NewFlatNarrative(models.FlatNarrative{Problem: "no tooling"})},
		{ID: "e3", Company: "Blank"},
	}
	doc.Education = []models.EducationEntry{{ID: "ed1", Category: models.EducationTechnical, Institution: "Alura", InProgress: true}}
	doc.Languages = []models.LanguageEntry{{ID: "l1", Language: "Portuguese", Proficiency: models.ProficiencyNative}}
	doc.Skills = "Go, SQL"
	doc.SelectedTemplate = models.TemplateCreative
	return doc
}

func TestSaveNewDocumentThenList(t *testing.T) {
	gw := createTestGateway(t)
	ctx := asUser("user-1")

	doc := models.NewDocument()
	doc.PersonalData = models.PersonalData{FullName: "Ana Silva", Email: "ana@x.com"}

	saved, err := gw.Save(ctx, "Backend CV", doc)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.Document.ID)
	assert.Equal(t, "Backend CV", saved.Title)

	list, err := gw.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.Document.ID, list[0].Document.ID)
	assert.Equal(t, "Backend CV", list[0].Title)
	assert.Equal(t, "Ana Silva", list[0].Document.PersonalData.FullName)
}

func TestRoundTripPreservesDocument(t *testing.T) {
	gw := createTestGateway(t)
	ctx := asUser("user-1")
	doc := anaDocument()

	saved, err := gw.Save(ctx, "Full", doc)
	require.NoError(t, err)

	loaded, err := gw.LoadByID(ctx, saved.Document.ID)
	require.NoError(t, err)

	doc.ID = saved.Document.ID
	assert.Equal(t, doc, loaded.Document)
	assert.Equal(t, saved.Document, loaded.Document)
}

func TestSaveKeepsIdentityOnUpdate(t *testing.T) {
	gw := createTestGateway(t)
	ctx := asUser("user-1")

	first, err := gw.Save(ctx, "v1", anaDocument())
	require.NoError(t, err)
	created := first.CreatedAt

	doc := first.Document
	doc.Skills = "Go, SQL, Kubernetes"
	second, err := gw.Save(ctx, "v2", doc)
	require.NoError(t, err)

	assert.Equal(t, first.Document.ID, second.Document.ID)
	assert.Equal(t, "v2", second.Title)
	assert.True(t, created.Equal(second.CreatedAt))
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	list, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSaveUnknownIDIsNotFound(t *testing.T) {
	gw := createTestGateway(t)
	doc := anaDocument()
	doc.ID = "does-not-exist"

	_, err := gw.Save(asUser("user-1"), "ghost", doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	gw := createTestGateway(t)
	ctx := asUser("user-1")
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	gw.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	a, err := gw.Save(ctx, "a", models.NewDocument())
	require.NoError(t, err)
	_, err = gw.Save(ctx, "b", models.NewDocument())
	require.NoError(t, err)
	_, err = gw.Save(ctx, "a, edited", a.Document)
	require.NoError(t, err)

	list, err := gw.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a, edited", list[0].Title)
	assert.Equal(t, "b", list[1].Title)
}

func TestOwnerIsolation(t *testing.T) {
	gw := createTestGateway(t)
	saved, err := gw.Save(asUser("user-1"), "mine", anaDocument())
	require.NoError(t, err)

	other := asUser("user-2")
	_, err = gw.LoadByID(other, saved.Document.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gw.Save(other, "hijack", saved.Document)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, gw.Delete(other, saved.Document.ID), ErrNotFound)

	list, err := gw.List(other)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteTwice(t *testing.T) {
	gw := createTestGateway(t)
	ctx := asUser("user-1")
	saved, err := gw.Save(ctx, "temp", anaDocument())
	require.NoError(t, err)

	require.NoError(t, gw.Delete(ctx, saved.Document.ID))
	assert.ErrorIs(t, gw.Delete(ctx, saved.Document.ID), ErrNotFound)

	_, err = gw.LoadByID(ctx, saved.Document.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// recordingStore fails every call and counts how often it was reached
type recordingStore struct {
	calls int
	err   error
}

func (s *recordingStore) InsertCV(context.Context, database.CVRow) error {
	s.calls++
	return s.err
}
func (s *recordingStore) UpdateCV(context.Context, database.CVRow) error {
	s.calls++
	return s.err
}
func (s *recordingStore) ListCVs(context.Context, string) ([]database.CVRow, error) {
	s.calls++
	return nil, s.err
}
func (s *recordingStore) GetCV(context.Context, string, string) (database.CVRow, error) {
	s.calls++
	return database.CVRow{}, s.err
}
func (s *recordingStore) DeleteCV(context.Context, string, string) error {
	s.calls++
	return s.err
}
func (s *recordingStore) ListHistory(context.Context, string, string) ([]database.HistoryRow, error) {
	s.calls++
	return nil, s.err
}
func (s *recordingStore) DesignUsage(context.Context) ([]database.DesignUsage, error) {
	s.calls++
	return nil, s.err
}
func (s *recordingStore) GetProfile(context.Context, string) (database.ProfileRow, error) {
	s.calls++
	return database.ProfileRow{}, s.err
}
func (s *recordingStore) UpsertProfile(context.Context, database.ProfileRow) error {
	s.calls++
	return s.err
}
func (s *recordingStore) Close() error { return nil }

func TestMissingPrincipalNeverReachesStore(t *testing.T) {
	store := &recordingStore{}
	gw := New(store, discardLogger())
	ctx := context.Background()

	_, err := gw.Save(ctx, "X", anaDocument())
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	_, err = gw.List(ctx)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	_, err = gw.LoadByID(ctx, "id")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.ErrorIs(t, gw.Delete(ctx, "id"), ErrAuthenticationRequired)

	assert.Zero(t, store.calls)
}

func TestStoreFailuresAreRemoteStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	gw := New(&recordingStore{err: boom}, discardLogger())
	ctx := asUser("user-1")

	_, err := gw.Save(ctx, "X", models.NewDocument())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteStore)
	assert.ErrorIs(t, err, boom)

	var rse *RemoteStoreError
	require.ErrorAs(t, err, &rse)
	assert.Equal(t, "insert", rse.Op)

	_, err = gw.List(ctx)
	assert.ErrorIs(t, err, ErrRemoteStore)
	_, err = gw.LoadByID(ctx, "id")
	assert.ErrorIs(t, err, ErrRemoteStore)
	assert.ErrorIs(t, gw.Delete(ctx, "id"), ErrRemoteStore)
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Backend CV"))
	assert.ErrorIs(t, ValidateTitle(""), ErrValidationFailed)
	assert.ErrorIs(t, ValidateTitle("   "), ErrValidationFailed)
}

func TestDecodeRowReadsLegacyExperiences(t *testing.T) {
	row := database.CVRow{
		ID:             "cv-1",
		Title:          "legacy",
		PersonalData:   []byte(`{"full_name":"Ana"}`),
		Experiences:    []byte(`[{"id":"1","company":"Acme","problem":"p","impact":"i"}]`),
		Education:      []byte(`null`),
		SelectedDesign: "classic",
	}

	cv, err := DecodeRow(row)
	require.NoError(t, err)
	require.Len(t, cv.Document.Experiences, 1)
	require.NotNil(t, cv.Document.Experiences[0].Narrative.Flat)
	assert.Equal(t, "p", cv.Document.Experiences[0].Narrative.Flat.Problem)
	assert.NotNil(t, cv.Document.Education)
	assert.NotNil(t, cv.Document.Languages)
	assert.Equal(t, models.TemplateClassic, cv.Document.SelectedTemplate)
}
