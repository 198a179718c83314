package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rallydesk/rallydesk/internal/adapter/bus"
	"github.com/rallydesk/rallydesk/internal/adapter/persistence/memory"
	"github.com/rallydesk/rallydesk/internal/domain"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/internal/usecase"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

const testSecret = "test-secret"

type serverFixture struct {
	router    http.Handler
	events    *memory.EventRepository
	summaries *memory.SummaryRepository
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	store := memory.NewStore()
	events := memory.NewEventRepository(store)
	stages := memory.NewStageRepository(store)
	entries := memory.NewEntryRepository(store)
	announcements := memory.NewAnnouncementRepository(store)
	summaries := memory.NewSummaryRepository(store)
	audit := memory.NewAuditRepository(store)
	feed := bus.NewInProcessBus()
	t.Cleanup(feed.Close)

	log := logger.NewNop()
	clock := ports.SystemClock{}
	guard := usecase.NewGuard(events)
	dashboard := usecase.NewDashboardUsecase(events, stages, entries, announcements, summaries, clock, log)
	stageUC := usecase.NewStageUsecase(guard, stages, announcements, audit, feed, dashboard, clock, log)
	announcementUC := usecase.NewAnnouncementUsecase(guard, announcements, audit, feed, dashboard, clock, log)
	entryUC := usecase.NewEntryUsecase(guard, entries, audit, feed, dashboard, clock, log)

	router := NewRouter(RouterDeps{
		Stages:        stageUC,
		Announcements: announcementUC,
		Entries:       entryUC,
		Dashboard:     dashboard,
		Summaries:     summaries,
		JWTSecret:     testSecret,
		Log:           log,
	})

	return &serverFixture{router: router, events: events, summaries: summaries}
}

func bearerFor(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (f *serverFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/events/ev-1/stages", "", map[string]string{"name": "SS1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateStage_EndToEnd(t *testing.T) {
	f := newServerFixture(t)
	event := domain.NewEvent("org-1", "Forest Rally", time.Now(), time.Now().AddDate(0, 0, 3))
	require.NoError(t, f.events.Create(context.Background(), event))

	rec := f.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/stages", bearerFor(t, "org-1"),
		map[string]interface{}{"name": "SS1 Hillclimb", "order": 1})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var envelope struct {
		Status bool         `json:"status"`
		Data   domain.Stage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Status)
	assert.Equal(t, "SS1 Hillclimb", envelope.Data.Name)
	assert.Equal(t, domain.StageStatusScheduled, envelope.Data.Status)

	// Synchronous recompute already wrote the summary.
	summary, err := f.summaries.FindByOrganizer(context.Background(), "org-1")
	require.NoError(t, err)
	require.NotNil(t, summary)
}

func TestErrorMapping(t *testing.T) {
	f := newServerFixture(t)
	event := domain.NewEvent("org-1", "Forest Rally", time.Now(), time.Now().AddDate(0, 0, 3))
	require.NoError(t, f.events.Create(context.Background(), event))

	// Foreign actor: 403.
	rec := f.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/stages", bearerFor(t, "org-2"),
		map[string]string{"name": "SS1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown event: 404.
	rec = f.do(t, http.MethodPost, "/api/v1/events/no-such-event/stages", bearerFor(t, "org-1"),
		map[string]string{"name": "SS1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing name: 400.
	rec = f.do(t, http.MethodPost, "/api/v1/events/"+event.ID+"/stages", bearerFor(t, "org-1"),
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardEndpoints(t *testing.T) {
	f := newServerFixture(t)
	event := domain.NewEvent("org-1", "Forest Rally", time.Now(), time.Now().AddDate(0, 0, 3))
	require.NoError(t, f.events.Create(context.Background(), event))

	// Nothing computed yet.
	rec := f.do(t, http.MethodGet, "/api/v1/dashboard", bearerFor(t, "org-1"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/dashboard/recompute", bearerFor(t, "org-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/dashboard", bearerFor(t, "org-1"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
