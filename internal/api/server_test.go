package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vietanh2810/event-hub/internal/config"
	"github.com/vietanh2810/event-hub/internal/repository/dao"
)

const testUserAgent = "event-hub-test/1.0"

type testServer struct {
	t  *testing.T
	s  *Server
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, dao.InitTables(db))

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			Port:               "8080",
			BaseURL:            "localhost:8080",
			JWTSigningKey:      "0123456789abcdef0123",
			JWTTTL:             time.Hour,
			AllowedCORSDomains: []string{"http://localhost:3000"},
		},
		Gin:      &config.GinConfig{Mode: "test"},
		Postgres: &config.PostgresConfig{},
		Listing: &config.ListingConfig{
			EventsPageSize: 2,
			UsersPageSize:  10,
			AdminPageSize:  100,
		},
		Admin: &config.AdminConfig{},
	}

	return &testServer{t: t, s: NewServer(conf, db), db: db}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.s.Router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

type session struct {
	ID    uint
	Token string
}

// login signs up username and returns a token for it.
func (ts *testServer) login(username string) session {
	ts.t.Helper()

	rec := ts.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "passw0rd!",
		"confirm_password": "passw0rd!",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "passw0rd!",
	})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}](ts.t, rec)
	require.NotEmpty(ts.t, body.Token)

	return session{ID: body.User.ID, Token: body.Token}
}

func (ts *testServer) grant(id uint, column string) {
	ts.t.Helper()
	require.NoError(ts.t, ts.db.Model(&dao.User{}).Where("id = ?", id).Update(column, true).Error)
}

func (ts *testServer) createEvent(token string, title string, date time.Time, max int) uint {
	ts.t.Helper()

	rec := ts.do(http.MethodPost, "/api/v1/events", token, map[string]any{
		"title":            title,
		"description":      "A description",
		"date":             date,
		"location":         "Paris",
		"max_participants": max,
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[struct {
		ID uint `json:"id"`
	}](ts.t, rec).ID
}

type errBody struct {
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func TestHealthcheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)
	ts.login("alice")

	t.Run("duplicate username", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"username":         "alice",
			"email":            "other@example.com",
			"password":         "passw0rd!",
			"confirm_password": "passw0rd!",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"username":         "bob",
			"email":            "bob@example.com",
			"password":         "short",
			"confirm_password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errBody](t, rec)
		assert.Equal(t, "VALIDATION_FAILED", body.Code)
		assert.Contains(t, body.Fields, "password")
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		password := "a1" + strings.Repeat("x", 80)
		rec := ts.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"username":         "carol",
			"email":            "carol@example.com",
			"password":         password,
			"confirm_password": password,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errBody](t, rec)
		assert.Equal(t, "VALIDATION_FAILED", body.Code)
		assert.Contains(t, body.Fields, "password")
	})

	t.Run("unicode username", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"username":         "Олег",
			"email":            "oleg@example.com",
			"password":         "passw0rd!",
			"confirm_password": "passw0rd!",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "Олег",
			"password": "passw0rd!",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		ts.s.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BAD_REQUEST", decode[errBody](t, rec).Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "alice",
			"password": "wrong-passw0rd",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login("alice")

	rec := ts.do(http.MethodGet, "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/events", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+alice.Token)
	req.Header.Set("User-Agent", "another-agent")
	rec = httptest.NewRecorder()
	ts.s.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, ts.db.Model(&dao.User{}).Where("id = ?", alice.ID).Update("is_active", false).Error)
	rec = ts.do(http.MethodGet, "/api/v1/events", alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventLifecycle(t *testing.T) {
	ts := newTestServer(t)
	org := ts.login("org")
	guest := ts.login("guest")
	other := ts.login("other")
	ts.grant(org.ID, "is_organizer")
	ts.grant(other.ID, "is_organizer")

	t.Run("only organizers create", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/events", guest.Token, map[string]any{
			"title":            "Party",
			"description":      "A description",
			"location":         "Paris",
			"max_participants": 3,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid event", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/v1/events", org.Token, map[string]any{
			"title":            "",
			"description":      "A description",
			"location":         "Paris",
			"max_participants": 0,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errBody](t, rec)
		assert.Contains(t, body.Fields, "title")
		assert.Contains(t, body.Fields, "max_participants")
	})

	id := ts.createEvent(org.Token, "Party", time.Now().Add(72*time.Hour), 1)
	path := fmt.Sprintf("/api/v1/events/%d", id)

	t.Run("get", func(t *testing.T) {
		rec := ts.do(http.MethodGet, path, guest.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "Party", body["title"])
		assert.Equal(t, true, body["can_join"])
		assert.Equal(t, false, body["can_edit"])
		assert.Equal(t, false, body["can_leave_feedback"])
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/events/9999", guest.Token, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/events/abc", guest.Token, nil).Code)
	})

	t.Run("update by another organizer", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, other.Token, map[string]any{
			"title":            "Hijacked",
			"description":      "A description",
			"location":         "Paris",
			"max_participants": 1,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update by organizer", func(t *testing.T) {
		rec := ts.do(http.MethodPut, path, org.Token, map[string]any{
			"title":            "Party 2",
			"description":      "A description",
			"location":         "Lyon",
			"max_participants": 1,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "Party 2", body["title"])
		assert.EqualValues(t, org.ID, body["organizer_id"])
	})

	t.Run("join", func(t *testing.T) {
		join := path + "/participate"

		rec := ts.do(http.MethodPost, join, guest.Token, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, fmt.Sprintf(`{"event_id":%d,"joined":true,"created":true}`, id), rec.Body.String())

		rec = ts.do(http.MethodPost, join, guest.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, fmt.Sprintf(`{"event_id":%d,"joined":true,"created":false}`, id), rec.Body.String())

		rec = ts.do(http.MethodPost, join, other.Token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "EVENT_FULL", decode[errBody](t, rec).Code)
	})

	t.Run("feedback before the window opens", func(t *testing.T) {
		for _, rating := range []any{8, "eleven", 5.5} {
			rec := ts.do(http.MethodPost, path+"/feedback", guest.Token, map[string]any{
				"rating":  rating,
				"comment": "Nice",
			})
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "rating %v", rating)
			assert.Equal(t, "FEEDBACK_WINDOW_NOT_OPEN", decode[errBody](t, rec).Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, path, guest.Token, nil).Code)
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, path, org.Token, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, org.Token, nil).Code)
	})
}

func TestFeedback(t *testing.T) {
	ts := newTestServer(t)
	org := ts.login("org")
	guest := ts.login("guest")
	ts.grant(org.ID, "is_organizer")

	id := ts.createEvent(org.Token, "Past", time.Now().Add(-48*time.Hour), 10)
	path := fmt.Sprintf("/api/v1/events/%d/feedback", id)

	rec := ts.do(http.MethodPost, path, guest.Token, map[string]any{"rating": 11, "comment": "Too good"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errBody](t, rec).Fields, "rating")

	rec = ts.do(http.MethodPost, path, guest.Token, map[string]any{"rating": "eleven", "comment": "Not a number"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[errBody](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", errs.Code)
	assert.Contains(t, errs.Fields, "rating")

	rec = ts.do(http.MethodPost, path, guest.Token, map[string]any{"rating": 8, "comment": "Nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, path, org.Token, map[string]any{"rating": 5, "comment": "Fine"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, path, guest.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = ts.do(http.MethodGet, fmt.Sprintf("/api/v1/events/%d", id), guest.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.InDelta(t, 6.5, body["average_rating"], 0.001)
	assert.Equal(t, true, body["can_leave_feedback"])
}

func TestListingAndDashboard(t *testing.T) {
	ts := newTestServer(t)
	org := ts.login("org")
	guest := ts.login("guest")
	ts.grant(org.ID, "is_organizer")

	base := time.Now().Add(24 * time.Hour)
	for i, title := range []string{"Go meetup", "Rust meetup", "Go conference"} {
		ts.createEvent(org.Token, title, base.Add(time.Duration(i)*time.Hour), 10)
	}

	rec := ts.do(http.MethodGet, "/api/v1/events?title=go", guest.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	}](t, rec)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Go meetup", page.Items[0].Title)
	assert.Equal(t, "Go conference", page.Items[1].Title)

	rec = ts.do(http.MethodGet, "/api/v1/events?page=2", guest.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	}](t, rec)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	rec = ts.do(http.MethodGet, "/api/v1/events?page=4611686018427387905", guest.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errBody](t, rec).Fields, "page")

	rec = ts.do(http.MethodGet, "/api/v1/events?page=zero", guest.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errBody](t, rec).Fields, "page")

	rec = ts.do(http.MethodGet, "/api/v1/dashboard", org.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"num_events":3,"num_users":2,"num_organizers":1,"num_my_events":3}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/v1/users", guest.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[struct {
		Items []struct {
			Username   string `json:"username"`
			EventCount int64  `json:"event_count"`
		} `json:"items"`
	}](t, rec)
	require.Len(t, users.Items, 2)
	assert.Equal(t, "org", users.Items[0].Username)
	assert.EqualValues(t, 3, users.Items[0].EventCount)
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login("alice")
	bob := ts.login("bob")

	path := fmt.Sprintf("/api/v1/users/%d", alice.ID)

	rec := ts.do(http.MethodPatch, path, bob.Token, map[string]string{"first_name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPatch, path, alice.Token, map[string]string{"first_name": "Alice", "last_name": "Liddell"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, path, bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Alice", body["first_name"])
	assert.Equal(t, "Liddell", body["last_name"])
	assert.NotContains(t, body, "password")

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/users/9999", bob.Token, nil).Code)
}

func TestAdmin(t *testing.T) {
	ts := newTestServer(t)
	staff := ts.login("staff")
	alice := ts.login("alice")
	ts.grant(staff.ID, "is_staff")

	body := map[string]any{"user_ids": []uint{alice.ID}, "is_organizer": true}

	rec := ts.do(http.MethodPost, "/api/v1/admin/users/organizer", alice.Token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/admin/users/organizer", staff.Token, map[string]any{"is_organizer": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/admin/users/organizer", staff.Token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":1,"is_organizer":true}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/v1/admin/users?is_organizer=true", staff.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[struct {
		Items []struct {
			Username string `json:"username"`
		} `json:"items"`
		Total int64 `json:"total"`
	}](t, rec)
	assert.EqualValues(t, 1, users.Total)
	require.Len(t, users.Items, 1)
	assert.Equal(t, "alice", users.Items[0].Username)

	// alice can now create events.
	id := ts.createEvent(alice.Token, "Picnic", time.Now().Add(time.Hour), 5)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, fmt.Sprintf("/api/v1/events/%d/participate", id), staff.Token, nil).Code)

	rec = ts.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/participants?event_id=%d", id), staff.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[struct {
		Total int64 `json:"total"`
	}](t, rec).Total)

	rec = ts.do(http.MethodGet, "/api/v1/admin/events?search=picnic", staff.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[struct {
		Total int64 `json:"total"`
	}](t, rec).Total)

	rec = ts.do(http.MethodGet, "/api/v1/admin/feedback?rating=abc", staff.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/admin/feedback", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
