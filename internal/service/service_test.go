package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vietanh2810/event-hub/internal/domain"
	"github.com/vietanh2810/event-hub/internal/repository"
	"github.com/vietanh2810/event-hub/internal/repository/dao"
)

type testEnv struct {
	db     *gorm.DB
	users  *repository.UserRepository
	events *repository.EventRepository
	auth   *AuthService
	user   *UserService
	event  *EventService
	admin  *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
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

	users := repository.NewUserRepository(dao.NewUserDAO(db))
	events := repository.NewEventRepository(dao.NewEventDAO(db), dao.NewParticipantDAO(db), dao.NewFeedbackDAO(db))

	return &testEnv{
		db:     db,
		users:  users,
		events: events,
		auth:   NewAuthService(users),
		user:   NewUserService(users, 2),
		event:  NewEventService(events, users, 2),
		admin:  NewAdminService(users, events, 100),
	}
}

func (e *testEnv) signup(t *testing.T, username string) domain.User {
	t.Helper()

	u, err := e.auth.Signup(context.Background(), domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "passw0rd!",
	})
	require.NoError(t, err)

	return u
}

func (e *testEnv) organizer(t *testing.T, username string) domain.User {
	t.Helper()

	u := e.signup(t, username)
	_, err := e.users.SetOrganizer(context.Background(), []uint{u.ID}, true)
	require.NoError(t, err)
	u.IsOrganizer = true

	return u
}

func validEvent(date *time.Time, max int) domain.Event {
	return domain.Event{
		Title:           "Go meetup",
		Description:     "Talks and pizza",
		Date:            date,
		Location:        "Kyiv",
		MaxParticipants: max,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	assert.True(t, alice.IsActive)
	assert.False(t, alice.IsOrganizer)
	assert.NotEqual(t, "passw0rd!", alice.Password)

	_, err := env.auth.Signup(ctx, domain.User{Username: "alice", Email: "x@example.com", Password: "passw0rd!"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = env.auth.Signup(ctx, domain.User{Username: "alice2", Email: "alice@example.com", Password: "passw0rd!"})
	assert.ErrorIs(t, err, ErrUserEmailExists)

	got, err := env.auth.Login(ctx, "alice", "passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = env.auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrWrongCredentials)

	_, err = env.auth.Login(ctx, "nobody", "passw0rd!")
	assert.ErrorIs(t, err, ErrWrongCredentials)
}

func TestAuthService_UnknownUserStillComparesHash(t *testing.T) {
	cost, err := bcrypt.Cost(dummyHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestAuthService_SignupPasswordTooLong(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Signup(context.Background(), domain.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "a1" + strings.Repeat("x", 80),
	})
	require.ErrorIs(t, err, ErrValidation)

	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "password")

	_, err = env.users.FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_SignupIgnoresPrivilegeFlags(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.auth.Signup(context.Background(), domain.User{
		Username:    "mallory",
		Email:       "mallory@example.com",
		Password:    "passw0rd!",
		IsOrganizer: true,
		IsStaff:     true,
		IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.False(t, u.IsOrganizer)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
}

func TestAuthService_EnsureSuperuser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root, err := env.auth.EnsureSuperuser(ctx, "root", "root@example.com", "rootpass1")
	require.NoError(t, err)
	assert.True(t, root.IsStaff)
	assert.True(t, root.IsSuperuser)

	again, err := env.auth.EnsureSuperuser(ctx, "root", "root@example.com", "rootpass1")
	require.NoError(t, err)
	assert.Equal(t, root.ID, again.ID)

	bob := env.signup(t, "bob")
	promoted, err := env.auth.EnsureSuperuser(ctx, "bob", "bob@example.com", "whatever1")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, promoted.ID)

	stored, err := env.users.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsStaff)
	assert.True(t, stored.IsSuperuser)
}

func TestEventService_CreateRequiresOrganizer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plain := env.signup(t, "plain")

	_, err := env.event.CreateEvent(ctx, plain, validEvent(nil, 5))
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = env.event.CreateEvent(ctx, domain.User{}, validEvent(nil, 5))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	n, err := env.events.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEventService_CreateValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "org")

	invalid := validEvent(nil, 0)
	invalid.Title = ""
	_, err := env.event.CreateEvent(ctx, org, invalid)
	assert.ErrorIs(t, err, ErrValidation)

	created, err := env.event.CreateEvent(ctx, org, validEvent(nil, 5))
	require.NoError(t, err)
	assert.Equal(t, org.ID, created.OrganizerID)
	assert.Equal(t, "org", created.OrganizerUsername)
}

func TestEventService_UpdatePreservesOrganizer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.organizer(t, "owner")
	other := env.organizer(t, "other")

	event, err := env.event.CreateEvent(ctx, owner, validEvent(nil, 5))
	require.NoError(t, err)

	changes := validEvent(nil, 8)
	changes.Title = "Renamed"
	changes.OrganizerID = other.ID

	updated, err := env.event.UpdateEvent(ctx, owner, event.ID, changes)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 8, updated.MaxParticipants)
	assert.Equal(t, owner.ID, updated.OrganizerID)

	_, err = env.event.UpdateEvent(ctx, other, event.ID, changes)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = env.event.UpdateEvent(ctx, owner, 999, changes)
	assert.ErrorIs(t, err, ErrNotFound)

	bad := validEvent(nil, 8)
	bad.Location = ""
	_, err = env.event.UpdateEvent(ctx, owner, event.ID, bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEventService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.organizer(t, "owner")
	other := env.organizer(t, "other")
	staff := env.signup(t, "staff")
	staff.IsStaff = true

	first, err := env.event.CreateEvent(ctx, owner, validEvent(nil, 5))
	require.NoError(t, err)
	second, err := env.event.CreateEvent(ctx, owner, validEvent(nil, 5))
	require.NoError(t, err)

	assert.ErrorIs(t, env.event.DeleteEvent(ctx, other, first.ID), ErrNotAuthorized)
	require.NoError(t, env.event.DeleteEvent(ctx, owner, first.ID))
	require.NoError(t, env.event.DeleteEvent(ctx, staff, second.ID))
	assert.ErrorIs(t, env.event.DeleteEvent(ctx, owner, first.ID), ErrNotFound)
}

func TestEventService_JoinCapacityAndIdempotence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "org")
	first := env.signup(t, "first")
	second := env.signup(t, "second")

	event, err := env.event.CreateEvent(ctx, org, validEvent(nil, 1))
	require.NoError(t, err)

	joined, err := env.event.JoinEvent(ctx, first, event.ID)
	require.NoError(t, err)
	assert.True(t, joined)

	_, err = env.event.JoinEvent(ctx, second, event.ID)
	assert.ErrorIs(t, err, ErrEventFull)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)

	joined, err = env.event.JoinEvent(ctx, first, event.ID)
	require.NoError(t, err)
	assert.False(t, joined)

	got, err := env.events.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ParticipantCount)

	_, err = env.event.JoinEvent(ctx, first, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventService_SubmitFeedback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "org")
	guest := env.signup(t, "guest")

	date := time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
	event, err := env.event.CreateEvent(ctx, org, validEvent(&date, 5))
	require.NoError(t, err)
	undated, err := env.event.CreateEvent(ctx, org, validEvent(nil, 5))
	require.NoError(t, err)

	env.event.now = func() time.Time { return time.Date(2024, 1, 1, 23, 59, 58, 0, time.UTC) }
	_, err = env.event.SubmitFeedback(ctx, guest, event.ID, domain.Feedback{Rating: 8, Comment: "nice"})
	assert.ErrorIs(t, err, ErrFeedbackWindowNotOpen)

	// Timing is reported even when the fields are invalid too.
	_, err = env.event.SubmitFeedback(ctx, guest, event.ID, domain.Feedback{Rating: 11})
	assert.ErrorIs(t, err, ErrFeedbackWindowNotOpen)

	env.event.now = func() time.Time { return time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC) }
	_, err = env.event.SubmitFeedback(ctx, guest, event.ID, domain.Feedback{Rating: 11, Comment: "too good"})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := env.event.ListFeedback(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := env.event.SubmitFeedback(ctx, guest, event.ID, domain.Feedback{Rating: 10, Comment: "great"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, guest.ID, created.UserID)

	_, err = env.event.SubmitFeedback(ctx, guest, event.ID, domain.Feedback{Rating: 6, Comment: "second thoughts"})
	require.NoError(t, err)

	list, err = env.event.ListFeedback(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = env.event.SubmitFeedback(ctx, guest, undated.ID, domain.Feedback{Rating: 5, Comment: "?"})
	assert.ErrorIs(t, err, ErrFeedbackWindowNotOpen)

	_, err = env.event.SubmitFeedback(ctx, guest, 999, domain.Feedback{Rating: 5, Comment: "?"})
	assert.ErrorIs(t, err, ErrNotFound)

	detail, err := env.event.GetEvent(ctx, guest, event.ID)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, detail.AverageRating, 1e-9)
	assert.True(t, detail.CanLeaveFeedback)
}

func TestEventService_GetEventFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.organizer(t, "owner")
	guest := env.signup(t, "guest")
	staff := env.signup(t, "staff")
	staff.IsStaff = true

	event, err := env.event.CreateEvent(ctx, owner, validEvent(nil, 1))
	require.NoError(t, err)

	detail, err := env.event.GetEvent(ctx, owner, event.ID)
	require.NoError(t, err)
	assert.True(t, detail.CanEdit)
	assert.True(t, detail.CanDelete)
	assert.True(t, detail.CanJoin)
	assert.False(t, detail.IsParticipant)
	assert.False(t, detail.CanLeaveFeedback)
	assert.Zero(t, detail.AverageRating)

	_, err = env.event.JoinEvent(ctx, guest, event.ID)
	require.NoError(t, err)

	detail, err = env.event.GetEvent(ctx, guest, event.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsParticipant)
	assert.False(t, detail.CanJoin)
	assert.False(t, detail.CanEdit)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "guest", detail.Participants[0].Username)

	detail, err = env.event.GetEvent(ctx, staff, event.ID)
	require.NoError(t, err)
	assert.False(t, detail.CanEdit)
	assert.True(t, detail.CanDelete)
	assert.False(t, detail.CanJoin)

	_, err = env.event.GetEvent(ctx, guest, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventService_ListEventsPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "org")

	for i := 0; i < 3; i++ {
		_, err := env.event.CreateEvent(ctx, org, validEvent(nil, 5))
		require.NoError(t, err)
	}

	page, err := env.event.ListEvents(ctx, domain.EventFilter{}, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page, err = env.event.ListEvents(ctx, domain.EventFilter{}, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = env.event.ListEvents(ctx, domain.EventFilter{}, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.event.ListEvents(ctx, domain.EventFilter{}, math.MaxInt/2+2)
	assert.ErrorIs(t, err, ErrValidation)

	page, err = env.event.ListEvents(ctx, domain.EventFilter{}, math.MaxInt/2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 3, page.Total)
}

func TestEventService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.organizer(t, "alice")
	bob := env.organizer(t, "bob")
	env.organizer(t, "idle")
	guest := env.signup(t, "guest")

	for _, u := range []domain.User{alice, alice, bob} {
		_, err := env.event.CreateEvent(ctx, u, validEvent(nil, 5))
		require.NoError(t, err)
	}

	d, err := env.event.Dashboard(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.NumEvents)
	assert.EqualValues(t, 4, d.NumUsers)
	assert.EqualValues(t, 2, d.NumOrganizers)
	assert.EqualValues(t, 2, d.NumMyEvents)

	d, err = env.event.Dashboard(ctx, guest)
	require.NoError(t, err)
	assert.Zero(t, d.NumMyEvents)
}

func TestUserService_Profile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	updated, err := env.user.UpdateProfile(ctx, alice, alice.ID, domain.ProfileUpdate{FirstName: "Alice", LastName: "L"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)

	_, err = env.user.UpdateProfile(ctx, bob, alice.ID, domain.ProfileUpdate{FirstName: "Hacked"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = env.user.UpdateProfile(ctx, alice, 999, domain.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.user.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := env.user.GetUserStats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stats.FirstName)
	assert.Zero(t, stats.EventCount)
}

func TestUserService_ListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "zed")
	env.signup(t, "amy")
	env.signup(t, "bea")

	_, err := env.event.CreateEvent(ctx, org, validEvent(nil, 5))
	require.NoError(t, err)

	page, err := env.user.ListUsers(ctx, domain.UserFilter{}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "zed", page.Items[0].Username)
	assert.EqualValues(t, 1, page.Items[0].EventCount)
	assert.Equal(t, "amy", page.Items[1].Username)

	page, err = env.user.ListUsers(ctx, domain.UserFilter{Username: "BE"}, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bea", page.Items[0].Username)
}

func TestAdminService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plain := env.signup(t, "plain")
	other := env.signup(t, "other")
	staff := env.signup(t, "staff")
	staff.IsStaff = true

	_, err := env.admin.SetOrganizer(ctx, plain, []uint{other.ID}, true)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = env.admin.SetOrganizer(ctx, staff, nil, true)
	assert.ErrorIs(t, err, ErrValidation)

	n, err := env.admin.SetOrganizer(ctx, staff, []uint{plain.ID, other.ID}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	users, err := env.admin.ListUsers(ctx, staff, domain.UserFilter{IsOrganizer: ptr(true)}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, users.Total)
	assert.Equal(t, "other", users.Items[0].Username)

	organizer, err := env.users.FindByID(ctx, other.ID)
	require.NoError(t, err)
	event, err := env.event.CreateEvent(ctx, organizer, validEvent(nil, 5))
	require.NoError(t, err)
	_, err = env.event.JoinEvent(ctx, plain, event.ID)
	require.NoError(t, err)

	events, err := env.admin.ListEvents(ctx, staff, domain.EventFilter{Search: "pizza"}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, events.Total)

	participants, err := env.admin.ListParticipants(ctx, staff, domain.ParticipantFilter{EventID: &event.ID}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, participants.Total)

	feedback, err := env.admin.ListFeedback(ctx, staff, domain.FeedbackFilter{Rating: ptr(5)}, 1)
	require.NoError(t, err)
	assert.Zero(t, feedback.Total)

	_, err = env.admin.ListEvents(ctx, plain, domain.EventFilter{}, 1)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = env.admin.ListFeedback(ctx, staff, domain.FeedbackFilter{}, 0)
	assert.ErrorIs(t, err, ErrValidation)
}
