package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUserEmailExists = errors.New("user with this email already exists")
	ErrUsernameExists  = errors.New("user with this username already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Username string `gorm:"size:150;unique;not null"`
	Email    string `gorm:"size:254;unique;not null"`
	Password string `gorm:"not null"`

	FirstName string `gorm:"size:150;not null"`
	LastName  string `gorm:"size:150;not null"`

	IsOrganizer bool `gorm:"not null;default:false;index"`
	IsStaff     bool `gorm:"not null;default:false"`
	IsSuperuser bool `gorm:"not null;default:false"`
	IsActive    bool `gorm:"not null"`

	DateJoined time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// UserStats is a users row annotated by the listing queries.
type UserStats struct {
	User          `gorm:"embedded"`
	EventCount    int64
	AverageRating float64
}

type UserFilter struct {
	Username    string
	Search      string
	IsOrganizer *bool
	IsStaff     *bool
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return User{}, userConflict(result.Error)
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	return d.findOne(ctx, "LOWER(email) = LOWER(?)", email)
}

func (d *UserDAO) FindByUsername(ctx context.Context, username string) (User, error) {
	return d.findOne(ctx, "username = ?", username)
}

func (d *UserDAO) findOne(ctx context.Context, query string, args ...interface{}) (User, error) {
	var user User

	result := d.db.WithContext(ctx).Where(query, args...).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

// UpdateProfile only ever touches the name columns.
func (d *UserDAO) UpdateProfile(ctx context.Context, id uint, firstName, lastName string) (User, error) {
	result := d.db.WithContext(ctx).
		Model(&User{ID: id}).
		Select("first_name", "last_name", "updated_at").
		Updates(User{FirstName: firstName, LastName: lastName, UpdatedAt: time.Now()})
	if result.Error != nil {
		return User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return User{}, ErrUserNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *UserDAO) SetOrganizer(ctx context.Context, ids []uint, isOrganizer bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := d.db.WithContext(ctx).
		Model(&User{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"is_organizer": isOrganizer, "updated_at": time.Now()})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// PromoteSuperuser grants staff and superuser flags to an existing account.
func (d *UserDAO) PromoteSuperuser(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_staff": true, "is_superuser": true, "updated_at": time.Now()}).
		Error
}

// ListWithStats annotates every user with the number of events they organize
// and the mean rating over all feedback left on those events.
func (d *UserDAO) ListWithStats(ctx context.Context, filter UserFilter, limit, offset int) ([]UserStats, int64, error) {
	query := d.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []UserStats
	err := d.filtered(ctx, filter).
		Select("users.*, " +
			"(SELECT COUNT(*) FROM events e WHERE e.organizer_id = users.id) AS event_count, " +
			"COALESCE((SELECT AVG(f.rating) FROM feedbacks f JOIN events e ON e.id = f.event_id WHERE e.organizer_id = users.id), 0) AS average_rating").
		Order("event_count DESC").
		Order("users.username ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// FindWithStats is ListWithStats for a single user.
func (d *UserDAO) FindWithStats(ctx context.Context, id uint) (UserStats, error) {
	var rows []UserStats
	err := d.db.WithContext(ctx).
		Model(&User{}).
		Select("users.*, "+
			"(SELECT COUNT(*) FROM events e WHERE e.organizer_id = users.id) AS event_count, "+
			"COALESCE((SELECT AVG(f.rating) FROM feedbacks f JOIN events e ON e.id = f.event_id WHERE e.organizer_id = users.id), 0) AS average_rating").
		Where("users.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return UserStats{}, err
	}
	if len(rows) == 0 {
		return UserStats{}, ErrUserNotFound
	}

	return rows[0], nil
}

// List is the plain admin listing, ordered by username.
func (d *UserDAO) List(ctx context.Context, filter UserFilter, limit, offset int) ([]User, int64, error) {
	var total int64
	if err := d.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := d.filtered(ctx, filter).
		Order("users.username ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (d *UserDAO) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&User{}).Count(&n).Error
	return n, err
}

func (d *UserDAO) filtered(ctx context.Context, filter UserFilter) *gorm.DB {
	query := d.db.WithContext(ctx).Model(&User{})
	if filter.Username != "" {
		query = query.Where("LOWER(users.username) LIKE ? ESCAPE '\\'", containsPattern(filter.Username))
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(users.username) LIKE ? ESCAPE '\\' OR LOWER(users.email) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if filter.IsOrganizer != nil {
		query = query.Where("users.is_organizer = ?", *filter.IsOrganizer)
	}
	if filter.IsStaff != nil {
		query = query.Where("users.is_staff = ?", *filter.IsStaff)
	}

	return query
}

func userConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName+pgErr.Message, "email") {
		return ErrUserEmailExists
	}
	if strings.Contains(strings.ToLower(err.Error()), "email") {
		return ErrUserEmailExists
	}

	return ErrUsernameExists
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
