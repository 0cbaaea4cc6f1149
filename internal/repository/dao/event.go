package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

type Event struct {
	ID              uint       `gorm:"primaryKey"`
	Title           string     `gorm:"size:255;not null"`
	Description     string     `gorm:"not null"`
	Date            *time.Time `gorm:"index"`
	CreatedAt       time.Time  `gorm:"not null"`
	Location        string     `gorm:"size:255;not null"`
	MaxParticipants int        `gorm:"not null;check:chk_events_max_participants,max_participants >= 0"`
	OrganizerID     uint       `gorm:"not null;index"`
}

// EventStats is an events row annotated by the listing queries.
type EventStats struct {
	Event             `gorm:"embedded"`
	OrganizerUsername string
	ParticipantCount  int64
	AverageRating     float64
}

type EventFilter struct {
	Title    string
	Search   string
	Location string
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

const eventStatsColumns = "events.*, users.username AS organizer_username, " +
	"(SELECT COUNT(*) FROM participants p WHERE p.event_id = events.id) AS participant_count, " +
	"COALESCE((SELECT AVG(f.rating) FROM feedbacks f WHERE f.event_id = events.id), 0) AS average_rating"

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	event.ID = 0
	if err := d.db.WithContext(ctx).Create(&event).Error; err != nil {
		return Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (EventStats, error) {
	var rows []EventStats
	err := d.withStats(ctx).
		Where("events.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return EventStats{}, err
	}
	if len(rows) == 0 {
		return EventStats{}, ErrEventNotFound
	}

	return rows[0], nil
}

// Update writes the editable columns. organizer_id is never part of the
// column list.
func (d *EventDAO) Update(ctx context.Context, event Event) error {
	result := d.db.WithContext(ctx).
		Model(&Event{ID: event.ID}).
		Select("title", "description", "date", "location", "max_participants").
		Updates(&Event{
			Title:           event.Title,
			Description:     event.Description,
			Date:            event.Date,
			Location:        event.Location,
			MaxParticipants: event.MaxParticipants,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// Delete removes the event together with its participants and feedback.
func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&Participant{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Event{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		return nil
	})
}

// List returns events ordered by date (undated last) with their stats.
func (d *EventDAO) List(ctx context.Context, filter EventFilter, limit, offset int) ([]EventStats, int64, error) {
	var total int64
	if err := d.filtered(d.db.WithContext(ctx).Model(&Event{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []EventStats
	err := d.filtered(d.withStats(ctx), filter).
		Order("events.date IS NULL").
		Order("events.date ASC").
		Order("events.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// ListRecent is the admin ordering: newest date first.
func (d *EventDAO) ListRecent(ctx context.Context, filter EventFilter, limit, offset int) ([]EventStats, int64, error) {
	var total int64
	if err := d.filtered(d.db.WithContext(ctx).Model(&Event{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []EventStats
	err := d.filtered(d.withStats(ctx), filter).
		Order("events.date IS NULL").
		Order("events.date DESC").
		Order("events.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (d *EventDAO) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&Event{}).Count(&n).Error
	return n, err
}

func (d *EventDAO) CountByOrganizer(ctx context.Context, organizerID uint) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&Event{}).Where("organizer_id = ?", organizerID).Count(&n).Error
	return n, err
}

func (d *EventDAO) CountOrganizers(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&Event{}).Distinct("organizer_id").Count(&n).Error
	return n, err
}

func (d *EventDAO) withStats(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).
		Model(&Event{}).
		Select(eventStatsColumns).
		Joins("LEFT JOIN users ON users.id = events.organizer_id")
}

func (d *EventDAO) filtered(query *gorm.DB, filter EventFilter) *gorm.DB {
	if filter.Title != "" {
		query = query.Where("LOWER(events.title) LIKE ? ESCAPE '\\'", containsPattern(filter.Title))
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(
			"(LOWER(events.title) LIKE ? ESCAPE '\\' OR LOWER(events.description) LIKE ? ESCAPE '\\' OR LOWER(events.location) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(events.location) = LOWER(?)", filter.Location)
	}

	return query
}

// lockEvent reads the event row with FOR UPDATE so concurrent joins on the
// same event serialize.
func lockEvent(tx *gorm.DB, id uint) (Event, error) {
	var event Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}
		return Event{}, err
	}

	return event, nil
}
