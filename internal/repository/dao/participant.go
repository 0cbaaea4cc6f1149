package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errAlreadyJoined = errors.New("user already participates in the event")
)

type Participant struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex:uq_participants_user_event"`
	User        User      `gorm:"constraint:OnDelete:CASCADE"`
	EventID     uint      `gorm:"not null;uniqueIndex:uq_participants_user_event;index"`
	Event       Event     `gorm:"constraint:OnDelete:CASCADE"`
	IsConfirmed bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

// ParticipantRow is a participants row with the user and event it links.
type ParticipantRow struct {
	ID          uint
	UserID      uint
	Username    string
	EventID     uint
	EventTitle  string
	IsConfirmed bool
	CreatedAt   time.Time
}

type ParticipantFilter struct {
	EventID     *uint
	IsConfirmed *bool
	Search      string
}

// JoinGuard is consulted with the locked event row and its current participant
// count. A non-nil error aborts the join.
type JoinGuard func(event EventStats) error

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{
		db: db,
	}
}

// Join registers userID for eventID. It reports created=false when the user
// was already a participant; that case is not an error and guard is not run.
func (d *ParticipantDAO) Join(ctx context.Context, eventID, userID uint, guard JoinGuard) (bool, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}

		var existing int64
		err = tx.Model(&Participant{}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return errAlreadyJoined
		}

		var count int64
		if err := tx.Model(&Participant{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}

		if guard != nil {
			if err := guard(EventStats{Event: event, ParticipantCount: count}); err != nil {
				return err
			}
		}

		err = tx.Omit(clause.Associations).Create(&Participant{
			UserID:  userID,
			EventID: eventID,
		}).Error
		if err != nil {
			if isUniqueViolation(err) {
				return errAlreadyJoined
			}
			return err
		}

		return nil
	})
	if errors.Is(err, errAlreadyJoined) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (d *ParticipantDAO) IsParticipant(ctx context.Context, eventID, userID uint) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&n).Error
	return n > 0, err
}

func (d *ParticipantDAO) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&Participant{}).Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}

// ListByEvent returns the participants of one event in join order.
func (d *ParticipantDAO) ListByEvent(ctx context.Context, eventID uint) ([]ParticipantRow, error) {
	var rows []ParticipantRow
	err := d.joined(ctx).
		Where("participants.event_id = ?", eventID).
		Order("participants.created_at ASC").
		Order("participants.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// List is the admin listing, newest first.
func (d *ParticipantDAO) List(ctx context.Context, filter ParticipantFilter, limit, offset int) ([]ParticipantRow, int64, error) {
	var total int64
	if err := d.filtered(d.base(ctx), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ParticipantRow
	err := d.filtered(d.joined(ctx), filter).
		Order("participants.created_at DESC").
		Order("participants.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (d *ParticipantDAO) base(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).
		Model(&Participant{}).
		Joins("JOIN users ON users.id = participants.user_id").
		Joins("JOIN events ON events.id = participants.event_id")
}

func (d *ParticipantDAO) joined(ctx context.Context) *gorm.DB {
	return d.base(ctx).
		Select("participants.id, participants.user_id, users.username, participants.event_id, " +
			"events.title AS event_title, participants.is_confirmed, participants.created_at")
}

func (d *ParticipantDAO) filtered(query *gorm.DB, filter ParticipantFilter) *gorm.DB {
	if filter.EventID != nil {
		query = query.Where("participants.event_id = ?", *filter.EventID)
	}
	if filter.IsConfirmed != nil {
		query = query.Where("participants.is_confirmed = ?", *filter.IsConfirmed)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(users.username) LIKE ? ESCAPE '\\' OR LOWER(events.title) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	return query
}
