package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Feedback struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	EventID   uint      `gorm:"not null;index"`
	Event     Event     `gorm:"constraint:OnDelete:CASCADE"`
	Rating    int       `gorm:"not null;check:chk_feedbacks_rating,rating BETWEEN 1 AND 10"`
	Comment   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type FeedbackRow struct {
	ID         uint
	UserID     uint
	Username   string
	EventID    uint
	EventTitle string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

type FeedbackFilter struct {
	EventID *uint
	Rating  *int
	Search  string
}

type FeedbackDAO struct {
	db *gorm.DB
}

func NewFeedbackDAO(db *gorm.DB) *FeedbackDAO {
	return &FeedbackDAO{
		db: db,
	}
}

func (d *FeedbackDAO) Insert(ctx context.Context, feedback Feedback) (Feedback, error) {
	feedback.ID = 0
	if err := d.db.WithContext(ctx).Omit(clause.Associations).Create(&feedback).Error; err != nil {
		return Feedback{}, err
	}

	return feedback, nil
}

// ListByEvent returns the feedback of one event, newest first.
func (d *FeedbackDAO) ListByEvent(ctx context.Context, eventID uint) ([]FeedbackRow, error) {
	var rows []FeedbackRow
	err := d.joined(ctx).
		Where("feedbacks.event_id = ?", eventID).
		Order("feedbacks.created_at DESC").
		Order("feedbacks.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (d *FeedbackDAO) List(ctx context.Context, filter FeedbackFilter, limit, offset int) ([]FeedbackRow, int64, error) {
	var total int64
	if err := d.filtered(d.base(ctx), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []FeedbackRow
	err := d.filtered(d.joined(ctx), filter).
		Order("feedbacks.created_at DESC").
		Order("feedbacks.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// Ratings returns every rating left on eventID.
func (d *FeedbackDAO) Ratings(ctx context.Context, eventID uint) ([]int, error) {
	var ratings []int
	err := d.db.WithContext(ctx).
		Model(&Feedback{}).
		Where("event_id = ?", eventID).
		Pluck("rating", &ratings).Error
	return ratings, err
}

func (d *FeedbackDAO) base(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).
		Model(&Feedback{}).
		Joins("JOIN users ON users.id = feedbacks.user_id").
		Joins("JOIN events ON events.id = feedbacks.event_id")
}

func (d *FeedbackDAO) joined(ctx context.Context) *gorm.DB {
	return d.base(ctx).
		Select("feedbacks.id, feedbacks.user_id, users.username, feedbacks.event_id, " +
			"events.title AS event_title, feedbacks.rating, feedbacks.comment, feedbacks.created_at")
}

func (d *FeedbackDAO) filtered(query *gorm.DB, filter FeedbackFilter) *gorm.DB {
	if filter.EventID != nil {
		query = query.Where("feedbacks.event_id = ?", *filter.EventID)
	}
	if filter.Rating != nil {
		query = query.Where("feedbacks.rating = ?", *filter.Rating)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(
			"(LOWER(feedbacks.comment) LIKE ? ESCAPE '\\' OR LOWER(users.username) LIKE ? ESCAPE '\\' OR LOWER(events.title) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}

	return query
}
