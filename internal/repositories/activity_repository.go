package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"activity-planner/internal/models"
)

var ErrActivityNotFound = errors.New("activity not found")

// ActivityRepository abstracts activity persistence.
type ActivityRepository interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
	GetActivity(ctx context.Context, activityID string) (models.Activity, error)
	CreateActivity(ctx context.Context, activity models.Activity, hostUsername string) error
	UpdateActivity(ctx context.Context, activity models.Activity) error
	DeleteActivity(ctx context.Context, activityID string) error
	AddAttendee(ctx context.Context, activityID string, username string) error
	RemoveAttendee(ctx context.Context, activityID string, username string) error
}

// ActivityRepo is a sqlx implementation of ActivityRepository.
type ActivityRepo struct {
	db *sqlx.DB
}

// NewActivityRepo constructs an ActivityRepo.
func NewActivityRepo(db *sqlx.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

const attendeeQuery = `SELECT a.username, u.display_name, COALESCE(p.url, '') AS image, a.is_host
        FROM attendees a
        JOIN users u ON u.username = a.username
        LEFT JOIN photos p ON p.username = a.username AND p.is_main = TRUE
        WHERE a.activity_id=$1
        ORDER BY a.joined_at ASC`

// ListActivities returns all activities with their attendee lists, date ascending.
func (r *ActivityRepo) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.SelectContext(ctx, &activities,
		`SELECT id, title, description, category, date, city, venue FROM activities ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}

	for i := range activities {
		if err := r.db.SelectContext(ctx, &activities[i].Attendees, attendeeQuery, activities[i].ID); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

// GetActivity fetches a single activity with its attendee list.
func (r *ActivityRepo) GetActivity(ctx context.Context, activityID string) (models.Activity, error) {
	var activity models.Activity
	err := r.db.GetContext(ctx, &activity,
		`SELECT id, title, description, category, date, city, venue FROM activities WHERE id=$1`, activityID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, ErrActivityNotFound
	}
	if err != nil {
		return models.Activity{}, err
	}

	if err := r.db.SelectContext(ctx, &activity.Attendees, attendeeQuery, activityID); err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

// CreateActivity stores an activity and seeds the host attendee row.
func (r *ActivityRepo) CreateActivity(ctx context.Context, activity models.Activity, hostUsername string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO activities (id, title, description, category, date, city, venue) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		activity.ID, activity.Title, activity.Description, activity.Category, activity.Date, activity.City, activity.Venue); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attendees (activity_id, username, is_host) VALUES ($1, $2, TRUE)`,
		activity.ID, hostUsername); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateActivity replaces the stored activity fields.
func (r *ActivityRepo) UpdateActivity(ctx context.Context, activity models.Activity) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE activities SET title=$2, description=$3, category=$4, date=$5, city=$6, venue=$7 WHERE id=$1`,
		activity.ID, activity.Title, activity.Description, activity.Category, activity.Date, activity.City, activity.Venue)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// DeleteActivity removes an activity; attendees and comments cascade.
func (r *ActivityRepo) DeleteActivity(ctx context.Context, activityID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id=$1`, activityID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// AddAttendee registers the user on the activity as a non-host.
func (r *ActivityRepo) AddAttendee(ctx context.Context, activityID string, username string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendees (activity_id, username, is_host) VALUES ($1, $2, FALSE)
        ON CONFLICT (activity_id, username) DO NOTHING`, activityID, username)
	return err
}

// RemoveAttendee drops the user's attendance row.
func (r *ActivityRepo) RemoveAttendee(ctx context.Context, activityID string, username string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM attendees WHERE activity_id=$1 AND username=$2 AND is_host = FALSE`, activityID, username)
	return err
}
