package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activity-planner/internal/models"
)

// CommentRepository abstracts comment persistence.
type CommentRepository interface {
	CreateComment(ctx context.Context, activityID string, username string, body string) (models.Comment, error)
	ListComments(ctx context.Context, activityID string) ([]models.Comment, error)
}

// CommentRepo is a sqlx-backed repository.
type CommentRepo struct {
	db *sqlx.DB
}

// NewCommentRepo constructs CommentRepo.
func NewCommentRepo(db *sqlx.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// CreateComment stores a comment and returns it with author display fields.
func (r *CommentRepo) CreateComment(ctx context.Context, activityID string, username string, body string) (models.Comment, error) {
	var comment models.Comment
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO comments (id, activity_id, username, body) VALUES ($1, $2, $3, $4)
        RETURNING id, username, body, created_at`,
		uuid.NewString(), activityID, username, body).
		Scan(&comment.ID, &comment.Username, &comment.Body, &comment.CreatedAt)
	if err != nil {
		return models.Comment{}, err
	}

	err = r.db.QueryRowxContext(ctx,
		`SELECT u.display_name, COALESCE(p.url, '')
            FROM users u
            LEFT JOIN photos p ON p.username = u.username AND p.is_main = TRUE
            WHERE u.username=$1`, username).
		Scan(&comment.DisplayName, &comment.Image)
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// ListComments returns the activity's comments in arrival order.
func (r *CommentRepo) ListComments(ctx context.Context, activityID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.SelectContext(ctx, &comments,
		`SELECT c.id, c.username, u.display_name, COALESCE(p.url, '') AS image, c.body, c.created_at
            FROM comments c
            JOIN users u ON u.username = c.username
            LEFT JOIN photos p ON p.username = c.username AND p.is_main = TRUE
            WHERE c.activity_id=$1
            ORDER BY c.created_at ASC`, activityID)
	return comments, err
}
