package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"activity-planner/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrMainPhotoDelete = errors.New("cannot delete the main photo")
)

// ProfileRepository abstracts user and photo persistence.
type ProfileRepository interface {
	CreateUser(ctx context.Context, username string, displayName string, passwordHash string) error
	GetPasswordHash(ctx context.Context, username string) (string, error)
	GetProfile(ctx context.Context, username string) (models.Profile, error)
	AddPhoto(ctx context.Context, username string, photo models.Photo) error
	SetMainPhoto(ctx context.Context, username string, photoID string) error
	DeletePhoto(ctx context.Context, username string, photoID string) error
	UpdateBio(ctx context.Context, username string, displayName string, bio string) error
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// CreateUser registers a new user.
func (r *ProfileRepo) CreateUser(ctx context.Context, username string, displayName string, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, display_name, password_hash) VALUES ($1, $2, $3)`,
		username, displayName, passwordHash)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrUsernameTaken
	}
	return err
}

// GetPasswordHash returns the stored password hash for login checks.
func (r *ProfileRepo) GetPasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.db.GetContext(ctx, &hash, `SELECT password_hash FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProfileNotFound
	}
	return hash, err
}

// GetProfile fetches a user's profile with photos and main image.
func (r *ProfileRepo) GetProfile(ctx context.Context, username string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`SELECT u.username, u.display_name, u.bio, COALESCE(p.url, '') AS image
            FROM users u
            LEFT JOIN photos p ON p.username = u.username AND p.is_main = TRUE
            WHERE u.username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}

	if err := r.db.SelectContext(ctx, &profile.Photos,
		`SELECT id, url, is_main FROM photos WHERE username=$1 ORDER BY created_at ASC`, username); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// AddPhoto stores a photo; the first photo becomes main automatically.
func (r *ProfileRepo) AddPhoto(ctx context.Context, username string, photo models.Photo) error {
	var hasMain bool
	if err := r.db.GetContext(ctx, &hasMain,
		`SELECT EXISTS(SELECT 1 FROM photos WHERE username=$1 AND is_main = TRUE)`, username); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO photos (id, username, url, is_main) VALUES ($1, $2, $3, $4)`,
		photo.ID, username, photo.URL, !hasMain)
	return err
}

// SetMainPhoto flips the main flag to the given photo.
func (r *ProfileRepo) SetMainPhoto(ctx context.Context, username string, photoID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE photos SET is_main = TRUE WHERE id=$1 AND username=$2`, photoID, username)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPhotoNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE photos SET is_main = FALSE WHERE username=$1 AND id<>$2`, username, photoID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePhoto removes a non-main photo owned by the user.
func (r *ProfileRepo) DeletePhoto(ctx context.Context, username string, photoID string) error {
	var isMain bool
	err := r.db.GetContext(ctx, &isMain,
		`SELECT is_main FROM photos WHERE id=$1 AND username=$2`, photoID, username)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPhotoNotFound
	}
	if err != nil {
		return err
	}
	if isMain {
		return ErrMainPhotoDelete
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM photos WHERE id=$1 AND username=$2`, photoID, username)
	return err
}

// UpdateBio updates the user's display name and bio.
func (r *ProfileRepo) UpdateBio(ctx context.Context, username string, displayName string, bio string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name=$2, bio=$3 WHERE username=$1`, username, displayName, bio)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProfileNotFound
	}
	return nil
}
