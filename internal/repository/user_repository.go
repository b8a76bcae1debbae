package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moviehub-backend/internal/apperrors"
	"moviehub-backend/internal/database"
	"moviehub-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	// Create persists a new user. A duplicate email reports apperrors.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Saved-movies relationship. Both sides of the association live in the
	// user_saved_movies join table, so a single transactional write keeps the
	// user's saved set and the movie's referencing-users set consistent.
	HasSaved(ctx context.Context, userID, movieID uint) (bool, error)
	AppendSaved(ctx context.Context, userID, movieID uint) error
	RemoveSaved(ctx context.Context, userID, movieID uint) error
	ListSaved(ctx context.Context, userID uint) ([]models.Movie, error)
}

type userRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewUserRepository(db *database.Database) UserRepository {
	return &userRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *userRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: user with email %s", apperrors.ErrAlreadyExists, user.Email)
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with ID %d", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) HasSaved(ctx context.Context, userID, movieID uint) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).
		Table("user_saved_movies").
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AppendSaved adds the movie to the user's saved set. The user row is locked
// before the movie row (stable order) so interleaved save/remove calls for
// the same pair serialize instead of leaving the association half-applied.
func (r *userRepository) AppendSaved(ctx context.Context, userID, movieID uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPair(tx, userID, movieID); err != nil {
			return err
		}

		var count int64
		if err := tx.Table("user_saved_movies").
			Where("user_id = ? AND movie_id = ?", userID, movieID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: movie %d for user %d", apperrors.ErrAlreadySaved, movieID, userID)
		}

		return tx.Exec("INSERT INTO user_saved_movies (user_id, movie_id) VALUES (?, ?)",
			userID, movieID).Error
	})
}

// RemoveSaved drops the movie from the user's saved set under the same
// locking protocol as AppendSaved.
func (r *userRepository) RemoveSaved(ctx context.Context, userID, movieID uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPair(tx, userID, movieID); err != nil {
			return err
		}

		result := tx.Exec("DELETE FROM user_saved_movies WHERE user_id = ? AND movie_id = ?",
			userID, movieID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: movie %d for user %d", apperrors.ErrNotSaved, movieID, userID)
		}
		return nil
	})
}

func (r *userRepository) ListSaved(ctx context.Context, userID uint) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movies []models.Movie
	err := r.db.WithContext(ctx).
		Joins("JOIN user_saved_movies usm ON usm.movie_id = movies.id").
		Where("usm.user_id = ?", userID).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// lockPair acquires FOR UPDATE locks on the user and movie rows, always user
// first, and verifies both records still exist.
func lockPair(tx *gorm.DB, userID, movieID uint) error {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user with ID %d", apperrors.ErrNotFound, userID)
		}
		return err
	}

	var movie models.Movie
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&movie, movieID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: movie with ID %d", apperrors.ErrNotFound, movieID)
		}
		return err
	}
	return nil
}
