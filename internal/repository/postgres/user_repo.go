package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventreminder/internal/domain"
)

// pgInvalidTextRepresentation is raised when an id is not a valid uuid.
const pgInvalidTextRepresentation = "22P02"

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	var emailNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &emailNull, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if emailNull.Valid {
		u.Email = emailNull.String
	}
	return u, nil
}

func isInvalidID(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == pgInvalidTextRepresentation
}
