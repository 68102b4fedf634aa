package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
)

const userColumns = `id, name, email, password_hash, google_id, profile_image, created_at`

// userRepository implements UserRepository over Postgres.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// GetByID retrieves a user by id.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByIDs retrieves multiple users in one round trip. Missing ids are simply
// absent from the result.
func (r *userRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	defer rows.Close()

	return collectUserRows(rows)
}

// FindMatching retrieves users matching the query. Name and email are
// case-insensitive substring matches; all supplied criteria must hold.
func (r *userRepository) FindMatching(ctx context.Context, query domain.UserQuery) ([]domain.User, error) {
	if query.Empty() {
		return []domain.User{}, nil
	}

	var conditions []string
	var args []any

	if query.ID != nil {
		args = append(args, *query.ID)
		conditions = append(conditions, fmt.Sprintf("id = $%d", len(args)))
	}
	if query.Name != "" {
		args = append(args, "%"+escapeLike(query.Name)+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if query.Email != "" {
		args = append(args, "%"+escapeLike(query.Email)+"%")
		conditions = append(conditions, fmt.Sprintf("email ILIKE $%d", len(args)))
	}

	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(conditions, " AND ")
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer rows.Close()

	return collectUserRows(rows)
}

func scanUserRow(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email,
		&user.PasswordHash, &user.GoogleID, &user.ProfileImage, &user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func collectUserRows(rows pgx.Rows) ([]domain.User, error) {
	users := []domain.User{}
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}
	return users, nil
}
