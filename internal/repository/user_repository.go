package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, full_name, email, phone_number, city,
	profile_picture_url, password_hash, created_at, updated_at`

// Create inserts u and fills its server timestamps.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users
			(id, username, full_name, email, phone_number, city, profile_picture_url, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.FullName, strings.ToLower(u.Email), u.PhoneNumber, u.City, u.ProfilePictureURL, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("UserRepository.Create %s: %w", u.Email, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("UserRepository.Create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("UserRepository.GetByID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("UserRepository.GetByID: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("UserRepository.GetByEmail: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("UserRepository.GetByEmail: %w", err)
	}
	return &u, nil
}

// UpdateProfile writes the fields set in p and bumps updated_at.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p model.ProfileUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			full_name           = COALESCE($1, full_name),
			phone_number        = COALESCE($2, phone_number),
			city                = COALESCE($3, city),
			profile_picture_url = COALESCE($4, profile_picture_url),
			updated_at          = now()
		WHERE id = $5
	`, p.FullName, p.PhoneNumber, p.City, p.ProfilePictureURL, id)
	if err != nil {
		return fmt.Errorf("UserRepository.UpdateProfile: %w", err)
	}
	return expectOne(res, "UserRepository.UpdateProfile", id)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns up to limit users whose full name or username contains
// term, ignoring case, ordered by full name.
func (r *UserRepository) Search(ctx context.Context, term string, limit int) ([]model.User, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	var users []model.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+` FROM users
		WHERE full_name ILIKE $1 OR username ILIKE $1
		ORDER BY full_name
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.Search: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("UserRepository.Count: %w", err)
	}
	return n, nil
}
