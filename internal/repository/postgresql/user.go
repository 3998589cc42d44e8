package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, email, username, slack_user_id, oauth_provider, oauth_provider_id, is_admin, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.SlackUserID,
		&u.OAuthProvider,
		&u.OAuthProviderID,
		&u.IsAdmin,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *userRepositoryImpl) getOne(ctx context.Context, query string, args ...any) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	created, err := r.getOne(ctx, query,
		newUser.ID,
		newUser.Email,
		newUser.Username,
		newUser.SlackUserID,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
		newUser.IsAdmin,
		newUser.LastLoginAt,
		newUser.CreatedAt,
		newUser.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, err
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	if !validIDs(id) {
		return user.User{}, user.ErrUserNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetAdmin implements user.UserRepository.
func (r *userRepositoryImpl) SetAdmin(ctx context.Context, id string, isAdmin bool) (user.User, error) {
	if !validIDs(id) {
		return user.User{}, user.ErrUserNotFound
	}
	query := `
		UPDATE users
		SET is_admin = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.getOne(ctx, query, id, isAdmin)
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, id string, googleID string) (user.User, error) {
	if !validIDs(id) {
		return user.User{}, user.ErrUserNotFound
	}
	query := `
		UPDATE users
		SET oauth_provider = 'google', oauth_provider_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.getOne(ctx, query, id, googleID)
}

// TouchLastLogin implements user.UserRepository.
func (r *userRepositoryImpl) TouchLastLogin(ctx context.Context, id string) error {
	if !validIDs(id) {
		return user.ErrUserNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete implements user.UserRepository. Records, requests and excuses go
// with the user through ON DELETE CASCADE.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !validIDs(id) {
		return user.ErrUserNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
