package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"restaurant_backend/internal/models"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	FindUserByUsername(ctx context.Context, executor SQLExecutor, username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(ctx context.Context, executor SQLExecutor, userID int64) (*models.User, error)
}

// authRepository implements the AuthRepository interface.
type authRepository struct{}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository() AuthRepository {
	return &authRepository{}
}

// userSelect joins the role name; users without a role get an empty one.
const userSelect = `
	SELECT u.id, u.username, u.password_hash, u.email, u.full_name, u.role_id, u.is_active, u.created_at, u.updated_at,
	       COALESCE(ro.name, '') as role_name
	FROM users u
	LEFT JOIN roles ro ON u.role_id = ro.id`

func scanUser(row scanner) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string
	var roleID sql.NullInt64 // To correctly scan nullable role_id
	var roleName string

	err := row.Scan(
		&user.ID, &user.Username, &hashedPassword, &user.Email, &user.FullName,
		&roleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&roleName,
	)
	if err != nil {
		return nil, "", err
	}

	if roleID.Valid {
		user.RoleID = &roleID.Int64
		user.Role = &models.Role{ID: roleID.Int64, Name: roleName}
	}
	return user, hashedPassword, nil
}

// FindUserByUsername retrieves a user by their username.
// It returns the user model, their hashed password, and an error if any.
func (r *authRepository) FindUserByUsername(ctx context.Context, executor SQLExecutor, username string) (*models.User, string, error) {
	user, hashedPassword, err := scanUser(executor.QueryRowContext(ctx, userSelect+` WHERE u.username = $1`, username))
	if err != nil {
		return nil, "", mapDBError(err, fmt.Sprintf("finding user by username %s", username))
	}
	return user, hashedPassword, nil
}

// FindUserByID retrieves a user by their ID.
func (r *authRepository) FindUserByID(ctx context.Context, executor SQLExecutor, userID int64) (*models.User, error) {
	user, _, err := scanUser(executor.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, userID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("finding user by id %d", userID))
	}
	return user, nil
}
