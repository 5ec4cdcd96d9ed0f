package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskshield/internal/models"
)

// UserRepository stores users. Callers are required to run user.Validate()
// before every Create and Update.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	Update(user *models.User) error
	Delete(id uuid.UUID) error
	List(limit, offset int) ([]*models.User, error)
	GetCount() (int, error)
	GetCountByRole(role models.UserRole) (int, error)

	// refresh helpers
	UpdateRefresh(userID uuid.UUID, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID uuid.UUID) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, email, password_hash, first_name, last_name, role, enabled,
	account_non_locked, failed_login_attempts, locked_until,
	created_at, updated_at, last_login_at,
	refresh_token, refresh_expires_at, refresh_revoked
`

func (r *userRepository) Create(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	const q = `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, role, enabled,
			account_non_locked, failed_login_attempts, locked_until,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err := r.DB.Exec(q,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Enabled,
		user.AccountNonLocked,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		lockedUntil sql.NullTime
		lastLogin   sql.NullTime
		rt          sql.NullString
		rte         sql.NullTime
		rr          sql.NullBool
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.Enabled,
		&u.AccountNonLocked, &u.FailedLoginAttempts, &lockedUntil,
		&u.CreatedAt, &u.UpdatedAt, &lastLogin,
		&rt, &rte, &rr,
	)
	if err != nil {
		return nil, err
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		u.LockedUntil = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) GetByID(id uuid.UUID) (*models.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	return u, err
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	return u, err
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *userRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	const q = `
		UPDATE users SET
			email=$1, password_hash=$2, first_name=$3, last_name=$4, role=$5,
			enabled=$6, account_non_locked=$7, failed_login_attempts=$8,
			locked_until=$9, updated_at=$10, last_login_at=$11
		WHERE id=$12
	`
	_, err := r.DB.Exec(q,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role,
		user.Enabled, user.AccountNonLocked, user.FailedLoginAttempts,
		user.LockedUntil, user.UpdatedAt, user.LastLoginAt, user.ID,
	)
	return err
}

func (r *userRepository) Delete(id uuid.UUID) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *userRepository) List(limit, offset int) ([]*models.User, error) {
	rows, err := r.DB.Query(
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		var (
			lockedUntil sql.NullTime
			lastLogin   sql.NullTime
			rt          sql.NullString
			rte         sql.NullTime
			rr          sql.NullBool
		)
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.Enabled,
			&u.AccountNonLocked, &u.FailedLoginAttempts, &lockedUntil,
			&u.CreatedAt, &u.UpdatedAt, &lastLogin,
			&rt, &rte, &rr,
		); err != nil {
			return nil, err
		}
		if lockedUntil.Valid {
			t := lockedUntil.Time
			u.LockedUntil = &t
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			u.LastLoginAt = &t
		}
		if rt.Valid {
			s := rt.String
			u.RefreshToken = &s
		}
		if rte.Valid {
			t := rte.Time
			u.RefreshExpiresAt = &t
		}
		if rr.Valid {
			u.RefreshRevoked = rr.Bool
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) GetCount() (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *userRepository) GetCountByRole(role models.UserRole) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	return count, err
}

func (r *userRepository) UpdateRefresh(userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE WHERE id=$3`,
		token, expiresAt, userID,
	)
	return err
}

func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	const q = `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING ` + userColumns
	row := r.DB.QueryRow(q, newToken, newExpiresAt, oldToken)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) ClearRefresh(userID uuid.UUID) error {
	_, err := r.DB.Exec(
		`UPDATE users SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE WHERE id=$1`,
		userID,
	)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE refresh_token = $1`, token)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}
