package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, name, password_hash, role, is_active, is_verified,
	verification_token, verification_sent_at, reset_token, reset_token_expires_at,
	last_login_at, created_at, updated_at`

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), user.IsActive, user.IsVerified,
		user.VerificationToken, user.VerificationSentAt, user.ResetToken, user.ResetTokenExpiresAt,
		user.LastLoginAt, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "get user by id", `WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "get user by email", `WHERE email = $1`, email)
}

// GetByVerificationToken busca el usuario dueño del token de verificación.
func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	return r.findOne(ctx, "get user by verification token", `WHERE verification_token = $1`, token)
}

// GetByResetToken busca el usuario dueño del token de recuperación.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	return r.findOne(ctx, "get user by reset token", `WHERE reset_token = $1`, token)
}

func (r *UserRepo) findOne(ctx context.Context, op, where string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where + ` LIMIT 1`
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			email = $2, name = $3, password_hash = $4, role = $5, is_active = $6, is_verified = $7,
			verification_token = $8, verification_sent_at = $9, reset_token = $10,
			reset_token_expires_at = $11, last_login_at = $12, updated_at = $13
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), user.IsActive, user.IsVerified,
		user.VerificationToken, user.VerificationSentAt, user.ResetToken, user.ResetTokenExpiresAt,
		user.LastLoginAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios por fecha de alta descendente, con el total para paginar.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// ListIDsByRole devuelve los IDs de los usuarios con el rol indicado.
func (r *UserRepo) ListIDsByRole(ctx context.Context, role entity.Role) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE role = $1 ORDER BY created_at`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return ids, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var role string
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.IsActive, &u.IsVerified,
		&u.VerificationToken, &u.VerificationSentAt, &u.ResetToken, &u.ResetTokenExpiresAt,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}
