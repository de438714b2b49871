package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-admin/internal/model"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

const adminColumns = `id, email, full_name, password_hash, role, dimension_id,
		        sessions_revoked_at, created_at, updated_at`

func scanAdmin(row pgx.Row) (model.Admin, error) {
	var a model.Admin
	var role int16
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.PasswordHash, &role, &a.DimensionID,
		&a.SessionsRevokedAt, &a.CreatedAt, &a.UpdatedAt)
	a.Role = model.Role(role)
	return a, err
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (model.Admin, error) {
	a, err := scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Admin{}, model.ErrAdminNotFound
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("find admin by id: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (model.Admin, error) {
	a, err := scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Admin{}, model.ErrAdminNotFound
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("find admin by email: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a model.Admin) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admins (id, email, full_name, password_hash, role, dimension_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Email, a.FullName, a.PasswordHash, int16(a.Role), a.DimensionID, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: email %s already registered", model.ErrConflict, a.Email)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: dimension does not exist", model.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdateProfile(ctx context.Context, id string, fullName string) (model.Admin, error) {
	a, err := scanAdmin(r.pool.QueryRow(ctx,
		`UPDATE admins SET full_name = $2, updated_at = $3 WHERE id = $1
		 RETURNING `+adminColumns,
		id, fullName, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Admin{}, model.ErrAdminNotFound
	}
	if err != nil {
		return model.Admin{}, fmt.Errorf("update admin profile: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: admin still has task assignments or submissions", model.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := make([]model.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// ForceSignOut calls the force_sign_out procedure, which revokes refresh
// tokens and stamps sessions_revoked_at.
func (r *AdminRepository) ForceSignOut(ctx context.Context, id string) error {
	var found bool
	if err := r.pool.QueryRow(ctx, `SELECT force_sign_out($1)`, id).Scan(&found); err != nil {
		return fmt.Errorf("force sign out: %w", err)
	}
	if !found {
		return model.ErrAdminNotFound
	}
	return nil
}
