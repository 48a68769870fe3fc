package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// El camino de lectura tolera NULL en display_name, last_login y en las
// columnas faciales: filas históricas anteriores a la migración traen esas
// formas y no deben romper ningún consumidor.
type UserRepo struct {
	db DB
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
// db puede ser el pool o una transacción.
func NewUserRepository(db DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, display_name, role, is_active, login_method, password_hash,
	facial_descriptor, facial_registered_at, facial_metadata, last_login, created_at, updated_at`

// Create persiste un nuevo usuario. El email se guarda ya normalizado.
func (r *UserRepo) Create(ctx context.Context, user *entity.UserRecord) error {
	descriptor, registeredAt, metadata, err := facialColumns(user.Facial)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.db.Exec(ctx, query,
		user.ID, entity.NormalizeEmail(user.Email), nullIfEmpty(user.DisplayName),
		user.Role, user.IsActive, user.LoginMethod, nullIfEmpty(user.PasswordHash),
		descriptor, registeredAt, metadata, user.LastLogin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return classify("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, "get user by id", query, id)
}

// GetByEmail obtiene un usuario por email normalizado.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return r.scanOne(ctx, "get user by email", query, email)
}

func (r *UserRepo) scanOne(ctx context.Context, op, query string, arg any) (*entity.UserRecord, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, classify(op, err)
	}
	return u, nil
}

// Update actualiza el registro completo; updated_at se fija en la misma sentencia.
func (r *UserRepo) Update(ctx context.Context, user *entity.UserRecord) error {
	descriptor, registeredAt, metadata, err := facialColumns(user.Facial)
	if err != nil {
		return err
	}
	query := `
		UPDATE users SET email = $2, display_name = $3, role = $4, is_active = $5,
			login_method = $6, password_hash = $7, facial_descriptor = $8,
			facial_registered_at = $9, facial_metadata = $10, last_login = $11, updated_at = $12
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, entity.NormalizeEmail(user.Email), nullIfEmpty(user.DisplayName),
		user.Role, user.IsActive, user.LoginMethod, nullIfEmpty(user.PasswordHash),
		descriptor, registeredAt, metadata, user.LastLogin, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return classify("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdatePartial aplica solo los campos presentes en el patch. updated_at se
// actualiza siempre como parte de la misma sentencia.
func (r *UserRepo) UpdatePartial(ctx context.Context, id string, patch repository.UserPatch) error {
	if patch.Empty() {
		return nil
	}
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.DisplayName != nil {
		add("display_name", nullIfEmpty(entity.NormalizeDisplayName(*patch.DisplayName)))
	}
	if patch.Role != nil {
		add("role", *patch.Role)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.LoginMethod != nil {
		add("login_method", *patch.LoginMethod)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	if patch.LastLogin != nil {
		add("last_login", *patch.LastLogin)
	}
	if patch.Facial != nil {
		descriptor, registeredAt, metadata, err := facialColumns(patch.Facial)
		if err != nil {
			return err
		}
		add("facial_descriptor", descriptor)
		add("facial_registered_at", registeredAt)
		add("facial_metadata", metadata)
	}
	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return classify("update user (partial)", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List escaneo filtrado con paginación, usado por rutinas administrativas.
func (r *UserRepo) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.UserRecord, error) {
	where := []string{"TRUE"}
	args := []any{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.LoginMethod != "" {
		args = append(args, filter.LoginMethod)
		where = append(where, fmt.Sprintf("login_method = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list users", err)
	}
	defer rows.Close()
	var list []*entity.UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify("scan user", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classify("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// scanUser reconstruye la entidad tolerando los NULL históricos.
func scanUser(row pgx.Row) (*entity.UserRecord, error) {
	var u entity.UserRecord
	var displayName, passwordHash, descriptor, metadata *string
	var registeredAt, lastLogin *time.Time
	err := row.Scan(
		&u.ID, &u.Email, &displayName, &u.Role, &u.IsActive, &u.LoginMethod,
		&passwordHash, &descriptor, &registeredAt, &metadata, &lastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	u.LastLogin = lastLogin
	if descriptor != nil && *descriptor != "" {
		facial := &entity.FacialCredential{}
		if err := json.Unmarshal([]byte(*descriptor), &facial.Descriptor); err != nil {
			return nil, fmt.Errorf("descriptor facial corrupto: %w", err)
		}
		if registeredAt != nil {
			facial.RegisteredAt = *registeredAt
		}
		if metadata != nil {
			facial.Metadata = *metadata
		}
		u.Facial = facial
	}
	return &u, nil
}

// facialColumns serializa la credencial facial a sus tres columnas (descriptor
// como texto JSON). Credencial nil produce tres NULL.
func facialColumns(f *entity.FacialCredential) (descriptor *string, registeredAt *time.Time, metadata *string, err error) {
	if f == nil {
		return nil, nil, nil, nil
	}
	raw, err := json.Marshal(f.Descriptor)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("serializar descriptor facial: %w", err)
	}
	s := string(raw)
	descriptor = &s
	registeredAt = &f.RegisteredAt
	if f.Metadata != "" {
		metadata = &f.Metadata
	}
	return descriptor, registeredAt, metadata, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
