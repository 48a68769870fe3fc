package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

var _ repository.ResetTokenRepository = (*ResetTokenRepo)(nil)

// ResetTokenRepo implementación del puerto ResetTokenRepository sobre PostgreSQL.
type ResetTokenRepo struct {
	db DB
}

// NewResetTokenRepository construye el adaptador. db puede ser el pool o una transacción.
func NewResetTokenRepository(db DB) *ResetTokenRepo {
	return &ResetTokenRepo{db: db}
}

// Create persiste un token recién emitido.
func (r *ResetTokenRepo) Create(ctx context.Context, token *entity.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (token, user_id, expires_at, consumed, created_at)
		VALUES ($1, $2, $3, FALSE, $4)`
	_, err := r.db.Exec(ctx, query, token.Token, token.UserID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return classify("insert reset token", err)
	}
	return nil
}

// GetByToken busca un token por su valor.
func (r *ResetTokenRepo) GetByToken(ctx context.Context, token string) (*entity.ResetToken, error) {
	query := `
		SELECT token, user_id, expires_at, consumed, created_at
		FROM reset_tokens WHERE token = $1`
	var t entity.ResetToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&t.Token, &t.UserID, &t.ExpiresAt, &t.Consumed, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidToken
		}
		return nil, classify("get reset token", err)
	}
	return &t, nil
}

// Consume marca el token como consumido con un compare-and-set en una sola
// sentencia: la condición NOT consumed hace que bajo canje concurrente solo un
// caller vea la fila afectada; el otro recibe ErrInvalidToken.
func (r *ResetTokenRepo) Consume(ctx context.Context, token string, now time.Time) (string, error) {
	query := `
		UPDATE reset_tokens SET consumed = TRUE
		WHERE token = $1 AND NOT consumed AND expires_at > $2
		RETURNING user_id`
	var userID string
	err := r.db.QueryRow(ctx, query, token, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrInvalidToken
		}
		return "", classify("consume reset token", err)
	}
	return userID, nil
}

// PurgeExpired elimina tokens vencidos; devuelve cuántos borró.
func (r *ResetTokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, classify("purge reset tokens", err)
	}
	return tag.RowsAffected(), nil
}
