package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain/entity"
)

// ResetTokenRepository define el puerto de persistencia para ResetToken.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *entity.ResetToken) error
	GetByToken(ctx context.Context, token string) (*entity.ResetToken, error)
	// Consume marca el token como consumido con un compare-and-set atómico:
	// solo si consumed=false y no expiró. Devuelve el userID dueño; si el token
	// no existe, ya fue consumido o expiró → domain.ErrInvalidToken. Bajo
	// canje concurrente del mismo token exactamente un caller gana.
	Consume(ctx context.Context, token string, now time.Time) (userID string, err error)
	// PurgeExpired elimina tokens vencidos; devuelve cuántos borró.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
