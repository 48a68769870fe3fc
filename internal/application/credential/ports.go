package credential

import (
	"context"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

// FacialMatcher es el colaborador externo de comparación de características.
// Devuelve la distancia entre dos descriptores (menor = más parecido). La
// decisión de aceptar o rechazar contra el umbral es del Manager, no del matcher.
type FacialMatcher interface {
	Distance(a, b []float64) (float64, error)
}

// ResetNotifier entrega el enlace de restablecimiento al usuario. El envío es
// fire-and-forget: su fallo no afecta el contrato de Issue.
type ResetNotifier interface {
	SendResetLink(email, token string, expiresAt time.Time) error
}

// TxRunner ejecuta fn con repos atados a una misma transacción: el consumo del
// token y el cambio de contraseña comprometen o fallan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		users repository.UserRepository,
		tokens repository.ResetTokenRepository,
	) error) error
}
