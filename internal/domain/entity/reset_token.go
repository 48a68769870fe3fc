package entity

import "time"

// ResetToken token efímero de un solo uso para restablecer contraseña.
// Invariante: Consumed transiciona false → true exactamente una vez; un token
// consumido o expirado se rechaza en todo uso posterior.
type ResetToken struct {
	Token     string // aleatorio criptográfico, único
	UserID    string
	ExpiresAt time.Time
	Consumed  bool
	CreatedAt time.Time
}

// Expired indica si el token venció respecto al instante dado.
func (t *ResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Redeemable indica si el token todavía puede canjearse.
func (t *ResetToken) Redeemable(now time.Time) bool {
	return !t.Consumed && !t.Expired(now)
}
