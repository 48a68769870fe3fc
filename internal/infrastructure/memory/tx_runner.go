package memory

import (
	"context"

	"github.com/jhoicas/Identidad-api/internal/application/credential"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

var _ credential.TxRunner = (*TxRunner)(nil)

// TxRunner variante en memoria del runner transaccional. No hay rollback real:
// la atomicidad del canje descansa en el compare-and-set de Consume, igual que
// en el adaptador PostgreSQL.
type TxRunner struct {
	users  *UserRepo
	tokens *ResetTokenRepo
}

// NewTxRunner construye el runner sobre los repos en memoria.
func NewTxRunner(users *UserRepo, tokens *ResetTokenRepo) *TxRunner {
	return &TxRunner{users: users, tokens: tokens}
}

// Run ejecuta fn con los repos compartidos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	users repository.UserRepository,
	tokens repository.ResetTokenRepository,
) error) error {
	return fn(r.users, r.tokens)
}
