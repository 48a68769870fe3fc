package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
)

var _ repository.ResetTokenRepository = (*ResetTokenRepo)(nil)

// ResetTokenRepo implementación en memoria del puerto ResetTokenRepository.
// Consume es un check-and-set bajo mutex: la misma garantía de "exactamente un
// ganador" que la sentencia UPDATE condicional del adaptador PostgreSQL.
type ResetTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.ResetToken
}

// NewResetTokenRepository construye el repositorio vacío.
func NewResetTokenRepository() *ResetTokenRepo {
	return &ResetTokenRepo{tokens: make(map[string]*entity.ResetToken)}
}

func (r *ResetTokenRepo) Create(_ context.Context, token *entity.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *ResetTokenRepo) GetByToken(_ context.Context, token string) (*entity.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	clone := *t
	return &clone, nil
}

func (r *ResetTokenRepo) Consume(_ context.Context, token string, now time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || !t.Redeemable(now) {
		return "", domain.ErrInvalidToken
	}
	t.Consumed = true
	return t.UserID, nil
}

func (r *ResetTokenRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if t.Expired(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}
