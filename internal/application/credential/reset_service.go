package credential

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Identidad-api/internal/domain"
	"github.com/jhoicas/Identidad-api/internal/domain/entity"
	"github.com/jhoicas/Identidad-api/internal/domain/repository"
	"github.com/jhoicas/Identidad-api/pkg/logger"
)

// ResetTTLDefault ventana de validez de un token de restablecimiento.
const ResetTTLDefault = 30 * time.Minute

// tokenBytes largo del token en bytes aleatorios (64 caracteres hex).
const tokenBytes = 32

// ResetService emite y canjea tokens de restablecimiento de contraseña de un
// solo uso y con expiración.
type ResetService struct {
	users    repository.UserRepository
	tokens   repository.ResetTokenRepository
	tx       TxRunner
	hasher   *Hasher
	notifier ResetNotifier
	ttl      time.Duration
	minLen   int
	log      *logger.Logger
	now      func() time.Time
}

// NewResetService construye el servicio. notifier puede ser nil (sin envío de
// correo, útil en tests y entornos locales).
func NewResetService(
	users repository.UserRepository,
	tokens repository.ResetTokenRepository,
	tx TxRunner,
	hasher *Hasher,
	notifier ResetNotifier,
	ttl time.Duration,
	minPasswordLen int,
	log *logger.Logger,
) *ResetService {
	if ttl <= 0 {
		ttl = ResetTTLDefault
	}
	if minPasswordLen <= 0 {
		minPasswordLen = MinPasswordLenDefault
	}
	return &ResetService{
		users:    users,
		tokens:   tokens,
		tx:       tx,
		hasher:   hasher,
		notifier: notifier,
		ttl:      ttl,
		minLen:   minPasswordLen,
		log:      log,
		now:      time.Now,
	}
}

// Issue emite un token para el email dado. Desde la perspectiva del caller
// siempre tiene éxito: para una cuenta inexistente simplemente no se persiste
// nada. El token se genera antes de la búsqueda y la inserción es barata, así
// que ningún camino hace trabajo extra que delate por latencia si la cuenta
// existe. Los fallos internos se registran pero no se propagan por la misma
// razón.
func (s *ResetService) Issue(ctx context.Context, email string) {
	token, err := randomToken()
	if err != nil {
		s.log.Error().Err(err).Msg("generar token de restablecimiento")
		return
	}

	user, err := s.users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("buscar usuario para restablecimiento")
		}
		return
	}

	now := s.now()
	rt := &entity.ResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		s.log.Error().Err(err).Msg("persistir token de restablecimiento")
		return
	}

	if s.notifier != nil {
		// Fire-and-forget: el fallo de entrega no rompe el contrato de Issue.
		go func(email, token string, expiresAt time.Time) {
			if err := s.notifier.SendResetLink(email, token, expiresAt); err != nil {
				s.log.Warn().Err(err).Msg("enviar enlace de restablecimiento")
			}
		}(user.Email, token, rt.ExpiresAt)
	}
}

// Redeem canjea un token: lo marca consumido y aplica la nueva contraseña al
// usuario dueño en la misma transacción, de modo que ningún canje concurrente
// del mismo token pueda observar un estado intermedio. Token desconocido,
// consumido o expirado → ErrInvalidToken; política no cumplida → ErrWeakCredential.
func (s *ResetService) Redeem(ctx context.Context, token, newPassword string) error {
	if newPassword == "" || len(newPassword) < s.minLen {
		return domain.ErrWeakCredential
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.tx.Run(ctx, func(users repository.UserRepository, tokens repository.ResetTokenRepository) error {
		userID, err := tokens.Consume(ctx, token, s.now())
		if err != nil {
			return err
		}
		method := entity.LoginMethodPassword
		return users.UpdatePartial(ctx, userID, repository.UserPatch{
			PasswordHash: &hash,
			LoginMethod:  &method,
		})
	})
}

// PurgeExpired barre tokens vencidos. Pensado para ejecutarse periódicamente
// desde el despliegue; devuelve cuántos eliminó.
func (s *ResetService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purgar tokens expirados: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("eliminados", n).Msg("tokens de restablecimiento expirados purgados")
	}
	return n, nil
}

// randomToken genera un token criptográficamente aleatorio en hex.
func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
