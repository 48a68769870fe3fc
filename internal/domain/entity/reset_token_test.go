package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Identidad-api/internal/domain/entity"
)

func TestResetToken_Redeemable(t *testing.T) {
	now := time.Now()

	vigente := &entity.ResetToken{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, vigente.Redeemable(now))

	consumido := &entity.ResetToken{ExpiresAt: now.Add(time.Minute), Consumed: true}
	assert.False(t, consumido.Redeemable(now), "un token consumido no es canjeable")

	vencido := &entity.ResetToken{ExpiresAt: now.Add(-time.Second)}
	assert.False(t, vencido.Redeemable(now), "un token vencido no es canjeable")

	// Borde: en el instante exacto de expiración el token ya no sirve.
	justo := &entity.ResetToken{ExpiresAt: now}
	assert.True(t, justo.Expired(now))
	assert.False(t, justo.Redeemable(now))
}
