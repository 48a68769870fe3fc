package credential_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Identidad-api/internal/application/credential"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests Hasher — contrato hash/verify sobre bcrypt
// ──────────────────────────────────────────────────────────────────────────────

func TestHasher_HashYVerify_RoundTrip(t *testing.T) {
	h := credential.NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("contraseña-secreta-123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, h.Verify("contraseña-secreta-123", hash),
		"la contraseña original debe verificar contra su hash")
	assert.False(t, h.Verify("otra-contraseña", hash),
		"una contraseña distinta no debe verificar")
}

// El salt va embebido: dos hashes del mismo texto son distintos entre sí pero
// ambos verifican.
func TestHasher_SaltEmbebido_HashesDistintos(t *testing.T) {
	h := credential.NewHasher(bcrypt.MinCost)

	hash1, err := h.Hash("misma-contraseña")
	require.NoError(t, err)
	hash2, err := h.Hash("misma-contraseña")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2,
		"el mismo texto debe producir hashes distintos (salt aleatorio)")
	assert.True(t, h.Verify("misma-contraseña", hash1))
	assert.True(t, h.Verify("misma-contraseña", hash2))
}

// Falla cerrado: hash malformado o vacío nunca verifica, nunca paniquea.
func TestHasher_Verify_FallaCerrado(t *testing.T) {
	h := credential.NewHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("cualquiera", ""), "hash vacío no debe verificar")
	assert.False(t, h.Verify("cualquiera", "no-es-un-hash-bcrypt"),
		"hash malformado no debe verificar")
	assert.False(t, h.Verify("cualquiera", "$2a$10$truncado"),
		"hash truncado no debe verificar")
}

// El hash nunca contiene el texto plano.
func TestHasher_HashNoContieneTextoPlano(t *testing.T) {
	h := credential.NewHasher(bcrypt.MinCost)

	const plano = "TextoPlanoUnico987"
	hash, err := h.Hash(plano)
	require.NoError(t, err)
	assert.False(t, strings.Contains(hash, plano),
		"el hash no debe contener el texto plano")
}

// Costo fuera de rango cae al por defecto sin fallar.
func TestHasher_CostoInvalido_UsaDefault(t *testing.T) {
	h := credential.NewHasher(99)

	hash, err := h.Hash("contraseña")
	require.NoError(t, err)
	assert.True(t, h.Verify("contraseña", hash))
}

// Burn no debe alterar estado ni paniquear (solo quema latencia).
func TestHasher_Burn_NoAlteraNada(t *testing.T) {
	h := credential.NewHasher(bcrypt.MinCost)

	h.Burn("lo-que-sea")

	hash, err := h.Hash("contraseña")
	require.NoError(t, err)
	assert.True(t, h.Verify("contraseña", hash))
}
