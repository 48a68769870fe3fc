package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Identidad-api/internal/domain/entity"
)

func TestNormalizeEmail(t *testing.T) {
	casos := []struct {
		nombre   string
		entrada  string
		esperado string
	}{
		{"minúsculas intactas", "ana@ejemplo.com", "ana@ejemplo.com"},
		{"mayúsculas a minúsculas", "ANA@Ejemplo.COM", "ana@ejemplo.com"},
		{"espacios recortados", "  ana@ejemplo.com  ", "ana@ejemplo.com"},
		{"ambos a la vez", "\tANA@EJEMPLO.COM \n", "ana@ejemplo.com"},
		{"vacío queda vacío", "", ""},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			assert.Equal(t, c.esperado, entity.NormalizeEmail(c.entrada))
		})
	}
}

// Dos formas Unicode del mismo nombre (é precompuesta vs e + acento combinante)
// deben converger a la misma representación NFC.
func TestNormalizeDisplayName_NFC(t *testing.T) {
	precompuesta := "Jos\u00e9"
	combinante := "Jose\u0301"
	assert.Equal(t,
		entity.NormalizeDisplayName(precompuesta),
		entity.NormalizeDisplayName(combinante),
		"ambas formas deben normalizar igual")
	assert.Equal(t, precompuesta, entity.NormalizeDisplayName("  Jose\u0301  "))
}
