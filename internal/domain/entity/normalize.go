package entity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail canonicaliza un email como clave de búsqueda (trim + minúsculas).
// Toda búsqueda y todo almacenamiento de email pasa por aquí.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeDisplayName aplica NFC para que nombres con acentos combinados
// queden en una sola forma canónica sin importar cómo los envió el cliente.
func NormalizeDisplayName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
