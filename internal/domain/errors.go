package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// ErrStoreUnavailable es transitorio (reintentable por el caller); el resto son
// errores lógicos o de validación. ErrAuthFailure es deliberadamente genérico:
// cubre usuario inexistente, contraseña incorrecta y método equivocado para que
// la frontera externa nunca pueda distinguir entre ellos (anti-enumeración).
var (
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrDuplicateEmail    = errors.New("el email ya está registrado")
	ErrAuthFailure       = errors.New("credenciales inválidas")
	ErrWeakCredential    = errors.New("la contraseña no cumple la política mínima")
	ErrMissingCredential = errors.New("falta la credencial requerida para ese método de login")
	ErrInvalidToken      = errors.New("token inválido, consumido o expirado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrStoreUnavailable  = errors.New("almacenamiento no disponible")
	ErrMigrationPartial  = errors.New("migración incompleta: faltan columnas esperadas")
)
