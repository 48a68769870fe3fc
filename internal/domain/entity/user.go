package entity

import "time"

// Roles válidos para UserRecord.
const (
	RoleAdmin    = "admin"
	RoleStandard = "standard"
)

// Métodos de login soportados.
const (
	LoginMethodPassword = "password"
	LoginMethodFacial   = "facial"
)

// ValidRole indica si el rol es uno de los soportados.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStandard
}

// ValidLoginMethod indica si el método de login es uno de los soportados.
func ValidLoginMethod(method string) bool {
	return method == LoginMethodPassword || method == LoginMethodFacial
}

// FacialCredential credencial biométrica facial de un usuario.
// El descriptor es un vector numérico de largo fijo producido por el servicio
// externo de extracción de características; aquí se trata como dato opaco.
type FacialCredential struct {
	Descriptor   []float64
	RegisteredAt time.Time
	Metadata     string // contexto de captura: dispositivo, iluminación, etc.
}

// UserRecord representa un usuario del sistema de identidad.
// Filas históricas pueden traer DisplayName vacío y LastLogin nulo; después de
// la migración CreatedAt/UpdatedAt nunca son cero y UpdatedAt >= CreatedAt.
type UserRecord struct {
	ID           string
	Email        string // normalizado (trim + minúsculas), clave de búsqueda externa
	DisplayName  string // opcional; vacío en filas legacy
	Role         string // admin, standard
	IsActive     bool
	LoginMethod  string            // password, facial — método autoritativo para login
	PasswordHash string            // bcrypt, nunca el texto plano
	Facial       *FacialCredential // nil si no hay enrolamiento facial
	LastLogin    *time.Time        // solo se asigna en autenticación exitosa
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword indica si el usuario conserva una credencial de contraseña.
func (u *UserRecord) HasPassword() bool {
	return u.PasswordHash != ""
}

// HasFacial indica si el usuario completó el enrolamiento facial.
func (u *UserRecord) HasFacial() bool {
	return u.Facial != nil && len(u.Facial.Descriptor) > 0
}
