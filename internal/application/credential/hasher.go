package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher primitiva de hashing de contraseñas sobre bcrypt.
// El salt va embebido en el hash, por lo que el mismo texto produce un hash
// distinto en cada llamada y Verify no necesita estado adicional.
type Hasher struct {
	cost  int
	dummy []byte // hash precomputado para quemar una verificación con latencia real
}

// NewHasher construye el hasher con el costo dado. Valores fuera del rango de
// bcrypt caen al costo por defecto (10).
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("no-es-una-credencial-real"), cost)
	if err != nil {
		// bcrypt solo falla con costo inválido, ya acotado arriba
		panic(fmt.Sprintf("hasher: generar hash dummy: %v", err))
	}
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash genera el hash bcrypt del texto plano. Nunca registra ni devuelve el texto.
func (h *Hasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash de contraseña: %w", err)
	}
	return string(b), nil
}

// Verify compara texto plano contra un hash almacenado. Falla cerrado: un hash
// malformado o vacío devuelve false, nunca propaga error a la decisión de auth.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Burn ejecuta una comparación contra el hash dummy. Se usa cuando el usuario
// no existe o no tiene credencial, para que la latencia del camino de fallo sea
// indistinguible de una contraseña incorrecta (anti-enumeración).
func (h *Hasher) Burn(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}
