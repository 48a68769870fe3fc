package facial

import (
	"fmt"
	"math"

	"github.com/jhoicas/Identidad-api/internal/application/credential"
)

var _ credential.FacialMatcher = (*EuclideanMatcher)(nil)

// EuclideanMatcher colaborador de comparación de descriptores por distancia
// euclidiana. Es el adaptador por defecto cuando el servicio externo de
// comparación corre en el mismo proceso; la extracción de características
// sigue siendo externa (aquí solo llegan vectores ya extraídos).
type EuclideanMatcher struct{}

// NewEuclideanMatcher construye el matcher.
func NewEuclideanMatcher() *EuclideanMatcher {
	return &EuclideanMatcher{}
}

// Distance devuelve la distancia euclidiana entre dos descriptores del mismo
// largo. Largo distinto es un error: descriptores de modelos incompatibles.
func (m *EuclideanMatcher) Distance(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("descriptor vacío")
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("largos de descriptor incompatibles: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
