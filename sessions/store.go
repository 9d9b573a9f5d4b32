package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/lizet96/clinisys/models"
)

// ErrSesionNoEncontrada indica que la sesión no existe, expiró o fue cerrada
var ErrSesionNoEncontrada = errors.New("sesión no encontrada")

// Store guarda las sesiones activas de la consola
type Store interface {
	Guardar(ctx context.Context, s models.Sesion, ttl time.Duration) error
	Obtener(ctx context.Context, id string) (*models.Sesion, error)
	Eliminar(ctx context.Context, id string) error
}
