package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/lizet96/clinisys/models"
)

type entrada struct {
	sesion models.Sesion
	expira time.Time
}

// MemoryStore guarda las sesiones en memoria del proceso. Se usa cuando no
// hay REDIS_URL; las sesiones se pierden al reiniciar.
type MemoryStore struct {
	mu       sync.RWMutex
	sesiones map[string]entrada
	ahora    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sesiones: make(map[string]entrada),
		ahora:    time.Now,
	}
}

func (m *MemoryStore) Guardar(_ context.Context, s models.Sesion, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgar()
	m.sesiones[s.ID] = entrada{sesion: s, expira: m.ahora().Add(ttl)}
	return nil
}

func (m *MemoryStore) Obtener(_ context.Context, id string) (*models.Sesion, error) {
	m.mu.RLock()
	e, ok := m.sesiones[id]
	m.mu.RUnlock()

	if !ok || !m.ahora().Before(e.expira) {
		return nil, ErrSesionNoEncontrada
	}
	s := e.sesion
	return &s, nil
}

func (m *MemoryStore) Eliminar(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sesiones, id)
	m.mu.Unlock()
	return nil
}

// purgar elimina las sesiones vencidas. Requiere el lock tomado.
func (m *MemoryStore) purgar() {
	ahora := m.ahora()
	for id, e := range m.sesiones {
		if !ahora.Before(e.expira) {
			delete(m.sesiones, id)
		}
	}
}
