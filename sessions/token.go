package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lizet96/clinisys/models"
)

// NombreCookie es la cookie que transporta el token de sesión
const NombreCookie = "clinisys_sesion"

// ErrTokenInvalido indica un token mal firmado, vencido o sin id de sesión
var ErrTokenInvalido = errors.New("token de sesión inválido")

// Claims personalizados para el JWT de sesión
type Claims struct {
	Usuario string `json:"usuario"`
	Origen  string `json:"origen"`
	jwt.RegisteredClaims
}

// Manager emite, valida y revoca sesiones
type Manager struct {
	store       Store
	secreto     []byte
	ttl         time.Duration
	ttlRecordar time.Duration
	ahora       func() time.Time
}

func NewManager(store Store, secreto string, ttl, ttlRecordar time.Duration) *Manager {
	return &Manager{
		store:       store,
		secreto:     []byte(secreto),
		ttl:         ttl,
		ttlRecordar: ttlRecordar,
		ahora:       time.Now,
	}
}

// Iniciar crea la sesión, la guarda en el store y retorna el token firmado
func (m *Manager) Iniciar(ctx context.Context, usuario, origen string, idBackend int, recordar bool, ip string) (string, *models.Sesion, error) {
	ttl := m.TTL(recordar)
	ahora := m.ahora()

	sesion := models.Sesion{
		ID:          uuid.NewString(),
		Usuario:     usuario,
		Origen:      origen,
		Recordar:    recordar,
		CreadaEn:    ahora,
		ExpiraEn:    ahora.Add(ttl),
		IDBackend:   idBackend,
		DireccionIP: ip,
	}
	if err := m.store.Guardar(ctx, sesion, ttl); err != nil {
		return "", nil, err
	}

	claims := Claims{
		Usuario: usuario,
		Origen:  origen,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sesion.ID,
			Subject:   usuario,
			ExpiresAt: jwt.NewNumericDate(sesion.ExpiraEn),
			IssuedAt:  jwt.NewNumericDate(ahora),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secreto)
	if err != nil {
		return "", nil, fmt.Errorf("firmar token: %w", err)
	}
	return token, &sesion, nil
}

// Validar verifica la firma del token y que la sesión siga en el store
func (m *Manager) Validar(ctx context.Context, token string) (*models.Sesion, error) {
	claims, err := m.parsear(token)
	if err != nil {
		return nil, err
	}
	return m.store.Obtener(ctx, claims.ID)
}

// Cerrar revoca la sesión del token. Un token inválido no es error.
func (m *Manager) Cerrar(ctx context.Context, token string) error {
	claims, err := m.parsear(token)
	if err != nil {
		return nil
	}
	return m.store.Eliminar(ctx, claims.ID)
}

// TTL retorna la duración de la sesión según "Recordarme"
func (m *Manager) TTL(recordar bool) time.Duration {
	if recordar {
		return m.ttlRecordar
	}
	return m.ttl
}

func (m *Manager) parsear(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenInvalido
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secreto, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.ahora),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalido
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.ID == "" {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}
