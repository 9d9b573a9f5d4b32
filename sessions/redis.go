package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lizet96/clinisys/models"
)

const prefijoClave = "clinisys:sesion:"

// RedisStore guarda las sesiones en Redis con expiración
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore crea el store sobre un cliente existente
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

// ConectarRedis parsea REDIS_URL y verifica la conexión con PING
func ConectarRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsear REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) key(id string) string {
	return prefijoClave + id
}

func (s *RedisStore) Guardar(ctx context.Context, sesion models.Sesion, ttl time.Duration) error {
	data, err := json.Marshal(sesion)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sesion.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	return nil
}

func (s *RedisStore) Obtener(ctx context.Context, id string) (*models.Sesion, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSesionNoEncontrada
	}
	if err != nil {
		return nil, fmt.Errorf("obtener sesión: %w", err)
	}

	var sesion models.Sesion
	if err := json.Unmarshal(data, &sesion); err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	return &sesion, nil
}

func (s *RedisStore) Eliminar(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("eliminar sesión: %w", err)
	}
	return nil
}
