package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lizet96/clinisys/models"
)

const esquemaLogs = `
CREATE TABLE IF NOT EXISTS logs (
	id_log        SERIAL PRIMARY KEY,
	method        VARCHAR(10)  NOT NULL,
	path          VARCHAR(500) NOT NULL,
	protocol      VARCHAR(20),
	status_code   INTEGER      NOT NULL,
	response_time INTEGER,
	user_agent    TEXT,
	ip            VARCHAR(45)  NOT NULL,
	hostname      VARCHAR(255),
	body          TEXT,
	params        TEXT,
	query         TEXT,
	username      VARCHAR(255),
	role          VARCHAR(50),
	log_level     VARCHAR(20)  NOT NULL DEFAULT 'info',
	environment   VARCHAR(20)  NOT NULL DEFAULT 'development',
	request_id    VARCHAR(64),
	pid           INTEGER,
	timestamp     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	url           TEXT,
	created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON logs (timestamp DESC);
`

const (
	limitePorDefecto = 50
	limiteMaximo     = 200
)

// LogStore guarda y consulta la actividad de la consola en la tabla logs
type LogStore struct {
	db    DBTX
	ahora func() time.Time
}

func NewLogStore(db DBTX) *LogStore {
	return &LogStore{db: db, ahora: time.Now}
}

// EnsureSchema crea la tabla logs si no existe
func (s *LogStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, esquemaLogs); err != nil {
		return fmt.Errorf("crear tabla logs: %w", err)
	}
	return nil
}

// Guardar inserta una entrada de actividad
func (s *LogStore) Guardar(ctx context.Context, e models.EntradaActividad) error {
	query := `
		INSERT INTO logs (
			method, path, protocol, status_code, response_time, user_agent, ip, hostname,
			body, params, query, username, role, log_level, environment,
			request_id, pid, timestamp, url, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
	`
	ahora := s.ahora()
	_, err := s.db.Exec(ctx, query,
		e.Method,
		e.Path,
		e.Protocol,
		e.StatusCode,
		e.ResponseTime,
		e.UserAgent,
		e.IP,
		e.Hostname,
		e.Body,
		e.Params,
		e.Query,
		e.Username,
		e.Role,
		e.LogLevel,
		e.Environment,
		e.RequestID,
		e.PID,
		ahora,
		e.URL,
		ahora,
	)
	if err != nil {
		return fmt.Errorf("guardar log: %w", err)
	}
	return nil
}

// PaginaLogs es una página de resultados de Listar
type PaginaLogs struct {
	Logs  []models.Log
	Total int
	Page  int
	Limit int
}

// Listar retorna los logs más recientes que cumplen el filtro
func (s *LogStore) Listar(ctx context.Context, f models.FiltroLogs) (*PaginaLogs, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = limitePorDefecto
	}
	if limit > limiteMaximo {
		limit = limiteMaximo
	}
	offset := (page - 1) * limit

	var conditions []string
	var args []any
	argIndex := 1

	if f.LogLevel != "" {
		conditions = append(conditions, fmt.Sprintf("log_level = $%d", argIndex))
		args = append(args, f.LogLevel)
		argIndex++
	}
	if f.Method != "" {
		conditions = append(conditions, fmt.Sprintf("method = $%d", argIndex))
		args = append(args, strings.ToUpper(f.Method))
		argIndex++
	}
	if f.Path != "" {
		conditions = append(conditions, fmt.Sprintf("path ILIKE $%d", argIndex))
		args = append(args, "%"+f.Path+"%")
		argIndex++
	}
	if f.Username != "" {
		conditions = append(conditions, fmt.Sprintf("username ILIKE $%d", argIndex))
		args = append(args, "%"+f.Username+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM logs %s", whereClause)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("contar logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id_log, method, path, status_code, response_time, ip, username,
		       log_level, request_id, timestamp
		FROM logs %s
		ORDER BY timestamp DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("obtener logs: %w", err)
	}
	defer rows.Close()

	logs := []models.Log{}
	for rows.Next() {
		var l models.Log
		if err := rows.Scan(
			&l.IDLog, &l.Method, &l.Path, &l.StatusCode, &l.ResponseTime,
			&l.IP, &l.Username, &l.LogLevel, &l.RequestID, &l.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("leer log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorrer logs: %w", err)
	}

	return &PaginaLogs{Logs: logs, Total: total, Page: page, Limit: limit}, nil
}

// Estadisticas cuenta los logs de las últimas 24 horas por nivel
func (s *LogStore) Estadisticas(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT log_level, COUNT(*)
		FROM logs
		WHERE timestamp >= $1
		GROUP BY log_level
	`, s.ahora().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("estadísticas de logs: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("leer estadísticas: %w", err)
		}
		stats[level] = count
	}
	return stats, rows.Err()
}

// Limpiar elimina los logs con más de dias de antigüedad
func (s *LogStore) Limpiar(ctx context.Context, dias int) (int64, error) {
	if dias < 1 {
		dias = 30
	}
	corte := s.ahora().Add(-time.Duration(dias) * 24 * time.Hour)
	tag, err := s.db.Exec(ctx, "DELETE FROM logs WHERE timestamp < $1", corte)
	if err != nil {
		return 0, fmt.Errorf("limpiar logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
