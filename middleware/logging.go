package middleware

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lizet96/clinisys/models"
)

const maxBody = 1000

// Campos sensibles que nunca se guardan en la actividad
var sensitiveFields = []string{"contrasena", "confirmarContrasena", "codigo", "password", "token", "secret"}

// LogSink es el destino de la actividad (la tabla logs)
type LogSink interface {
	Guardar(ctx context.Context, e models.EntradaActividad) error
}

// ActivityLogger registra cada petición y los eventos de dominio en el LogSink
type ActivityLogger struct {
	sink        LogSink
	logger      zerolog.Logger
	environment string
	timeout     time.Duration
}

// NewActivityLogger crea el registrador. Con sink nil no guarda nada.
func NewActivityLogger(sink LogSink, logger zerolog.Logger, environment string) *ActivityLogger {
	if environment == "" {
		environment = models.EnvironmentDevelopment
	}
	return &ActivityLogger{sink: sink, logger: logger, environment: environment, timeout: 5 * time.Second}
}

// Middleware captura y registra todas las peticiones HTTP
func (a *ActivityLogger) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a == nil || a.sink == nil {
			return c.Next()
		}
		start := time.Now()

		err := c.Next()

		responseTime := int(time.Since(start).Milliseconds())
		logEntry := a.createLogEntry(c, responseTime)

		// Guardar en base de datos de forma asíncrona
		go a.save(logEntry)

		return err
	}
}

// createLogEntry crea una entrada de log basada en la petición
func (a *ActivityLogger) createLogEntry(c *fiber.Ctx, responseTime int) models.EntradaActividad {
	var username, role *string
	if s := SesionDe(c); s != nil {
		usuario := s.Usuario
		origen := s.Origen
		username = &usuario
		role = &origen
	}

	ip := c.IP()
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		ip = realIP
	}

	var bodyPtr *string
	if m := c.Method(); m == fiber.MethodPost || m == fiber.MethodPut || m == fiber.MethodPatch {
		if body := string(c.Body()); body != "" {
			body = filterSensitiveData(body)
			bodyPtr = &body
		}
	}

	var paramsPtr *string
	if params := c.AllParams(); len(params) > 0 {
		paramsJSON, _ := json.Marshal(params)
		paramsStr := string(paramsJSON)
		paramsPtr = &paramsStr
	}

	status := c.Response().StatusCode()
	logLevel := determineLogLevel(status)
	environment := a.environment
	pid := os.Getpid()
	protocol := string(c.Request().Header.Protocol())

	return models.EntradaActividad{
		Method:       strings.Clone(c.Method()),
		Path:         strings.Clone(c.Path()),
		Protocol:     optional(protocol),
		StatusCode:   status,
		ResponseTime: &responseTime,
		UserAgent:    optional(c.Get(fiber.HeaderUserAgent)),
		IP:           strings.Clone(ip),
		Hostname:     optional(c.Hostname()),
		Body:         bodyPtr,
		Params:       paramsPtr,
		Query:        optional(string(c.Request().URI().QueryString())),
		Username:     username,
		Role:         role,
		LogLevel:     &logLevel,
		Environment:  &environment,
		RequestID:    optional(RequestIDDe(c)),
		PID:          &pid,
		URL:          optional(c.OriginalURL()),
	}
}

// filterSensitiveData filtra información sensible del body (JSON o formulario)
func filterSensitiveData(body string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err == nil {
		for _, field := range sensitiveFields {
			if _, exists := data[field]; exists {
				data[field] = "[FILTERED]"
			}
		}
		filteredJSON, _ := json.Marshal(data)
		return truncate(string(filteredJSON))
	}

	if values, err := url.ParseQuery(body); err == nil && len(values) > 0 && strings.Contains(body, "=") {
		return truncate(encodeFiltered(values))
	}
	return truncate(body)
}

// encodeFiltered arma el formulario con los campos sensibles ocultos
func encodeFiltered(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			if isSensitive(k) {
				b.WriteString("[FILTERED]")
			} else {
				b.WriteString(url.QueryEscape(v))
			}
		}
	}
	return b.String()
}

func isSensitive(field string) bool {
	for _, f := range sensitiveFields {
		if strings.EqualFold(f, field) {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	if len(s) > maxBody {
		return s[:maxBody] + "...[truncated]"
	}
	return s
}

// determineLogLevel determina el nivel de log basado en el status code
func determineLogLevel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return models.LogLevelSuccess
	case statusCode >= 300 && statusCode < 400:
		return models.LogLevelInfo
	case statusCode >= 400 && statusCode < 500:
		return models.LogLevelWarning
	case statusCode >= 500:
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

func (a *ActivityLogger) save(logEntry models.EntradaActividad) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.sink.Guardar(ctx, logEntry); err != nil {
		a.logger.Error().Err(err).Str("path", logEntry.Path).Msg("Error guardando log en base de datos")
	}
}

// LogCustomEvent registra un evento de dominio (login, cita creada, ...)
func (a *ActivityLogger) LogCustomEvent(c *fiber.Ctx, level, message string, additionalData map[string]interface{}) {
	if a == nil {
		return
	}
	ev := a.logger.Info()
	if level == models.LogLevelWarning || level == models.LogLevelError {
		ev = a.logger.Warn()
	}
	ev.Str("event", message).Fields(additionalData).Msg("Evento")

	if a.sink == nil {
		return
	}
	environment := a.environment

	logEntry := models.EntradaActividad{
		Method:      "CUSTOM",
		Path:        "/custom-event",
		StatusCode:  fiber.StatusOK,
		IP:          "127.0.0.1",
		LogLevel:    &level,
		Environment: &environment,
	}
	if c != nil {
		logEntry.IP = strings.Clone(c.IP())
		logEntry.RequestID = optional(RequestIDDe(c))
		if s := SesionDe(c); s != nil {
			usuario := s.Usuario
			logEntry.Username = &usuario
		}
	}

	data := map[string]interface{}{"message": message}
	for k, v := range additionalData {
		data[k] = v
	}
	bodyJSON, _ := json.Marshal(data)
	bodyStr := string(bodyJSON)
	logEntry.Body = &bodyStr

	go a.save(logEntry)
}

// optional copia el valor; los strings de fiber se reutilizan al terminar la petición
func optional(s string) *string {
	if s == "" {
		return nil
	}
	v := strings.Clone(s)
	return &v
}
