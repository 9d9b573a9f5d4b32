package models

import "time"

// Log es una fila de la tabla logs tal como la muestra la página de actividad
type Log struct {
	IDLog        int
	Method       string
	Path         string
	StatusCode   int
	ResponseTime *int
	IP           string
	Username     *string
	LogLevel     string
	RequestID    *string
	Timestamp    time.Time
}

// EntradaActividad es lo que el middleware de actividad inserta por petición
// o por evento. Los punteros nil se guardan como NULL.
type EntradaActividad struct {
	Method       string
	Path         string
	Protocol     *string
	StatusCode   int
	ResponseTime *int
	UserAgent    *string
	IP           string
	Hostname     *string
	Body         *string
	Params       *string
	Query        *string
	Username     *string
	Role         *string
	LogLevel     *string
	Environment  *string
	RequestID    *string
	PID          *int
	URL          *string
}

// Niveles de log
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelDebug   = "debug"
	LogLevelSuccess = "success"
)

// FiltroLogs representa los filtros de la página de actividad
type FiltroLogs struct {
	LogLevel string
	Method   string
	Path     string
	Username string
	Page     int
	Limit    int
}

// Ambientes
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTesting     = "testing"
)
