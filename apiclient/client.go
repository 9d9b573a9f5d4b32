package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lizet96/clinisys/metrics"
)

const defaultTimeout = 15 * time.Second

var (
	// ErrRespuestaNoOK indica que el sobre de respuesta trae status distinto de "OK"
	ErrRespuestaNoOK = errors.New("respuesta del backend sin status OK")
	// ErrFormatoInvalido indica que el campo data falta o no tiene la forma esperada
	ErrFormatoInvalido = errors.New("formato de respuesta inválido")
)

// APIError representa una respuesta no 2xx del backend
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend respondió %d: %s", e.StatusCode, e.Body)
}

// StatusCode extrae el código HTTP de un error del backend (0 si no aplica)
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// sobre es el formato {"status": "OK", "data": ...} del backend
type sobre struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client consume el backend REST del consultorio.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// Option personaliza el cliente
type Option func(*Client)

// WithHTTPClient reemplaza el cliente HTTP
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout fija el timeout por llamada
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMetrics registra cada llamada en las métricas
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New construye el cliente contra baseURL
func New(baseURL string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:     logger.With().Str("component", "apiclient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL retorna la URL del backend
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do ejecuta la petición, decodifica data en out y registra la latencia
// bajo el nombre del recurso.
func (c *Client) do(ctx context.Context, resource, method, path string, body any, out any) error {
	return c.observar(resource, method, func() error {
		return c.doJSON(ctx, method, path, body, out)
	})
}

// doExacto exige exactamente el código esperado e ignora el cuerpo
func (c *Client) doExacto(ctx context.Context, resource, method, path string, esperado int) error {
	return c.observar(resource, method, func() error {
		status, respBody, err := c.enviar(ctx, method, path, nil)
		if err != nil {
			return err
		}
		if status != esperado {
			return c.errorHTTP(method, path, status, respBody)
		}
		return nil
	})
}

func (c *Client) observar(resource, method string, fn func() error) error {
	start := time.Now()
	err := fn()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.ObserveBackend(resource, method, outcome, time.Since(start).Seconds())
	return err
}

// enviar ejecuta la petición y retorna el código y el cuerpo completo
func (c *Client) enviar(ctx context.Context, method, path string, body any) (int, []byte, error) {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) errorHTTP(method, path string, status int, respBody []byte) error {
	msg := string(respBody)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	c.logger.Warn().
		Int("status", status).
		Str("method", method).
		Str("path", path).
		Str("body", msg).
		Msg("backend respondió con error")
	return &APIError{StatusCode: status, Body: msg}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	status, respBody, err := c.enviar(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return c.errorHTTP(method, path, status, respBody)
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		if out != nil {
			return ErrFormatoInvalido
		}
		return nil
	}

	var env sobre
	if err := json.Unmarshal(respBody, &env); err != nil {
		if out == nil {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "" && !strings.EqualFold(env.Status, "OK") {
		return fmt.Errorf("%w: %s", ErrRespuestaNoOK, env.Status)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrFormatoInvalido
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrFormatoInvalido, err)
	}
	return nil
}
