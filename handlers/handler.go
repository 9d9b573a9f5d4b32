package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lizet96/clinisys/apiclient"
	"github.com/lizet96/clinisys/database"
	"github.com/lizet96/clinisys/middleware"
	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/services"
	"github.com/lizet96/clinisys/sessions"
)

const (
	layoutPrincipal = "layouts/main"
	cookieFlash     = "clinisys_flash"
)

// Mensajes de error del backend
const (
	msgErrorConexion          = "Error al conectar con el servidor"
	msgErrorConexionReintente = "Error al conectar con el servidor. Por favor, intente nuevamente."
)

// Backend es el API REST que consume la consola
type Backend interface {
	ListarPacientes(ctx context.Context) ([]models.Paciente, error)
	CrearPaciente(ctx context.Context, p models.Paciente) (*models.Paciente, error)
	ActualizarPaciente(ctx context.Context, p models.Paciente) (*models.Paciente, error)
	EliminarPaciente(ctx context.Context, id int) error

	ListarHistorias(ctx context.Context, pacienteID int) ([]models.HistoriaClinica, error)
	CrearHistoria(ctx context.Context, pacienteID int, h models.HistoriaClinica) (*models.HistoriaClinica, error)
	ActualizarHistoria(ctx context.Context, pacienteID int, h models.HistoriaClinica) (*models.HistoriaClinica, error)
	EliminarHistoria(ctx context.Context, id int) error

	ListarProductos(ctx context.Context) ([]models.Producto, error)
	CrearProducto(ctx context.Context, p models.Producto) error
	ActualizarProducto(ctx context.Context, p models.Producto) error
	EliminarProducto(ctx context.Context, id int) error

	ListarCitas(ctx context.Context) ([]models.Cita, error)
	CrearCita(ctx context.Context, c models.Cita) error
	ActualizarCita(ctx context.Context, c models.Cita) error
	EliminarCita(ctx context.Context, id int) error

	RegistrarUsuario(ctx context.Context, u models.UsuarioBackend) error
	IniciarSesion(ctx context.Context, u models.UsuarioBackend) (*models.UsuarioResponse, error)

	ListarVentas(ctx context.Context) ([]models.Venta, error)
	ListarCompras(ctx context.Context) ([]models.Compra, error)
	Ping(ctx context.Context) error
}

// LogReader es la consulta de actividad que usa la página /actividad
type LogReader interface {
	Listar(ctx context.Context, f models.FiltroLogs) (*database.PaginaLogs, error)
	Estadisticas(ctx context.Context) (map[string]int, error)
}

// Deps agrupa las dependencias de los handlers
type Deps struct {
	Backend      Backend
	Sesiones     *sessions.Manager
	Autenticador *services.Autenticador
	Logs         LogReader
	Actividad    *middleware.ActivityLogger
	Logger       zerolog.Logger
	CookieSegura bool
}

// Handler atiende las páginas de la consola
type Handler struct {
	backend   Backend
	sesiones  *sessions.Manager
	auth      *services.Autenticador
	logs      LogReader
	actividad *middleware.ActivityLogger
	logger    zerolog.Logger
	segura    bool
	ahora     func() time.Time
}

func New(d Deps) *Handler {
	return &Handler{
		backend:   d.Backend,
		sesiones:  d.Sesiones,
		auth:      d.Autenticador,
		logs:      d.Logs,
		actividad: d.Actividad,
		logger:    d.Logger,
		segura:    d.CookieSegura,
		ahora:     time.Now,
	}
}

// Flash es un mensaje de una sola lectura que sobrevive a un redirect
type Flash struct {
	Tipo    string `json:"t"`
	Mensaje string `json:"m"`
}

// Tipos de alerta (clases de Bootstrap)
const (
	FlashExito = "success"
	FlashError = "danger"
)

func (h *Handler) setFlash(c *fiber.Ctx, tipo, mensaje string) {
	raw, _ := json.Marshal(Flash{Tipo: tipo, Mensaje: mensaje})
	c.Cookie(&fiber.Cookie{
		Name:     cookieFlash,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.segura,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// leerFlash retorna el flash pendiente y lo borra
func (h *Handler) leerFlash(c *fiber.Ctx) *Flash {
	valor := c.Cookies(cookieFlash)
	if valor == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookieFlash,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})

	raw, err := base64.RawURLEncoding.DecodeString(valor)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Mensaje == "" {
		return nil
	}
	return &f
}

func (h *Handler) redirigir(c *fiber.Ctx, destino, tipo, mensaje string) error {
	if mensaje != "" {
		h.setFlash(c, tipo, mensaje)
	}
	return c.Redirect(destino, fiber.StatusSeeOther)
}

// datos arma el binding común de todas las páginas
func (h *Handler) datos(c *fiber.Ctx, titulo, activo string) fiber.Map {
	return fiber.Map{
		"Titulo": titulo,
		"Activo": activo,
		"Sesion": middleware.SesionDe(c),
		"Flash":  h.leerFlash(c),
	}
}

func (h *Handler) render(c *fiber.Ctx, status int, vista string, datos fiber.Map) error {
	return c.Status(status).Render(vista, datos, layoutPrincipal)
}

// errorBackend registra el error y retorna el mensaje para el usuario. Si el
// backend no respondió el mensaje es el de conexión.
func (h *Handler) errorBackend(c *fiber.Ctx, err error, operacion, mensaje string) string {
	respondio := apiclient.StatusCode(err) > 0 ||
		errors.Is(err, apiclient.ErrFormatoInvalido) ||
		errors.Is(err, apiclient.ErrRespuestaNoOK)

	ev := h.logger.Error()
	if respondio {
		ev = h.logger.Warn()
	}
	ev.Err(err).
		Str("request_id", middleware.RequestIDDe(c)).
		Str("operacion", operacion).
		Msg("Falla del backend")

	if !respondio {
		return msgErrorConexion
	}
	return mensaje
}

func (h *Handler) evento(c *fiber.Ctx, mensaje string, datos map[string]interface{}) {
	h.actividad.LogCustomEvent(c, models.LogLevelSuccess, mensaje, datos)
}

func paramID(c *fiber.Ctx, nombre string) (int, bool) {
	id, err := strconv.Atoi(c.Params(nombre))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
