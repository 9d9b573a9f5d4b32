package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lizet96/clinisys/handlers"
	"github.com/lizet96/clinisys/metrics"
	"github.com/lizet96/clinisys/middleware"
)

const (
	maxBody        = 1 << 20
	requestTimeout = 30 * time.Second
)

// Opciones agrupa lo que necesitan las rutas además de los handlers
type Opciones struct {
	Sesiones        middleware.Validador
	Actividad       *middleware.ActivityLogger
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer
	Logger          zerolog.Logger
	LoginRateMax    int
	LoginRateWindow time.Duration
	HSTS            bool
}

// SetupRoutes configura todas las rutas de la consola
func SetupRoutes(app *fiber.App, h *handlers.Handler, o Opciones) {
	// Middleware global
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(o.Logger))
	app.Use(middleware.Metrics(o.Metrics))
	app.Use(middleware.SecurityHeaders(o.HSTS))
	app.Use(middleware.BodySizeLimit(maxBody))
	app.Use(middleware.RequestTimeout(requestTimeout))

	// Operación, fuera del registro de actividad
	app.Get("/health", h.Health)
	if o.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Use(o.Actividad.Middleware())

	// === RUTAS PÚBLICAS ===
	opcional := middleware.SesionOpcional(o.Sesiones)
	limite := middleware.AuthRateLimiter(o.LoginRateMax, o.LoginRateWindow)

	app.Get("/", opcional, h.Landing)
	app.Get("/login", opcional, h.LoginPage)
	app.Post("/login", limite, h.Login)
	app.Get("/register", opcional, h.RegistroPage)
	app.Post("/register", limite, h.Registro)
	app.Post("/logout", opcional, h.Logout)

	// === RUTAS PROTEGIDAS (requieren sesión) ===
	auth := middleware.SesionRequerida(o.Sesiones, o.Logger)

	app.Get("/home", auth, h.Inicio)
	app.Get("/profile", auth, h.Perfil)
	app.Get("/actividad", auth, h.Actividad)

	// --- CITAS ---
	citas := app.Group("/appointments", auth)
	citas.Get("/", h.ListarCitas)
	citas.Get("/nueva", h.NuevaCita)
	citas.Post("/", h.CrearCita)
	citas.Get("/:id/editar", h.EditarCita)
	citas.Post("/:id", h.ActualizarCita)
	citas.Post("/:id/eliminar", h.EliminarCita)

	// --- INVENTARIO ---
	inventario := app.Group("/inventory", auth)
	inventario.Get("/", h.ListarInventario)
	inventario.Get("/nuevo", h.NuevoProducto)
	inventario.Post("/", h.CrearProducto)
	inventario.Get("/:id/editar", h.EditarProducto)
	inventario.Post("/:id", h.ActualizarProducto)
	inventario.Post("/:id/eliminar", h.EliminarProducto)

	// --- FACTURACIÓN E INFORMES ---
	app.Get("/billing", auth, h.Facturacion)
	app.Get("/financialReports", auth, h.InformesFinancieros)

	// --- PACIENTES E HISTORIAS CLÍNICAS ---
	pacientes := app.Group("/patients", auth)
	pacientes.Get("/", h.ListarPacientes)
	pacientes.Get("/nuevo", h.NuevoPaciente)
	pacientes.Post("/", h.CrearPaciente)
	pacientes.Get("/:id/editar", h.EditarPaciente)
	pacientes.Post("/:id", h.ActualizarPaciente)
	pacientes.Post("/:id/eliminar", h.EliminarPaciente)

	pacientes.Get("/:id/historias", h.ListarHistorias)
	pacientes.Get("/:id/historias/nueva", h.NuevaHistoria)
	pacientes.Post("/:id/historias", h.CrearHistoria)
	pacientes.Get("/:id/historias/:hid/editar", h.EditarHistoria)
	pacientes.Post("/:id/historias/:hid", h.ActualizarHistoria)
	pacientes.Post("/:id/historias/:hid/eliminar", h.EliminarHistoria)

	app.Use(handlers.NoEncontrado)
}
