package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lizet96/clinisys/apiclient"
	"github.com/lizet96/clinisys/database"
	"github.com/lizet96/clinisys/middleware"
	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/services"
	"github.com/lizet96/clinisys/sessions"
	"github.com/lizet96/clinisys/views"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListarPacientes(ctx context.Context) ([]models.Paciente, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]models.Paciente)
	return p, args.Error(1)
}

func (m *mockBackend) CrearPaciente(ctx context.Context, p models.Paciente) (*models.Paciente, error) {
	args := m.Called(ctx, p)
	r, _ := args.Get(0).(*models.Paciente)
	return r, args.Error(1)
}

func (m *mockBackend) ActualizarPaciente(ctx context.Context, p models.Paciente) (*models.Paciente, error) {
	args := m.Called(ctx, p)
	r, _ := args.Get(0).(*models.Paciente)
	return r, args.Error(1)
}

func (m *mockBackend) EliminarPaciente(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) ListarHistorias(ctx context.Context, pacienteID int) ([]models.HistoriaClinica, error) {
	args := m.Called(ctx, pacienteID)
	h, _ := args.Get(0).([]models.HistoriaClinica)
	return h, args.Error(1)
}

func (m *mockBackend) CrearHistoria(ctx context.Context, pacienteID int, h models.HistoriaClinica) (*models.HistoriaClinica, error) {
	args := m.Called(ctx, pacienteID, h)
	r, _ := args.Get(0).(*models.HistoriaClinica)
	return r, args.Error(1)
}

func (m *mockBackend) ActualizarHistoria(ctx context.Context, pacienteID int, h models.HistoriaClinica) (*models.HistoriaClinica, error) {
	args := m.Called(ctx, pacienteID, h)
	r, _ := args.Get(0).(*models.HistoriaClinica)
	return r, args.Error(1)
}

func (m *mockBackend) EliminarHistoria(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) ListarProductos(ctx context.Context) ([]models.Producto, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]models.Producto)
	return p, args.Error(1)
}

func (m *mockBackend) CrearProducto(ctx context.Context, p models.Producto) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockBackend) ActualizarProducto(ctx context.Context, p models.Producto) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockBackend) EliminarProducto(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) ListarCitas(ctx context.Context) ([]models.Cita, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Cita)
	return c, args.Error(1)
}

func (m *mockBackend) CrearCita(ctx context.Context, c models.Cita) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockBackend) ActualizarCita(ctx context.Context, c models.Cita) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockBackend) EliminarCita(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) RegistrarUsuario(ctx context.Context, u models.UsuarioBackend) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockBackend) IniciarSesion(ctx context.Context, u models.UsuarioBackend) (*models.UsuarioResponse, error) {
	args := m.Called(ctx, u)
	r, _ := args.Get(0).(*models.UsuarioResponse)
	return r, args.Error(1)
}

func (m *mockBackend) ListarVentas(ctx context.Context) ([]models.Venta, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]models.Venta)
	return v, args.Error(1)
}

func (m *mockBackend) ListarCompras(ctx context.Context) ([]models.Compra, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Compra)
	return c, args.Error(1)
}

func (m *mockBackend) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fakeLogs struct {
	pagina *database.PaginaLogs
	filtro models.FiltroLogs
}

func (f *fakeLogs) Listar(_ context.Context, filtro models.FiltroLogs) (*database.PaginaLogs, error) {
	f.filtro = filtro
	return f.pagina, nil
}

func (f *fakeLogs) Estadisticas(context.Context) (map[string]int, error) {
	return map[string]int{"success": 3, "warning": 1}, nil
}

type entorno struct {
	app     *fiber.App
	h       *Handler
	backend *mockBackend
	manager *sessions.Manager
	token   string
}

func nuevoEntorno(t *testing.T, logs LogReader) *entorno {
	t.Helper()
	backend := new(mockBackend)
	manager := sessions.NewManager(sessions.NewMemoryStore(), "secreto-de-prueba", time.Hour, 24*time.Hour)

	h := New(Deps{
		Backend:      backend,
		Sesiones:     manager,
		Autenticador: services.NewAutenticador(backend, "", "", ""),
		Logs:         logs,
		Logger:       zerolog.Nop(),
	})
	h.ahora = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }

	app := fiber.New(fiber.Config{Views: views.NewEngine(false)})
	auth := middleware.SesionRequerida(manager, zerolog.Nop())
	opcional := middleware.SesionOpcional(manager)

	app.Get("/health", h.Health)
	app.Get("/login", opcional, h.LoginPage)
	app.Post("/login", h.Login)
	app.Get("/register", opcional, h.RegistroPage)
	app.Post("/register", h.Registro)
	app.Post("/logout", opcional, h.Logout)
	app.Get("/home", auth, h.Inicio)
	app.Get("/profile", auth, h.Perfil)
	app.Get("/actividad", auth, h.Actividad)
	app.Get("/appointments", auth, h.ListarCitas)
	app.Get("/appointments/nueva", auth, h.NuevaCita)
	app.Post("/appointments", auth, h.CrearCita)
	app.Get("/appointments/:id/editar", auth, h.EditarCita)
	app.Post("/appointments/:id", auth, h.ActualizarCita)
	app.Post("/appointments/:id/eliminar", auth, h.EliminarCita)
	app.Get("/inventory", auth, h.ListarInventario)
	app.Post("/inventory", auth, h.CrearProducto)
	app.Get("/inventory/:id/editar", auth, h.EditarProducto)
	app.Get("/billing", auth, h.Facturacion)
	app.Get("/financialReports", auth, h.InformesFinancieros)
	app.Get("/patients", auth, h.ListarPacientes)
	app.Post("/patients", auth, h.CrearPaciente)
	app.Post("/patients/:id/eliminar", auth, h.EliminarPaciente)
	app.Get("/patients/:id/historias", auth, h.ListarHistorias)
	app.Post("/patients/:id/historias", auth, h.CrearHistoria)
	app.Use(NoEncontrado)

	token, _, err := manager.Iniciar(context.Background(), "ana", models.OrigenBackend, 1, false, "")
	require.NoError(t, err)

	return &entorno{app: app, h: h, backend: backend, manager: manager, token: token}
}

// peticion ejecuta la petición; form != nil la envía como formulario.
// Las cookies se agregan tal cual.
func (e *entorno) peticion(t *testing.T, method, ruta string, form url.Values, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, ruta, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func (e *entorno) sesion() *http.Cookie {
	return &http.Cookie{Name: sessions.NombreCookie, Value: e.token}
}

func cookie(resp *http.Response, nombre string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == nombre {
			return c
		}
	}
	return nil
}

func contiene(t *testing.T, body, texto string) {
	t.Helper()
	assert.Contains(t, body, html.EscapeString(texto))
}

func TestRutaProtegida_SinSesion(t *testing.T) {
	e := nuevoEntorno(t, nil)

	resp, _ := e.peticion(t, http.MethodGet, "/appointments", nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
	e.backend.AssertNotCalled(t, "ListarCitas", mock.Anything)
}

func TestLogin_Exitoso(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("IniciarSesion", mock.Anything, models.UsuarioBackend{NombreUsuario: "luis", Contrasena: "secreta"}).
		Return(&models.UsuarioResponse{ID: 4, NombreUsuario: "luis"}, nil)

	resp, _ := e.peticion(t, http.MethodPost, "/login", url.Values{
		"nombreUsuario": {"luis"},
		"contrasena":    {"secreta"},
		"recordarme":    {"on"},
	})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get(fiber.HeaderLocation))

	c := cookie(resp, sessions.NombreCookie)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Expires.IsZero(), "recordarme debe persistir la cookie")

	resp, body := e.peticion(t, http.MethodGet, "/profile", nil, &http.Cookie{Name: sessions.NombreCookie, Value: c.Value})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "luis")
	e.backend.AssertExpectations(t)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			e := nuevoEntorno(t, nil)
			e.backend.On("IniciarSesion", mock.Anything, mock.Anything).
				Return(nil, fmt.Errorf("iniciar sesión: %w", &apiclient.APIError{StatusCode: status, Body: `{"status":"ERROR"}`}))

			resp, body := e.peticion(t, http.MethodPost, "/login", url.Values{
				"nombreUsuario": {"luis"},
				"contrasena":    {"mala"},
			})
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			contiene(t, body, services.ErrCredencialesInvalidas.Error())
			assert.NotContains(t, body, "conectar con el servidor")
			assert.Contains(t, body, `value="luis"`)
			assert.Nil(t, cookie(resp, sessions.NombreCookie))
		})
	}
}

func TestLogin_CamposVacios(t *testing.T) {
	e := nuevoEntorno(t, nil)

	resp, body := e.peticion(t, http.MethodPost, "/login", url.Values{"nombreUsuario": {"luis"}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	contiene(t, body, services.ErrCredencialesIncompletas.Error())
	e.backend.AssertNotCalled(t, "IniciarSesion", mock.Anything, mock.Anything)
}

func TestLogin_BackendCaido(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("IniciarSesion", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	resp, body := e.peticion(t, http.MethodPost, "/login", url.Values{
		"nombreUsuario": {"luis"},
		"contrasena":    {"secreta"},
	})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	contiene(t, body, msgErrorConexionReintente)
}

func TestLoginPage_ConSesionRedirige(t *testing.T) {
	e := nuevoEntorno(t, nil)

	resp, _ := e.peticion(t, http.MethodGet, "/login", nil, e.sesion())
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get(fiber.HeaderLocation))
}

func TestLogout_RevocaSesion(t *testing.T) {
	e := nuevoEntorno(t, nil)

	resp, _ := e.peticion(t, http.MethodGet, "/home", nil, e.sesion())
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = e.peticion(t, http.MethodPost, "/logout", nil, e.sesion())
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = e.peticion(t, http.MethodGet, "/home", nil, e.sesion())
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
}

func TestRegistro(t *testing.T) {
	t.Run("contraseñas distintas", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		resp, body := e.peticion(t, http.MethodPost, "/register", url.Values{
			"correo":              {"ana@clinica.mx"},
			"nombreUsuario":       {"ana"},
			"contrasena":          {"uno"},
			"confirmarContrasena": {"dos"},
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		contiene(t, body, services.ErrContrasenasNoCoinciden.Error())
		e.backend.AssertNotCalled(t, "RegistrarUsuario", mock.Anything, mock.Anything)
	})

	t.Run("exitoso sin enviar correo", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("RegistrarUsuario", mock.Anything, models.UsuarioBackend{NombreUsuario: "ana", Contrasena: "uno"}).Return(nil)

		resp, _ := e.peticion(t, http.MethodPost, "/register", url.Values{
			"correo":              {"ana@clinica.mx"},
			"nombreUsuario":       {"ana"},
			"contrasena":          {"uno"},
			"confirmarContrasena": {"uno"},
		})
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/register", resp.Header.Get(fiber.HeaderLocation))

		flash := cookie(resp, cookieFlash)
		require.NotNil(t, flash)
		_, body := e.peticion(t, http.MethodGet, "/register", nil, flash)
		contiene(t, body, "Usuario registrado con éxito.")
		e.backend.AssertExpectations(t)
	})

	t.Run("backend sin conexión", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("RegistrarUsuario", mock.Anything, mock.Anything).Return(errors.New("timeout"))

		resp, body := e.peticion(t, http.MethodPost, "/register", url.Values{
			"correo":              {"ana@clinica.mx"},
			"nombreUsuario":       {"ana"},
			"contrasena":          {"uno"},
			"confirmarContrasena": {"uno"},
		})
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
		contiene(t, body, "Hubo un problema al conectar con el servidor.")
	})

	t.Run("backend responde sin status OK", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("RegistrarUsuario", mock.Anything, mock.Anything).
			Return(fmt.Errorf("registrar usuario: %w: ERROR", apiclient.ErrRespuestaNoOK))

		resp, body := e.peticion(t, http.MethodPost, "/register", url.Values{
			"correo":              {"ana@clinica.mx"},
			"nombreUsuario":       {"ana"},
			"contrasena":          {"uno"},
			"confirmarContrasena": {"uno"},
		})
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
		contiene(t, body, "Error al registrar el usuario.")
		assert.NotContains(t, body, "conectar con el servidor")
	})
}

func citasExistentes() []models.Cita {
	return []models.Cita{
		{ID: 1, Fecha: "2024-05-01", Hora: "09:00", Paciente: "Ana López"},
		{ID: 2, Fecha: "2024-05-02", Hora: "11:00", Paciente: "Luis Pérez"},
	}
}

func TestListarCitas_Filtros(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("ListarCitas", mock.Anything).Return(citasExistentes(), nil)

	resp, body := e.peticion(t, http.MethodGet, "/appointments?q=ana", nil, e.sesion())
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	contiene(t, body, "Ana López")
	assert.NotContains(t, body, html.EscapeString("Luis Pérez"))
	assert.Contains(t, body, "Mostrando 1 a 1 de 2 registros")
}

func TestListarCitas_BackendCaido(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("ListarCitas", mock.Anything).Return(nil, errors.New("connection refused"))

	resp, body := e.peticion(t, http.MethodGet, "/appointments", nil, e.sesion())
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	contiene(t, body, msgErrorConexion)
}

func TestCrearCita(t *testing.T) {
	t.Run("menos de 20 minutos", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarCitas", mock.Anything).Return(citasExistentes(), nil)

		resp, body := e.peticion(t, http.MethodPost, "/appointments", url.Values{
			"fecha":    {"2024-05-01"},
			"hora":     {"09:10"},
			"paciente": {"Marta Ruiz"},
		}, e.sesion())
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		contiene(t, body, services.ErrCitaMuyCercana.Error())
		e.backend.AssertNotCalled(t, "CrearCita", mock.Anything, mock.Anything)
	})

	t.Run("campos incompletos", func(t *testing.T) {
		e := nuevoEntorno(t, nil)

		resp, body := e.peticion(t, http.MethodPost, "/appointments", url.Values{
			"fecha": {"2024-05-01"},
			"hora":  {"09:30"},
		}, e.sesion())
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		contiene(t, body, services.ErrCitaIncompleta.Error())
		e.backend.AssertNotCalled(t, "ListarCitas", mock.Anything)
	})

	t.Run("exactamente 20 minutos", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarCitas", mock.Anything).Return(citasExistentes(), nil)
		e.backend.On("CrearCita", mock.Anything, models.Cita{
			Fecha: "2024-05-01", Hora: "09:20", Paciente: "Marta Ruiz", Estado: models.EstadoProgramada,
		}).Return(nil)

		resp, _ := e.peticion(t, http.MethodPost, "/appointments", url.Values{
			"fecha":    {"2024-05-01"},
			"hora":     {"09:20"},
			"paciente": {"Marta Ruiz"},
		}, e.sesion())
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/appointments", resp.Header.Get(fiber.HeaderLocation))

		flash := cookie(resp, cookieFlash)
		require.NotNil(t, flash)

		resp, body := e.peticion(t, http.MethodGet, "/appointments", nil, e.sesion(), flash)
		contiene(t, body, "Cita agendada correctamente")
		borrada := cookie(resp, cookieFlash)
		require.NotNil(t, borrada)
		assert.Empty(t, borrada.Value)
		e.backend.AssertExpectations(t)
	})
}

func TestActualizarCita_SeExcluyeASiMisma(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("ListarCitas", mock.Anything).Return(citasExistentes(), nil)
	e.backend.On("ActualizarCita", mock.Anything, mock.MatchedBy(func(c models.Cita) bool {
		return c.ID == 1 && c.Hora == "09:05"
	})).Return(nil)

	resp, _ := e.peticion(t, http.MethodPost, "/appointments/1", url.Values{
		"fecha":    {"2024-05-01"},
		"hora":     {"09:05"},
		"paciente": {"Ana López"},
	}, e.sesion())
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	e.backend.AssertExpectations(t)
}

func TestEditarCita_NoEncontrada(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("ListarCitas", mock.Anything).Return(citasExistentes(), nil)

	resp, _ := e.peticion(t, http.MethodGet, "/appointments/99/editar", nil, e.sesion())
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/appointments", resp.Header.Get(fiber.HeaderLocation))
	require.NotNil(t, cookie(resp, cookieFlash))
}

func TestEliminarCita(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("EliminarCita", mock.Anything, 2).Return(nil)

	resp, _ := e.peticion(t, http.MethodPost, "/appointments/2/eliminar", nil, e.sesion())
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	e.backend.AssertExpectations(t)
}

func TestInventario(t *testing.T) {
	t.Run("búsqueda", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarProductos", mock.Anything).Return([]models.Producto{
			{ID: 1, Nombre: "Gasas", Descripcion: "Estériles", Cantidad: 10, PrecioUnit: 2.5},
			{ID: 2, Nombre: "Jeringas", Descripcion: "5 ml", Cantidad: 3, PrecioUnit: 1200},
		}, nil)

		resp, body := e.peticion(t, http.MethodGet, "/inventory?q="+url.QueryEscape("esté"), nil, e.sesion())
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Gasas")
		assert.NotContains(t, body, "Jeringas")
		assert.Contains(t, body, "$2.50")
	})

	t.Run("formato inválido", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarProductos", mock.Anything).Return(nil, apiclient.ErrFormatoInvalido)

		_, body := e.peticion(t, http.MethodGet, "/inventory", nil, e.sesion())
		contiene(t, body, "Error al cargar los productos. Formato de respuesta inválido.")
	})

	t.Run("backend con error HTTP", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarProductos", mock.Anything).
			Return(nil, fmt.Errorf("listar inventario: %w", &apiclient.APIError{StatusCode: http.StatusInternalServerError}))

		resp, body := e.peticion(t, http.MethodGet, "/inventory", nil, e.sesion())
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		contiene(t, body, msgErrorConexionReintente)
		assert.NotContains(t, body, "Formato de respuesta")
	})

	t.Run("cantidad inválida", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		resp, _ := e.peticion(t, http.MethodPost, "/inventory", url.Values{
			"nombre":     {"Gasas"},
			"cantidad":   {"diez"},
			"precioUnit": {"2.5"},
		}, e.sesion())
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		e.backend.AssertNotCalled(t, "CrearProducto", mock.Anything, mock.Anything)
	})

	t.Run("crear", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("CrearProducto", mock.Anything, models.Producto{Nombre: "Gasas", Cantidad: 10, PrecioUnit: 2.5}).Return(nil)

		resp, _ := e.peticion(t, http.MethodPost, "/inventory", url.Values{
			"nombre":     {"Gasas"},
			"cantidad":   {"10"},
			"precioUnit": {"2.5"},
		}, e.sesion())
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/inventory", resp.Header.Get(fiber.HeaderLocation))
		e.backend.AssertExpectations(t)
	})

	t.Run("editar carga el formulario", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarProductos", mock.Anything).Return([]models.Producto{
			{ID: 5, Nombre: "Guantes", Cantidad: 40, PrecioUnit: 0.75},
		}, nil)

		resp, body := e.peticion(t, http.MethodGet, "/inventory/5/editar", nil, e.sesion())
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `value="0.75"`)
		assert.Contains(t, body, `action="/inventory/5"`)
	})
}

func ventas() []models.Venta {
	return []models.Venta{
		{ID: 1, Paciente: "Ana López", Fecha: "2024-05-01", Servicio: "Consulta general", Total: 500},
		{ID: 2, Paciente: "Luis Pérez", Fecha: "2024-05-03", Servicio: "Radiografía", Total: 900},
	}
}

func TestFacturacion(t *testing.T) {
	t.Run("sin búsqueda muestra todo", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarVentas", mock.Anything).Return(ventas(), nil)

		_, body := e.peticion(t, http.MethodGet, "/billing", nil, e.sesion())
		contiene(t, body, "Ana López")
		contiene(t, body, "Luis Pérez")
		assert.Contains(t, body, "$1,400.00")
	})

	t.Run("búsqueda sin criterios", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarVentas", mock.Anything).Return(ventas(), nil)

		resp, body := e.peticion(t, http.MethodGet, "/billing?buscar=1", nil, e.sesion())
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		contiene(t, body, services.ErrSinCriterios.Error())
		assert.NotContains(t, body, html.EscapeString("Ana López"))
	})

	t.Run("por paciente", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarVentas", mock.Anything).Return(ventas(), nil)

		_, body := e.peticion(t, http.MethodGet, "/billing?buscar=1&paciente=luis", nil, e.sesion())
		contiene(t, body, "Luis Pérez")
		assert.NotContains(t, body, html.EscapeString("Ana López"))
		assert.Contains(t, body, "$900.00")
	})
}

func TestInformesFinancieros(t *testing.T) {
	compras := []models.Compra{
		{ID: 1, Proveedor: "Medisur", Fecha: "2024-04-20", TipoServicio: "Insumos", Total: 300},
		{ID: 2, Proveedor: "Farmacorp", Fecha: "2024-05-02", TipoServicio: "Medicamentos", Total: 200},
	}

	t.Run("rango incompleto", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarCompras", mock.Anything).Return(compras, nil)
		e.backend.On("ListarVentas", mock.Anything).Return(ventas(), nil)

		_, body := e.peticion(t, http.MethodGet, "/financialReports?buscar=1&inicio=2024-05-01", nil, e.sesion())
		contiene(t, body, services.ErrRangoIncompleto.Error())
	})

	t.Run("rango inclusivo", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarCompras", mock.Anything).Return(compras, nil)
		e.backend.On("ListarVentas", mock.Anything).Return(ventas(), nil)

		_, body := e.peticion(t, http.MethodGet, "/financialReports?buscar=1&inicio=2024-05-01&fin=2024-05-02", nil, e.sesion())
		assert.Contains(t, body, "Farmacorp")
		assert.NotContains(t, body, "Medisur")
		assert.Contains(t, body, "Resumen de Compras: $200.00")
	})

	t.Run("pestaña ventas", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarCompras", mock.Anything).Return(compras, nil)
		e.backend.On("ListarVentas", mock.Anything).Return(ventas(), nil)

		_, body := e.peticion(t, http.MethodGet, "/financialReports?tab=ventas", nil, e.sesion())
		assert.Contains(t, body, "Resumen de Ventas: $1,400.00")
		assert.Contains(t, body, "Balance $900.00")
	})
}

func TestPacientes(t *testing.T) {
	t.Run("apellido obligatorio", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		resp, body := e.peticion(t, http.MethodPost, "/patients", url.Values{"nombre": {"Ana"}}, e.sesion())
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		contiene(t, body, services.ErrPacienteIncompleto.Error())
	})

	t.Run("eliminar con error del backend", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("EliminarPaciente", mock.Anything, 3).Return(&apiclient.APIError{StatusCode: 500, Body: "fk"})

		resp, _ := e.peticion(t, http.MethodPost, "/patients/3/eliminar", nil, e.sesion())
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		flash := cookie(resp, cookieFlash)
		require.NotNil(t, flash)

		e.backend.On("ListarPacientes", mock.Anything).Return([]models.Paciente{}, nil)
		_, body := e.peticion(t, http.MethodGet, "/patients", nil, e.sesion(), flash)
		contiene(t, body, "Error al eliminar el paciente")
	})
}

func TestHistorias(t *testing.T) {
	paciente := models.Paciente{ID: 3, Nombre: "Ana", Apellido: "López"}

	t.Run("listado más reciente primero", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarPacientes", mock.Anything).Return([]models.Paciente{paciente}, nil)
		e.backend.On("ListarHistorias", mock.Anything, 3).Return([]models.HistoriaClinica{
			{ID: 1, Descripcion: "Control anual", FechaCreacion: "2024-01-10T09:00"},
			{ID: 2, Descripcion: "Dolor de cabeza", FechaCreacion: "2024-04-02T12:15"},
		}, nil)

		resp, body := e.peticion(t, http.MethodGet, "/patients/3/historias?abierta=2", nil, e.sesion())
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		reciente := strings.Index(body, "02/04/2024 12:15")
		antigua := strings.Index(body, "10/01/2024 09:00")
		require.NotEqual(t, -1, reciente)
		require.NotEqual(t, -1, antigua)
		assert.Less(t, reciente, antigua)
		assert.Contains(t, body, "Dolor de cabeza")
		assert.NotContains(t, body, "Control anual")
	})

	t.Run("paciente inexistente", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("ListarPacientes", mock.Anything).Return([]models.Paciente{paciente}, nil)

		resp, _ := e.peticion(t, http.MethodGet, "/patients/8/historias", nil, e.sesion())
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/patients", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("crear sin fecha usa la actual", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		e.backend.On("CrearHistoria", mock.Anything, 3, models.HistoriaClinica{
			Descripcion:   "Revisión",
			FechaCreacion: "2024-05-01T10:30",
		}).Return(&models.HistoriaClinica{ID: 9}, nil)

		resp, _ := e.peticion(t, http.MethodPost, "/patients/3/historias", url.Values{"descripcion": {"Revisión"}}, e.sesion())
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/patients/3/historias", resp.Header.Get(fiber.HeaderLocation))
		e.backend.AssertExpectations(t)
	})
}

func TestActividad(t *testing.T) {
	t.Run("deshabilitada", func(t *testing.T) {
		e := nuevoEntorno(t, nil)
		_, body := e.peticion(t, http.MethodGet, "/actividad", nil, e.sesion())
		contiene(t, body, "no está habilitado")
	})

	t.Run("con registros", func(t *testing.T) {
		usuario := "ana"
		logs := &fakeLogs{pagina: &database.PaginaLogs{
			Logs: []models.Log{{
				IDLog: 1, Method: "POST", Path: "/appointments", StatusCode: 303,
				IP: "10.0.0.1", Username: &usuario, LogLevel: models.LogLevelInfo,
				Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			}},
			Total: 120, Page: 1, Limit: 50,
		}}
		e := nuevoEntorno(t, logs)

		resp, body := e.peticion(t, http.MethodGet, "/actividad?log_level=info&page=1", nil, e.sesion())
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "info", logs.filtro.LogLevel)
		assert.Contains(t, body, "10.0.0.1")
		assert.Contains(t, body, "success: 3")
		assert.Contains(t, body, "Siguiente")
		assert.NotContains(t, body, "Anterior")
	})
}

func TestHealth(t *testing.T) {
	e := nuevoEntorno(t, nil)
	e.backend.On("Ping", mock.Anything).Return(nil).Once()
	e.backend.On("Ping", mock.Anything).Return(errors.New("sin ruta")).Once()

	resp, body := e.peticion(t, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"backend":"ok"`)

	resp, body = e.peticion(t, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, `"intCode":"F01"`)
}

func TestNoEncontrado(t *testing.T) {
	e := nuevoEntorno(t, nil)
	resp, body := e.peticion(t, http.MethodGet, "/no-existe", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Ruta no encontrada")
}
