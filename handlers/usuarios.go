package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/clinisys/apiclient"
	"github.com/lizet96/clinisys/middleware"
	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/services"
	"github.com/lizet96/clinisys/sessions"
)

// Landing muestra la página pública de bienvenida
func (h *Handler) Landing(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "paginas/landing", h.datos(c, "CLINISYS", ""))
}

// LoginPage muestra el formulario de inicio de sesión
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	if middleware.SesionDe(c) != nil {
		return c.Redirect("/home", fiber.StatusSeeOther)
	}
	return h.renderLogin(c, fiber.StatusOK, models.LoginRequest{}, "")
}

func (h *Handler) renderLogin(c *fiber.Ctx, status int, form models.LoginRequest, errMsg string) error {
	datos := h.datos(c, "Iniciar sesión", "")
	datos["Form"] = form
	datos["Error"] = errMsg
	datos["RequiereCodigo"] = h.auth.RequiereCodigo()
	return h.render(c, status, "paginas/login", datos)
}

// Login autentica al usuario y abre la sesión
func (h *Handler) Login(c *fiber.Ctx) error {
	var form models.LoginRequest
	if err := c.BodyParser(&form); err != nil {
		return h.renderLogin(c, fiber.StatusBadRequest, form, services.ErrCredencialesIncompletas.Error())
	}

	identidad, err := h.auth.Autenticar(c.UserContext(), form)
	form.Contrasena = ""
	form.Codigo = ""
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCredencialesIncompletas):
			return h.renderLogin(c, fiber.StatusUnprocessableEntity, form, err.Error())
		case errors.Is(err, services.ErrCredencialesInvalidas),
			errors.Is(err, services.ErrCodigoRequerido),
			errors.Is(err, services.ErrCodigoInvalido):
			h.actividad.LogCustomEvent(c, models.LogLevelWarning, "login fallido", map[string]interface{}{
				"usuario": form.NombreUsuario,
			})
			return h.renderLogin(c, fiber.StatusUnauthorized, form, err.Error())
		default:
			h.errorBackend(c, err, "login", "")
			return h.renderLogin(c, fiber.StatusBadGateway, form, msgErrorConexionReintente)
		}
	}

	token, sesion, err := h.sesiones.Iniciar(c.UserContext(), identidad.Usuario, identidad.Origen, identidad.IDBackend, form.Recordar(), c.IP())
	if err != nil {
		h.logger.Error().Err(err).Msg("Error al crear la sesión")
		return h.renderLogin(c, fiber.StatusInternalServerError, form, msgErrorConexionReintente)
	}
	middleware.EscribirCookieSesion(c, token, sesion, h.segura)
	c.Locals(middleware.LocalSesion, sesion)
	h.evento(c, "login", map[string]interface{}{"origen": identidad.Origen, "recordar": sesion.Recordar})

	return c.Redirect("/home", fiber.StatusSeeOther)
}

// Logout revoca la sesión y borra la cookie
func (h *Handler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(sessions.NombreCookie); token != "" {
		if err := h.sesiones.Cerrar(c.UserContext(), token); err != nil {
			h.logger.Error().Err(err).Msg("Error al cerrar la sesión")
		}
	}
	h.evento(c, "logout", nil)
	middleware.BorrarCookieSesion(c)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// RegistroPage muestra el formulario de registro
func (h *Handler) RegistroPage(c *fiber.Ctx) error {
	return h.renderRegistro(c, fiber.StatusOK, models.RegistroRequest{}, "")
}

func (h *Handler) renderRegistro(c *fiber.Ctx, status int, form models.RegistroRequest, errMsg string) error {
	form.Contrasena = ""
	form.ConfirmarContrasena = ""
	datos := h.datos(c, "Registro", "")
	datos["Form"] = form
	datos["Error"] = errMsg
	return h.render(c, status, "paginas/registro", datos)
}

// Registro crea el usuario en el backend. El correo no se envía.
func (h *Handler) Registro(c *fiber.Ctx) error {
	var form models.RegistroRequest
	if err := c.BodyParser(&form); err != nil {
		return h.renderRegistro(c, fiber.StatusBadRequest, form, services.ErrCamposIncompletos.Error())
	}
	if err := services.ValidarRegistro(form); err != nil {
		return h.renderRegistro(c, fiber.StatusUnprocessableEntity, form, err.Error())
	}

	err := h.backend.RegistrarUsuario(c.UserContext(), models.UsuarioBackend{
		NombreUsuario: form.NombreUsuario,
		Contrasena:    form.Contrasena,
	})
	if err != nil {
		msg := "Error al registrar el usuario."
		if apiclient.StatusCode(err) == 0 && !errors.Is(err, apiclient.ErrRespuestaNoOK) {
			msg = "Hubo un problema al conectar con el servidor."
		}
		h.errorBackend(c, err, "registrar usuario", msg)
		return h.renderRegistro(c, fiber.StatusBadGateway, form, msg)
	}

	h.evento(c, "usuario registrado", map[string]interface{}{"usuario": form.NombreUsuario})
	return h.redirigir(c, "/register", FlashExito, "Usuario registrado con éxito.")
}

// Inicio muestra las tarjetas de los módulos
func (h *Handler) Inicio(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "paginas/inicio", h.datos(c, "Inicio", "inicio"))
}

// Perfil muestra los datos de la sesión actual
func (h *Handler) Perfil(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "paginas/perfil", h.datos(c, "Perfil", "perfil"))
}
