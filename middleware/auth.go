package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/sessions"
)

// LocalSesion es la clave de c.Locals donde queda la sesión autenticada
const LocalSesion = "sesion"

// Validador es la parte del manejador de sesiones que usa el middleware
type Validador interface {
	Validar(ctx context.Context, token string) (*models.Sesion, error)
}

// SesionRequerida valida la cookie de sesión. Sin sesión válida redirige a
// /login y borra la cookie.
func SesionRequerida(v Validador, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessions.NombreCookie)
		if token == "" {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		sesion, err := v.Validar(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, sessions.ErrTokenInvalido) && !errors.Is(err, sessions.ErrSesionNoEncontrada) {
				logger.Error().Err(err).Str("path", c.Path()).Msg("Error al validar la sesión")
			}
			BorrarCookieSesion(c)
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		c.Locals(LocalSesion, sesion)
		return c.Next()
	}
}

// SesionOpcional carga la sesión si existe, sin exigirla
func SesionOpcional(v Validador) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(sessions.NombreCookie); token != "" {
			if sesion, err := v.Validar(c.UserContext(), token); err == nil {
				c.Locals(LocalSesion, sesion)
			}
		}
		return c.Next()
	}
}

// SesionDe retorna la sesión guardada por SesionRequerida o nil
func SesionDe(c *fiber.Ctx) *models.Sesion {
	s, _ := c.Locals(LocalSesion).(*models.Sesion)
	return s
}

// EscribirCookieSesion guarda el token en una cookie HttpOnly SameSite=Lax.
// Sin "Recordarme" la cookie dura lo que el navegador.
func EscribirCookieSesion(c *fiber.Ctx, token string, s *models.Sesion, segura bool) {
	cookie := &fiber.Cookie{
		Name:     sessions.NombreCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   segura,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if s.Recordar {
		cookie.Expires = s.ExpiraEn
	}
	c.Cookie(cookie)
}

// BorrarCookieSesion expira la cookie de sesión
func BorrarCookieSesion(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessions.NombreCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}
