package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type BodyResponse struct {
	IntCode string        `json:"intCode"`
	Data    []interface{} `json:"data"`
}

type StandardResponse struct {
	StatusCode int          `json:"statusCode"`
	Body       BodyResponse `json:"body"`
}

// Health reporta el estado de la consola y si el backend responde
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	backend := "ok"
	status := fiber.StatusOK
	intCode := "S01"
	if err := h.backend.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Backend no disponible")
		backend = "no disponible"
		status = fiber.StatusServiceUnavailable
		intCode = "F01"
	}

	return c.Status(status).JSON(StandardResponse{
		StatusCode: status,
		Body: BodyResponse{
			IntCode: intCode,
			Data: []interface{}{fiber.Map{
				"status":    "ok",
				"message":   "CLINISYS consola funcionando",
				"backend":   backend,
				"timestamp": h.ahora().UTC().Format(time.RFC3339),
			}},
		},
	})
}

// NoEncontrado responde 404 para rutas inexistentes
func NoEncontrado(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   "Ruta no encontrada",
		"message": "La ruta solicitada no existe en este servidor",
		"path":    c.Path(),
		"method":  c.Method(),
	})
}
