package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/clinisys/models"
)

// Actividad muestra la tabla logs con filtros opcionales y paginación
func (h *Handler) Actividad(c *fiber.Ctx) error {
	datos := h.datos(c, "Actividad", "actividad")

	filtro := models.FiltroLogs{
		LogLevel: c.Query("log_level"),
		Method:   c.Query("method"),
		Path:     c.Query("path"),
		Username: c.Query("username"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 50),
	}
	datos["Filtro"] = filtro

	if h.logs == nil {
		datos["Deshabilitada"] = true
		return h.render(c, fiber.StatusOK, "paginas/actividad", datos)
	}

	pagina, err := h.logs.Listar(c.UserContext(), filtro)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error al obtener logs")
		datos["Error"] = "Error al obtener logs"
		return h.render(c, fiber.StatusOK, "paginas/actividad", datos)
	}
	datos["Pagina"] = pagina
	datos["HayAnterior"] = pagina.Page > 1
	datos["HaySiguiente"] = pagina.Page*pagina.Limit < pagina.Total

	stats, err := h.logs.Estadisticas(c.UserContext())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Error al obtener estadísticas de logs")
	}
	datos["Estadisticas"] = stats
	return h.render(c, fiber.StatusOK, "paginas/actividad", datos)
}
