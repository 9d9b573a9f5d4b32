package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/services"
)

// ListarCitas muestra la tabla de citas con búsqueda, fecha y orden
func (h *Handler) ListarCitas(c *fiber.Ctx) error {
	filtro := services.FiltroCitas{
		Paciente: c.Query("q"),
		Fecha:    c.Query("fecha"),
		Orden:    c.Query("orden", services.OrdenAsc),
	}

	datos := h.datos(c, "Citas", "citas")
	datos["Filtro"] = filtro

	citas, err := h.backend.ListarCitas(c.UserContext())
	if err != nil {
		datos["Error"] = h.errorBackend(c, err, "listar citas", "Error al cargar las citas")
		datos["Citas"] = []models.Cita{}
		datos["Resumen"] = services.ResumenRegistros(0, 0)
		return h.render(c, fiber.StatusOK, "paginas/citas", datos)
	}

	filtradas := services.FiltrarCitas(citas, filtro)
	datos["Citas"] = filtradas
	datos["Resumen"] = services.ResumenRegistros(len(filtradas), len(citas))
	return h.render(c, fiber.StatusOK, "paginas/citas", datos)
}

func (h *Handler) renderCitaForm(c *fiber.Ctx, status int, cita models.Cita, errMsg string) error {
	titulo := "Agendar nueva cita"
	accion := "/appointments"
	if cita.ID != 0 {
		titulo = "Editar cita"
		accion = "/appointments/" + strconv.Itoa(cita.ID)
	}
	datos := h.datos(c, titulo, "citas")
	datos["Cita"] = cita
	datos["Accion"] = accion
	datos["Error"] = errMsg
	return h.render(c, status, "paginas/cita_form", datos)
}

// NuevaCita muestra el formulario vacío
func (h *Handler) NuevaCita(c *fiber.Ctx) error {
	return h.renderCitaForm(c, fiber.StatusOK, models.Cita{Estado: models.EstadoProgramada}, "")
}

// EditarCita muestra el formulario con la cita cargada
func (h *Handler) EditarCita(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/appointments", FlashError, "Cita no encontrada")
	}
	citas, err := h.backend.ListarCitas(c.UserContext())
	if err != nil {
		return h.redirigir(c, "/appointments", FlashError, h.errorBackend(c, err, "cargar cita", "Error al cargar las citas"))
	}
	cita, ok := services.BuscarCita(citas, id)
	if !ok {
		return h.redirigir(c, "/appointments", FlashError, "Cita no encontrada")
	}
	return h.renderCitaForm(c, fiber.StatusOK, cita, "")
}

// CrearCita agenda una cita nueva
func (h *Handler) CrearCita(c *fiber.Ctx) error {
	return h.guardarCita(c, 0)
}

// ActualizarCita guarda los cambios de una cita existente
func (h *Handler) ActualizarCita(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/appointments", FlashError, "Cita no encontrada")
	}
	return h.guardarCita(c, id)
}

// guardarCita valida el formulario y la separación de 20 minutos contra las
// citas del backend antes de crear (id 0) o actualizar
func (h *Handler) guardarCita(c *fiber.Ctx, id int) error {
	var form models.CitaForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderCitaForm(c, fiber.StatusBadRequest, models.Cita{ID: id}, services.ErrCitaIncompleta.Error())
	}
	cita := form.ACita(id)

	if err := services.ValidarCita(cita); err != nil {
		return h.renderCitaForm(c, fiber.StatusUnprocessableEntity, cita, err.Error())
	}

	existentes, err := h.backend.ListarCitas(c.UserContext())
	if err != nil {
		msg := h.errorBackend(c, err, "listar citas", "Error al cargar las citas")
		return h.renderCitaForm(c, fiber.StatusBadGateway, cita, msg)
	}
	if err := services.ValidarSeparacion(existentes, cita); err != nil {
		return h.renderCitaForm(c, fiber.StatusConflict, cita, err.Error())
	}

	if id == 0 {
		if err := h.backend.CrearCita(c.UserContext(), cita); err != nil {
			msg := h.errorBackend(c, err, "crear cita", "Error al agendar la cita")
			return h.renderCitaForm(c, fiber.StatusBadGateway, cita, msg)
		}
		h.evento(c, "cita creada", map[string]interface{}{"fecha": cita.Fecha, "hora": cita.Hora})
		return h.redirigir(c, "/appointments", FlashExito, "Cita agendada correctamente")
	}

	if err := h.backend.ActualizarCita(c.UserContext(), cita); err != nil {
		msg := h.errorBackend(c, err, "actualizar cita", "Error al actualizar la cita")
		return h.renderCitaForm(c, fiber.StatusBadGateway, cita, msg)
	}
	h.evento(c, "cita actualizada", map[string]interface{}{"cita_id": id})
	return h.redirigir(c, "/appointments", FlashExito, "Cita actualizada correctamente")
}

// EliminarCita elimina la cita indicada
func (h *Handler) EliminarCita(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/appointments", FlashError, "Cita no encontrada")
	}
	if err := h.backend.EliminarCita(c.UserContext(), id); err != nil {
		return h.redirigir(c, "/appointments", FlashError, h.errorBackend(c, err, "eliminar cita", "Error al eliminar la cita"))
	}
	h.evento(c, "cita eliminada", map[string]interface{}{"cita_id": id})
	return h.redirigir(c, "/appointments", FlashExito, "Cita eliminada correctamente")
}
