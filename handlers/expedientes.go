package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/services"
)

// ListarPacientes muestra la tabla de pacientes
func (h *Handler) ListarPacientes(c *fiber.Ctx) error {
	termino := c.Query("q")
	datos := h.datos(c, "Pacientes", "pacientes")
	datos["Termino"] = termino

	pacientes, err := h.backend.ListarPacientes(c.UserContext())
	if err != nil {
		datos["Error"] = h.errorBackend(c, err, "listar pacientes", "Error al cargar los pacientes")
		datos["Pacientes"] = []models.Paciente{}
		return h.render(c, fiber.StatusOK, "paginas/pacientes", datos)
	}
	datos["Pacientes"] = services.BuscarPacientes(pacientes, termino)
	return h.render(c, fiber.StatusOK, "paginas/pacientes", datos)
}

func (h *Handler) renderPacienteForm(c *fiber.Ctx, status int, p models.Paciente, errMsg string) error {
	titulo := "Agregar Paciente"
	accion := "/patients"
	if p.ID != 0 {
		titulo = "Editar Paciente"
		accion = "/patients/" + strconv.Itoa(p.ID)
	}
	datos := h.datos(c, titulo, "pacientes")
	datos["Paciente"] = p
	datos["Accion"] = accion
	datos["Error"] = errMsg
	return h.render(c, status, "paginas/paciente_form", datos)
}

// NuevoPaciente muestra el formulario vacío
func (h *Handler) NuevoPaciente(c *fiber.Ctx) error {
	return h.renderPacienteForm(c, fiber.StatusOK, models.Paciente{}, "")
}

// EditarPaciente muestra el formulario con el paciente cargado
func (h *Handler) EditarPaciente(c *fiber.Ctx) error {
	p, msg := h.cargarPaciente(c)
	if p == nil {
		return h.redirigir(c, "/patients", FlashError, msg)
	}
	return h.renderPacienteForm(c, fiber.StatusOK, *p, "")
}

// cargarPaciente busca el paciente de :id. Si no lo encuentra retorna nil y
// el mensaje para el usuario.
func (h *Handler) cargarPaciente(c *fiber.Ctx) (*models.Paciente, string) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, "Paciente no encontrado"
	}
	pacientes, err := h.backend.ListarPacientes(c.UserContext())
	if err != nil {
		return nil, h.errorBackend(c, err, "cargar paciente", "Error al cargar los pacientes")
	}
	p, ok := services.BuscarPaciente(pacientes, id)
	if !ok {
		return nil, "Paciente no encontrado"
	}
	return &p, ""
}

// CrearPaciente agrega un paciente
func (h *Handler) CrearPaciente(c *fiber.Ctx) error {
	return h.guardarPaciente(c, 0)
}

// ActualizarPaciente guarda los cambios de un paciente
func (h *Handler) ActualizarPaciente(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/patients", FlashError, "Paciente no encontrado")
	}
	return h.guardarPaciente(c, id)
}

func (h *Handler) guardarPaciente(c *fiber.Ctx, id int) error {
	var form models.PacienteForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderPacienteForm(c, fiber.StatusBadRequest, models.Paciente{ID: id}, services.ErrPacienteIncompleto.Error())
	}
	p := form.APaciente(id)
	if err := services.ValidarPaciente(p); err != nil {
		return h.renderPacienteForm(c, fiber.StatusUnprocessableEntity, p, err.Error())
	}

	if id == 0 {
		if _, err := h.backend.CrearPaciente(c.UserContext(), p); err != nil {
			msg := h.errorBackend(c, err, "crear paciente", "Error al agregar el paciente")
			return h.renderPacienteForm(c, fiber.StatusBadGateway, p, msg)
		}
		h.evento(c, "paciente agregado", nil)
		return h.redirigir(c, "/patients", FlashExito, "Paciente agregado correctamente")
	}

	if _, err := h.backend.ActualizarPaciente(c.UserContext(), p); err != nil {
		msg := h.errorBackend(c, err, "actualizar paciente", "Error al actualizar el paciente")
		return h.renderPacienteForm(c, fiber.StatusBadGateway, p, msg)
	}
	h.evento(c, "paciente actualizado", map[string]interface{}{"paciente_id": id})
	return h.redirigir(c, "/patients", FlashExito, "Paciente actualizado correctamente")
}

// EliminarPaciente elimina el paciente indicado
func (h *Handler) EliminarPaciente(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/patients", FlashError, "Paciente no encontrado")
	}
	if err := h.backend.EliminarPaciente(c.UserContext(), id); err != nil {
		return h.redirigir(c, "/patients", FlashError, h.errorBackend(c, err, "eliminar paciente", "Error al eliminar el paciente"))
	}
	h.evento(c, "paciente eliminado", map[string]interface{}{"paciente_id": id})
	return h.redirigir(c, "/patients", FlashExito, "Paciente eliminado correctamente")
}

func rutaHistorias(pacienteID int) string {
	return "/patients/" + strconv.Itoa(pacienteID) + "/historias"
}

// ListarHistorias muestra las historias clínicas de un paciente, la más
// reciente primero. ?abierta=<id> expande una historia.
func (h *Handler) ListarHistorias(c *fiber.Ctx) error {
	p, msg := h.cargarPaciente(c)
	if p == nil {
		return h.redirigir(c, "/patients", FlashError, msg)
	}

	datos := h.datos(c, "Historias Clínicas", "pacientes")
	datos["Paciente"] = p
	datos["Abierta"] = c.QueryInt("abierta", 0)

	historias, err := h.backend.ListarHistorias(c.UserContext(), p.ID)
	if err != nil {
		datos["Error"] = h.errorBackend(c, err, "listar historias", "Error al cargar las historias clínicas")
		datos["Historias"] = []models.HistoriaClinica{}
		return h.render(c, fiber.StatusOK, "paginas/historias", datos)
	}
	datos["Historias"] = services.OrdenarHistorias(historias)
	return h.render(c, fiber.StatusOK, "paginas/historias", datos)
}

func (h *Handler) renderHistoriaForm(c *fiber.Ctx, status int, pacienteID int, hc models.HistoriaClinica, errMsg string) error {
	titulo := "Agregar Historia Clínica"
	accion := rutaHistorias(pacienteID)
	if hc.ID != 0 {
		titulo = "Editar Historia Clínica"
		accion += "/" + strconv.Itoa(hc.ID)
	}
	datos := h.datos(c, titulo, "pacientes")
	datos["PacienteID"] = pacienteID
	datos["Historia"] = hc
	datos["Accion"] = accion
	datos["Error"] = errMsg
	return h.render(c, status, "paginas/historia_form", datos)
}

// NuevaHistoria muestra el formulario de historia clínica
func (h *Handler) NuevaHistoria(c *fiber.Ctx) error {
	pacienteID, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/patients", FlashError, "Paciente no encontrado")
	}
	return h.renderHistoriaForm(c, fiber.StatusOK, pacienteID, models.HistoriaClinica{}, "")
}

// EditarHistoria muestra el formulario con la historia cargada
func (h *Handler) EditarHistoria(c *fiber.Ctx) error {
	pacienteID, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/patients", FlashError, "Paciente no encontrado")
	}
	historiaID, ok := paramID(c, "hid")
	if !ok {
		return h.redirigir(c, rutaHistorias(pacienteID), FlashError, "Historia clínica no encontrada")
	}
	historias, err := h.backend.ListarHistorias(c.UserContext(), pacienteID)
	if err != nil {
		return h.redirigir(c, rutaHistorias(pacienteID), FlashError, h.errorBackend(c, err, "cargar historia", "Error al cargar las historias clínicas"))
	}
	hc, ok := services.BuscarHistoria(historias, historiaID)
	if !ok {
		return h.redirigir(c, rutaHistorias(pacienteID), FlashError, "Historia clínica no encontrada")
	}
	return h.renderHistoriaForm(c, fiber.StatusOK, pacienteID, hc, "")
}

// CrearHistoria agrega una historia clínica al paciente
func (h *Handler) CrearHistoria(c *fiber.Ctx) error {
	return h.guardarHistoria(c, false)
}

// ActualizarHistoria guarda los cambios de una historia clínica
func (h *Handler) ActualizarHistoria(c *fiber.Ctx) error {
	return h.guardarHistoria(c, true)
}

func (h *Handler) guardarHistoria(c *fiber.Ctx, edicion bool) error {
	pacienteID, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/patients", FlashError, "Paciente no encontrado")
	}
	historiaID := 0
	if edicion {
		if historiaID, ok = paramID(c, "hid"); !ok {
			return h.redirigir(c, rutaHistorias(pacienteID), FlashError, "Historia clínica no encontrada")
		}
	}

	var form models.HistoriaForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderHistoriaForm(c, fiber.StatusBadRequest, pacienteID, models.HistoriaClinica{ID: historiaID}, services.ErrHistoriaVacia.Error())
	}
	hc, err := services.HistoriaDesdeFormulario(form, historiaID, h.ahora())
	if err != nil {
		return h.renderHistoriaForm(c, fiber.StatusUnprocessableEntity, pacienteID, hc, err.Error())
	}

	if !edicion {
		if _, err := h.backend.CrearHistoria(c.UserContext(), pacienteID, hc); err != nil {
			msg := h.errorBackend(c, err, "crear historia", "Error al agregar la historia clínica")
			return h.renderHistoriaForm(c, fiber.StatusBadGateway, pacienteID, hc, msg)
		}
		h.evento(c, "historia clínica agregada", map[string]interface{}{"paciente_id": pacienteID})
		return h.redirigir(c, rutaHistorias(pacienteID), FlashExito, "Historia clínica agregada correctamente")
	}

	if _, err := h.backend.ActualizarHistoria(c.UserContext(), pacienteID, hc); err != nil {
		msg := h.errorBackend(c, err, "actualizar historia", "Error al actualizar la historia clínica")
		return h.renderHistoriaForm(c, fiber.StatusBadGateway, pacienteID, hc, msg)
	}
	h.evento(c, "historia clínica actualizada", map[string]interface{}{"historia_id": historiaID})
	return h.redirigir(c, rutaHistorias(pacienteID), FlashExito, "Historia clínica actualizada correctamente")
}

// EliminarHistoria elimina una historia clínica
func (h *Handler) EliminarHistoria(c *fiber.Ctx) error {
	pacienteID, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/patients", FlashError, "Paciente no encontrado")
	}
	historiaID, ok := paramID(c, "hid")
	if !ok {
		return h.redirigir(c, rutaHistorias(pacienteID), FlashError, "Historia clínica no encontrada")
	}
	if err := h.backend.EliminarHistoria(c.UserContext(), historiaID); err != nil {
		return h.redirigir(c, rutaHistorias(pacienteID), FlashError, h.errorBackend(c, err, "eliminar historia", "Error al eliminar la historia clínica"))
	}
	h.evento(c, "historia clínica eliminada", map[string]interface{}{"historia_id": historiaID})
	return h.redirigir(c, rutaHistorias(pacienteID), FlashExito, "Historia clínica eliminada correctamente")
}
