package models

// Estados posibles de una cita
const (
	EstadoProgramada = "programada"
	EstadoCompletada = "completada"
	EstadoCancelada  = "cancelada"
)

// Cita representa una cita médica tal como la expone el recurso /cita
type Cita struct {
	ID       int    `json:"id,omitempty"`
	Fecha    string `json:"fecha"` // YYYY-MM-DD
	Hora     string `json:"hora"`  // HH:MM
	Paciente string `json:"paciente"`
	Motivo   string `json:"motivo,omitempty"`
	Estado   string `json:"estado,omitempty"`
}

// CitaForm representa los campos del formulario de agendar/editar cita
type CitaForm struct {
	Fecha    string `form:"fecha"`
	Hora     string `form:"hora"`
	Paciente string `form:"paciente"`
	Motivo   string `form:"motivo"`
	Estado   string `form:"estado"`
}

// ACita convierte el formulario en una cita con el ID indicado
func (f CitaForm) ACita(id int) Cita {
	estado := f.Estado
	if estado == "" {
		estado = EstadoProgramada
	}
	return Cita{
		ID:       id,
		Fecha:    f.Fecha,
		Hora:     f.Hora,
		Paciente: f.Paciente,
		Motivo:   f.Motivo,
		Estado:   estado,
	}
}
