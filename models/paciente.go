package models

// Paciente representa un paciente del recurso /paciente
type Paciente struct {
	ID       int    `json:"id,omitempty"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	FechaNac string `json:"fechaNac"`
	Telefono string `json:"telefono"`
	Email    string `json:"email"`
}

// PacienteForm representa el formulario de alta/edición de paciente
type PacienteForm struct {
	Nombre   string `form:"nombre"`
	Apellido string `form:"apellido"`
	FechaNac string `form:"fechaNac"`
	Telefono string `form:"telefono"`
	Email    string `form:"email"`
}

// APaciente convierte el formulario en un paciente con el ID indicado
func (f PacienteForm) APaciente(id int) Paciente {
	return Paciente{
		ID:       id,
		Nombre:   f.Nombre,
		Apellido: f.Apellido,
		FechaNac: f.FechaNac,
		Telefono: f.Telefono,
		Email:    f.Email,
	}
}

// NombreCompleto retorna nombre y apellido separados por espacio
func (p Paciente) NombreCompleto() string {
	if p.Apellido == "" {
		return p.Nombre
	}
	return p.Nombre + " " + p.Apellido
}

// ReferenciaPaciente es la forma en que una historia clínica apunta a su paciente
type ReferenciaPaciente struct {
	ID int `json:"id"`
}

// HistoriaClinica representa una nota del historial médico de un paciente
type HistoriaClinica struct {
	ID            int                 `json:"id,omitempty"`
	Descripcion   string              `json:"descripcion"`
	FechaCreacion string              `json:"fechaCreacion"`
	Paciente      *ReferenciaPaciente `json:"paciente,omitempty"`
}

// HistoriaForm representa el formulario de historia clínica
type HistoriaForm struct {
	Descripcion   string `form:"descripcion"`
	FechaCreacion string `form:"fechaCreacion"`
}
