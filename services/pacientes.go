package services

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/lizet96/clinisys/models"
)

var (
	ErrPacienteIncompleto = errors.New("El nombre y el apellido del paciente son obligatorios.")
	ErrHistoriaVacia      = errors.New("La descripción de la historia clínica es obligatoria.")
)

// ValidarPaciente revisa los campos obligatorios del paciente
func ValidarPaciente(p models.Paciente) error {
	if strings.TrimSpace(p.Nombre) == "" || strings.TrimSpace(p.Apellido) == "" {
		return ErrPacienteIncompleto
	}
	return nil
}

// BuscarPacientes filtra por nombre, apellido o email
func BuscarPacientes(pacientes []models.Paciente, termino string) []models.Paciente {
	termino = strings.ToLower(strings.TrimSpace(termino))
	if termino == "" {
		return pacientes
	}
	var resultado []models.Paciente
	for _, p := range pacientes {
		if strings.Contains(strings.ToLower(p.NombreCompleto()), termino) ||
			strings.Contains(strings.ToLower(p.Email), termino) {
			resultado = append(resultado, p)
		}
	}
	return resultado
}

// BuscarPaciente retorna el paciente con el ID indicado
func BuscarPaciente(pacientes []models.Paciente, id int) (models.Paciente, bool) {
	for _, p := range pacientes {
		if p.ID == id {
			return p, true
		}
	}
	return models.Paciente{}, false
}

// HistoriaDesdeFormulario valida el formulario; sin fecha usa el momento actual
func HistoriaDesdeFormulario(f models.HistoriaForm, id int, ahora time.Time) (models.HistoriaClinica, error) {
	h := models.HistoriaClinica{
		ID:            id,
		Descripcion:   strings.TrimSpace(f.Descripcion),
		FechaCreacion: strings.TrimSpace(f.FechaCreacion),
	}
	if h.Descripcion == "" {
		return h, ErrHistoriaVacia
	}
	if h.FechaCreacion == "" {
		h.FechaCreacion = ahora.Format(formatoFechaHora)
	}
	return h, nil
}

// OrdenarHistorias deja primero las historias más recientes
func OrdenarHistorias(historias []models.HistoriaClinica) []models.HistoriaClinica {
	ordenadas := slices.Clone(historias)
	slices.SortStableFunc(ordenadas, func(a, b models.HistoriaClinica) int {
		return strings.Compare(b.FechaCreacion, a.FechaCreacion)
	})
	return ordenadas
}

// BuscarHistoria retorna la historia con el ID indicado
func BuscarHistoria(historias []models.HistoriaClinica, id int) (models.HistoriaClinica, bool) {
	for _, h := range historias {
		if h.ID == id {
			return h, true
		}
	}
	return models.HistoriaClinica{}, false
}

// FechaLegible formatea fechas ISO (con o sin hora) como DD/MM/YYYY[ HH:MM]
func FechaLegible(valor string) string {
	layouts := []struct {
		entrada string
		salida  string
	}{
		{time.RFC3339, "02/01/2006 15:04"},
		{"2006-01-02T15:04:05", "02/01/2006 15:04"},
		{formatoFechaHora, "02/01/2006 15:04"},
		{formatoFecha, "02/01/2006"},
	}
	for _, l := range layouts {
		if t, err := time.Parse(l.entrada, valor); err == nil {
			return t.Format(l.salida)
		}
	}
	return valor
}
