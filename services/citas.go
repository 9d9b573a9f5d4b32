package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lizet96/clinisys/models"
)

// SeparacionMinima es la distancia mínima entre dos citas
const SeparacionMinima = 20 * time.Minute

const (
	formatoFecha     = "2006-01-02"
	formatoHora      = "15:04"
	formatoFechaHora = formatoFecha + "T" + formatoHora
)

// Orden de la lista de citas
const (
	OrdenAsc  = "asc"
	OrdenDesc = "desc"
)

var (
	ErrCitaIncompleta = errors.New("Por favor, complete la fecha, la hora y el paciente de la cita.")
	ErrCitaInvalida   = errors.New("La fecha u hora de la cita no es válida.")
	ErrCitaMuyCercana = errors.New("La cita debe tener al menos 20 minutos de diferencia con otras citas.")
)

// FiltroCitas son los filtros de la tabla de citas
type FiltroCitas struct {
	Paciente string
	Fecha    string
	Orden    string
}

// FiltrarCitas aplica búsqueda por paciente, fecha exacta y ordena por
// fecha y hora. No modifica el slice recibido.
func FiltrarCitas(citas []models.Cita, f FiltroCitas) []models.Cita {
	termino := strings.ToLower(strings.TrimSpace(f.Paciente))

	filtradas := make([]models.Cita, 0, len(citas))
	for _, c := range citas {
		if termino != "" && !strings.Contains(strings.ToLower(c.Paciente), termino) {
			continue
		}
		if f.Fecha != "" && c.Fecha != f.Fecha {
			continue
		}
		filtradas = append(filtradas, c)
	}

	desc := f.Orden == OrdenDesc
	slices.SortStableFunc(filtradas, func(a, b models.Cita) int {
		cmp := strings.Compare(a.Fecha, b.Fecha)
		if cmp == 0 {
			cmp = strings.Compare(a.Hora, b.Hora)
		}
		if desc {
			return -cmp
		}
		return cmp
	})
	return filtradas
}

// ValidarCita revisa que la cita tenga fecha, hora y paciente válidos
func ValidarCita(c models.Cita) error {
	if strings.TrimSpace(c.Fecha) == "" || strings.TrimSpace(c.Hora) == "" || strings.TrimSpace(c.Paciente) == "" {
		return ErrCitaIncompleta
	}
	if _, err := momentoCita(c); err != nil {
		return ErrCitaInvalida
	}
	return nil
}

// ValidarSeparacion rechaza la cita candidata si queda a menos de
// SeparacionMinima de cualquier otra cita. La cita con el mismo ID que la
// candidata (la que se está editando) no cuenta.
func ValidarSeparacion(existentes []models.Cita, candidata models.Cita) error {
	momento, err := momentoCita(candidata)
	if err != nil {
		return ErrCitaInvalida
	}
	for _, e := range existentes {
		if candidata.ID != 0 && e.ID == candidata.ID {
			continue
		}
		otro, err := momentoCita(e)
		if err != nil {
			continue
		}
		diff := momento.Sub(otro)
		if diff < 0 {
			diff = -diff
		}
		if diff < SeparacionMinima {
			return ErrCitaMuyCercana
		}
	}
	return nil
}

// BuscarCita retorna la cita con el ID indicado
func BuscarCita(citas []models.Cita, id int) (models.Cita, bool) {
	for _, c := range citas {
		if c.ID == id {
			return c, true
		}
	}
	return models.Cita{}, false
}

// ResumenRegistros es el texto del pie de la tabla
func ResumenRegistros(mostrados, total int) string {
	return fmt.Sprintf("Mostrando 1 a %d de %d registros", mostrados, total)
}

func momentoCita(c models.Cita) (time.Time, error) {
	return time.ParseInLocation(formatoFechaHora, c.Fecha+"T"+c.Hora, time.Local)
}
