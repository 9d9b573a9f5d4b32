package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lizet96/clinisys/models"
)

var (
	ErrSinCriterios    = errors.New("Por favor, ingrese al menos un criterio de búsqueda.")
	ErrRangoIncompleto = errors.New("Por favor, seleccione tanto la fecha de inicio como la fecha de fin.")
)

// CriteriosFactura son los campos de búsqueda de facturación
type CriteriosFactura struct {
	Paciente string
	ID       string
	Fecha    string
	Servicio string
}

// Vacio indica si no se ingresó ningún criterio
func (c CriteriosFactura) Vacio() bool {
	return c.Paciente == "" && c.ID == "" && c.Fecha == "" && c.Servicio == ""
}

// BuscarVentas filtra las ventas por todos los criterios ingresados.
// Sin criterios retorna ErrSinCriterios y una lista vacía.
func BuscarVentas(ventas []models.Venta, c CriteriosFactura) ([]models.Venta, error) {
	if c.Vacio() {
		return []models.Venta{}, ErrSinCriterios
	}
	paciente := strings.ToLower(c.Paciente)
	servicio := strings.ToLower(c.Servicio)

	resultado := make([]models.Venta, 0, len(ventas))
	for _, v := range ventas {
		if paciente != "" && !strings.Contains(strings.ToLower(v.Paciente), paciente) {
			continue
		}
		if c.ID != "" && strconv.Itoa(v.ID) != c.ID {
			continue
		}
		if c.Fecha != "" && v.Fecha != c.Fecha {
			continue
		}
		if servicio != "" && !strings.Contains(strings.ToLower(v.Servicio), servicio) {
			continue
		}
		resultado = append(resultado, v)
	}
	return resultado, nil
}

// RangoFechas es el rango inclusivo del informe financiero (YYYY-MM-DD)
type RangoFechas struct {
	Inicio string
	Fin    string
}

// GenerarInforme filtra compras y ventas por rango y calcula los totales.
// Las fechas se comparan como texto, ambos extremos incluidos.
func GenerarInforme(compras []models.Compra, ventas []models.Venta, r RangoFechas) (models.InformeFinanciero, error) {
	informe := models.InformeFinanciero{
		Inicio:  r.Inicio,
		Fin:     r.Fin,
		Compras: []models.Compra{},
		Ventas:  []models.Venta{},
	}
	if r.Inicio == "" || r.Fin == "" {
		return informe, ErrRangoIncompleto
	}

	for _, c := range compras {
		if c.Fecha >= r.Inicio && c.Fecha <= r.Fin {
			informe.Compras = append(informe.Compras, c)
			informe.TotalCompras += c.Total
		}
	}
	for _, v := range ventas {
		if v.Fecha >= r.Inicio && v.Fecha <= r.Fin {
			informe.Ventas = append(informe.Ventas, v)
			informe.TotalVentas += v.Total
		}
	}
	informe.Balance = informe.TotalVentas - informe.TotalCompras
	return informe, nil
}

// TotalVentas suma el total de las ventas
func TotalVentas(ventas []models.Venta) float64 {
	var total float64
	for _, v := range ventas {
		total += v.Total
	}
	return total
}

// TotalCompras suma el total de las compras
func TotalCompras(compras []models.Compra) float64 {
	var total float64
	for _, c := range compras {
		total += c.Total
	}
	return total
}
