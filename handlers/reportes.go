package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/services"
)

// Pestañas de informes financieros
const (
	tabCompras = "compras"
	tabVentas  = "ventas"
)

// Facturacion muestra las ventas; con ?buscar aplica los criterios
func (h *Handler) Facturacion(c *fiber.Ctx) error {
	criterios := services.CriteriosFactura{
		Paciente: c.Query("paciente"),
		ID:       c.Query("id"),
		Fecha:    c.Query("fecha"),
		Servicio: c.Query("servicio"),
	}
	datos := h.datos(c, "Facturación", "facturacion")
	datos["Criterios"] = criterios

	ventas, err := h.backend.ListarVentas(c.UserContext())
	if err != nil {
		datos["Error"] = h.errorBackend(c, err, "listar ventas", "Error al cargar las ventas")
		datos["Ventas"] = []models.Venta{}
		return h.render(c, fiber.StatusOK, "paginas/facturacion", datos)
	}

	if c.Query("buscar") != "" {
		filtradas, err := services.BuscarVentas(ventas, criterios)
		if errors.Is(err, services.ErrSinCriterios) {
			datos["Error"] = err.Error()
		}
		ventas = filtradas
	}
	datos["Ventas"] = ventas
	datos["Total"] = services.TotalVentas(ventas)
	return h.render(c, fiber.StatusOK, "paginas/facturacion", datos)
}

// InformesFinancieros muestra compras y ventas; con inicio y fin filtra por rango
func (h *Handler) InformesFinancieros(c *fiber.Ctx) error {
	rango := services.RangoFechas{Inicio: c.Query("inicio"), Fin: c.Query("fin")}
	tab := c.Query("tab", tabCompras)
	if tab != tabVentas {
		tab = tabCompras
	}

	datos := h.datos(c, "Informes Financieros", "informes")
	datos["Rango"] = rango
	datos["Tab"] = tab

	compras, err := h.backend.ListarCompras(c.UserContext())
	if err == nil {
		var ventas []models.Venta
		ventas, err = h.backend.ListarVentas(c.UserContext())
		if err == nil {
			datos["Informe"] = h.informe(c, compras, ventas, rango, datos)
			return h.render(c, fiber.StatusOK, "paginas/informes", datos)
		}
	}

	datos["Error"] = h.errorBackend(c, err, "informes financieros", "Error al cargar los informes")
	datos["Informe"] = models.InformeFinanciero{Compras: []models.Compra{}, Ventas: []models.Venta{}}
	return h.render(c, fiber.StatusOK, "paginas/informes", datos)
}

// informe aplica el rango solo cuando se envió la búsqueda; sin búsqueda
// muestra todo
func (h *Handler) informe(c *fiber.Ctx, compras []models.Compra, ventas []models.Venta, r services.RangoFechas, datos fiber.Map) models.InformeFinanciero {
	if c.Query("buscar") == "" {
		return models.InformeFinanciero{
			Compras:      compras,
			Ventas:       ventas,
			TotalCompras: services.TotalCompras(compras),
			TotalVentas:  services.TotalVentas(ventas),
			Balance:      services.TotalVentas(ventas) - services.TotalCompras(compras),
		}
	}
	informe, err := services.GenerarInforme(compras, ventas, r)
	if err != nil {
		datos["Error"] = err.Error()
	}
	return informe
}
