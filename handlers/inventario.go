package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/clinisys/apiclient"
	"github.com/lizet96/clinisys/models"
	"github.com/lizet96/clinisys/services"
)

// ListarInventario muestra los productos con búsqueda por nombre o descripción
func (h *Handler) ListarInventario(c *fiber.Ctx) error {
	termino := c.Query("q")
	datos := h.datos(c, "Inventario", "inventario")
	datos["Termino"] = termino

	productos, err := h.backend.ListarProductos(c.UserContext())
	if err != nil {
		h.errorBackend(c, err, "listar productos", "")
		datos["Error"] = msgErrorConexionReintente
		if errors.Is(err, apiclient.ErrFormatoInvalido) {
			datos["Error"] = "Error al cargar los productos. Formato de respuesta inválido."
		}
		datos["Productos"] = []models.Producto{}
		return h.render(c, fiber.StatusOK, "paginas/inventario", datos)
	}

	datos["Productos"] = services.FiltrarProductos(productos, termino)
	return h.render(c, fiber.StatusOK, "paginas/inventario", datos)
}

func (h *Handler) renderProductoForm(c *fiber.Ctx, status int, id int, form models.ProductoForm, errMsg string) error {
	titulo := "Agregar Producto"
	accion := "/inventory"
	if id != 0 {
		titulo = "Editar Producto"
		accion = "/inventory/" + strconv.Itoa(id)
	}
	datos := h.datos(c, titulo, "inventario")
	datos["Form"] = form
	datos["Accion"] = accion
	datos["Error"] = errMsg
	return h.render(c, status, "paginas/producto_form", datos)
}

// NuevoProducto muestra el formulario vacío
func (h *Handler) NuevoProducto(c *fiber.Ctx) error {
	return h.renderProductoForm(c, fiber.StatusOK, 0, models.ProductoForm{}, "")
}

// EditarProducto muestra el formulario con el producto cargado
func (h *Handler) EditarProducto(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/inventory", FlashError, "Producto no encontrado")
	}
	productos, err := h.backend.ListarProductos(c.UserContext())
	if err != nil {
		return h.redirigir(c, "/inventory", FlashError, h.errorBackend(c, err, "cargar producto", "Error al cargar los productos"))
	}
	p, ok := services.BuscarProducto(productos, id)
	if !ok {
		return h.redirigir(c, "/inventory", FlashError, "Producto no encontrado")
	}
	form := models.ProductoForm{
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Cantidad:    strconv.Itoa(p.Cantidad),
		PrecioUnit:  strconv.FormatFloat(p.PrecioUnit, 'f', -1, 64),
	}
	return h.renderProductoForm(c, fiber.StatusOK, id, form, "")
}

// CrearProducto agrega un producto al inventario
func (h *Handler) CrearProducto(c *fiber.Ctx) error {
	return h.guardarProducto(c, 0)
}

// ActualizarProducto guarda los cambios de un producto
func (h *Handler) ActualizarProducto(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/inventory", FlashError, "Producto no encontrado")
	}
	return h.guardarProducto(c, id)
}

func (h *Handler) guardarProducto(c *fiber.Ctx, id int) error {
	var form models.ProductoForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderProductoForm(c, fiber.StatusBadRequest, id, form, "Error al guardar el producto")
	}
	producto, err := services.ProductoDesdeFormulario(form, id)
	if err != nil {
		return h.renderProductoForm(c, fiber.StatusUnprocessableEntity, id, form, err.Error())
	}

	if id == 0 {
		err = h.backend.CrearProducto(c.UserContext(), producto)
	} else {
		err = h.backend.ActualizarProducto(c.UserContext(), producto)
	}
	if err != nil {
		msg := h.errorBackend(c, err, "guardar producto", "Error al guardar el producto")
		return h.renderProductoForm(c, fiber.StatusBadGateway, id, form, msg)
	}

	if id == 0 {
		h.evento(c, "producto agregado", map[string]interface{}{"nombre": producto.Nombre})
		return h.redirigir(c, "/inventory", FlashExito, "Producto agregado correctamente")
	}
	h.evento(c, "producto actualizado", map[string]interface{}{"producto_id": id})
	return h.redirigir(c, "/inventory", FlashExito, "Producto actualizado correctamente")
}

// EliminarProducto elimina el producto indicado
func (h *Handler) EliminarProducto(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.redirigir(c, "/inventory", FlashError, "Producto no encontrado")
	}
	if err := h.backend.EliminarProducto(c.UserContext(), id); err != nil {
		return h.redirigir(c, "/inventory", FlashError, h.errorBackend(c, err, "eliminar producto", "Error al eliminar el producto"))
	}
	h.evento(c, "producto eliminado", map[string]interface{}{"producto_id": id})
	return h.redirigir(c, "/inventory", FlashExito, "Producto eliminado correctamente")
}
