package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lizet96/clinisys/models"
)

var (
	ErrProductoSinNombre = errors.New("El nombre del producto es obligatorio.")
	ErrCantidadInvalida  = errors.New("La cantidad debe ser un número entero no negativo.")
	ErrPrecioInvalido    = errors.New("El precio unitario debe ser un número no negativo.")
)

// FiltrarProductos busca el término en nombre o descripción. Sin término
// retorna todos los productos.
func FiltrarProductos(productos []models.Producto, termino string) []models.Producto {
	termino = strings.ToLower(strings.TrimSpace(termino))
	if termino == "" {
		return productos
	}
	filtrados := make([]models.Producto, 0, len(productos))
	for _, p := range productos {
		if strings.Contains(strings.ToLower(p.Nombre), termino) ||
			strings.Contains(strings.ToLower(p.Descripcion), termino) {
			filtrados = append(filtrados, p)
		}
	}
	return filtrados
}

// ProductoDesdeFormulario valida y convierte el formulario en un producto
func ProductoDesdeFormulario(f models.ProductoForm, id int) (models.Producto, error) {
	p := models.Producto{
		ID:          id,
		Nombre:      strings.TrimSpace(f.Nombre),
		Descripcion: strings.TrimSpace(f.Descripcion),
	}
	if p.Nombre == "" {
		return p, ErrProductoSinNombre
	}

	cantidad, err := strconv.Atoi(strings.TrimSpace(f.Cantidad))
	if err != nil || cantidad < 0 {
		return p, ErrCantidadInvalida
	}
	p.Cantidad = cantidad

	precio, err := strconv.ParseFloat(strings.TrimSpace(f.PrecioUnit), 64)
	if err != nil || precio < 0 {
		return p, ErrPrecioInvalido
	}
	p.PrecioUnit = precio
	return p, nil
}

// BuscarProducto retorna el producto con el ID indicado
func BuscarProducto(productos []models.Producto, id int) (models.Producto, bool) {
	for _, p := range productos {
		if p.ID == id {
			return p, true
		}
	}
	return models.Producto{}, false
}
