package models

// Producto representa un artículo del inventario
type Producto struct {
	ID          int     `json:"id,omitempty"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Cantidad    int     `json:"cantidad"`
	PrecioUnit  float64 `json:"precioUnit"`
}

// ProductoForm representa el formulario del producto; cantidad y precio
// llegan como texto y se convierten en services
type ProductoForm struct {
	Nombre      string `form:"nombre"`
	Descripcion string `form:"descripcion"`
	Cantidad    string `form:"cantidad"`
	PrecioUnit  string `form:"precioUnit"`
}
