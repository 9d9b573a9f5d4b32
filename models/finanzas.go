package models

// Venta representa un servicio facturado a un paciente
type Venta struct {
	ID       int     `json:"id"`
	Paciente string  `json:"paciente"`
	Fecha    string  `json:"fecha"`
	Servicio string  `json:"servicio"`
	Total    float64 `json:"total"`
}

// Compra representa una compra hecha a un proveedor
type Compra struct {
	ID           int     `json:"id"`
	Proveedor    string  `json:"proveedor"`
	Fecha        string  `json:"fecha"`
	TipoServicio string  `json:"tipoServicio"`
	Total        float64 `json:"total"`
}

// InformeFinanciero agrupa compras y ventas de un rango de fechas
type InformeFinanciero struct {
	Inicio       string   `json:"inicio"`
	Fin          string   `json:"fin"`
	Compras      []Compra `json:"compras"`
	Ventas       []Venta  `json:"ventas"`
	TotalCompras float64  `json:"total_compras"`
	TotalVentas  float64  `json:"total_ventas"`
	Balance      float64  `json:"balance"`
}
