package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lizet96/clinisys/models"
)

// --- PACIENTES ---

// ListarPacientes obtiene todos los pacientes
func (c *Client) ListarPacientes(ctx context.Context) ([]models.Paciente, error) {
	var pacientes []models.Paciente
	if err := c.do(ctx, "paciente", http.MethodGet, "/paciente", nil, &pacientes); err != nil {
		return nil, fmt.Errorf("listar pacientes: %w", err)
	}
	return pacientes, nil
}

// CrearPaciente registra un paciente y retorna el creado por el backend
func (c *Client) CrearPaciente(ctx context.Context, p models.Paciente) (*models.Paciente, error) {
	p.ID = 0
	var creado models.Paciente
	if err := c.do(ctx, "paciente", http.MethodPost, "/paciente", p, &creado); err != nil {
		return nil, fmt.Errorf("crear paciente: %w", err)
	}
	return &creado, nil
}

// ActualizarPaciente envía el paciente completo (con id) al backend
func (c *Client) ActualizarPaciente(ctx context.Context, p models.Paciente) (*models.Paciente, error) {
	var actualizado models.Paciente
	if err := c.do(ctx, "paciente", http.MethodPut, "/paciente", p, &actualizado); err != nil {
		return nil, fmt.Errorf("actualizar paciente %d: %w", p.ID, err)
	}
	return &actualizado, nil
}

// EliminarPaciente elimina un paciente por ID
func (c *Client) EliminarPaciente(ctx context.Context, id int) error {
	if err := c.do(ctx, "paciente", http.MethodDelete, fmt.Sprintf("/paciente/%d", id), nil, nil); err != nil {
		return fmt.Errorf("eliminar paciente %d: %w", id, err)
	}
	return nil
}

// --- HISTORIAS CLÍNICAS ---

// ListarHistorias obtiene las historias clínicas de un paciente
func (c *Client) ListarHistorias(ctx context.Context, pacienteID int) ([]models.HistoriaClinica, error) {
	var historias []models.HistoriaClinica
	path := fmt.Sprintf("/historia-clinica/paciente/%d", pacienteID)
	if err := c.do(ctx, "historia-clinica", http.MethodGet, path, nil, &historias); err != nil {
		return nil, fmt.Errorf("listar historias del paciente %d: %w", pacienteID, err)
	}
	return historias, nil
}

// CrearHistoria agrega una historia clínica al paciente indicado
func (c *Client) CrearHistoria(ctx context.Context, pacienteID int, h models.HistoriaClinica) (*models.HistoriaClinica, error) {
	h.ID = 0
	h.Paciente = &models.ReferenciaPaciente{ID: pacienteID}
	var creada models.HistoriaClinica
	if err := c.do(ctx, "historia-clinica", http.MethodPost, "/historia-clinica", h, &creada); err != nil {
		return nil, fmt.Errorf("crear historia: %w", err)
	}
	return &creada, nil
}

// ActualizarHistoria envía la historia completa (con id) al backend
func (c *Client) ActualizarHistoria(ctx context.Context, pacienteID int, h models.HistoriaClinica) (*models.HistoriaClinica, error) {
	h.Paciente = &models.ReferenciaPaciente{ID: pacienteID}
	var actualizada models.HistoriaClinica
	if err := c.do(ctx, "historia-clinica", http.MethodPut, "/historia-clinica", h, &actualizada); err != nil {
		return nil, fmt.Errorf("actualizar historia %d: %w", h.ID, err)
	}
	return &actualizada, nil
}

// EliminarHistoria elimina una historia clínica por ID
func (c *Client) EliminarHistoria(ctx context.Context, id int) error {
	if err := c.do(ctx, "historia-clinica", http.MethodDelete, fmt.Sprintf("/historia-clinica/%d", id), nil, nil); err != nil {
		return fmt.Errorf("eliminar historia %d: %w", id, err)
	}
	return nil
}

// --- INVENTARIO ---

// ListarProductos obtiene el inventario
func (c *Client) ListarProductos(ctx context.Context) ([]models.Producto, error) {
	var productos []models.Producto
	if err := c.do(ctx, "inventario", http.MethodGet, "/inventario", nil, &productos); err != nil {
		return nil, fmt.Errorf("listar inventario: %w", err)
	}
	return productos, nil
}

// CrearProducto agrega un producto al inventario
func (c *Client) CrearProducto(ctx context.Context, p models.Producto) error {
	p.ID = 0
	if err := c.do(ctx, "inventario", http.MethodPost, "/inventario", p, nil); err != nil {
		return fmt.Errorf("crear producto: %w", err)
	}
	return nil
}

// ActualizarProducto envía el producto completo (con id) al backend
func (c *Client) ActualizarProducto(ctx context.Context, p models.Producto) error {
	if err := c.do(ctx, "inventario", http.MethodPut, "/inventario", p, nil); err != nil {
		return fmt.Errorf("actualizar producto %d: %w", p.ID, err)
	}
	return nil
}

// EliminarProducto elimina un producto; solo HTTP 200 confirma la eliminación
func (c *Client) EliminarProducto(ctx context.Context, id int) error {
	if err := c.doExacto(ctx, "inventario", http.MethodDelete, fmt.Sprintf("/inventario/%d", id), http.StatusOK); err != nil {
		return fmt.Errorf("eliminar producto %d: %w", id, err)
	}
	return nil
}

// --- CITAS ---

// ListarCitas obtiene todas las citas
func (c *Client) ListarCitas(ctx context.Context) ([]models.Cita, error) {
	var citas []models.Cita
	if err := c.do(ctx, "cita", http.MethodGet, "/cita", nil, &citas); err != nil {
		return nil, fmt.Errorf("listar citas: %w", err)
	}
	return citas, nil
}

// CrearCita agenda una cita; el ID lo asigna el backend
func (c *Client) CrearCita(ctx context.Context, cita models.Cita) error {
	cita.ID = 0
	if err := c.do(ctx, "cita", http.MethodPost, "/cita", cita, nil); err != nil {
		return fmt.Errorf("crear cita: %w", err)
	}
	return nil
}

// ActualizarCita envía la cita completa (con id) al backend
func (c *Client) ActualizarCita(ctx context.Context, cita models.Cita) error {
	if err := c.do(ctx, "cita", http.MethodPut, "/cita", cita, nil); err != nil {
		return fmt.Errorf("actualizar cita %d: %w", cita.ID, err)
	}
	return nil
}

// EliminarCita elimina una cita por ID
func (c *Client) EliminarCita(ctx context.Context, id int) error {
	if err := c.do(ctx, "cita", http.MethodDelete, fmt.Sprintf("/cita/%d", id), nil, nil); err != nil {
		return fmt.Errorf("eliminar cita %d: %w", id, err)
	}
	return nil
}

// --- USUARIOS ---

// RegistrarUsuario crea un usuario en el backend (sin correo)
func (c *Client) RegistrarUsuario(ctx context.Context, u models.UsuarioBackend) error {
	if err := c.do(ctx, "usuario", http.MethodPost, "/usuario", u, nil); err != nil {
		return fmt.Errorf("registrar usuario: %w", err)
	}
	return nil
}

// IniciarSesion valida credenciales contra el backend. Un 2xx con status OK
// es éxito aunque data falte o no sea un objeto.
func (c *Client) IniciarSesion(ctx context.Context, u models.UsuarioBackend) (*models.UsuarioResponse, error) {
	var data json.RawMessage
	err := c.do(ctx, "usuario", http.MethodPost, "/usuario/login", u, &data)
	if err != nil && !errors.Is(err, ErrFormatoInvalido) {
		return nil, fmt.Errorf("iniciar sesión: %w", err)
	}

	var usuario models.UsuarioResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &usuario); err != nil {
			usuario = models.UsuarioResponse{}
		}
	}
	if usuario.NombreUsuario == "" {
		usuario.NombreUsuario = u.NombreUsuario
	}
	return &usuario, nil
}

// --- FINANZAS ---

// ListarVentas obtiene los servicios facturados
func (c *Client) ListarVentas(ctx context.Context) ([]models.Venta, error) {
	var ventas []models.Venta
	if err := c.do(ctx, "factura", http.MethodGet, "/factura", nil, &ventas); err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}
	return ventas, nil
}

// ListarCompras obtiene las compras a proveedores
func (c *Client) ListarCompras(ctx context.Context) ([]models.Compra, error) {
	var compras []models.Compra
	if err := c.do(ctx, "compra", http.MethodGet, "/compra", nil, &compras); err != nil {
		return nil, fmt.Errorf("listar compras: %w", err)
	}
	return compras, nil
}

// Ping comprueba que el backend responde
func (c *Client) Ping(ctx context.Context) error {
	if err := c.do(ctx, "paciente", http.MethodGet, "/paciente", nil, nil); err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	return nil
}
