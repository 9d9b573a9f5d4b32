package models

import (
	"time"
)

// RegistroRequest representa el formulario de registro de usuario
type RegistroRequest struct {
	Correo              string `form:"correo"`
	NombreUsuario       string `form:"nombreUsuario"`
	Contrasena          string `form:"contrasena"`
	ConfirmarContrasena string `form:"confirmarContrasena"`
}

// UsuarioBackend es el cuerpo enviado a POST /usuario y /usuario/login.
// El correo no se envía al backend.
type UsuarioBackend struct {
	NombreUsuario string `json:"nombreUsuario"`
	Contrasena    string `json:"contrasena"`
}

// UsuarioResponse representa el usuario devuelto por el backend sin datos sensibles
type UsuarioResponse struct {
	ID            int    `json:"id"`
	NombreUsuario string `json:"nombreUsuario"`
}

// LoginRequest representa el formulario de inicio de sesión
type LoginRequest struct {
	NombreUsuario string `form:"nombreUsuario"`
	Contrasena    string `form:"contrasena"`
	Codigo        string `form:"codigo"`
	Recordarme    string `form:"recordarme"`
}

// Recordar indica si se marcó la casilla "Recordarme"
func (l LoginRequest) Recordar() bool {
	return l.Recordarme == "on" || l.Recordarme == "true" || l.Recordarme == "1"
}

// Origen de la identidad de una sesión
const (
	OrigenBackend  = "backend"
	OrigenOperador = "operador"
)

// Sesion representa una sesión autenticada de la consola
type Sesion struct {
	ID          string    `json:"id"`
	Usuario     string    `json:"usuario"`
	Origen      string    `json:"origen"`
	Recordar    bool      `json:"recordar"`
	CreadaEn    time.Time `json:"creada_en"`
	ExpiraEn    time.Time `json:"expira_en"`
	IDBackend   int       `json:"id_backend,omitempty"`
	DireccionIP string    `json:"ip,omitempty"`
}

// TOTPSetupResponse representa un secreto TOTP recién generado
type TOTPSetupResponse struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qr_code_url"`
}
