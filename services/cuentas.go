package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/lizet96/clinisys/apiclient"
	"github.com/lizet96/clinisys/models"
)

var (
	ErrCamposIncompletos       = errors.New("Por favor, complete todos los campos correctamente.")
	ErrContrasenasNoCoinciden  = errors.New("Las contraseñas no coinciden. Por favor, verifícalas.")
	ErrCredencialesIncompletas = errors.New("Por favor, ingrese su nombre de usuario y contraseña.")
	ErrCredencialesInvalidas   = errors.New("Usuario o contraseña incorrectos.")
	ErrCodigoRequerido         = errors.New("Ingrese el código de verificación de su aplicación autenticadora.")
	ErrCodigoInvalido          = errors.New("El código de verificación no es válido.")
)

// ValidarRegistro revisa que todos los campos estén completos y que las
// contraseñas coincidan
func ValidarRegistro(r models.RegistroRequest) error {
	if r.NombreUsuario == "" || r.Contrasena == "" || r.ConfirmarContrasena == "" || r.Correo == "" {
		return ErrCamposIncompletos
	}
	if r.Contrasena != r.ConfirmarContrasena {
		return ErrContrasenasNoCoinciden
	}
	return nil
}

// ValidarCredenciales revisa que usuario y contraseña no estén vacíos
func ValidarCredenciales(l models.LoginRequest) error {
	if strings.TrimSpace(l.NombreUsuario) == "" || l.Contrasena == "" {
		return ErrCredencialesIncompletas
	}
	return nil
}

// LoginBackend es la parte del backend que autentica usuarios
type LoginBackend interface {
	IniciarSesion(ctx context.Context, u models.UsuarioBackend) (*models.UsuarioResponse, error)
}

// Identidad es el resultado de una autenticación exitosa
type Identidad struct {
	Usuario   string
	Origen    string
	IDBackend int
}

// Autenticador valida credenciales contra el operador local y el backend
type Autenticador struct {
	backend      LoginBackend
	operador     string
	hashOperador []byte
	secretoTOTP  string
	ahora        func() time.Time
}

// NewAutenticador construye el autenticador. operador/hash y secretoTOTP son
// opcionales.
func NewAutenticador(backend LoginBackend, operador, hash, secretoTOTP string) *Autenticador {
	return &Autenticador{
		backend:      backend,
		operador:     operador,
		hashOperador: []byte(hash),
		secretoTOTP:  secretoTOTP,
		ahora:        time.Now,
	}
}

// RequiereCodigo indica si el inicio de sesión pide código TOTP
func (a *Autenticador) RequiereCodigo() bool {
	return a.secretoTOTP != ""
}

// Autenticar valida usuario y contraseña y, si está configurado, el código TOTP
func (a *Autenticador) Autenticar(ctx context.Context, l models.LoginRequest) (*Identidad, error) {
	if err := ValidarCredenciales(l); err != nil {
		return nil, err
	}
	usuario := strings.TrimSpace(l.NombreUsuario)

	identidad, err := a.verificarContrasena(ctx, usuario, l.Contrasena)
	if err != nil {
		return nil, err
	}

	if a.RequiereCodigo() {
		codigo := strings.TrimSpace(l.Codigo)
		if codigo == "" {
			return nil, ErrCodigoRequerido
		}
		ok, err := totp.ValidateCustom(codigo, a.secretoTOTP, a.ahora().UTC(), totp.ValidateOpts{
			Period:    30,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil || !ok {
			return nil, ErrCodigoInvalido
		}
	}
	return identidad, nil
}

func (a *Autenticador) verificarContrasena(ctx context.Context, usuario, contrasena string) (*Identidad, error) {
	if a.operador != "" && usuario == a.operador && len(a.hashOperador) > 0 {
		if err := bcrypt.CompareHashAndPassword(a.hashOperador, []byte(contrasena)); err != nil {
			return nil, ErrCredencialesInvalidas
		}
		return &Identidad{Usuario: usuario, Origen: models.OrigenOperador}, nil
	}

	if a.backend == nil {
		return nil, ErrCredencialesInvalidas
	}
	resp, err := a.backend.IniciarSesion(ctx, models.UsuarioBackend{NombreUsuario: usuario, Contrasena: contrasena})
	if err != nil {
		// cualquier 4xx es rechazo de credenciales
		if code := apiclient.StatusCode(err); code >= http.StatusBadRequest && code < http.StatusInternalServerError {
			return nil, ErrCredencialesInvalidas
		}
		if errors.Is(err, apiclient.ErrRespuestaNoOK) {
			return nil, ErrCredencialesInvalidas
		}
		return nil, fmt.Errorf("autenticar %s: %w", usuario, err)
	}
	return &Identidad{Usuario: resp.NombreUsuario, Origen: models.OrigenBackend, IDBackend: resp.ID}, nil
}

// HashContrasena genera el hash bcrypt para ADMIN_PASSWORD_HASH
func HashContrasena(contrasena string) (string, error) {
	if contrasena == "" {
		return "", ErrCamposIncompletos
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(contrasena), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("generar hash: %w", err)
	}
	return string(hash), nil
}

// GenerarSecretoTOTP crea un secreto TOTP para ADMIN_TOTP_SECRET
func GenerarSecretoTOTP(cuenta string) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "CLINISYS",
		AccountName: cuenta,
	})
	if err != nil {
		return nil, fmt.Errorf("generar secreto TOTP: %w", err)
	}
	return &models.TOTPSetupResponse{Secret: key.Secret(), QRCodeURL: key.URL()}, nil
}
