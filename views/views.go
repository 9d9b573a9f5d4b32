package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lizet96/clinisys/services"
)

//go:embed layouts partials paginas
var FS embed.FS

var impresora = message.NewPrinter(language.AmericanEnglish)

// NewEngine crea el motor de plantillas sobre las vistas embebidas.
// Las vistas se nombran por ruta sin extensión: "paginas/citas".
func NewEngine(reload bool) *html.Engine {
	engine := html.NewFileSystem(http.FS(FS), ".html")
	engine.Reload(reload)
	engine.AddFunc("moneda", Moneda)
	engine.AddFunc("fecha", services.FechaLegible)
	engine.AddFunc("sumar", func(a, b int) int { return a + b })
	return engine
}

// Moneda formatea un importe con dos decimales y separador de miles
func Moneda(v float64) string {
	signo := ""
	if v < 0 {
		signo = "-"
		v = -v
	}
	return signo + "$" + impresora.Sprintf("%.2f", v)
}
