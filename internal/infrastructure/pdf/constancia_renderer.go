// Package pdf implementa la versión imprimible de una constancia aprobada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Institución + Oficina │ N° Constancia + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TÍTULO: CONSTANCIA DE <TIPO>                                │
//	│  CUERPO: estudiante, código, DNI, finalidad                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMA: aprobado por + fecha de aprobación                   │
//	│  FOOTER: QR de verificación + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 90, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const (
	institutionName = "UNIVERSIDAD NACIONAL AMAZÓNICA DE MADRE DE DIOS"
	officeName      = "Oficina de Registro y Asuntos Académicos"
)

var _ ports.ConstanciaRenderer = (*MarotoConstanciaRenderer)(nil)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoConstanciaRenderer implementa ports.ConstanciaRenderer usando Maroto v2.
type MarotoConstanciaRenderer struct {
	verifyURL string // base pública para el QR; vacío = el QR lleva solo el código
}

// NewMarotoConstanciaRenderer construye el renderer.
func NewMarotoConstanciaRenderer(verifyURL string) *MarotoConstanciaRenderer {
	return &MarotoConstanciaRenderer{verifyURL: strings.TrimRight(verifyURL, "/")}
}

// RenderConstancia genera el PDF y devuelve sus bytes.
func (g *MarotoConstanciaRenderer) RenderConstancia(c *entity.Constancia, approverName string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("pdf: constancia nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Constancia "+c.Code, true).
		WithAuthor(institutionName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(c))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(8))
	m.AddRows(titleRow(c))
	m.AddRows(bodyRows(c)...)
	m.AddRows(row.New(12))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(signatureRow(c, approverName))
	m.AddRows(row.New(6))
	m.AddRows(footerRow(c, g.verificationData(c)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoConstanciaRenderer) verificationData(c *entity.Constancia) string {
	if g.verifyURL == "" {
		return c.Code
	}
	return g.verifyURL + "?code=" + c.Code
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(c *entity.Constancia) core.Row {
	return row.New(20).Add(
		col.New(8).Add(
			text.New(institutionName, props.Text{
				Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 1,
			}),
			text.New(officeName, props.Text{Size: 9, Top: 10, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("N° "+c.Code, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Emitida: "+c.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func titleRow(c *entity.Constancia) core.Row {
	title := "CONSTANCIA"
	if t := strings.TrimSpace(c.Type); t != "" {
		title += " DE " + strings.ToUpper(t)
	}
	return row.New(14).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 15, Align: align.Center, Color: colorPrimary,
		}),
	))
}

func bodyRows(c *entity.Constancia) []core.Row {
	paragraph := fmt.Sprintf(
		"La Oficina de Registro y Asuntos Académicos hace constar que %s, identificado(a) con DNI N° %s "+
			"y código de estudiante %s, figura en los registros académicos de esta casa de estudios.",
		nonEmpty(c.StudentName, "—"), nonEmpty(c.StudentDNI, "—"), nonEmpty(c.StudentCode, "—"),
	)
	rows := []core.Row{
		row.New(24).Add(col.New(12).Add(
			text.New(paragraph, props.Text{Size: 11, Align: align.Left, Top: 2}),
		)),
	}
	if p := strings.TrimSpace(c.Purpose); p != "" {
		rows = append(rows, row.New(14).Add(col.New(12).Add(
			text.New("Se expide la presente a solicitud del interesado para: "+p+".", props.Text{
				Size: 11, Align: align.Left, Top: 2,
			}),
		)))
	}
	return rows
}

func signatureRow(c *entity.Constancia, approverName string) core.Row {
	approvedAt := "—"
	if c.ApprovedAt != nil {
		approvedAt = c.ApprovedAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(3),
		col.New(6).Add(
			text.New(nonEmpty(approverName, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 2,
			}),
			text.New("Aprobado el "+approvedAt, props.Text{
				Size: 8, Align: align.Center, Top: 9, Color: colorGray,
			}),
		),
		col.New(3),
	)
}

func footerRow(c *entity.Constancia, qrData string) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qrData, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Escanee el código QR para verificar la autenticidad de esta constancia.", props.Text{
				Size: 8, Top: 6, Left: 3, Color: colorGray,
			}),
			text.New("Código de verificación: "+c.Code, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 16, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
