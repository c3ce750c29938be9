package consent

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const pngDataPrefix = "data:image/png;base64,"

var ErrInvalidSignature = errors.New("signature must be a base64 PNG data URL")

// Document is everything printed on the consent form.
type Document struct {
	ClinicName       string
	PatientName      string
	DoctorEmail      string
	Date             time.Time
	Treatment        string
	Duration         string
	TotalCost        float64
	MonthlyPayment   float64
	PatientSignature []byte
	DoctorSignature  []byte
}

type termsSection struct {
	title string
	body  string
}

var terms = []termsSection{
	{"Riesgos y limitaciones", "El tratamiento de ortodoncia tiene riesgos y limitaciones que el paciente declara conocer. Rara vez impiden el tratamiento, pero deben considerarse al decidir iniciarlo."},
	{"Resultados del tratamiento", "Los resultados dependen de la cooperación del paciente, de su crecimiento y de factores biológicos. No es posible garantizar un resultado concreto."},
	{"Duración del tratamiento", "La duración indicada es una estimación. Puede prolongarse por crecimiento no previsto, mala higiene, citas perdidas o aparatos dañados."},
	{"Descalcificación y caries", "Una higiene deficiente durante el tratamiento puede causar manchas permanentes, caries o inflamación de las encías."},
	{"Reincidencia", "Los dientes tienden a volver a su posición original. El uso de retenedores según las indicaciones reduce este riesgo."},
	{"Reconocimiento", "El paciente, o su tutor, declara haber leído y comprendido este documento y haber recibido respuesta a sus preguntas."},
	{"Consentimiento", "Se autoriza al doctor a realizar el tratamiento descrito y a usar los registros clínicos con fines de diagnóstico y tratamiento."},
}

// DecodeSignature extracts the PNG bytes of a data URL.
func DecodeSignature(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, pngDataPrefix) {
		return nil, ErrInvalidSignature
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, pngDataPrefix))
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidSignature
	}
	return data, nil
}

// RenderPDF lays out the consent form: details and signatures on the first
// page, terms and conditions after.
func RenderPDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentWidth := pageWidth - left - right

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentWidth, 10, tr(doc.ClinicName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentWidth, 10, tr("Consentimiento Informado - Tratamiento de Ortodoncia"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(contentWidth, 7, tr("Fecha: "+doc.Date.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentWidth, 7, tr("Paciente: "+doc.PatientName), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentWidth, 7, "DETALLES DEL TRATAMIENTO", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		"Tratamiento: " + doc.Treatment,
		"Duración estimada: " + doc.Duration,
		fmt.Sprintf("Costo total: $%.2f", doc.TotalCost),
		fmt.Sprintf("Pago mensual: $%.2f", doc.MonthlyPayment),
	} {
		pdf.CellFormat(contentWidth, 7, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	const sigWidth, sigHeight = 70.0, 30.0
	y := pdf.GetY()
	rightX := pageWidth - right - sigWidth
	if err := placeSignature(pdf, "patient-signature", doc.PatientSignature, left, y, sigWidth, sigHeight); err != nil {
		return nil, err
	}
	if err := placeSignature(pdf, "doctor-signature", doc.DoctorSignature, rightX, y, sigWidth, sigHeight); err != nil {
		return nil, err
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(left, y+sigHeight+2)
	pdf.CellFormat(sigWidth, 5, "Firma del Paciente o Tutor", "T", 0, "C", false, 0, "")
	pdf.SetX(rightX)
	pdf.CellFormat(sigWidth, 5, "Firma del Doctor", "T", 1, "C", false, 0, "")
	pdf.SetX(left)
	pdf.CellFormat(sigWidth, 5, tr(doc.PatientName), "", 0, "C", false, 0, "")
	pdf.SetX(rightX)
	pdf.CellFormat(sigWidth, 5, tr(doc.DoctorEmail), "", 1, "C", false, 0, "")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentWidth, 8, tr("TÉRMINOS Y CONDICIONES"), "", 1, "L", false, 0, "")
	for _, section := range terms {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(contentWidth, 5, tr(section.title), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(contentWidth, 5, tr(section.body), "", "J", false)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build consent pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write consent pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func placeSignature(pdf *fpdf.Fpdf, name string, png []byte, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}
