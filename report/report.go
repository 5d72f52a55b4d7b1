// Package report serializes a finished wizard session into a PDF document.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"pcosadvisor/advisor"
	"pcosadvisor/wizard"
)

// Build writes the health summary PDF: patient name, risk probability, BMI,
// the weekly exercise plan and the weekly meal plan. It only serializes the
// session; a failure leaves the session untouched so the export can be
// retried.
func Build(w io.Writer, s *wizard.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	if s.Prediction == nil {
		return errors.New("session has no prediction")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("PCOS Health Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "PCOS Health Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Patient Name: %s", s.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Risk Probability: %.2f%%", s.Prediction.Probability), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("BMI: %.2f", s.Prediction.BMI), "", 1, "L", false, 0, "")

	risk := "Low PCOS Risk"
	if s.Prediction.Label == 1 {
		risk = "High PCOS Risk"
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Assessment: %s", risk), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(s.Exercise) > 0 {
		writeHeading(pdf, "Weekly Exercise Plan")
		pdf.SetFont("Helvetica", "", 10)
		for _, entry := range s.Exercise {
			line := fmt.Sprintf("%s: [%s] %s", entry.Day, entry.Category, entry.Activity)
			pdf.MultiCell(0, 6, line, "", "L", false)
		}
		pdf.Ln(4)
	}

	if len(s.Meals) > 0 {
		writeHeading(pdf, "Weekly Meal Plan")
		for i, meals := range s.Meals {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, advisor.Days[i], "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			for _, mealType := range advisor.MealTypes {
				line := fmt.Sprintf("  %s: %s", mealType, meals[mealType])
				pdf.MultiCell(0, 6, line, "", "L", false)
			}
			pdf.Ln(1)
		}
	}

	return pdf.Output(w)
}

func writeHeading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}
