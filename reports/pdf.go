package reports

import (
	"bytes"
	"fmt"
	"net/http"

	"roadsafe/db"
	"roadsafe/models"
	"roadsafe/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExportReportPDF renders a report as a printable PDF. When the report
// carries coordinates, a QR code linking to the incident location is
// embedded.
func ExportReportPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	objID, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid report ID")
		return
	}

	var report models.Report
	err = db.ReportsCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "RoadSafe Incident Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.MultiCell(0, 8, report.Title, "", "L", false)
	pdf.Ln(2)

	meta := fmt.Sprintf("Reported by: %s\nLocation: %s\nSubmitted: %s",
		report.User, report.Location, report.CreatedAt.Format("02 Jan 2006 15:04"))
	if report.Lat != nil && report.Lon != nil {
		meta += fmt.Sprintf("\nCoordinates: %.5f, %.5f", *report.Lat, *report.Lon)
	}
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 7, meta, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 7, report.Description, "", "L", false)

	if report.Lat != nil && report.Lon != nil {
		mapURL := fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f", *report.Lat, *report.Lon)
		if qrCode, qerr := qrcode.Encode(mapURL, qrcode.Medium, 128); qerr == nil {
			imgOpts := gofpdf.ImageOptions{ImageType: "png"}
			pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrCode))
			pdf.ImageOptions("qr", 150, 230, 40, 40, false, imgOpts, 0, "")
		}
	}

	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 8, "Generated by RoadSafe. Scan the code to open the incident location.", "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=report-"+report.ID.Hex()+".pdf")
	w.Write(buf.Bytes())
}
