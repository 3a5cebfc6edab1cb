// Package ticket renders completed reservations as printable PDF
// tickets.  The ticket is an A6 card with the movie, showtime, hall and
// seat details plus a QR code carrying the same data for gate scanning.
package ticket

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/cinema-ticket-sales/internal/repository"
)

// ErrIncomplete is returned when the reservation detail is missing the
// nested showtime, movie or hall needed to render a ticket.
var ErrIncomplete = errors.New("ticket: reservation detail is missing showtime data")

// Generate renders the reservation as a PDF and returns the raw bytes.
// The caller is responsible for checking the payment status first.
func Generate(det *repository.ReservationDetail) ([]byte, error) {
	if det == nil || det.Showtime == nil || det.Showtime.Movie == nil || det.Showtime.Hall == nil {
		return nil, ErrIncomplete
	}

	dateStr := det.Showtime.StartTime.Format("2 January 2006")
	timeStr := det.Showtime.StartTime.Format("15:04")

	seatParts := make([]string, 0, len(det.Seats))
	for _, s := range det.Seats {
		seatParts = append(seatParts, fmt.Sprintf("Row %d / Seat %d", s.Row, s.Number))
	}
	seatInfo := strings.Join(seatParts, ", ")

	// A6 card, 105x148 mm.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 105, Ht: 148},
	})
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "CINEMA TICKET", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 6, det.Showtime.Movie.Title, "", "C", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Date: "+dateStr, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Time: "+timeStr, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Hall: "+det.Showtime.Hall.Name, "", 1, "C", false, 0, "")
	pdf.MultiCell(0, 5, "Seats: "+seatInfo, "", "C", false)
	pdf.Ln(4)

	qrData := fmt.Sprintf("ID:%d\nMovie:%s\nDate:%s\nTime:%s\nHall:%s\nSeats:%s",
		det.ID, det.Showtime.Movie.Title, dateStr, timeStr, det.Showtime.Hall.Name, seatInfo)
	png, err := qrcode.Encode(qrData, qrcode.Low, 256)
	if err != nil {
		return nil, fmt.Errorf("ticket: encode qr: %w", err)
	}

	const qrSize = 38.0
	pageW, _ := pdf.GetPageSize()
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("ticket-qr", (pageW-qrSize)/2, pdf.GetY(), qrSize, qrSize, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("ticket: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
