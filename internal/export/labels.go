package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tracefinity/tracebin/internal/model"
)

// PartLabelInfo holds the data encoded into each printed part label's QR
// code: which bin the part belongs to, its index in the print order, and
// its dimensions.
type PartLabelInfo struct {
	Bin       string  `json:"bin"`
	PartIndex int     `json:"part"`
	PartCount int     `json:"of"`
	Width     float64 `json:"width_mm"`
	Depth     float64 `json:"depth_mm"`
	Height    float64 `json:"height_mm"`
	Hash      string  `json:"hash,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10
// rows per page). Each label cell is approximately 66.7mm x 25.4mm on US
// Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectPartLabels builds one label per part of a generated artifact.
func CollectPartLabels(binName string, art model.GeneratedArtifact) []PartLabelInfo {
	hash := art.Hash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	labels := make([]PartLabelInfo, 0, len(art.Parts))
	for _, p := range art.Parts {
		labels = append(labels, PartLabelInfo{
			Bin:       binName,
			PartIndex: p.Index,
			PartCount: art.PartCount,
			Width:     p.Size.Width,
			Depth:     p.Size.Depth,
			Height:    p.Size.Height,
			Hash:      hash,
		})
	}
	return labels
}

// LabelsPDF renders QR-coded part labels onto a standard label sheet and
// returns the PDF bytes.
func LabelsPDF(labels []PartLabelInfo) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no parts to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight
		if err := renderLabel(pdf, x, y, label); err != nil {
			return nil, fmt.Errorf("render label for part %d: %w", label.PartIndex, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportLabels writes the label sheet PDF to a file.
func ExportLabels(path string, labels []PartLabelInfo) error {
	data, err := LabelsPDF(labels)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info PartLabelInfo) error {
	// Light border as a cutting guide.
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.Bin, info.PartIndex)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	title := info.Bin
	if pdf.GetStringWidth(title) > textW {
		for len(title) > 0 && pdf.GetStringWidth(title+"...") > textW {
			title = title[:len(title)-1]
		}
		title += "..."
	}
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f x %.0f x %.0f mm", info.Width, info.Depth, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	partInfo := fmt.Sprintf("Part %d of %d", info.PartIndex, info.PartCount)
	pdf.CellFormat(textW, 3, partInfo, "", 1, "L", false, 0, "")

	if info.Hash != "" {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.CellFormat(textW, 3, info.Hash, "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
