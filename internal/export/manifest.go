package export

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/tracefinity/tracebin/internal/model"
)

// ManifestXLSX builds the print manifest workbook: a Bin sheet with the
// configuration and overall result, and a Parts sheet listing every
// exported part with its file name, size, and volume.
func ManifestXLSX(cfg model.BinConfig, art model.GeneratedArtifact) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const binSheet = "Bin"
	if err := f.SetSheetName("Sheet1", binSheet); err != nil {
		return nil, err
	}

	binRows := [][2]any{
		{"Grid X", cfg.GridX},
		{"Grid Y", cfg.GridY},
		{"Height units", cfg.HeightUnits},
		{"Magnets", cfg.Magnets},
		{"Stacking lip", cfg.StackingLip},
		{"Wall thickness (mm)", cfg.WallThickness},
		{"Cutout depth (mm)", cfg.CutoutDepth},
		{"Cutout clearance (mm)", cfg.CutoutClearance},
		{"Bed size (mm)", cfg.BedSize},
		{"Width (mm)", art.Bounds.Width},
		{"Depth (mm)", art.Bounds.Depth},
		{"Height (mm)", art.Bounds.Height},
		{"Split", art.Split},
		{"Parts", art.PartCount},
		{"Content hash", art.Hash},
	}
	for i, row := range binRows {
		cellA, _ := excelize.CoordinatesToCellName(1, i+1)
		cellB, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(binSheet, cellA, row[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(binSheet, cellB, row[1]); err != nil {
			return nil, err
		}
	}

	const partsSheet = "Parts"
	if _, err := f.NewSheet(partsSheet); err != nil {
		return nil, err
	}
	headers := []string{"Part", "File", "Width (mm)", "Depth (mm)", "Height (mm)", "Volume (mm3)"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(partsSheet, cell, h); err != nil {
			return nil, err
		}
	}
	for r, p := range art.Parts {
		values := []any{p.Index, p.FileName, p.Size.Width, p.Size.Depth, p.Size.Height, p.Volume}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(partsSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportManifest writes the manifest workbook to a file.
func ExportManifest(path string, cfg model.BinConfig, art model.GeneratedArtifact) error {
	data, err := ManifestXLSX(cfg, art)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
