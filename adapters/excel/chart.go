package excel

import (
	"context"
	"fmt"
	"log"

	"gopower/domain/power"
	"gopower/internal/errors"
	"gopower/ports"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Power"

// ChartWriter renders a power curve as an .xlsx line chart: one marker per
// sample size, a flat reference series at the target power, and per-point
// labels showing power to two decimals. Failed sizes leave a gap in the
// power series and carry their error text in the sheet.
type ChartWriter struct {
	filePath string
}

// NewChartWriter creates a chart writer targeting the given .xlsx path
func NewChartWriter(filePath string) *ChartWriter {
	return &ChartWriter{filePath: filePath}
}

var _ ports.CurveRendererPort = (*ChartWriter)(nil)

// Render writes the curve sheet and chart and saves the workbook.
func (w *ChartWriter) Render(ctx context.Context, curve power.Curve, cfg power.ExperimentConfig, rates power.GroupRates) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(curve) == 0 {
		return errors.RenderError("empty power curve", nil)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("closing workbook: %v", err)
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return errors.RenderError("create sheet", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.RenderError("drop default sheet", err)
	}

	headers := []string{"Sample Size", "Power", "Target Power", "Error"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return errors.RenderError("write header", err)
		}
	}

	for rowIdx, point := range curve {
		row := rowIdx + 2
		sizeCell, _ := excelize.CoordinatesToCellName(1, row)
		powerCell, _ := excelize.CoordinatesToCellName(2, row)
		targetCell, _ := excelize.CoordinatesToCellName(3, row)
		errCell, _ := excelize.CoordinatesToCellName(4, row)

		if err := f.SetCellValue(sheetName, sizeCell, point.SampleSize); err != nil {
			return errors.RenderError("write sample size", err)
		}
		if point.OK() {
			if err := f.SetCellValue(sheetName, powerCell, point.Estimate.Power); err != nil {
				return errors.RenderError("write power", err)
			}
		} else if err := f.SetCellValue(sheetName, errCell, point.Err); err != nil {
			return errors.RenderError("write error marker", err)
		}
		if err := f.SetCellValue(sheetName, targetCell, cfg.TargetPower); err != nil {
			return errors.RenderError("write target power", err)
		}
	}

	// Two-decimal display for the power column drives the point labels too
	numFmt := "0.00"
	styleID, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return errors.RenderError("number format style", err)
	}
	lastRow := len(curve) + 1
	firstPower, _ := excelize.CoordinatesToCellName(2, 2)
	lastTarget, _ := excelize.CoordinatesToCellName(3, lastRow)
	if err := f.SetCellStyle(sheetName, firstPower, lastTarget, styleID); err != nil {
		return errors.RenderError("apply number format", err)
	}

	if err := w.addChart(f, len(curve), cfg, rates); err != nil {
		return err
	}

	if err := f.SaveAs(w.filePath); err != nil {
		return errors.RenderError(fmt.Sprintf("save workbook %s", w.filePath), err)
	}
	return nil
}

func (w *ChartWriter) addChart(f *excelize.File, points int, cfg power.ExperimentConfig, rates power.GroupRates) error {
	lastRow := points + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", sheetName, lastRow)
	powerValues := fmt.Sprintf("%s!$B$2:$B$%d", sheetName, lastRow)
	targetValues := fmt.Sprintf("%s!$C$2:$C$%d", sheetName, lastRow)

	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       "Power",
				Categories: categories,
				Values:     powerValues,
				Marker:     excelize.ChartMarker{Symbol: "circle", Size: 5},
			},
			{
				Name:       fmt.Sprintf("Desired Power (%.1f)", cfg.TargetPower),
				Categories: categories,
				Values:     targetValues,
			},
		},
		Title: []excelize.RichTextRun{
			{Text: fmt.Sprintf("Power Analysis for A/B Testing (CTR %.3f vs %.3f)", rates.Control, rates.Treatment)},
		},
		XAxis:    excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Sample Size"}}},
		YAxis:    excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Power"}}},
		Legend:   excelize.ChartLegend{Position: "bottom"},
		PlotArea: excelize.ChartPlotArea{ShowVal: true},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 420,
		},
	}

	if err := f.AddChart(sheetName, "F2", chart); err != nil {
		return errors.RenderError("add chart", err)
	}
	return nil
}
