// Package store persists the station record set and caches geocode
// lookups between runs.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/hkgeo/station-cli/internal/model"
)

// workbookColumns is the fixed column order of the persisted record set.
var workbookColumns = []string{
	"Station Name (English)",
	"Station Name (Chinese)",
	"Station Code",
	"Lines",
	"Latitude",
	"Longitude",
	"Address",
}

const sheetName = "MTR Stations"

// WriteWorkbook writes records to path. The format follows the file
// extension: .xlsx writes a workbook, anything else writes CSV with the
// same columns.
func WriteWorkbook(path string, records []model.StationRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "store: create output dir for %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXLSX(path, records)
	}
	return writeCSV(path, records)
}

// ReadWorkbook reads a previously written record set. Blank coordinate
// cells and out-of-bounds pairs load as absent coordinates.
func ReadWorkbook(path string) ([]model.StationRecord, error) {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSXRows(path)
	} else {
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}

	var records []model.StationRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rec := recordFromRow(row)
		if rec.NamePrimary == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordRow(rec model.StationRecord) []string {
	lat, lon := "", ""
	if rec.HasCoordinate() {
		lat = fmt.Sprintf("%.6f", rec.Coordinate.Lat)
		lon = fmt.Sprintf("%.6f", rec.Coordinate.Lon)
	}
	return []string{
		rec.NamePrimary,
		rec.NameSecondary,
		rec.StationCode,
		strings.Join(rec.Lines, ", "),
		lat,
		lon,
		rec.Address,
	}
}

func recordFromRow(row []string) model.StationRecord {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rec := model.StationRecord{
		NamePrimary:   cell(0),
		NameSecondary: cell(1),
		StationCode:   cell(2),
		Address:       cell(6),
		Source:        model.SourceNone,
	}
	if lines := cell(3); lines != "" {
		for _, l := range strings.Split(lines, ",") {
			if l = strings.TrimSpace(l); l != "" {
				rec.Lines = append(rec.Lines, l)
			}
		}
	}

	lat, errLat := strconv.ParseFloat(cell(4), 64)
	lon, errLon := strconv.ParseFloat(cell(5), 64)
	if errLat == nil && errLon == nil {
		// Out-of-bounds pairs are silently treated as absent.
		rec.SetCoordinate(model.Coordinate{Lat: lat, Lon: lon}, model.SourceNone)
	}
	return rec
}

func writeXLSX(path string, records []model.StationRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "store: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range workbookColumns {
		header.AddCell().SetString(col)
	}
	for _, rec := range records {
		row := sheet.AddRow()
		for _, v := range recordRow(rec) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "store: save workbook %s", path)
	}
	return nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open workbook %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("store: workbook %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func writeCSV(path string, records []model.StationRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "store: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(workbookColumns); err != nil {
		return eris.Wrap(err, "store: write header")
	}
	for _, rec := range records {
		if err := w.Write(recordRow(rec)); err != nil {
			return eris.Wrap(err, "store: write record")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "store: flush csv")
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "store: read csv %s", path)
	}
	return rows, nil
}
