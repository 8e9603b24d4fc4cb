package station

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/hkgeo/station-cli/internal/coordex"
	"github.com/hkgeo/station-cli/internal/model"
	"github.com/hkgeo/station-cli/internal/wikitable"
)

// BuildRecord converts a raw table row into a StationRecord. The name is
// taken from the row's first cell, preferring an embedded link's text
// over the full cell text. A row that yields no primary name is not an
// error; it returns nil and is skipped.
func BuildRecord(row wikitable.Row, chain *coordex.Chain) *model.StationRecord {
	if len(row.Cells) == 0 {
		return nil
	}

	nameCell := row.Cells[0]
	raw := nameCell.Text
	if len(nameCell.Links) > 0 && nameCell.Links[0].Text != "" {
		raw = nameCell.Links[0].Text
	}

	primary, secondary := SplitName(raw)
	if primary == "" {
		zap.L().Debug("station: row yields no usable name, skipping")
		return nil
	}

	texts := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		texts[i] = c.Text
	}

	rec := &model.StationRecord{
		NamePrimary:   primary,
		NameSecondary: secondary,
		StationCode:   FindStationCode(texts),
		Lines:         TagLines(texts),
		Source:        model.SourceNone,
	}

	if coord, src := chain.Extract(row); coord != nil {
		rec.SetCoordinate(*coord, src)
	}
	return rec
}

// ExtractAll builds records from every data row, skipping rows without a
// usable name.
func ExtractAll(rows []wikitable.Row, chain *coordex.Chain) []model.StationRecord {
	var records []model.StationRecord
	for _, row := range rows {
		if rec := BuildRecord(row, chain); rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// DedupKey normalizes a primary name for duplicate detection: NFC form,
// surrounding whitespace trimmed.
func DedupKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Dedupe collapses records by normalized primary name. The first
// occurrence wins; later duplicates are dropped entirely, including any
// coordinate they carry.
func Dedupe(records []model.StationRecord) []model.StationRecord {
	seen := make(map[string]bool, len(records))
	out := make([]model.StationRecord, 0, len(records))
	for _, rec := range records {
		key := DedupKey(rec.NamePrimary)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}
