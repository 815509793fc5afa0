package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is a single item master entry. Quantity and UOM are kept as strings;
// spreadsheets mix numeric and free-form values and the matcher only
// backfills them verbatim.
type Row struct {
	PartNumber   string `json:"part_number"`
	MaterialName string `json:"material_name"`
	Quantity     string `json:"quantity"`
	UOM          string `json:"uom"`
}

// Column header aliases, matched case-insensitively after trimming.
// Japanese aliases cover the headers common in supplier spreadsheets.
var (
	partAliases     = []string{"part number", "part_number", "part no", "part no.", "partno", "品番", "部品番号", "型番"}
	materialAliases = []string{"material name", "material_name", "material", "item name", "description", "材料名", "品名", "名称"}
	quantityAliases = []string{"quantity", "qty", "数量"}
	uomAliases      = []string{"uom", "unit", "unit of measure", "単位"}
)

// ParseItemMaster parses an item master spreadsheet into rows. The format
// is determined by the filename extension. Column positions are inferred
// from the header row; rows missing both a part number and a material
// name are skipped.
func ParseItemMaster(filename string, data []byte) ([]Row, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSVRecords(data)
	case ".xlsx":
		records, err = readXLSXRecords(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	return rowsFromRecords(records)
}

// RenderRows serializes item master rows as a tab-separated table for
// inclusion in extraction prompts.
func RenderRows(rows []Row) string {
	var sb strings.Builder
	sb.WriteString("part_number\tmaterial_name\tquantity\tuom\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", r.PartNumber, r.MaterialName, r.Quantity, r.UOM)
	}
	return sb.String()
}

func readCSVRecords(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func readXLSXRecords(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return records, nil
}

type columnIndex struct {
	part     int
	material int
	quantity int
	uom      int
}

func rowsFromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty item master", ErrParse)
	}

	cols, start := inferColumns(records)
	if cols.part < 0 && cols.material < 0 {
		return nil, fmt.Errorf("%w: no part number or material name column", ErrParse)
	}

	var rows []Row
	for _, record := range records[start:] {
		row := Row{
			PartNumber:   cell(record, cols.part),
			MaterialName: cell(record, cols.material),
			Quantity:     cell(record, cols.quantity),
			UOM:          cell(record, cols.uom),
		}
		if row.PartNumber == "" && row.MaterialName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// inferColumns scans the first few records for a header row and returns the
// resolved column positions plus the index of the first data row. Without a
// recognizable header the first four columns are assumed positional.
func inferColumns(records [][]string) (columnIndex, int) {
	limit := len(records)
	if limit > 5 {
		limit = 5
	}

	for i := 0; i < limit; i++ {
		cols := matchHeader(records[i])
		if cols.part >= 0 || cols.material >= 0 {
			return cols, i + 1
		}
	}

	return columnIndex{part: 0, material: 1, quantity: 2, uom: 3}, 0
}

func matchHeader(record []string) columnIndex {
	cols := columnIndex{part: -1, material: -1, quantity: -1, uom: -1}
	for i, field := range record {
		header := strings.ToLower(strings.TrimSpace(field))
		switch {
		case cols.part < 0 && matchesAlias(header, partAliases):
			cols.part = i
		case cols.material < 0 && matchesAlias(header, materialAliases):
			cols.material = i
		case cols.quantity < 0 && matchesAlias(header, quantityAliases):
			cols.quantity = i
		case cols.uom < 0 && matchesAlias(header, uomAliases):
			cols.uom = i
		}
	}
	return cols
}

func matchesAlias(header string, aliases []string) bool {
	for _, alias := range aliases {
		if header == alias {
			return true
		}
	}
	return false
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
