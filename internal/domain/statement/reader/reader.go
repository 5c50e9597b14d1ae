// Package reader gates and decodes uploaded statement files into raw
// rows. Supported inputs are delimited text (.csv) and spreadsheets
// (.xls, .xlsx); everything downstream works on plain string cells.
package reader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/fiscalgo/vatledger/internal/domain/common"
)

// RawRow is an ordered sequence of cell values with no semantic meaning
// attached yet.
type RawRow = []string

// FileKind identifies a supported statement file format.
type FileKind string

const (
	KindCSV  FileKind = "csv"
	KindXLS  FileKind = "xls"
	KindXLSX FileKind = "xlsx"
)

var (
	zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}
	oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
)

// Kind gates a file by extension and cross-checks the content signature
// for the binary formats. Unsupported types are rejected before any
// parse attempt.
func Kind(filename string, data []byte) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return KindCSV, nil
	case ".xlsx":
		if !bytes.HasPrefix(data, zipMagic) {
			return "", fmt.Errorf("%w: %s does not look like an xlsx archive", common.ErrUnreadableFile, filename)
		}
		return KindXLSX, nil
	case ".xls":
		if !bytes.HasPrefix(data, oleMagic) {
			return "", fmt.Errorf("%w: %s does not look like an xls document", common.ErrUnreadableFile, filename)
		}
		return KindXLS, nil
	default:
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFileType, filename)
	}
}

// Decode turns file bytes into raw rows. A decode failure or an empty
// sheet is terminal for the attempt; no partial output is produced.
func Decode(filename string, data []byte) ([]RawRow, error) {
	kind, err := Kind(filename, data)
	if err != nil {
		return nil, err
	}

	var rows []RawRow
	switch kind {
	case KindCSV:
		rows, err = decodeCSV(data)
	case KindXLSX:
		rows, err = decodeXLSX(data)
	case KindXLS:
		rows, err = decodeXLS(data)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrEmptyStatement
	}
	return rows, nil
}

func decodeCSV(data []byte) ([]RawRow, error) {
	text, err := toUTF8(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed lines inside otherwise readable exports are
			// skipped, matching the soft-fallback policy.
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// toUTF8 decodes the bytes as UTF-8, falling back to windows-1251 for
// legacy Russian bank exports.
func toUTF8(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1251.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}
	return string(decoded), nil
}

// sniffDelimiter picks the delimiter with the highest count across the
// leading lines.
func sniffDelimiter(text string) rune {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{';', '\t', ',', '|'} {
		count := 0
		for _, line := range lines {
			count += strings.Count(line, string(candidate))
		}
		if count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}

func decodeXLSX(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.ErrEmptyStatement
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}
	return rows, nil
}

func decodeXLS(data []byte) ([]RawRow, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnreadableFile, err)
	}

	var rows []RawRow
	for i := 0; i <= int(sheet.GetNumberRows()); i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			continue
		}
		var cells RawRow
		for _, col := range row.GetCols() {
			if col == nil {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, col.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
