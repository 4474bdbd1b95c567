package workbook

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fromCSV loads a delimited text file into a new single-sheet workbook.
// Semicolon-separated exports are detected from the first line.
func fromCSV(r io.Reader) (*excelize.File, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = detectDelimiter(content)

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	rowNumber := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("read csv row %d: %w", rowNumber, err)
		}

		values := make([]any, len(record))
		for i, value := range record {
			values[i] = value
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNumber)
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("load csv row %d: %w", rowNumber, err)
		}
		rowNumber++
	}
	return file, nil
}

func detectDelimiter(content []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(content)).ReadSlice('\n')
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
