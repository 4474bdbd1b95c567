package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ChangeLogWriter writes a summary as a standalone change log.
type ChangeLogWriter interface {
	Write(w io.Writer, summary *Summary) error
}

func ChangeLogWriterForFormat(format string) (ChangeLogWriter, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVChangeLogWriter{}, nil
	case "excel", "xlsx":
		return &ExcelChangeLogWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported change log format: %s", format)
	}
}

// WriteChangeLogFile picks the format from the file extension.
func WriteChangeLogFile(path string, summary *Summary) error {
	writer, err := ChangeLogWriterForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create change log %s: %w", path, err)
	}
	defer file.Close()

	if err := writer.Write(file, summary); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close change log %s: %w", path, err)
	}
	return nil
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
