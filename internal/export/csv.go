// Package export renders extracted URL lists as CSV, XLSX or terminal tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Header is the single column heading of every export.
const Header = "URL"

// WriteCSV writes a header row followed by one row per URL. Records end in
// CRLF and fields are quoted per RFC 4180.
func WriteCSV(w io.Writer, urls []string) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write([]string{Header}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, u := range urls {
		if err := cw.Write([]string{u}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// CSV returns the WriteCSV output as a string.
func CSV(urls []string) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, urls); err != nil {
		return "", err
	}
	return b.String(), nil
}
