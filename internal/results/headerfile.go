package results

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ReadHeaderText extracts the raw header text from a result file: the
// leading comment block for CSV, the top-level object key for JSON.
func ReadHeaderText(path string) (string, Format, error) {
	format := DetectFormat(path)
	switch format {
	case FormatJSON:
		header, _, err := readJSONEnvelope(path)
		if err != nil {
			return "", format, fmt.Errorf("results: read header of %s: %w", path, err)
		}
		return header, format, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return "", format, fmt.Errorf("results: read header of %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		var lines []string
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, commentPrefix) {
				break
			}
			lines = append(lines, line)
		}
		if err := scanner.Err(); err != nil {
			return "", format, fmt.Errorf("results: read header of %s: %w", path, err)
		}
		return strings.Join(lines, lineBreak), format, nil
	}
}

// CountRows reports how many complete data rows a result file holds,
// without materializing a table.
func CountRows(path string) (int, error) {
	if DetectFormat(path) == FormatJSON {
		_, data, err := readJSONEnvelope(path)
		if err != nil {
			return 0, fmt.Errorf("results: count rows of %s: %w", path, err)
		}
		rows := 0
		for _, values := range data {
			if len(values) > rows {
				rows = len(values)
			}
		}
		return rows, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("results: count rows of %s: %w", path, err)
	}
	lines := splitDataLines(data)
	comments := 0
	for comments < len(lines) && strings.HasPrefix(lines[comments], commentPrefix) {
		comments++
	}
	rows := 0
	for _, line := range lines[comments:] {
		if line != "" {
			rows++
		}
	}
	if rows > 0 {
		rows-- // column line
	}
	return rows, nil
}

// ReadColumns returns the column names a result file stores: the column
// line for CSV, the sorted object keys for JSON.
func ReadColumns(path string) ([]string, error) {
	if DetectFormat(path) == FormatJSON {
		_, data, err := readJSONEnvelope(path)
		if err != nil {
			return nil, fmt.Errorf("results: read columns of %s: %w", path, err)
		}
		columns := make([]string, 0, len(data))
		for col := range data {
			columns = append(columns, col)
		}
		sort.Strings(columns)
		return columns, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("results: read columns of %s: %w", path, err)
	}
	lines := splitDataLines(data)
	for _, line := range lines {
		if strings.HasPrefix(line, commentPrefix) {
			continue
		}
		if line == "" {
			break
		}
		return strings.Split(line, delimiter), nil
	}
	return nil, fmt.Errorf("results: %s has no column line", path)
}

// DecodeHeaderFile reads and parses a result file's header.
func DecodeHeaderFile(path string) (Header, Format, error) {
	text, format, err := ReadHeaderText(path)
	if err != nil {
		return Header{}, format, err
	}
	var h Header
	if format == FormatJSON {
		h, err = DecodeJSONHeader(text)
	} else {
		h, err = DecodeCSVHeader(text)
	}
	if err != nil {
		return Header{}, format, fmt.Errorf("results: %s: %w", path, err)
	}
	return h, format, nil
}
