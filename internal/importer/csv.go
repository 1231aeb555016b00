package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/binder/internal/encoding"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

var ErrUnknownLayout = fmt.Errorf("no matching CSV layout: expected columns for %s", profileNames())

// CSVParser reads collection exports from known tools. The layout and the
// delimiter (comma or semicolon) are detected from the header row.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(r io.Reader) ([]Line, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	for _, comma := range []rune{',', ';'} {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1, comma), nil
	}

	return nil, ErrUnknownLayout
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps header names to their position in a row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int, comma rune) []Line {
	var lines []Line

	for i, row := range rows {
		if isBlank(row) {
			continue
		}

		line := parseRow(p, cols, row)
		line.Number = headerRowNum + i + 1
		line.Raw = strings.Join(row, string(comma))
		lines = append(lines, line)
	}

	return lines
}

func parseRow(p *Profile, cols colIndex, row []string) Line {
	line := Line{
		Name:      cellValue(row, cols, p.NameCol),
		SetCode:   strings.ToUpper(cellValue(row, cols, p.SetCol)),
		Condition: inventory.ConditionNearMint,
		Language:  DefaultLanguage,
	}

	if line.Name == "" || line.SetCode == "" {
		line.Err = fmt.Errorf("%w: name and set are required", ErrMalformedLine)
		return line
	}

	qty, err := strconv.Atoi(cellValue(row, cols, p.QuantityCol))
	if err != nil || qty <= 0 {
		line.Err = fmt.Errorf("%w: invalid quantity %q", ErrMalformedLine, cellValue(row, cols, p.QuantityCol))
		return line
	}

	line.Quantity = qty

	if v := cellValue(row, cols, p.FoilCol); v != "" {
		line.Foil = p.isFoil == nil || p.isFoil(v)
	}

	// TCGplayer appends the finish to the condition, e.g. "Near Mint Foil".
	cond := cellValue(row, cols, p.ConditionCol)
	if trimmed, ok := cutSuffixFold(cond, " foil"); ok {
		cond = trimmed
		line.Foil = true
	}

	c, err := inventory.ParseCondition(cond)
	if err != nil {
		line.Err = fmt.Errorf("%w: %w", ErrMalformedLine, err)
		return line
	}

	line.Condition = c

	if lang := cellValue(row, cols, p.LanguageCol); lang != "" {
		line.Language = languageCode(lang)
	}

	return line
}

var languageNames = map[string]string{
	"english":    "EN",
	"german":     "DE",
	"french":     "FR",
	"italian":    "IT",
	"spanish":    "ES",
	"portuguese": "PT",
	"japanese":   "JA",
	"korean":     "KO",
	"russian":    "RU",
}

func languageCode(s string) string {
	if code, ok := languageNames[strings.ToLower(s)]; ok {
		return code
	}

	return strings.ToUpper(s)
}

func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if name == "" || !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)], true
	}

	return s, false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func profileNames() string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}

	return strings.Join(names, ", ")
}
