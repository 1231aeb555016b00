package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/binder/internal/encoding"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

// decklistLine matches "4x Lightning Bolt (M10) NM foil EN". The quantity and
// everything after the set are optional.
var decklistLine = regexp.MustCompile(`^(?:(\d+)\s*[xX]?\s+)?(.+?)\s*\(([^()]+)\)\s*(.*)$`)

var languages = map[string]bool{
	"EN": true, "DE": true, "FR": true, "IT": true, "ES": true, "PT": true,
	"JA": true, "JP": true, "KO": true, "RU": true, "ZHS": true, "ZHT": true, "PH": true,
}

// TextParser reads plain decklist lines. Blank lines and lines starting with
// "#" or "//" are skipped.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Parse(r io.Reader) ([]Line, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	var raw []string

	sc := bufio.NewScanner(utf8r)
	for sc.Scan() {
		raw = append(raw, sc.Text())
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	return ParseLines(raw), nil
}

// ParseLines parses decklist lines already split by the caller.
func ParseLines(raw []string) []Line {
	var lines []Line

	for i, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "//") {
			continue
		}

		line := ParseLine(s)
		line.Number = i + 1
		lines = append(lines, line)
	}

	return lines
}

// ParseLine parses a single decklist entry.
func ParseLine(s string) Line {
	line := Line{
		Raw:       s,
		Quantity:  1,
		Condition: inventory.ConditionNearMint,
		Language:  DefaultLanguage,
	}

	m := decklistLine.FindStringSubmatch(s)
	if m == nil {
		line.Err = fmt.Errorf("%w: expected \"<qty>x <name> (<set>)\"", ErrMalformedLine)
		return line
	}

	if m[1] != "" {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			line.Err = fmt.Errorf("%w: invalid quantity %q", ErrMalformedLine, m[1])
			return line
		}

		line.Quantity = qty
	}

	line.Name = strings.TrimSpace(m[2])
	line.SetCode = strings.ToUpper(strings.TrimSpace(m[3]))

	for _, tok := range strings.Fields(m[4]) {
		if err := applyToken(&line, tok); err != nil {
			line.Err = err
			return line
		}
	}

	return line
}

func applyToken(line *Line, tok string) error {
	switch lower := strings.ToLower(tok); {
	case lower == "foil" || lower == "*f*":
		line.Foil = true
	case lower == "nonfoil":
		line.Foil = false
	case languages[strings.ToUpper(tok)]:
		line.Language = strings.ToUpper(tok)
	default:
		c, err := inventory.ParseCondition(tok)
		if err != nil {
			return fmt.Errorf("%w: unexpected %q", ErrMalformedLine, tok)
		}

		line.Condition = c
	}

	return nil
}
