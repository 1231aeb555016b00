package importer

import (
	"errors"
	"io"

	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// DefaultLanguage is assumed when a line names no language.
const DefaultLanguage = "EN"

var ErrMalformedLine = errors.New("malformed line")

// Line is one parsed entry of an import. Lines that could not be parsed keep
// their raw text and carry Err; the reconciler reports them as failed.
type Line struct {
	Number    int
	Raw       string
	Name      string
	SetCode   string
	Quantity  int
	Condition inventory.Condition
	Foil      bool
	Language  string
	Err       error
}

type Parser interface {
	Parse(r io.Reader) ([]Line, error)
}

// LogEntry records the outcome of one line.
type LogEntry struct {
	Line  string `json:"line"`
	Error string `json:"error,omitempty"`
}

type Summary struct {
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
	Log        []LogEntry `json:"log"`
}
