package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/binder/internal/catalog"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Catalog interface {
	Resolve(ctx context.Context, name, setCode string) (*catalog.Card, error)
}

type Inventory interface {
	AddCopies(ctx context.Context, params inventory.AddParams) (*inventory.OwnedCard, bool, error)
}

// Service parses collection uploads and merges them into a user's owned cards.
type Service struct {
	catalog   Catalog
	inventory Inventory
	workers   int

	textParser Parser
	csvParser  Parser
}

func NewService(cat Catalog, inv Inventory, workers int) *Service {
	if workers < 1 {
		workers = 1
	}

	return &Service{
		catalog:    cat,
		inventory:  inv,
		workers:    workers,
		textParser: NewTextParser(),
		csvParser:  NewCSVParser(),
	}
}

// Parse reads r in the given format. FormatAuto tries the CSV layouts first
// and falls back to decklist text.
func (s *Service) Parse(format Format, r io.Reader) ([]Line, error) {
	switch format {
	case FormatText:
		return s.textParser.Parse(r)
	case FormatCSV:
		return s.csvParser.Parse(r)
	case FormatAuto, "":
	default:
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	lines, err := s.csvParser.Parse(bytes.NewReader(data))
	if err == nil {
		return lines, nil
	}

	if !errors.Is(err, ErrUnknownLayout) {
		return nil, err
	}

	return s.textParser.Parse(bytes.NewReader(data))
}

// ImportFile parses r and imports every line it contains.
func (s *Service) ImportFile(ctx context.Context, userID uuid.UUID, format Format, r io.Reader) (*Summary, error) {
	lines, err := s.Parse(format, r)
	if err != nil {
		return nil, err
	}

	return s.ImportLines(ctx, userID, lines)
}

// ImportLines reconciles each line against the catalog and the user's owned
// cards. Lines are independent: a failure is logged against its line and the
// rest of the batch carries on. The log keeps the input order.
func (s *Service) ImportLines(ctx context.Context, userID uuid.UUID, lines []Line) (*Summary, error) {
	errs := make([]error, len(lines))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for i := range lines {
		i := i
		g.Go(func() error {
			errs[i] = s.importLine(ctx, userID, lines[i])
			return nil
		})
	}

	_ = g.Wait()

	summary := &Summary{Log: make([]LogEntry, len(lines))}

	for i, line := range lines {
		entry := LogEntry{Line: line.Raw}

		if errs[i] != nil {
			entry.Error = describe(line, errs[i])
			summary.Failed++
		} else {
			summary.Successful++
		}

		summary.Log[i] = entry
	}

	slog.Info("import finished",
		"user_id", userID, "lines", len(lines), "successful", summary.Successful, "failed", summary.Failed)

	return summary, nil
}

func (s *Service) importLine(ctx context.Context, userID uuid.UUID, line Line) error {
	if line.Err != nil {
		return line.Err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	card, err := s.catalog.Resolve(ctx, line.Name, line.SetCode)
	if err != nil {
		return err
	}

	_, _, err = s.inventory.AddCopies(ctx, inventory.AddParams{
		CardID:    card.ID,
		UserID:    userID,
		Quantity:  line.Quantity,
		Condition: line.Condition,
		Foil:      line.Foil,
		Language:  line.Language,
	})

	return err
}

func describe(line Line, err error) string {
	switch {
	case errors.Is(err, catalog.ErrCardNotFound):
		return fmt.Sprintf("card %q from set %s not found", line.Name, line.SetCode)
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return "quantity must be positive"
	}

	return err.Error()
}
