package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/money"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

// Row is one completed sale with the buyer's display name resolved.
type Row struct {
	Transaction *transaction.Transaction
	BuyerName   string
}

type Transactions interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Names interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service builds sales reports for sellers.
type Service struct {
	transactions Transactions
	names        Names
}

func NewService(transactions Transactions, names Names) *Service {
	return &Service{transactions: transactions, names: names}
}

// Sales returns the seller's completed transactions last updated within
// [start, end]. Zero times leave that side open.
func (s *Service) Sales(ctx context.Context, sellerID uuid.UUID, start, end time.Time) ([]Row, error) {
	filter := transaction.ListFilter{
		UserID:   sellerID,
		Role:     transaction.RoleSeller,
		Statuses: []transaction.Status{transaction.StatusCompleted},
	}

	if !start.IsZero() {
		filter.StartDate = &start
	}

	if !end.IsZero() {
		filter.EndDate = &end
	}

	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	buyers := make([]uuid.UUID, len(txs))
	for i, t := range txs {
		buyers[i] = t.BuyerID
	}

	names, err := s.names.DisplayNames(ctx, buyers)
	if err != nil {
		return nil, fmt.Errorf("resolving buyers: %w", err)
	}

	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, Row{Transaction: t, BuyerName: names[t.BuyerID]})
	}

	return rows, nil
}

var csvHeader = []string{"date", "transaction", "buyer", "items", "total"}

// WriteCSV renders rows with totals in major units.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range rows {
		t := r.Transaction

		record := []string{
			t.UpdatedAt.Format(time.DateOnly),
			t.ID.String(),
			r.BuyerName,
			strconv.Itoa(itemCount(t)),
			money.Format(total(t)),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %s: %w", t.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders a short plain-text digest of rows.
func Summary(rows []Row) string {
	var (
		sb    strings.Builder
		gross int64
		cards int
	)

	for _, r := range rows {
		t := r.Transaction
		gross += total(t)
		cards += itemCount(t)

		fmt.Fprintf(&sb, "* %s | %s | %d cards | %s\n",
			t.UpdatedAt.Format(time.DateOnly), r.BuyerName, itemCount(t), money.Format(total(t)))
	}

	fmt.Fprintf(&sb, "%d sales, %d cards, %s total\n", len(rows), cards, money.Format(gross))

	return sb.String()
}

// Filename names a report file after its period.
func Filename(start, end time.Time) string {
	const layout = "20060102"

	from, to := "start", "now"
	if !start.IsZero() {
		from = start.Format(layout)
	}

	if !end.IsZero() {
		to = end.Format(layout)
	}

	return fmt.Sprintf("sales_%s_%s.csv", from, to)
}

func itemCount(t *transaction.Transaction) int {
	n := 0
	for _, it := range t.Items {
		n += it.Quantity
	}

	return n
}

func total(t *transaction.Transaction) int64 {
	if t.TotalAmount != nil {
		return *t.TotalAmount
	}

	lines := make([]money.Line, len(t.Items))
	for i, it := range t.Items {
		lines[i] = money.Line{Cents: it.AgreedPrice, Quantity: it.Quantity}
	}

	return money.Sum(lines...)
}
