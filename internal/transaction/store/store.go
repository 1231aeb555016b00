package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/database"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

const activePairConstraint = "transactions_active_pair_key"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, buyer_id, seller_id, status, total_amount, cancelled_by,
// cancellation_reason, created_at, updated_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction

	var status string

	var total sql.NullInt64

	var reason sql.NullString

	var cancelledBy *uuid.UUID

	if err := s.Scan(
		&t.ID, &t.BuyerID, &t.SellerID, &status, &total, &cancelledBy, &reason,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Status = transaction.Status(status)
	t.CancelledBy = cancelledBy

	if total.Valid {
		t.TotalAmount = &total.Int64
	}

	if reason.Valid {
		t.CancellationReason = &reason.String
	}

	return &t, nil
}

const selectTransactionColumns = `
	t.id, t.buyer_id, t.seller_id, t.status, t.total_amount, t.cancelled_by,
	t.cancellation_reason, t.created_at, t.updated_at
`

func scanItem(s scanner) (*transaction.Item, error) {
	var it transaction.Item
	if err := s.Scan(
		&it.ID, &it.TransactionID, &it.UserCardID, &it.Quantity, &it.AgreedPrice, &it.Condition, &it.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &it, nil
}

const selectItemColumns = `
	i.id, i.transaction_id, i.user_card_id, i.quantity, i.agreed_price, i.condition, i.created_at
`

func statusStrings(statuses []transaction.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}

	return out
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1`

	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	if err := attachItems(ctx, s.db, []*transaction.Transaction{t}); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE `

	var args []any

	switch filter.Role {
	case transaction.RoleBuyer:
		query += "t.buyer_id = $1"
	case transaction.RoleSeller:
		query += "t.seller_id = $1"
	default:
		query += "(t.buyer_id = $1 OR t.seller_id = $1)"
	}

	args = append(args, filter.UserID)
	argIdx := 2

	if len(filter.Statuses) > 0 {
		query += fmt.Sprintf(" AND t.status = ANY($%d)", argIdx)

		args = append(args, statusStrings(filter.Statuses))
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.updated_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.updated_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	if err := attachItems(ctx, s.db, txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// attachItems loads the items of all txs in one query.
func attachItems(ctx context.Context, q querier, txs []*transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	ids := make([]string, len(txs))
	byID := make(map[uuid.UUID]*transaction.Transaction, len(txs))

	for i, t := range txs {
		ids[i] = t.ID.String()
		byID[t.ID] = t
	}

	query := `SELECT ` + selectItemColumns + `
		FROM transaction_items i
		WHERE i.transaction_id = ANY($1::uuid[])
		ORDER BY i.created_at ASC`

	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("loading items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return fmt.Errorf("scanning item: %w", err)
		}

		if t, ok := byID[it.TransactionID]; ok {
			t.Items = append(t.Items, it)
		}
	}

	return rows.Err()
}

func (s *Store) CartMembership(ctx context.Context, buyerID uuid.UUID, userCardIDs []uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]string, len(userCardIDs))
	for i, id := range userCardIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT DISTINCT i.user_card_id
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE t.buyer_id = $1 AND t.status = ANY($2) AND i.user_card_id = ANY($3::uuid[])
	`

	rows, err := s.db.QueryContext(ctx, query, buyerID, statusStrings(transaction.EditableStatuses), ids)
	if err != nil {
		return nil, fmt.Errorf("checking cart membership: %w", err)
	}
	defer rows.Close()

	var present []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning cart membership: %w", err)
		}

		present = append(present, id)
	}

	return present, rows.Err()
}

type pgTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &pgTx{tx: dbTx}, nil
}

func (p *pgTx) Commit() error   { return p.tx.Commit() }
func (p *pgTx) Rollback() error { return p.tx.Rollback() }

func pairLockKey(buyerID, sellerID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(buyerID[:])
	h.Write([]byte{0})
	h.Write(sellerID[:])

	return int64(h.Sum64())
}

func (p *pgTx) LockPair(ctx context.Context, buyerID, sellerID uuid.UUID) error {
	if _, err := p.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", pairLockKey(buyerID, sellerID)); err != nil {
		return fmt.Errorf("acquiring pair lock: %w", err)
	}

	return nil
}

func (p *pgTx) FindActive(ctx context.Context, buyerID, sellerID uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.buyer_id = $1 AND t.seller_id = $2 AND t.status = ANY($3)
		FOR UPDATE`

	t, err := scanTransaction(p.tx.QueryRowContext(ctx, query,
		buyerID, sellerID, statusStrings(transaction.ActiveStatuses)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("finding active transaction: %w", err)
	}

	return t, nil
}

func (p *pgTx) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (buyer_id, seller_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := p.tx.QueryRowContext(ctx, query, t.BuyerID, t.SellerID, t.Status).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, activePairConstraint) {
			return fmt.Errorf("%w: an active transaction already exists for this seller", transaction.ErrInvalidState)
		}

		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (p *pgTx) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1 FOR UPDATE`

	t, err := scanTransaction(p.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return t, nil
}

func (p *pgTx) UpdateState(ctx context.Context, t *transaction.Transaction, from transaction.Status) error {
	query := `
		UPDATE transactions
		SET status = $1, total_amount = $2, cancelled_by = $3, cancellation_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
		RETURNING updated_at
	`

	err := p.tx.QueryRowContext(ctx, query,
		t.Status,
		t.TotalAmount,
		t.CancelledBy,
		t.CancellationReason,
		t.ID,
		from,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: transaction is no longer %s", transaction.ErrInvalidState, from)
		}

		if database.IsUniqueViolation(err, activePairConstraint) {
			return fmt.Errorf("%w: an active transaction already exists for this seller", transaction.ErrInvalidState)
		}

		return fmt.Errorf("updating transaction state: %w", err)
	}

	return nil
}

func (p *pgTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := p.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

func (p *pgTx) Items(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Item, error) {
	query := `SELECT ` + selectItemColumns + `
		FROM transaction_items i
		WHERE i.transaction_id = $1
		ORDER BY i.created_at ASC`

	rows, err := p.tx.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []*transaction.Item

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		items = append(items, it)
	}

	return items, rows.Err()
}

func (p *pgTx) AddItem(ctx context.Context, it *transaction.Item) (bool, error) {
	query := `
		INSERT INTO transaction_items (transaction_id, user_card_id, quantity, agreed_price, condition, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT ON CONSTRAINT transaction_items_card_key DO NOTHING
		RETURNING id, created_at
	`

	err := p.tx.QueryRowContext(ctx, query,
		it.TransactionID,
		it.UserCardID,
		it.Quantity,
		it.AgreedPrice,
		it.Condition,
	).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("adding item: %w", err)
	}

	return true, nil
}

func (p *pgTx) FindEditableItem(ctx context.Context, buyerID, userCardID uuid.UUID) (*transaction.Item, error) {
	query := `SELECT ` + selectItemColumns + `
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE t.buyer_id = $1 AND i.user_card_id = $2 AND t.status = ANY($3)
		LIMIT 1`

	it, err := scanItem(p.tx.QueryRowContext(ctx, query,
		buyerID, userCardID, statusStrings(transaction.EditableStatuses)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("finding item: %w", err)
	}

	return it, nil
}

func (p *pgTx) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := p.tx.ExecContext(ctx, `DELETE FROM transaction_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	return nil
}

func (p *pgTx) DeleteItems(ctx context.Context, transactionID uuid.UUID) error {
	if _, err := p.tx.ExecContext(ctx, `DELETE FROM transaction_items WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("deleting items: %w", err)
	}

	return nil
}

// AppendSystemMessage creates the conversation on first use.
func (p *pgTx) AppendSystemMessage(ctx context.Context, transactionID uuid.UUID, body string) error {
	query := `
		WITH conv AS (
			INSERT INTO conversations (transaction_id, created_at)
			VALUES ($1, NOW())
			ON CONFLICT (transaction_id) DO UPDATE SET transaction_id = EXCLUDED.transaction_id
			RETURNING id
		)
		INSERT INTO messages (conversation_id, sender_id, body, system, created_at)
		SELECT conv.id, NULL, $2, TRUE, NOW() FROM conv
	`

	if _, err := p.tx.ExecContext(ctx, query, transactionID, strings.TrimSpace(body)); err != nil {
		return fmt.Errorf("appending system message: %w", err)
	}

	return nil
}
