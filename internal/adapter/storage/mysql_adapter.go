package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/pos-register/internal/core/domain"
)

//go:embed migrations.sql
var migrationSQL string

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLAdapter writes committed orders to the receipt journal tables.
// The register never reads them back.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the journal tables if they are missing. Statements are run
// one at a time so the DSN does not need multiStatements=true.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(migrationSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// RecordOrder journals order in one transaction. Recording the same
// session/order pair twice is not an error.
func (m *MySQLAdapter) RecordOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	customerID := sql.NullString{String: order.CustomerID, Valid: order.CustomerID != ""}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (session_id, order_id, customer_id, subtotal, discount_percent, discount_amount, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.SessionID, order.ID, customerID,
		order.Subtotal.StringFixed(2), order.DiscountPercent.String(),
		order.DiscountAmount.StringFixed(2), order.Total.StringFixed(2),
		order.CreatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil
		}
		return fmt.Errorf("insert receipt: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO receipt_lines (session_id, order_id, line_no, product_id, name, category, price)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare receipt lines: %w", err)
	}
	defer stmt.Close()

	for i, item := range order.Items {
		if _, err := stmt.ExecContext(ctx,
			order.SessionID, order.ID, i+1, item.ProductID, item.Name, item.Category, item.Price.StringFixed(2),
		); err != nil {
			return fmt.Errorf("insert receipt line %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// NopJournal discards orders. Used when no journal database is configured.
type NopJournal struct{}

func (NopJournal) RecordOrder(ctx context.Context, order domain.Order) error { return nil }
