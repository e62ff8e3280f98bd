package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ledgerline/orderpulse/internal/canon"
)

// Reset clears both tables. Every run repopulates the store from scratch;
// the schema itself stays in place.
func (s *Store) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		// Orders first, customers second: FK order.
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
			return fmt.Errorf("clear orders: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM customers`); err != nil {
			return fmt.Errorf("clear customers: %w", err)
		}
		return nil
	})
}

// BulkInsertCustomers inserts canonical customers in one transaction.
// ON CONFLICT DO NOTHING keeps the load idempotent; the canonicalizer has
// already applied the first-wins duplicate policy, so conflicts only
// occur when the same batch is loaded twice.
func (s *Store) BulkInsertCustomers(ctx context.Context, customers []canon.Customer) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO customers (customer_id, name, mobile_number, region, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(customer_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare customer insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range customers {
			var mobile any
			if c.Mobile != "" {
				mobile = c.Mobile
			}
			if _, err := stmt.ExecContext(ctx,
				c.ID, c.Name, mobile, string(c.Region), c.CreatedAt.UTC().Format(time.RFC3339),
			); err != nil {
				return fmt.Errorf("insert customer %d: %w", c.ID, err)
			}
		}
		return nil
	})
}

// BulkInsertOrders inserts canonical orders in one transaction.
func (s *Store) BulkInsertOrders(ctx context.Context, orders []canon.Order) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO orders (order_id, customer_id, order_date, amount_minor, status)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(order_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare order insert: %w", err)
		}
		defer stmt.Close()

		for _, o := range orders {
			var status any
			if o.Status != "" {
				status = o.Status
			}
			if _, err := stmt.ExecContext(ctx,
				o.ID, o.CustomerID, o.Date.String(), o.AmountMinor, status,
			); err != nil {
				return fmt.Errorf("insert order %d: %w", o.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
