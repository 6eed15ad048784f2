package transactions

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nandasafiq/warungpos/internal/domain"
)

// StockError reports which product ran out while a transaction was being
// recorded. Its message is surfaced verbatim to the terminal.
type StockError struct {
	Title string
}

func (e *StockError) Error() string {
	return "insufficient stock for " + e.Title
}

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func newTransactionCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TRX-" + suffix[:8]
}

// Record decrements stock for every item and inserts the transaction in a
// single database transaction. Either everything is applied or nothing is:
// the first item without enough stock rolls the whole thing back and returns
// a StockError naming the product.
func (r *TransactionRepository) Record(ctx context.Context, req *domain.TransactionRequest) (*domain.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range req.Items {
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
		`, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}

		if rowsAffected == 0 {
			title := item.ProductID
			_ = tx.QueryRowContext(ctx, `SELECT title FROM products WHERE id = $1`, item.ProductID).Scan(&title)
			return nil, &StockError{Title: title}
		}
	}

	transaction := &domain.Transaction{
		ID:            uuid.New().String(),
		TenantID:      req.TenantID,
		Code:          newTransactionCode(),
		Items:         req.Items,
		Subtotal:      req.Subtotal,
		Discount:      req.Discount,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		MaleCount:     req.MaleCount,
		FemaleCount:   req.FemaleCount,
		VoucherID:     req.VoucherID,
		CreatedAt:     time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, tenant_id, transaction_code, subtotal, discount, total,
			payment_method, male_count, female_count, voucher_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, transaction.ID, transaction.TenantID, transaction.Code, transaction.Subtotal,
		transaction.Discount, transaction.Total, transaction.PaymentMethod,
		transaction.MaleCount, transaction.FemaleCount, transaction.VoucherID, transaction.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, item := range transaction.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_items (id, transaction_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), transaction.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return transaction, nil
}

func (r *TransactionRepository) List(ctx context.Context, tenantID string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, transaction_code, subtotal, discount, total,
			payment_method, male_count, female_count, voucher_id, created_at
		FROM transactions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	transactionMap := make(map[string]*domain.Transaction)
	var ids []string

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Code, &t.Subtotal, &t.Discount, &t.Total,
			&t.PaymentMethod, &t.MaleCount, &t.FemaleCount, &t.VoucherID, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Items = []domain.TransactionItem{}
		transactionMap[t.ID] = &t
		ids = append(ids, t.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []domain.Transaction{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, product_id, quantity, price
		FROM transaction_items
		WHERE transaction_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var transactionID string
		var item domain.TransactionItem
		if err := itemRows.Scan(&transactionID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		transaction := transactionMap[transactionID]
		transaction.Items = append(transaction.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	transactions := make([]domain.Transaction, 0, len(ids))
	for _, id := range ids {
		transactions = append(transactions, *transactionMap[id])
	}

	return transactions, nil
}
