package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/nandasafiq/warungpos/internal/domain"
)

type VoucherRepository struct {
	db *sql.DB
}

func NewVoucherRepository(db *sql.DB) *VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) List(ctx context.Context, tenantID string) ([]domain.Voucher, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, code, name, discount_type, discount_amount, is_active
		FROM vouchers
		WHERE tenant_id = $1
		ORDER BY code
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	vouchers := []domain.Voucher{}
	for rows.Next() {
		var v domain.Voucher
		if err := rows.Scan(&v.ID, &v.TenantID, &v.Code, &v.Name, &v.DiscountType, &v.DiscountAmount, &v.IsActive); err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return vouchers, nil
}

func (r *VoucherRepository) GetByID(ctx context.Context, id string) (*domain.Voucher, error) {
	v := &domain.Voucher{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, code, name, discount_type, discount_amount, is_active
		FROM vouchers
		WHERE id = $1
	`, id).Scan(&v.ID, &v.TenantID, &v.Code, &v.Name, &v.DiscountType, &v.DiscountAmount, &v.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return v, nil
}

func (r *VoucherRepository) Create(ctx context.Context, v *domain.Voucher) error {
	v.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vouchers (id, tenant_id, code, name, discount_type, discount_amount, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, v.ID, v.TenantID, v.Code, v.Name, v.DiscountType, v.DiscountAmount, v.IsActive)
	return err
}

func (r *VoucherRepository) Update(ctx context.Context, v *domain.Voucher) (*domain.Voucher, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE vouchers
		SET code = $2, name = $3, discount_type = $4, discount_amount = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
	`, v.ID, v.Code, v.Name, v.DiscountType, v.DiscountAmount, v.IsActive)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, v.ID)
}

func (r *VoucherRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
