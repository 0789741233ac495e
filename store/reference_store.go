// api/store/reference_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"mabletask/analytics/models"
)

// ReferenceStore reads the static product and tracked-user reference
// tables from Postgres. Both are plain lookups; the engine left-joins
// against them and never fails on a missing row.
type ReferenceStore struct {
	db *sql.DB
}

func NewReferenceStore(db *sql.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

func (s *ReferenceStore) FetchProducts(ctx context.Context) ([]models.ProductRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, category, base_price
		FROM ref_products
		ORDER BY product_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product reference: %w", err)
	}
	defer rows.Close()

	var products []models.ProductRef
	for rows.Next() {
		var p models.ProductRef
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Category, &p.BasePrice); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during product fetch: %w", err)
	}
	return products, nil
}

func (s *ReferenceStore) FetchUsers(ctx context.Context) ([]models.UserRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, country_code, account_created_at
		FROM ref_users
		ORDER BY user_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user reference: %w", err)
	}
	defer rows.Close()

	var users []models.UserRef
	for rows.Next() {
		var u models.UserRef
		if err := rows.Scan(&u.UserID, &u.CountryCode, &u.AccountCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during user fetch: %w", err)
	}
	return users, nil
}
