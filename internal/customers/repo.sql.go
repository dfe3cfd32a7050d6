package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesdesk/salesdesk/internal/authz"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Repository defines persistence operations for customer records.
type Repository interface {
	Get(ctx context.Context, id int64) (*Detail, error)
	ListScoped(ctx context.Context, scope authz.Scope) ([]Detail, error)
	Create(ctx context.Context, customer Customer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}, modifiedBy int64) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const detailSelect = `
	SELECT c.id, c.name, c.phone, c.wechat_id, c.education, c.major_category,
	       c.major_detail, c.status, c.address, c.description,
	       c.owner_id, c.last_modified_by, c.created_at, c.updated_at,
	       o.username, m.username
	FROM customers c
	JOIN users o ON o.id = c.owner_id
	LEFT JOIN users m ON m.id = c.last_modified_by
`

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.WechatID, &d.Education, &d.MajorCategory,
		&d.MajorDetail, &d.Status, &d.Address, &d.Description,
		&d.OwnerID, &d.LastModifiedBy, &d.CreatedAt, &d.UpdatedAt,
		&d.OwnerName, &d.LastModifiedByName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Get fetches a customer with owner/modifier usernames attached.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Detail, error) {
	row := r.pool.QueryRow(ctx, detailSelect+` WHERE c.id = $1`, id)
	return scanDetail(row)
}

// ListScoped materializes a visibility scope: all records, or records whose
// owner is in the scope's owner set, narrowed by the scope's date range.
func (r *PGRepository) ListScoped(ctx context.Context, scope authz.Scope) ([]Detail, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if !scope.All {
		conditions = append(conditions, fmt.Sprintf("c.owner_id = ANY($%d)", argPos))
		args = append(args, scope.OwnerIDs)
		argPos++
	}
	if scope.Range != nil {
		conditions = append(conditions, fmt.Sprintf("c.created_at BETWEEN $%d AND $%d", argPos, argPos+1))
		args = append(args, scope.Range.Start, scope.Range.End)
		argPos += 2
	}

	query := detailSelect
	if len(conditions) > 0 {
		query += " WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			query += " AND " + conditions[i]
		}
	}
	query += " ORDER BY c.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}

// Create inserts a customer. The owner reference is part of the single insert
// so a record can never exist without one.
func (r *PGRepository) Create(ctx context.Context, customer Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, wechat_id, education, major_category,
		                       major_detail, status, address, description,
		                       owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id
	`,
		customer.Name, customer.Phone, customer.WechatID, customer.Education,
		customer.MajorCategory, customer.MajorDetail, customer.Status,
		customer.Address, customer.Description, customer.OwnerID,
	).Scan(&id)
	return id, err
}

// Update applies the provided column updates and stamps last_modified_by. The
// owner column is deliberately not updatable here.
func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]interface{}, modifiedBy int64) error {
	query := "UPDATE customers SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{
		"name", "phone", "wechat_id", "education", "major_category",
		"major_detail", "status", "address", "description",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(", last_modified_by = $%d", argPos)
	args = append(args, modifiedBy)
	argPos++

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a customer by id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
