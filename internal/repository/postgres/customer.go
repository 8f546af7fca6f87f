package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/customer-platform/customer-service/pkg/errors"

	"github.com/customer-platform/customer-service/internal/domain"
)

// DB is the subset of pgxpool.Pool used by the repository. pgxmock satisfies
// it too, which keeps the tests off a live database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	db DB
}

// NewCustomerRepository creates a PostgreSQL-backed customer repository.
func NewCustomerRepository(db DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}

const customerColumns = `id, name, password_hash, birth_date, gender, profile_image_id, created_at, updated_at`

// List returns all customers ordered by id.
func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	return customers, nil
}

// GetByID retrieves a customer by id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByName retrieves a customer by name. Name comparison is case-sensitive.
func (r *CustomerRepository) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE name = $1`
	return r.getOne(ctx, query, name)
}

// ExistsByName reports whether a customer with the given name exists.
func (r *CustomerRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by name: %w", err)
	}
	return exists, nil
}

// ExistsByID reports whether a customer with the given id exists.
func (r *CustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by id: %w", err)
	}
	return exists, nil
}

// Create inserts a new customer. The database assigns the id; timestamps are
// set here.
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO customers (name, password_hash, birth_date, gender, profile_image_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		c.Name,
		c.PasswordHash,
		c.BirthDate,
		c.Gender,
		c.ProfileImageID,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateName(c.Name)
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

// Update replaces the full record identified by c.ID.
func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE customers
		SET name = $1, password_hash = $2, birth_date = $3, gender = $4,
		    profile_image_id = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		c.Name,
		c.PasswordHash,
		c.BirthDate,
		c.Gender,
		c.ProfileImageID,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateName(c.Name)
		}
		return fmt.Errorf("update customer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", c.ID)
	}

	return nil
}

// Delete removes a customer by id.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", id)
	}

	return nil
}

// SetProfileImageID updates only the profile image pointer.
func (r *CustomerRepository) SetProfileImageID(ctx context.Context, id int64, imageID string) error {
	query := `UPDATE customers SET profile_image_id = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, imageID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set profile image id: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", id)
	}

	return nil
}

func (r *CustomerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var c domain.Customer
	if err := scanCustomer(r.db.QueryRow(ctx, query, arg), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}

func scanCustomer(row pgx.Row, c *domain.Customer) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.PasswordHash,
		&c.BirthDate,
		&c.Gender,
		&c.ProfileImageID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}
