package repository

import (
	"context"

	"github.com/customer-platform/customer-service/internal/domain"
)

// CustomerRepository defines persistence operations for customer records.
// Implementations must enforce name uniqueness as a constraint of their own,
// independent of the service-level pre-checks.
type CustomerRepository interface {
	// List returns all customers ordered by id.
	List(ctx context.Context) ([]domain.Customer, error)

	// GetByID retrieves a customer by id.
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)

	// GetByName retrieves a customer by their unique name.
	GetByName(ctx context.Context, name string) (*domain.Customer, error)

	// ExistsByName reports whether a customer with the given name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// ExistsByID reports whether a customer with the given id exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// Create inserts a new customer and assigns its id.
	Create(ctx context.Context, c *domain.Customer) error

	// Update replaces the full record identified by c.ID.
	Update(ctx context.Context, c *domain.Customer) error

	// Delete removes a customer by id.
	Delete(ctx context.Context, id int64) error

	// SetProfileImageID updates only the profile image pointer.
	SetProfileImageID(ctx context.Context, id int64, imageID string) error
}
