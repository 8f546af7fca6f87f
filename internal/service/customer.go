package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/customer-platform/customer-service/pkg/errors"

	"github.com/customer-platform/customer-service/internal/auth"
	"github.com/customer-platform/customer-service/internal/domain"
	"github.com/customer-platform/customer-service/internal/event"
	"github.com/customer-platform/customer-service/internal/repository"
)

// CustomerService implements the business logic for the customer directory.
type CustomerService struct {
	repo     repository.CustomerRepository
	hasher   auth.PasswordHasher
	producer event.Publisher
	log      *slog.Logger
}

// NewCustomerService creates a customer service. producer may be nil when
// event publishing is disabled.
func NewCustomerService(
	repo repository.CustomerRepository,
	hasher auth.PasswordHasher,
	producer event.Publisher,
	log *slog.Logger,
) *CustomerService {
	return &CustomerService{
		repo:     repo,
		hasher:   hasher,
		producer: producer,
		log:      log,
	}
}

// RegisterInput holds the parameters for registering a new customer.
type RegisterInput struct {
	Name      string
	Password  string
	BirthDate time.Time
	Gender    string
}

// UpdateInput holds the optional fields of a partial update. A nil field was
// omitted from the request, which is different from a supplied value that
// happens to equal the current one; neither counts as a change.
type UpdateInput struct {
	Name      *string
	BirthDate *time.Time
	Gender    *string
}

// List returns all customers ordered by id.
func (s *CustomerService) List(ctx context.Context) ([]domain.CustomerView, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CustomerView, 0, len(customers))
	for i := range customers {
		views = append(views, customers[i].View())
	}
	return views, nil
}

// Get returns a single customer by id.
func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates a new customer with a hashed password. The name is the
// login principal and must be unique; the database constraint backstops the
// pre-check here against concurrent registrations.
func (s *CustomerService) Register(ctx context.Context, input RegisterInput) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	taken, err := s.repo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.DuplicateName(input.Name)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:         input.Name,
		PasswordHash: hash,
		BirthDate:    input.BirthDate,
		Gender:       input.Gender,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.publish(ctx, s.producerRegistered, customer)

	s.log.InfoContext(ctx, "customer registered",
		slog.Int64("customer_id", customer.ID),
		slog.String("name", customer.Name),
	)

	return customer, nil
}

// Update applies a partial update to a customer. Only supplied fields that
// differ from the stored values count as changes; if nothing changes the
// store is never written and NoChanges is returned. A rename re-checks name
// uniqueness. The full record is replaced, never patched field by field.
func (s *CustomerService) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false

	if input.Name != nil && *input.Name != customer.Name {
		taken, err := s.repo.ExistsByName(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.DuplicateName(*input.Name)
		}
		customer.Name = *input.Name
		changed = true
	}

	if input.BirthDate != nil && !customer.SameBirthDate(*input.BirthDate) {
		customer.BirthDate = *input.BirthDate
		changed = true
	}

	if input.Gender != nil && *input.Gender != customer.Gender {
		customer.Gender = *input.Gender
		changed = true
	}

	if !changed {
		return nil, apperrors.NoChanges()
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}

	s.publish(ctx, s.producerUpdated, customer)

	s.log.InfoContext(ctx, "customer updated", slog.Int64("customer_id", customer.ID))

	return customer, nil
}

// Remove deletes a customer by id. Blobs previously written for the customer
// are left in place.
func (s *CustomerService) Remove(ctx context.Context, id int64) error {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, s.producerDeleted, customer)

	s.log.InfoContext(ctx, "customer deleted", slog.Int64("customer_id", id))

	return nil
}

// Login verifies name and password and returns the customer. The caller
// issues the bearer token.
func (s *CustomerService) Login(ctx context.Context, name, password string) (*domain.Customer, error) {
	customer, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Compare(customer.PasswordHash, password) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	return customer, nil
}

// publish sends a domain event best-effort: a broker outage must not fail the
// customer operation that already committed.
func (s *CustomerService) publish(ctx context.Context, fn func(context.Context, *domain.Customer) error, c *domain.Customer) {
	if s.producer == nil || fn == nil {
		return
	}
	if err := fn(ctx, c); err != nil {
		s.log.WarnContext(ctx, "event publish failed",
			slog.Int64("customer_id", c.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CustomerService) producerRegistered(ctx context.Context, c *domain.Customer) error {
	return s.producer.CustomerRegistered(ctx, c)
}

func (s *CustomerService) producerUpdated(ctx context.Context, c *domain.Customer) error {
	return s.producer.CustomerUpdated(ctx, c)
}

func (s *CustomerService) producerDeleted(ctx context.Context, c *domain.Customer) error {
	return s.producer.CustomerDeleted(ctx, c)
}
