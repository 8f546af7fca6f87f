package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/customer-platform/customer-service/pkg/errors"

	"github.com/customer-platform/customer-service/internal/repository"
	"github.com/customer-platform/customer-service/internal/storage"
)

// ProfileImageService stores customer profile images in an object store and
// keeps the customer's image pointer in sync.
type ProfileImageService struct {
	repo   repository.CustomerRepository
	store  storage.ObjectStore
	bucket string
	log    *slog.Logger
}

// NewProfileImageService creates a profile image service writing to the given
// bucket.
func NewProfileImageService(
	repo repository.CustomerRepository,
	store storage.ObjectStore,
	bucket string,
	log *slog.Logger,
) *ProfileImageService {
	return &ProfileImageService{
		repo:   repo,
		store:  store,
		bucket: bucket,
		log:    log,
	}
}

// imageKey computes the storage key for a customer's image.
func imageKey(customerID int64, imageID string) string {
	return fmt.Sprintf("profile-image/%d/%s", customerID, imageID)
}

// Upload stores data under a fresh image id and then updates the customer's
// pointer. The blob is written before the pointer so a failure leaves at
// worst a missing pointer, never a dangling one. Blobs referenced by an old
// pointer are not deleted.
func (s *ProfileImageService) Upload(ctx context.Context, customerID int64, data []byte) (string, error) {
	exists, err := s.repo.ExistsByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperrors.NotFound("customer", customerID)
	}

	imageID := uuid.New().String()
	key := imageKey(customerID, imageID)

	if err := s.store.Put(ctx, s.bucket, key, data); err != nil {
		return "", apperrors.Storage(err)
	}

	if err := s.repo.SetProfileImageID(ctx, customerID, imageID); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "profile image uploaded",
		slog.Int64("customer_id", customerID),
		slog.String("image_id", imageID),
		slog.Int("size", len(data)),
	)

	return imageID, nil
}

// Download returns the bytes of the customer's current profile image. A blank
// pointer means the image was never set, which is NotFound rather than a
// storage failure.
func (s *ProfileImageService) Download(ctx context.Context, customerID int64) ([]byte, error) {
	customer, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if customer.ProfileImageID == "" {
		return nil, apperrors.NotFoundMsg("profile image not set")
	}

	data, err := s.store.Get(ctx, s.bucket, imageKey(customerID, customer.ProfileImageID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperrors.NotFoundMsg("profile image blob missing")
		}
		return nil, apperrors.Storage(err)
	}

	return data, nil
}
