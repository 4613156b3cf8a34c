package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service implements discount management. Privilege is enforced by the
// caller before any method runs.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a discount Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns all active discounts.
func (s *Service) List(ctx context.Context) ([]Discount, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list discounts")
	}
	return list, nil
}

// Get returns an active discount.
func (s *Service) Get(ctx context.Context, id string) (*Discount, error) {
	d, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get discount %s", id)
	}
	return d, nil
}

// Create validates and stores a new discount.
func (s *Service) Create(ctx context.Context, in Input) (*Discount, error) {
	now := s.now().UTC()
	d := &Discount{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(d)
	if err := validate(d); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, errors.Wrapf(err, "create discount %q", d.Code)
	}
	return d, nil
}

// Update replaces an active discount. Setting Active to false hides it from
// all later queries.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Discount, error) {
	return s.modify(ctx, id, in.apply)
}

// Patch changes only the fields set in p.
func (s *Service) Patch(ctx context.Context, id string, p Patch) (*Discount, error) {
	return s.modify(ctx, id, p.apply)
}

func (s *Service) modify(ctx context.Context, id string, change func(*Discount)) (*Discount, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	change(d)
	if err := validate(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateActive(ctx, d); err != nil {
		return nil, errors.Wrapf(err, "update discount %s", id)
	}
	return d, nil
}

// Delete removes an active discount.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteActive(ctx, id); err != nil {
		return errors.Wrapf(err, "delete discount %s", id)
	}
	return nil
}
