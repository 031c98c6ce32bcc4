package service

import (
	"context"
	"errors"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPackageNotFound = errors.New("package not found")
	ErrInvalidPackage  = errors.New("package is invalid")
)

// PackageService manages the purchasable subscription tiers.
type PackageService interface {
	CreatePackage(ctx context.Context, pkg *domain.Package) (*domain.Package, error)
	GetPackage(ctx context.Context, id primitive.ObjectID) (*domain.Package, error)
	ListActivePackages(ctx context.Context) ([]domain.Package, error)
	UpdatePackage(ctx context.Context, pkg *domain.Package) (*domain.Package, error)
	DeletePackage(ctx context.Context, id primitive.ObjectID) error
}

type packageService struct {
	packageRepo repository.PackageRepository
}

// NewPackageService creates a new instance of packageService.
func NewPackageService(packageRepo repository.PackageRepository) PackageService {
	return &packageService{packageRepo: packageRepo}
}

// CreatePackage validates the tier and persists it with its discounted
// price derived.
func (s *packageService) CreatePackage(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	if err := validatePackage(pkg); err != nil {
		return nil, err
	}
	pkg.ApplyDiscount()

	id, err := s.packageRepo.Create(ctx, pkg)
	if err != nil {
		return nil, err
	}
	pkg.ID = id
	return pkg, nil
}

// GetPackage retrieves one package.
func (s *packageService) GetPackage(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

// ListActivePackages lists the purchasable tiers.
func (s *packageService) ListActivePackages(ctx context.Context) ([]domain.Package, error) {
	return s.packageRepo.GetActive(ctx)
}

// UpdatePackage validates and persists changes to a tier.
func (s *packageService) UpdatePackage(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	if err := validatePackage(pkg); err != nil {
		return nil, err
	}
	pkg.ApplyDiscount()

	if err := s.packageRepo.Update(ctx, pkg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

// DeletePackage removes a tier.
func (s *packageService) DeletePackage(ctx context.Context, id primitive.ObjectID) error {
	err := s.packageRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPackageNotFound
	}
	return err
}

func validatePackage(pkg *domain.Package) error {
	if pkg.Name == "" || pkg.Price < 0 || pkg.DurationInDays <= 0 {
		return ErrInvalidPackage
	}
	if pkg.Discount < 0 || pkg.Discount > 100 {
		return ErrInvalidPackage
	}
	if pkg.Currency == "" {
		pkg.Currency = "USD"
	}
	return nil
}
