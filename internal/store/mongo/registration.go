package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/xid"
)

func (s *Store) CreateStaff(ctx context.Context, staff domain.Staff) (*domain.Staff, error) {
	if staff.ID == "" {
		staff.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colStaff), staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	return findMany[domain.Staff](ctx, s.col(colStaff), bson.D{}, sortBy("createdAt", -1, 0))
}

func (s *Store) GetStaff(ctx context.Context, id string) (*domain.Staff, error) {
	return findByID[domain.Staff](ctx, s.col(colStaff), id)
}

func (s *Store) SaveStaff(ctx context.Context, staff domain.Staff) (*domain.Staff, error) {
	if err := replaceByID(ctx, s.col(colStaff), staff.ID, staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *Store) DeleteStaff(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colStaff), id)
}

func (s *Store) CountStaff(ctx context.Context) (int64, error) {
	n, err := s.col(colStaff).CountDocuments(ctx, bson.D{})
	return n, errors.Wrap(err, "count staff")
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colCustomers), customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return findMany[domain.Customer](ctx, s.col(colCustomers), bson.D{}, sortBy("createdAt", -1, 0))
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return findByID[domain.Customer](ctx, s.col(colCustomers), id)
}

func (s *Store) SaveCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if err := replaceByID(ctx, s.col(colCustomers), customer.ID, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colCustomers), id)
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	n, err := s.col(colCustomers).CountDocuments(ctx, bson.D{})
	return n, errors.Wrap(err, "count customers")
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.ID == "" {
		supplier.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colSuppliers), supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return findMany[domain.Supplier](ctx, s.col(colSuppliers), bson.D{}, sortBy("createdAt", -1, 0))
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return findByID[domain.Supplier](ctx, s.col(colSuppliers), id)
}

func (s *Store) SaveSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if err := replaceByID(ctx, s.col(colSuppliers), supplier.ID, supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colSuppliers), id)
}
