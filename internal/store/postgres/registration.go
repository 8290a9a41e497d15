package postgres

import (
	"context"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/xid"
)

func (s *Store) CreateStaff(ctx context.Context, staff domain.Staff) (*domain.Staff, error) {
	if staff.ID == "" {
		staff.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colStaff, staff.ID, staff.CreatedAt, staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	return listDocs[domain.Staff](ctx, s.db, colStaff, false, 0)
}

func (s *Store) GetStaff(ctx context.Context, id string) (*domain.Staff, error) {
	return getDoc[domain.Staff](ctx, s.db, colStaff, id)
}

func (s *Store) SaveStaff(ctx context.Context, staff domain.Staff) (*domain.Staff, error) {
	if err := replaceDoc(ctx, s.db, colStaff, staff.ID, staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *Store) DeleteStaff(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, colStaff, id)
}

func (s *Store) CountStaff(ctx context.Context) (int64, error) {
	return countDocs(ctx, s.db, colStaff, nil)
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colCustomers, customer.ID, customer.CreatedAt, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return listDocs[domain.Customer](ctx, s.db, colCustomers, false, 0)
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return getDoc[domain.Customer](ctx, s.db, colCustomers, id)
}

func (s *Store) SaveCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if err := replaceDoc(ctx, s.db, colCustomers, customer.ID, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, colCustomers, id)
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	return countDocs(ctx, s.db, colCustomers, nil)
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.ID == "" {
		supplier.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colSuppliers, supplier.ID, supplier.CreatedAt, supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return listDocs[domain.Supplier](ctx, s.db, colSuppliers, false, 0)
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return getDoc[domain.Supplier](ctx, s.db, colSuppliers, id)
}

func (s *Store) SaveSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if err := replaceDoc(ctx, s.db, colSuppliers, supplier.ID, supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, colSuppliers, id)
}
