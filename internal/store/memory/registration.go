package memory

import (
	"context"
	"slices"
	"strings"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

func (s *Store) CreateStaff(_ context.Context, staff domain.Staff) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if staff.ID == "" {
		staff.ID = xid.New()
	}
	if s.staffEmailTaken(staff.Email, staff.ID) {
		return nil, store.ErrDuplicate
	}
	s.staff[staff.ID] = staff
	created := staff
	return &created, nil
}

func (s *Store) ListStaff(_ context.Context) ([]domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.staff, nil, func(a, b domain.Staff) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0), nil
}

func (s *Store) GetStaff(_ context.Context, id string) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff, exists := s.staff[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return &staff, nil
}

func (s *Store) SaveStaff(_ context.Context, staff domain.Staff) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.staff[staff.ID]; !exists {
		return nil, store.ErrNotFound
	}
	if s.staffEmailTaken(staff.Email, staff.ID) {
		return nil, store.ErrDuplicate
	}
	s.staff[staff.ID] = staff
	saved := staff
	return &saved, nil
}

func (s *Store) DeleteStaff(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(s.staff, id)
}

func (s *Store) CountStaff(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.staff)), nil
}

func (s *Store) staffEmailTaken(email string, exceptID string) bool {
	for id, existing := range s.staff {
		if id != exceptID && strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" {
		customer.ID = xid.New()
	}
	s.customers[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.customers, nil, func(a, b domain.Customer) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0), nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return &customer, nil
}

func (s *Store) SaveCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[customer.ID]; !exists {
		return nil, store.ErrNotFound
	}
	s.customers[customer.ID] = customer
	saved := customer
	return &saved, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(s.customers, id)
}

func (s *Store) CountCustomers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.customers)), nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if supplier.ID == "" {
		supplier.ID = xid.New()
	}
	supplier.ProductsSupplied = slices.Clone(supplier.ProductsSupplied)
	s.suppliers[supplier.ID] = supplier
	created := cloneSupplier(supplier)
	return &created, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := sortedValues(s.suppliers, nil, func(a, b domain.Supplier) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0)
	for i := range suppliers {
		suppliers[i] = cloneSupplier(suppliers[i])
	}
	return suppliers, nil
}

func (s *Store) GetSupplier(_ context.Context, id string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, exists := s.suppliers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := cloneSupplier(supplier)
	return &found, nil
}

func (s *Store) SaveSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suppliers[supplier.ID]; !exists {
		return nil, store.ErrNotFound
	}
	supplier = cloneSupplier(supplier)
	s.suppliers[supplier.ID] = supplier
	saved := cloneSupplier(supplier)
	return &saved, nil
}

func (s *Store) DeleteSupplier(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(s.suppliers, id)
}

func cloneSupplier(supplier domain.Supplier) domain.Supplier {
	supplier.ProductsSupplied = slices.Clone(supplier.ProductsSupplied)
	return supplier
}
