package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

func (s *Service) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	return s.repo.ListStaff(ctx)
}

func (s *Service) CreateStaff(ctx context.Context, req domain.StaffRequest) (domain.Staff, error) {
	if err := requireAdmin(ActorFromContext(ctx)); err != nil {
		return domain.Staff{}, err
	}
	trimStrings(req.Name, req.Email, req.Phone, req.Role, req.NIC, req.Status)
	if err := s.check(req); err != nil {
		return domain.Staff{}, err
	}
	switch {
	case isBlank(req.Name):
		return domain.Staff{}, invalid("name is required")
	case isBlank(req.Email):
		return domain.Staff{}, invalid("email is required")
	case isBlank(req.Role):
		return domain.Staff{}, invalid("role is required")
	}

	now := s.clock()
	staff := domain.Staff{
		Status:    domain.StatusActive,
		JoinDate:  now,
		CreatedAt: now,
	}
	s.applyStaff(&staff, req)
	created, err := s.repo.CreateStaff(ctx, staff)
	if errors.Is(err, store.ErrDuplicate) {
		return domain.Staff{}, invalid("Staff email already exists")
	}
	if err != nil {
		return domain.Staff{}, err
	}
	return *created, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id string, req domain.StaffRequest) (domain.Staff, error) {
	if err := requireAdmin(ActorFromContext(ctx)); err != nil {
		return domain.Staff{}, err
	}
	if !xid.Valid(id) {
		return domain.Staff{}, store.ErrNotFound
	}
	trimStrings(req.Name, req.Email, req.Phone, req.Role, req.NIC, req.Status)
	if err := s.check(req); err != nil {
		return domain.Staff{}, err
	}

	staff, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return domain.Staff{}, err
	}
	s.applyStaff(staff, req)
	saved, err := s.repo.SaveStaff(ctx, *staff)
	if errors.Is(err, store.ErrDuplicate) {
		return domain.Staff{}, invalid("Staff email already exists")
	}
	if err != nil {
		return domain.Staff{}, err
	}
	return *saved, nil
}

func (s *Service) applyStaff(staff *domain.Staff, req domain.StaffRequest) {
	setString(&staff.Name, req.Name)
	setString(&staff.Email, req.Email)
	setString(&staff.Phone, req.Phone)
	setString(&staff.Role, req.Role)
	setString(&staff.Address, req.Address)
	setString(&staff.NIC, req.NIC)
	setString(&staff.Status, req.Status)
	if req.Salary != nil {
		staff.Salary = *req.Salary
	}
	if req.JoinDate != nil && !req.JoinDate.IsZero() {
		staff.JoinDate = req.JoinDate.UTC()
	}
	staff.UpdatedAt = s.clock()
}

func (s *Service) DeleteStaff(ctx context.Context, id string) error {
	if err := requireAdmin(ActorFromContext(ctx)); err != nil {
		return err
	}
	if !xid.Valid(id) {
		return store.ErrNotFound
	}
	return s.repo.DeleteStaff(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerRequest) (domain.Customer, error) {
	trimStrings(req.Name, req.Email, req.Phone, req.NIC, req.Status)
	if err := s.check(req); err != nil {
		return domain.Customer{}, err
	}
	switch {
	case isBlank(req.Name):
		return domain.Customer{}, invalid("name is required")
	case isBlank(req.Phone):
		return domain.Customer{}, invalid("phone is required")
	}

	now := s.clock()
	customer := domain.Customer{Status: domain.StatusActive, CreatedAt: now}
	s.applyCustomer(&customer, req)
	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerRequest) (domain.Customer, error) {
	if !xid.Valid(id) {
		return domain.Customer{}, store.ErrNotFound
	}
	trimStrings(req.Name, req.Email, req.Phone, req.NIC, req.Status)
	if err := s.check(req); err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	s.applyCustomer(customer, req)
	saved, err := s.repo.SaveCustomer(ctx, *customer)
	if err != nil {
		return domain.Customer{}, err
	}
	return *saved, nil
}

func (s *Service) applyCustomer(customer *domain.Customer, req domain.CustomerRequest) {
	setString(&customer.Name, req.Name)
	setString(&customer.Email, req.Email)
	setString(&customer.Phone, req.Phone)
	setString(&customer.Address, req.Address)
	setString(&customer.NIC, req.NIC)
	setString(&customer.Status, req.Status)
	if req.TotalPurchases != nil {
		customer.TotalPurchases = *req.TotalPurchases
	}
	if req.LoyaltyPoints != nil {
		customer.LoyaltyPoints = *req.LoyaltyPoints
	}
	customer.UpdatedAt = s.clock()
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if !xid.Valid(id) {
		return store.ErrNotFound
	}
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierRequest) (domain.Supplier, error) {
	trimStrings(req.Name, req.Company, req.Email, req.Phone, req.Status)
	if err := s.check(req); err != nil {
		return domain.Supplier{}, err
	}
	switch {
	case isBlank(req.Name):
		return domain.Supplier{}, invalid("name is required")
	case isBlank(req.Phone):
		return domain.Supplier{}, invalid("phone is required")
	}

	now := s.clock()
	supplier := domain.Supplier{
		Status:           domain.StatusActive,
		ProductsSupplied: []string{},
		CreatedAt:        now,
	}
	s.applySupplier(&supplier, req)
	created, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return domain.Supplier{}, err
	}
	return *created, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id string, req domain.SupplierRequest) (domain.Supplier, error) {
	if !xid.Valid(id) {
		return domain.Supplier{}, store.ErrNotFound
	}
	trimStrings(req.Name, req.Company, req.Email, req.Phone, req.Status)
	if err := s.check(req); err != nil {
		return domain.Supplier{}, err
	}

	supplier, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.applySupplier(supplier, req)
	saved, err := s.repo.SaveSupplier(ctx, *supplier)
	if err != nil {
		return domain.Supplier{}, err
	}
	return *saved, nil
}

func (s *Service) applySupplier(supplier *domain.Supplier, req domain.SupplierRequest) {
	setString(&supplier.Name, req.Name)
	setString(&supplier.Company, req.Company)
	setString(&supplier.Email, req.Email)
	setString(&supplier.Phone, req.Phone)
	setString(&supplier.Address, req.Address)
	setString(&supplier.PaymentTerms, req.PaymentTerms)
	setString(&supplier.Status, req.Status)
	if req.ProductsSupplied != nil {
		supplier.ProductsSupplied = append([]string{}, (*req.ProductsSupplied)...)
	}
	supplier.UpdatedAt = s.clock()
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	if !xid.Valid(id) {
		return store.ErrNotFound
	}
	return s.repo.DeleteSupplier(ctx, id)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func trimStrings(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}

func isBlank(v *string) bool {
	return v == nil || *v == ""
}
