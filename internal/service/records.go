package service

import (
	"context"
	"strings"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

const reloadHistoryLimit = 50

var deliveryStatuses = map[string]bool{
	domain.DeliveryStatusPending:   true,
	domain.DeliveryStatusInTransit: true,
	domain.DeliveryStatusDelivered: true,
	domain.DeliveryStatusCancelled: true,
}

func (s *Service) ListRepairs(ctx context.Context) ([]domain.Repair, error) {
	return s.repo.ListRepairs(ctx, 0)
}

func (s *Service) CreateRepair(ctx context.Context, req domain.RepairCreateRequest) (domain.Repair, error) {
	if err := s.check(req); err != nil {
		return domain.Repair{}, err
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.RepairStatusPending
	}

	now := s.clock()
	created, err := s.repo.CreateRepair(ctx, domain.Repair{
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		CustomerAddress:  req.CustomerAddress,
		DeviceModel:      strings.TrimSpace(req.DeviceModel),
		IMEI:             strings.TrimSpace(req.IMEI),
		IssueDescription: req.IssueDescription,
		Status:           status,
		EstimatedCost:    req.EstimatedCost,
		TechnicianNotes:  req.TechnicianNotes,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return domain.Repair{}, err
	}
	return *created, nil
}

func (s *Service) UpdateRepairStatus(ctx context.Context, id string, req domain.StatusUpdateRequest) (domain.Repair, error) {
	if !xid.Valid(id) {
		return domain.Repair{}, store.ErrNotFound
	}
	req.Status = strings.TrimSpace(req.Status)
	if err := s.check(req); err != nil {
		return domain.Repair{}, err
	}
	updated, err := s.repo.UpdateRepairStatus(ctx, id, req.Status, s.clock())
	if err != nil {
		return domain.Repair{}, err
	}
	return *updated, nil
}

func (s *Service) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	return s.repo.ListDeliveries(ctx)
}

// CreateDelivery stores the delivery and signals a dashboard refresh, since
// active deliveries are part of the stats.
func (s *Service) CreateDelivery(ctx context.Context, req domain.DeliveryCreateRequest) (domain.Delivery, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerAddress = strings.TrimSpace(req.CustomerAddress)
	if err := s.check(req); err != nil {
		return domain.Delivery{}, err
	}
	status := req.Status
	if status == "" {
		status = domain.DeliveryStatusPending
	}
	items := append([]domain.DeliveryItem{}, req.Items...)

	now := s.clock()
	created, err := s.repo.CreateDelivery(ctx, domain.Delivery{
		CustomerName:    req.CustomerName,
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: req.CustomerAddress,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		Status:          status,
		TrackingNumber:  strings.TrimSpace(req.TrackingNumber),
		DeliveryDate:    req.DeliveryDate,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return domain.Delivery{}, err
	}
	s.notify()
	return *created, nil
}

func (s *Service) UpdateDeliveryStatus(ctx context.Context, id string, req domain.StatusUpdateRequest) (domain.Delivery, error) {
	if !xid.Valid(id) {
		return domain.Delivery{}, store.ErrNotFound
	}
	req.Status = strings.TrimSpace(req.Status)
	if err := s.check(req); err != nil {
		return domain.Delivery{}, err
	}
	if !deliveryStatuses[req.Status] {
		return domain.Delivery{}, invalid("status must be one of: Pending, In Transit, Delivered, Cancelled")
	}
	updated, err := s.repo.UpdateDeliveryStatus(ctx, id, req.Status, s.clock())
	if err != nil {
		return domain.Delivery{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteDelivery(ctx context.Context, id string) error {
	if !xid.Valid(id) {
		return store.ErrNotFound
	}
	return s.repo.DeleteDelivery(ctx, id)
}

func (s *Service) ListHirePurchases(ctx context.Context) ([]domain.HirePurchase, error) {
	return s.repo.ListHirePurchases(ctx)
}

func (s *Service) CreateHirePurchase(ctx context.Context, req domain.HirePurchaseCreateRequest) (domain.HirePurchase, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if err := s.check(req); err != nil {
		return domain.HirePurchase{}, err
	}

	installments := make([]domain.Installment, 0, len(req.Installments))
	allPaid := len(req.Installments) > 0
	for _, in := range req.Installments {
		installments = append(installments, domain.Installment{
			ID:     xid.New(),
			Date:   in.Date.UTC(),
			Amount: in.Amount,
			Paid:   in.Paid,
		})
		allPaid = allPaid && in.Paid
	}
	status := domain.HireStatusActive
	if allPaid {
		status = domain.HireStatusCompleted
	}

	now := s.clock()
	created, err := s.repo.CreateHirePurchase(ctx, domain.HirePurchase{
		CustomerName: req.CustomerName,
		CustomerNIC:  strings.TrimSpace(req.CustomerNIC),
		ProductName:  strings.TrimSpace(req.ProductName),
		TotalAmount:  req.TotalAmount,
		DownPayment:  req.DownPayment,
		Installments: installments,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.HirePurchase{}, err
	}
	return *created, nil
}

// NotFoundError is a not-found condition with a client-facing message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Unwrap() error { return store.ErrNotFound }

// ErrInstallmentNotFound is returned when the account exists but has no
// installment with the requested id.
var ErrInstallmentNotFound = &NotFoundError{Message: "Installment not found"}

// CollectPayment marks one installment paid and completes the account once
// every installment is paid.
func (s *Service) CollectPayment(ctx context.Context, accountID string, req domain.CollectPaymentRequest) (domain.HirePurchase, error) {
	if !xid.Valid(accountID) {
		return domain.HirePurchase{}, store.ErrNotFound
	}
	req.InstallmentID = strings.TrimSpace(req.InstallmentID)
	if err := s.check(req); err != nil {
		return domain.HirePurchase{}, err
	}

	account, err := s.repo.GetHirePurchase(ctx, accountID)
	if err != nil {
		return domain.HirePurchase{}, err
	}

	found := false
	allPaid := true
	for i := range account.Installments {
		if account.Installments[i].ID == req.InstallmentID {
			account.Installments[i].Paid = true
			found = true
		}
		allPaid = allPaid && account.Installments[i].Paid
	}
	if !found {
		return domain.HirePurchase{}, ErrInstallmentNotFound
	}
	if allPaid {
		account.Status = domain.HireStatusCompleted
	}
	account.UpdatedAt = s.clock()

	saved, err := s.repo.SaveHirePurchase(ctx, *account)
	if err != nil {
		return domain.HirePurchase{}, err
	}
	return *saved, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return s.repo.ListExpenses(ctx)
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	req.Type = strings.TrimSpace(req.Type)
	if err := s.check(req); err != nil {
		return domain.Expense{}, err
	}

	now := s.clock()
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}
	created, err := s.repo.CreateExpense(ctx, domain.Expense{
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Expense{}, err
	}
	return *created, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if !xid.Valid(id) {
		return store.ErrNotFound
	}
	return s.repo.DeleteExpense(ctx, id)
}

func (s *Service) CreateReload(ctx context.Context, req domain.ReloadCreateRequest) (domain.Reload, error) {
	req.Provider = strings.TrimSpace(req.Provider)
	req.Number = strings.TrimSpace(req.Number)
	if err := s.check(req); err != nil {
		return domain.Reload{}, err
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.ReloadStatusCompleted
	}

	now := s.clock()
	created, err := s.repo.CreateReload(ctx, domain.Reload{
		Provider:  req.Provider,
		Number:    req.Number,
		Amount:    req.Amount,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Reload{}, err
	}
	return *created, nil
}

func (s *Service) ReloadHistory(ctx context.Context) ([]domain.Reload, error) {
	return s.repo.ListReloads(ctx, reloadHistoryLimit)
}

func (s *Service) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	return s.repo.ListNotifications(ctx)
}

func (s *Service) CreateNotification(ctx context.Context, req domain.NotificationCreateRequest) (domain.Notification, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.check(req); err != nil {
		return domain.Notification{}, err
	}
	kind := req.Type
	if kind == "" {
		kind = domain.NotificationTypeInfo
	}

	now := s.clock()
	created, err := s.repo.CreateNotification(ctx, domain.Notification{
		Title:       req.Title,
		Description: req.Description,
		Type:        kind,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Notification{}, err
	}
	return *created, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) (domain.Notification, error) {
	if !xid.Valid(id) {
		return domain.Notification{}, store.ErrNotFound
	}
	updated, err := s.repo.MarkNotificationRead(ctx, id, s.clock())
	if err != nil {
		return domain.Notification{}, err
	}
	return *updated, nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, s.clock())
}

func (s *Service) ClearNotifications(ctx context.Context) (int64, error) {
	return s.repo.ClearNotifications(ctx)
}
