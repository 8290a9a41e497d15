package memory

import (
	"context"
	"slices"
	"time"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

func (s *Store) CreateRepair(_ context.Context, repair domain.Repair) (*domain.Repair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if repair.ID == "" {
		repair.ID = xid.New()
	}
	s.repairs[repair.ID] = repair
	created := repair
	return &created, nil
}

func (s *Store) ListRepairs(_ context.Context, limit int) ([]domain.Repair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.repairs, nil, func(a, b domain.Repair) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, limit), nil
}

func (s *Store) UpdateRepairStatus(_ context.Context, id string, status string, at time.Time) (*domain.Repair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repair, exists := s.repairs[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	repair.Status = status
	repair.UpdatedAt = at
	s.repairs[id] = repair
	updated := repair
	return &updated, nil
}

func (s *Store) CountRepairs(_ context.Context, statuses ...string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return countRows(s.repairs, func(r domain.Repair) bool {
		return len(statuses) == 0 || slices.Contains(statuses, r.Status)
	}), nil
}

func (s *Store) CreateDelivery(_ context.Context, delivery domain.Delivery) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delivery.ID == "" {
		delivery.ID = xid.New()
	}
	delivery.Items = slices.Clone(delivery.Items)
	s.deliveries[delivery.ID] = delivery
	created := cloneDelivery(delivery)
	return &created, nil
}

func (s *Store) ListDeliveries(_ context.Context) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deliveries := sortedValues(s.deliveries, nil, func(a, b domain.Delivery) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0)
	for i := range deliveries {
		deliveries[i] = cloneDelivery(deliveries[i])
	}
	return deliveries, nil
}

func (s *Store) UpdateDeliveryStatus(_ context.Context, id string, status string, at time.Time) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delivery, exists := s.deliveries[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	delivery.Status = status
	delivery.UpdatedAt = at
	s.deliveries[id] = delivery
	updated := cloneDelivery(delivery)
	return &updated, nil
}

func (s *Store) DeleteDelivery(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(s.deliveries, id)
}

func (s *Store) CountDeliveries(_ context.Context, statuses ...string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return countRows(s.deliveries, func(d domain.Delivery) bool {
		return len(statuses) == 0 || slices.Contains(statuses, d.Status)
	}), nil
}

func (s *Store) CreateHirePurchase(_ context.Context, account domain.HirePurchase) (*domain.HirePurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.ID == "" {
		account.ID = xid.New()
	}
	account.Installments = slices.Clone(account.Installments)
	s.hirePurchases[account.ID] = account
	created := cloneHirePurchase(account)
	return &created, nil
}

func (s *Store) ListHirePurchases(_ context.Context) ([]domain.HirePurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := sortedValues(s.hirePurchases, nil, func(a, b domain.HirePurchase) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0)
	for i := range accounts {
		accounts[i] = cloneHirePurchase(accounts[i])
	}
	return accounts, nil
}

func (s *Store) GetHirePurchase(_ context.Context, id string) (*domain.HirePurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.hirePurchases[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := cloneHirePurchase(account)
	return &found, nil
}

func (s *Store) SaveHirePurchase(_ context.Context, account domain.HirePurchase) (*domain.HirePurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.hirePurchases[account.ID]; !exists {
		return nil, store.ErrNotFound
	}
	account = cloneHirePurchase(account)
	s.hirePurchases[account.ID] = account
	saved := cloneHirePurchase(account)
	return &saved, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.ID == "" {
		expense.ID = xid.New()
	}
	s.expenses[expense.ID] = expense
	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.expenses, nil, expenseNewestFirst, 0), nil
}

func (s *Store) ListExpensesBetween(_ context.Context, from time.Time, to time.Time) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.expenses, func(e domain.Expense) bool {
		return !e.Date.Before(from) && e.Date.Before(to)
	}, expenseNewestFirst, 0), nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRow(s.expenses, id)
}

func (s *Store) CreateReload(_ context.Context, reload domain.Reload) (*domain.Reload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reload.ID == "" {
		reload.ID = xid.New()
	}
	s.reloads[reload.ID] = reload
	created := reload
	return &created, nil
}

func (s *Store) ListReloads(_ context.Context, limit int) ([]domain.Reload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.reloads, nil, func(a, b domain.Reload) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, limit), nil
}

func (s *Store) CreateNotification(_ context.Context, notification domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == "" {
		notification.ID = xid.New()
	}
	s.notifications[notification.ID] = notification
	created := notification
	return &created, nil
}

func (s *Store) ListNotifications(_ context.Context) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.notifications, nil, func(a, b domain.Notification) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, 0), nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string, at time.Time) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, exists := s.notifications[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	notification.IsRead = true
	notification.UpdatedAt = at
	s.notifications[id] = notification
	updated := notification
	return &updated, nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, notification := range s.notifications {
		if notification.IsRead {
			continue
		}
		notification.IsRead = true
		notification.UpdatedAt = at
		s.notifications[id] = notification
		n++
	}
	return n, nil
}

func (s *Store) ClearNotifications(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.notifications))
	clear(s.notifications)
	return n, nil
}

func expenseNewestFirst(a, b domain.Expense) int {
	return newestFirst(a.Date, b.Date, a.ID, b.ID)
}

func cloneDelivery(d domain.Delivery) domain.Delivery {
	d.Items = slices.Clone(d.Items)
	if d.DeliveryDate != nil {
		at := *d.DeliveryDate
		d.DeliveryDate = &at
	}
	return d
}

func cloneHirePurchase(hp domain.HirePurchase) domain.HirePurchase {
	hp.Installments = slices.Clone(hp.Installments)
	return hp
}
