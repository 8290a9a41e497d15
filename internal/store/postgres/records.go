package postgres

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/xid"
)

const statusUpdateSQL = `
	UPDATE documents
	SET body = body || jsonb_build_object('status', $3::text, 'updatedAt', $4::text)
	WHERE collection = $1 AND id = $2
	RETURNING body
`

func (s *Store) CreateRepair(ctx context.Context, repair domain.Repair) (*domain.Repair, error) {
	if repair.ID == "" {
		repair.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colRepairs, repair.ID, repair.CreatedAt, repair); err != nil {
		return nil, err
	}
	return &repair, nil
}

func (s *Store) ListRepairs(ctx context.Context, limit int) ([]domain.Repair, error) {
	return listDocs[domain.Repair](ctx, s.db, colRepairs, false, limit)
}

func (s *Store) UpdateRepairStatus(ctx context.Context, id string, status string, at time.Time) (*domain.Repair, error) {
	return updateDoc[domain.Repair](ctx, s.db, statusUpdateSQL, colRepairs, id, status, stamp(at))
}

func (s *Store) CountRepairs(ctx context.Context, statuses ...string) (int64, error) {
	return countDocs(ctx, s.db, colRepairs, statuses)
}

func (s *Store) CreateDelivery(ctx context.Context, delivery domain.Delivery) (*domain.Delivery, error) {
	if delivery.ID == "" {
		delivery.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colDeliveries, delivery.ID, delivery.CreatedAt, delivery); err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (s *Store) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	return listDocs[domain.Delivery](ctx, s.db, colDeliveries, false, 0)
}

func (s *Store) UpdateDeliveryStatus(ctx context.Context, id string, status string, at time.Time) (*domain.Delivery, error) {
	return updateDoc[domain.Delivery](ctx, s.db, statusUpdateSQL, colDeliveries, id, status, stamp(at))
}

func (s *Store) DeleteDelivery(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, colDeliveries, id)
}

func (s *Store) CountDeliveries(ctx context.Context, statuses ...string) (int64, error) {
	return countDocs(ctx, s.db, colDeliveries, statuses)
}

func (s *Store) CreateHirePurchase(ctx context.Context, account domain.HirePurchase) (*domain.HirePurchase, error) {
	if account.ID == "" {
		account.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colHirePurchases, account.ID, account.CreatedAt, account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Store) ListHirePurchases(ctx context.Context) ([]domain.HirePurchase, error) {
	return listDocs[domain.HirePurchase](ctx, s.db, colHirePurchases, false, 0)
}

func (s *Store) GetHirePurchase(ctx context.Context, id string) (*domain.HirePurchase, error) {
	return getDoc[domain.HirePurchase](ctx, s.db, colHirePurchases, id)
}

func (s *Store) SaveHirePurchase(ctx context.Context, account domain.HirePurchase) (*domain.HirePurchase, error) {
	if err := replaceDoc(ctx, s.db, colHirePurchases, account.ID, account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.ID == "" {
		expense.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colExpenses, expense.ID, expense.Date, expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return listDocs[domain.Expense](ctx, s.db, colExpenses, false, 0)
}

func (s *Store) ListExpensesBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Expense, error) {
	return listDocsBetween[domain.Expense](ctx, s.db, colExpenses, from, to)
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, colExpenses, id)
}

func (s *Store) CreateReload(ctx context.Context, reload domain.Reload) (*domain.Reload, error) {
	if reload.ID == "" {
		reload.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colReloads, reload.ID, reload.CreatedAt, reload); err != nil {
		return nil, err
	}
	return &reload, nil
}

func (s *Store) ListReloads(ctx context.Context, limit int) ([]domain.Reload, error) {
	return listDocs[domain.Reload](ctx, s.db, colReloads, false, limit)
}

func (s *Store) CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	if notification.ID == "" {
		notification.ID = xid.New()
	}
	if err := insertDoc(ctx, s.db, colNotifications, notification.ID, notification.CreatedAt, notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (s *Store) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	return listDocs[domain.Notification](ctx, s.db, colNotifications, false, 0)
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string, at time.Time) (*domain.Notification, error) {
	return updateDoc[domain.Notification](ctx, s.db, `
		UPDATE documents
		SET body = body || jsonb_build_object('isRead', true, 'updatedAt', $3::text)
		WHERE collection = $1 AND id = $2
		RETURNING body
	`, colNotifications, id, stamp(at))
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET body = body || jsonb_build_object('isRead', true, 'updatedAt', $2::text)
		WHERE collection = $1 AND NOT (body->>'isRead')::boolean
	`, colNotifications, stamp(at))
	if err != nil {
		return 0, errors.Wrap(err, "mark notifications read")
	}
	return res.RowsAffected()
}

func (s *Store) ClearNotifications(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, colNotifications)
	if err != nil {
		return 0, errors.Wrap(err, "clear notifications")
	}
	return res.RowsAffected()
}
