package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/xid"
)

func statusUpdate(status string, at time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: at},
	}}}
}

func (s *Store) CreateRepair(ctx context.Context, repair domain.Repair) (*domain.Repair, error) {
	if repair.ID == "" {
		repair.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colRepairs), repair); err != nil {
		return nil, err
	}
	return &repair, nil
}

func (s *Store) ListRepairs(ctx context.Context, limit int) ([]domain.Repair, error) {
	return findMany[domain.Repair](ctx, s.col(colRepairs), bson.D{}, sortBy("createdAt", -1, limit))
}

func (s *Store) UpdateRepairStatus(ctx context.Context, id string, status string, at time.Time) (*domain.Repair, error) {
	return findAndUpdate[domain.Repair](ctx, s.col(colRepairs), byID(id), statusUpdate(status, at))
}

func (s *Store) CountRepairs(ctx context.Context, statuses ...string) (int64, error) {
	return countByStatus(ctx, s.col(colRepairs), statuses)
}

func (s *Store) CreateDelivery(ctx context.Context, delivery domain.Delivery) (*domain.Delivery, error) {
	if delivery.ID == "" {
		delivery.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colDeliveries), delivery); err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (s *Store) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	return findMany[domain.Delivery](ctx, s.col(colDeliveries), bson.D{}, sortBy("createdAt", -1, 0))
}

func (s *Store) UpdateDeliveryStatus(ctx context.Context, id string, status string, at time.Time) (*domain.Delivery, error) {
	return findAndUpdate[domain.Delivery](ctx, s.col(colDeliveries), byID(id), statusUpdate(status, at))
}

func (s *Store) DeleteDelivery(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colDeliveries), id)
}

func (s *Store) CountDeliveries(ctx context.Context, statuses ...string) (int64, error) {
	return countByStatus(ctx, s.col(colDeliveries), statuses)
}

func (s *Store) CreateHirePurchase(ctx context.Context, account domain.HirePurchase) (*domain.HirePurchase, error) {
	if account.ID == "" {
		account.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colHirePurchases), account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Store) ListHirePurchases(ctx context.Context) ([]domain.HirePurchase, error) {
	return findMany[domain.HirePurchase](ctx, s.col(colHirePurchases), bson.D{}, sortBy("createdAt", -1, 0))
}

func (s *Store) GetHirePurchase(ctx context.Context, id string) (*domain.HirePurchase, error) {
	return findByID[domain.HirePurchase](ctx, s.col(colHirePurchases), id)
}

func (s *Store) SaveHirePurchase(ctx context.Context, account domain.HirePurchase) (*domain.HirePurchase, error) {
	if err := replaceByID(ctx, s.col(colHirePurchases), account.ID, account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.ID == "" {
		expense.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colExpenses), expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return findMany[domain.Expense](ctx, s.col(colExpenses), bson.D{}, sortBy("date", -1, 0))
}

func (s *Store) ListExpensesBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Expense, error) {
	return findMany[domain.Expense](ctx, s.col(colExpenses), dateRange("date", from, to), sortBy("date", -1, 0))
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colExpenses), id)
}

func (s *Store) CreateReload(ctx context.Context, reload domain.Reload) (*domain.Reload, error) {
	if reload.ID == "" {
		reload.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colReloads), reload); err != nil {
		return nil, err
	}
	return &reload, nil
}

func (s *Store) ListReloads(ctx context.Context, limit int) ([]domain.Reload, error) {
	return findMany[domain.Reload](ctx, s.col(colReloads), bson.D{}, sortBy("createdAt", -1, limit))
}

func (s *Store) CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	if notification.ID == "" {
		notification.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colNotifications), notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (s *Store) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	return findMany[domain.Notification](ctx, s.col(colNotifications), bson.D{}, sortBy("createdAt", -1, 0))
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string, at time.Time) (*domain.Notification, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "isRead", Value: true},
		{Key: "updatedAt", Value: at},
	}}}
	return findAndUpdate[domain.Notification](ctx, s.col(colNotifications), byID(id), update)
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, at time.Time) (int64, error) {
	res, err := s.col(colNotifications).UpdateMany(ctx,
		bson.D{{Key: "isRead", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "isRead", Value: true},
			{Key: "updatedAt", Value: at},
		}}})
	if err != nil {
		return 0, errors.Wrap(err, "mark notifications read")
	}
	return res.ModifiedCount, nil
}

func (s *Store) ClearNotifications(ctx context.Context) (int64, error) {
	res, err := s.col(colNotifications).DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, errors.Wrap(err, "clear notifications")
	}
	return res.DeletedCount, nil
}
