// Package mongo is the document-store backend. Records keep their ObjectID hex
// string as _id so they read the same on every backend.
package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

const (
	colProducts      = "products"
	colCategories    = "categories"
	colSales         = "sales"
	colRepairs       = "repairs"
	colDeliveries    = "deliveries"
	colHirePurchases = "hirepurchases"
	colExpenses      = "expenses"
	colStaff         = "staffs"
	colCustomers     = "customers"
	colSuppliers     = "suppliers"
	colReloads       = "reloads"
	colNotifications = "notifications"
	colAdjustments   = "pendingadjustments"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Repository = (*Store)(nil)

func New(ctx context.Context, uri string, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(30).
		SetServerSelectionTimeout(6*time.Second))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Integration tests use it for cleanup.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}
	indexes := map[string][]mongo.IndexModel{
		colCategories: {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		colStaff: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		}},
		colProducts:    {{Keys: bson.D{{Key: "category", Value: 1}}}},
		colSales:       {{Keys: bson.D{{Key: "date", Value: -1}}}},
		colExpenses:    {{Keys: bson.D{{Key: "date", Value: -1}}}},
		colRepairs:     {{Keys: bson.D{{Key: "status", Value: 1}}}},
		colDeliveries:  {{Keys: bson.D{{Key: "status", Value: 1}}}},
		colAdjustments: {{Keys: bson.D{{Key: "createdAt", Value: 1}}}},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return findMany[domain.Product](ctx, s.col(colProducts), bson.D{}, sortBy("createdAt", 1, 0))
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return findByID[domain.Product](ctx, s.col(colProducts), id)
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	products, err := findMany[domain.Product](ctx, s.col(colProducts), bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	result := make(map[string]domain.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colProducts), product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) IncrementStock(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "stock", Value: delta}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	}
	return findAndUpdate[domain.Product](ctx, s.col(colProducts), byID(productID), update)
}

func (s *Store) DecrementStockClamped(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "stock", Value: bson.D{{Key: "$max", Value: bson.A{
			0,
			bson.D{{Key: "$subtract", Value: bson.A{"$stock", qty}}},
		}}}},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}}
	return findAndUpdate[domain.Product](ctx, s.col(colProducts), byID(productID), update)
}

func (s *Store) DecrementStockIfAvailable(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	filter := bson.D{
		{Key: "_id", Value: productID},
		{Key: "stock", Value: bson.D{{Key: "$gte", Value: qty}}},
	}
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "stock", Value: -qty}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	}
	product, err := findAndUpdate[domain.Product](ctx, s.col(colProducts), filter, update)
	if !errors.Is(err, store.ErrNotFound) {
		return product, err
	}

	n, countErr := s.col(colProducts).CountDocuments(ctx, byID(productID))
	if countErr != nil {
		return nil, errors.Wrap(countErr, "count product")
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrInsufficientStock
}

func (s *Store) CountProductsByCategory(ctx context.Context, names []string) (map[string]int, error) {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name] = 0
	}
	if len(names) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "category", Value: bson.D{{Key: "$in", Value: names}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.col(colProducts).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate category counts")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode category counts")
	}
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return findMany[domain.Category](ctx, s.col(colCategories), bson.D{}, sortBy("createdAt", 1, 0))
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if category.Name == "" {
		return nil, store.ErrInvalidRecord
	}
	if category.ID == "" {
		category.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colCategories), category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colCategories), id)
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Items) == 0 {
		return nil, store.ErrInvalidRecord
	}
	if sale.ID == "" {
		sale.ID = xid.New()
	}
	if err := insertOne(ctx, s.col(colSales), sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return findMany[domain.Sale](ctx, s.col(colSales), bson.D{}, sortBy("date", -1, limit))
}

func (s *Store) ListSalesBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	return findMany[domain.Sale](ctx, s.col(colSales), dateRange("date", from, to), sortBy("date", -1, 0))
}

func (s *Store) EnqueueAdjustment(ctx context.Context, adj domain.PendingAdjustment) error {
	if adj.ID == "" {
		adj.ID = xid.New()
	}
	return insertOne(ctx, s.col(colAdjustments), adj)
}

func (s *Store) ListPendingAdjustments(ctx context.Context, limit int) ([]domain.PendingAdjustment, error) {
	return findMany[domain.PendingAdjustment](ctx, s.col(colAdjustments), bson.D{}, sortBy("createdAt", 1, limit))
}

func (s *Store) SavePendingAdjustment(ctx context.Context, adj domain.PendingAdjustment) error {
	return replaceByID(ctx, s.col(colAdjustments), adj.ID, adj)
}

func (s *Store) DeletePendingAdjustment(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(colAdjustments), id)
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func dateRange(field string, from time.Time, to time.Time) bson.D {
	return bson.D{{Key: field, Value: bson.D{
		{Key: "$gte", Value: from},
		{Key: "$lt", Value: to},
	}}}
}

func sortBy(field string, direction int, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", coll.Name())
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", coll.Name())
	}
	return out, nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, byID(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find %s %s", coll.Name(), id)
	}
	return &doc, nil
}

func findAndUpdate[T any](ctx context.Context, coll *mongo.Collection, filter any, update any) (*T, error) {
	var doc T
	err := coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "update %s", coll.Name())
	}
	return &doc, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return errors.Wrapf(err, "insert %s", coll.Name())
	}
	return nil
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return errors.Wrapf(err, "replace %s %s", coll.Name(), id)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return errors.Wrapf(err, "delete %s %s", coll.Name(), id)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func countByStatus(ctx context.Context, coll *mongo.Collection, statuses []string) (int64, error) {
	filter := bson.D{}
	if len(statuses) > 0 {
		filter = bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: statuses}}}}
	}
	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", coll.Name())
	}
	return n, nil
}
