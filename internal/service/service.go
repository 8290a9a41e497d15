package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/stock"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Notifier receives "dashboard should refresh" signals.
type Notifier interface {
	NotifyDashboard()
}

type Options struct {
	StockPolicy             string
	Location                *time.Location
	Currency                string
	LowStockReportThreshold int
	Logger                  zerolog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

type Service struct {
	repo     store.Repository
	stock    *stock.Adjuster
	notifier Notifier
	validate *validator.Validate
	log      zerolog.Logger

	policy         string
	loc            *time.Location
	currency       string
	lowStockReport int
	now            func() time.Time
}

func New(repo store.Repository, adjuster *stock.Adjuster, notifier Notifier, opts Options) *Service {
	if opts.StockPolicy != domain.StockPolicyStrict {
		opts.StockPolicy = domain.StockPolicyAllowNegative
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Currency == "" {
		opts.Currency = "LKR"
	}
	if opts.LowStockReportThreshold < 1 {
		opts.LowStockReportThreshold = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:           repo,
		stock:          adjuster,
		notifier:       notifier,
		validate:       newValidator(),
		log:            opts.Logger.With().Str("component", "service").Logger(),
		policy:         opts.StockPolicy,
		loc:            opts.Location,
		currency:       opts.Currency,
		lowStockReport: opts.LowStockReportThreshold,
		now:            opts.Now,
	}
}

func (s *Service) StockPolicy() string {
	return s.policy
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if !xid.Valid(id) {
		return domain.Product{}, store.ErrNotFound
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Brand = strings.TrimSpace(req.Brand)
	req.Barcode = strings.TrimSpace(req.Barcode)
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}

	minStock := domain.DefaultMinStock
	if req.MinStock != nil {
		minStock = *req.MinStock
	}
	now := s.clock()
	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:        req.Name,
		Barcode:     req.Barcode,
		Category:    req.Category,
		Brand:       req.Brand,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Stock:       req.Stock,
		MinStock:    &minStock,
		Image:       req.Image,
		Warranty:    req.Warranty,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

// DecrementStock is the standalone stock endpoint: the result never drops
// below zero and no refresh is broadcast.
func (s *Service) DecrementStock(ctx context.Context, productID string, req domain.StockQuantityRequest) (domain.Product, error) {
	if !xid.Valid(productID) {
		return domain.Product{}, store.ErrNotFound
	}
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}
	updated, err := s.stock.DecrementClamped(ctx, productID, req.Quantity)
	if err != nil {
		return domain.Product{}, err
	}
	return *updated, nil
}

func (s *Service) RefillStock(ctx context.Context, productID string, req domain.StockQuantityRequest) (domain.Product, error) {
	if !xid.Valid(productID) {
		return domain.Product{}, store.ErrNotFound
	}
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}
	updated, err := s.stock.Adjust(ctx, productID, req.Quantity)
	if err != nil {
		return domain.Product{}, err
	}
	s.notify()
	return *updated, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	counts, err := s.repo.CountProductsByCategory(ctx, names)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].Count = counts[categories[i].Name]
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(req); err != nil {
		return domain.Category{}, err
	}

	now := s.clock()
	created, err := s.repo.CreateCategory(ctx, domain.Category{
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return domain.Category{}, invalid("Category name already exists")
	}
	if err != nil {
		return domain.Category{}, err
	}
	return *created, nil
}

// DeleteCategory leaves products that still carry the name untouched.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if !xid.Valid(id) {
		return store.ErrNotFound
	}
	return s.repo.DeleteCategory(ctx, id)
}

// CreateSale records a checkout. totalAmount is stored as sent.
//
// Under the allow-negative policy the sale is written first, the refresh
// signal goes out, and stock decrements run afterwards on the adjuster's
// pool, so stock can go below zero. Under the strict policy every line is
// reserved up front and the sale is refused with ErrInsufficientStock when
// any line cannot be covered.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	if err := s.check(req); err != nil {
		return domain.Sale{}, err
	}

	// Items are stored as sent; only the stock lookup uses the trimmed id.
	lines := make([]stock.Line, 0, len(req.Items))
	for i, item := range req.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			return domain.Sale{}, invalid("items[%d].productId is required", i)
		}
		lines = append(lines, stock.Line{ProductID: productID, Quantity: item.Quantity})
	}
	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodCash
	}
	sale := domain.Sale{
		ID:            xid.New(),
		Items:         append([]domain.SaleItem(nil), req.Items...),
		TotalAmount:   req.TotalAmount,
		Discount:      req.Discount,
		PaymentMethod: paymentMethod,
		Date:          s.clock(),
	}

	if s.policy == domain.StockPolicyStrict {
		return s.createSaleReserved(ctx, sale, lines)
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, errors.Wrap(err, "persist sale")
	}
	s.log.Debug().Str("sale_id", created.ID).Int("lines", len(lines)).Float64("total", created.TotalAmount).
		Msg("sale recorded")
	s.notify()
	s.stock.SubmitSale(created.ID, lines)
	return *created, nil
}

func (s *Service) createSaleReserved(ctx context.Context, sale domain.Sale, lines []stock.Line) (domain.Sale, error) {
	if err := s.stock.Reserve(ctx, lines); err != nil {
		return domain.Sale{}, err
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		s.log.Warn().Err(err).Str("sale_id", sale.ID).Int("lines", len(lines)).
			Msg("sale not persisted, restoring reserved stock")
		s.stock.Restore(context.WithoutCancel(ctx), sale.ID, lines)
		return domain.Sale{}, errors.Wrap(err, "persist sale")
	}
	s.log.Debug().Str("sale_id", created.ID).Int("lines", len(lines)).Float64("total", created.TotalAmount).
		Msg("sale recorded")
	s.notify()
	return *created, nil
}

// ListSales returns sales newest first; limit <= 0 returns all of them.
func (s *Service) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, limit)
}

func (s *Service) notify() {
	if s.notifier != nil {
		s.notifier.NotifyDashboard()
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}
