package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/pos-register/internal/core/domain"
	"github.com/rl1809/pos-register/internal/port"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingField     = errors.New("missing required field")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartLineNotFound = errors.New("cart line not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateRequest = errors.New("duplicate request")
)

const tracerName = "github.com/rl1809/pos-register/internal/core/service"

// Repositories groups the stores a register works against. Idempotency may
// be nil, in which case commit request IDs are not deduplicated.
type Repositories struct {
	Catalog     port.CatalogRepository
	Cart        port.CartRepository
	Ledger      port.LedgerRepository
	Customers   port.CustomerRepository
	Idempotency port.IdempotencyRepository
}

type CommitRequest struct {
	// Discount overrides the stored discount input when non-nil.
	Discount   *string
	CustomerID string
	RequestID  string
}

// RegisterService runs the point-of-sale use cases. State-changing calls are
// serialized on mu so a commit sees and clears exactly the cart it priced.
type RegisterService struct {
	mu           sync.Mutex
	repos        Repositories
	sessionID    string
	journalQueue chan domain.Order
	closed       bool

	now    func() time.Time
	logger *zap.Logger
	tracer trace.Tracer
}

type Option func(*RegisterService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *RegisterService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *RegisterService) { s.now = now }
}

func WithSessionID(id string) Option {
	return func(s *RegisterService) { s.sessionID = id }
}

// NewRegisterService builds a register. A positive queueSize enables the
// receipt journal queue returned by GetJournalQueue.
func NewRegisterService(repos Repositories, queueSize int, opts ...Option) *RegisterService {
	s := &RegisterService{
		repos:     repos,
		sessionID: uuid.New().String(),
		now:       time.Now,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
	}
	if queueSize > 0 {
		s.journalQueue = make(chan domain.Order, queueSize)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RegisterService) SessionID() string {
	return s.sessionID
}

func (s *RegisterService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repos.Catalog.ListProducts(ctx, category)
}

// ListCategories returns the distinct product categories in catalog order.
func (s *RegisterService) ListCategories(ctx context.Context) ([]string, error) {
	products, err := s.repos.Catalog.ListProducts(ctx, domain.CategoryAll)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories, nil
}

func (s *RegisterService) AddItem(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.repos.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("lookup product: %w", err)
	}
	if product == nil {
		return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
	}

	if err := s.repos.Cart.Append(ctx, domain.NewCartLine(*product)); err != nil {
		return fmt.Errorf("append cart line: %w", err)
	}
	s.logger.Debug("item added", zap.Int64("product_id", productID))
	return nil
}

func (s *RegisterService) RemoveItem(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.repos.Cart.RemoveAt(ctx, index)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: index %d", ErrCartLineNotFound, index)
	}
	s.logger.Debug("item removed", zap.Int("index", index))
	return nil
}

func (s *RegisterService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Cart.Clear(ctx)
}

// SetDiscount stores the discount input as typed. It is parsed when the
// cart is priced, never rejected.
func (s *RegisterService) SetDiscount(ctx context.Context, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Cart.SetDiscount(ctx, raw)
}

func (s *RegisterService) GetCartView(ctx context.Context) (domain.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.repos.Cart.Lines(ctx)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("read cart: %w", err)
	}
	raw, err := s.repos.Cart.Discount(ctx)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("read discount: %w", err)
	}

	return domain.CartView{
		Lines:    lines,
		Discount: raw,
		Totals:   domain.CalculateTotals(lines, domain.ParseDiscount(raw)),
	}, nil
}

// CommitOrder turns the current cart into an order. The cart and discount
// input are cleared only when the order has been appended to the ledger.
func (s *RegisterService) CommitOrder(ctx context.Context, req CommitRequest) (order domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "RegisterService.CommitOrder")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int64("pos.order_id", order.ID))
		}
		span.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.repos.Cart.Lines(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	var raw string
	if req.Discount != nil {
		raw = *req.Discount
	} else if raw, err = s.repos.Cart.Discount(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("read discount: %w", err)
	}

	if req.CustomerID != "" {
		customer, err := s.repos.Customers.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("lookup customer: %w", err)
		}
		if customer == nil {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, req.CustomerID)
		}
	}

	var idempotencyKey string
	if req.RequestID != "" && s.repos.Idempotency != nil {
		key := "commit:" + req.RequestID
		ok, err := s.repos.Idempotency.SetIdempotency(ctx, key)
		if err != nil {
			return domain.Order{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return domain.Order{}, ErrDuplicateRequest
		}
		idempotencyKey = key
	}

	totals := domain.CalculateTotals(lines, domain.ParseDiscount(raw))
	order, err = s.repos.Ledger.CreateOrder(ctx, domain.Order{
		SessionID:       s.sessionID,
		Items:           lines,
		Subtotal:        totals.Subtotal,
		DiscountPercent: totals.DiscountPercent,
		DiscountAmount:  totals.DiscountAmount,
		Total:           totals.Total,
		CustomerID:      req.CustomerID,
		CreatedAt:       s.now(),
	})
	if err != nil {
		s.releaseIdempotency(ctx, idempotencyKey)
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	// The order exists from here on, so the request ID stays consumed even if
	// clearing the cart fails.
	if err := s.repos.Cart.Clear(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("clear cart after order %d: %w", order.ID, err)
	}

	s.logger.Info("order committed",
		zap.Int64("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.String("discount_percent", order.DiscountPercent.String()),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("customer_id", order.CustomerID),
	)

	s.enqueueJournal(order)
	return order, nil
}

// releaseIdempotency frees a request ID whose commit produced no order so the
// client can retry it.
func (s *RegisterService) releaseIdempotency(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.repos.Idempotency.ReleaseIdempotency(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// enqueueJournal hands a committed order to the journal workers. Must be
// called with mu held so it cannot race with Close. A full queue drops the
// order from the journal rather than stall the register.
func (s *RegisterService) enqueueJournal(order domain.Order) {
	if s.journalQueue == nil || s.closed {
		return
	}
	select {
	case s.journalQueue <- order.Clone():
	default:
		s.logger.Warn("journal queue full, order not journaled",
			zap.Int64("order_id", order.ID),
			zap.Int("queue_size", cap(s.journalQueue)),
		)
	}
}

func (s *RegisterService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repos.Ledger.ListOrders(ctx)
}

func (s *RegisterService) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	order, err := s.repos.Ledger.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	return *order, nil
}

// RegisterCustomer adds a customer. A failed registration consumes no ID.
func (s *RegisterService) RegisterCustomer(ctx context.Context, name, email string) (domain.Customer, error) {
	if name == "" {
		return domain.Customer{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	if email == "" {
		return domain.Customer{}, fmt.Errorf("%w: email", ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.repos.Customers.CreateCustomer(ctx, name, email)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	s.logger.Info("customer registered", zap.String("customer_id", customer.ID))
	return customer, nil
}

func (s *RegisterService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repos.Customers.ListCustomers(ctx)
}

// GetJournalQueue returns the committed-order queue, or nil when journaling
// is disabled.
func (s *RegisterService) GetJournalQueue() <-chan domain.Order {
	return s.journalQueue
}

func (s *RegisterService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.journalQueue != nil {
		close(s.journalQueue)
	}
}
