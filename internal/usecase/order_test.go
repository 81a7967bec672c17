package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	testhelpers "github.com/polkiloo/orderpay/internal/test"
)

type orderFixture struct {
	*paymentFixture
	orders *OrderUseCase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{paymentFixture: newPaymentFixture()}
	f.orders = NewOrderUseCase(f.store, f.cache, f.orchestrator, f.updater, time.Minute, discardLogger())
	return f
}

func widgetCheckout(method model.PaymentMethod, flow model.PaymentFlow) model.Checkout {
	return model.Checkout{
		Items:         []model.OrderItem{{Title: "Widget", Price: decimal.NewFromInt(10), Quantity: 2}},
		PaymentMethod: method,
		PaymentFlow:   flow,
	}
}

func TestOrderUseCaseCreateValidation(t *testing.T) {
	valid := widgetCheckout(model.PaymentMethodStripe, model.PaymentFlowFrontend)
	cases := []struct {
		name string
		in   model.Checkout
		want error
	}{
		{"no items", model.Checkout{PaymentMethod: model.PaymentMethodStripe, PaymentFlow: model.PaymentFlowFrontend}, domainErrors.ErrInvalidOrder},
		{"zero quantity", model.Checkout{
			Items:         []model.OrderItem{{Title: "Widget", Price: decimal.NewFromInt(1)}},
			PaymentMethod: model.PaymentMethodStripe,
			PaymentFlow:   model.PaymentFlowFrontend,
		}, domainErrors.ErrInvalidOrder},
		{"negative price", model.Checkout{
			Items:         []model.OrderItem{{Title: "Widget", Price: decimal.NewFromInt(-1), Quantity: 1}},
			PaymentMethod: model.PaymentMethodStripe,
			PaymentFlow:   model.PaymentFlowFrontend,
		}, domainErrors.ErrInvalidOrder},
		{"sub-cent price", model.Checkout{
			Items:         []model.OrderItem{{Title: "Widget", Price: decimal.RequireFromString("10.005"), Quantity: 1}},
			PaymentMethod: model.PaymentMethodStripe,
			PaymentFlow:   model.PaymentFlowFrontend,
		}, domainErrors.ErrInvalidOrder},
		{"unknown method", model.Checkout{Items: valid.Items, PaymentMethod: "amex", PaymentFlow: model.PaymentFlowFrontend}, domainErrors.ErrUnsupportedPaymentMethod},
		{"unknown flow", model.Checkout{Items: valid.Items, PaymentMethod: model.PaymentMethodPaypal, PaymentFlow: "kiosk"}, domainErrors.ErrUnsupportedPaymentMethod},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture()
			order, details, err := f.orders.Create(context.Background(), "u1", tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if order != nil || details != nil {
				t.Fatalf("expected no result on validation failure")
			}
			if f.store.Len() != 0 {
				t.Fatalf("invalid input must not create an order")
			}
		})
	}
}

func TestOrderUseCaseCreateFrontend(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	_ = f.cache.Set(ctx, ordersCacheKey("u1"), []byte(`{"orders":[],"total":0}`), time.Minute)

	order, details, err := f.orders.Create(ctx, "u1", widgetCheckout(model.PaymentMethodStripe, model.PaymentFlowFrontend))
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if order.ID == "" || order.UserID != "u1" {
		t.Fatalf("unexpected order identity %+v", order)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected total 20, got %s", order.TotalAmount)
	}
	if order.PaymentStatus != model.PaymentStatusPending || order.OrderStatus != model.OrderStatusPending {
		t.Fatalf("expected pending order, got %s/%s", order.PaymentStatus, order.OrderStatus)
	}
	if details.ClientSecret == "" {
		t.Fatalf("expected client secret in payment details")
	}
	if f.cache.Has(ordersCacheKey("u1")) {
		t.Fatalf("expected listing cache to be invalidated on create")
	}

	stored := f.store.Order(order.ID)
	if !stored.TotalAmount.Equal(order.TotalAmount) {
		t.Fatalf("stored total %s differs from returned %s", stored.TotalAmount, order.TotalAmount)
	}
}

func TestOrderUseCaseCreateBackendRereadsOrder(t *testing.T) {
	f := newOrderFixture()

	order, details, err := f.orders.Create(context.Background(), "u1", widgetCheckout(model.PaymentMethodStripe, model.PaymentFlowBackend))
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if order.PaymentStatus != model.PaymentStatusPaid || order.OrderStatus != model.OrderStatusProcessing {
		t.Fatalf("expected paid/processing, got %s/%s", order.PaymentStatus, order.OrderStatus)
	}
	if details.PaymentReceipt == nil || !details.PaymentReceipt.Amount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected receipt %+v", details.PaymentReceipt)
	}
	if order.Version != 2 {
		t.Fatalf("expected returned order to reflect the payment write, got version %d", order.Version)
	}
}

func TestOrderUseCaseCreateBackendFailure(t *testing.T) {
	f := newOrderFixture()
	f.stripe.ConfirmFn = func(context.Context, decimal.Decimal, string) (*model.Receipt, error) {
		return nil, errors.New("card declined")
	}

	_, _, err := f.orders.Create(context.Background(), "u1", widgetCheckout(model.PaymentMethodStripe, model.PaymentFlowBackend))
	if !errors.Is(err, domainErrors.ErrPaymentConfirmationFailed) {
		t.Fatalf("expected ErrPaymentConfirmationFailed, got %v", err)
	}
	page, err := f.orders.List(context.Background(), "u1", 0, 10)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if page.Total != 1 || page.Orders[0].PaymentStatus != model.PaymentStatusFailed || page.Orders[0].OrderStatus != model.OrderStatusCancelled {
		t.Fatalf("expected one failed/cancelled order, got %+v", page)
	}
}

func TestOrderUseCaseCreateStoreFailure(t *testing.T) {
	f := newOrderFixture()
	f.store.CreateErr = errors.New("db down")

	if _, _, err := f.orders.Create(context.Background(), "u1", widgetCheckout(model.PaymentMethodPaypal, model.PaymentFlowFrontend)); !errors.Is(err, f.store.CreateErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestOrderUseCaseListReadThrough(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, _, err := f.orders.Create(ctx, "u1", widgetCheckout(model.PaymentMethodPaypal, model.PaymentFlowFrontend)); err != nil {
			t.Fatalf("create returned error: %v", err)
		}
	}
	if _, _, err := f.orders.Create(ctx, "u2", widgetCheckout(model.PaymentMethodPaypal, model.PaymentFlowFrontend)); err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	page, err := f.orders.List(ctx, "u1", 0, 2)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if len(page.Orders) != 2 || page.Total != 3 {
		t.Fatalf("expected 2 of 3 orders, got %d of %d", len(page.Orders), page.Total)
	}
	if !page.Orders[0].CreatedAt.After(page.Orders[1].CreatedAt) {
		t.Fatalf("expected newest order first")
	}
	if f.cache.TTL(ordersCacheKey("u1")) != time.Minute {
		t.Fatalf("expected listing cached with configured ttl, got %v", f.cache.TTL(ordersCacheKey("u1")))
	}

	again, err := f.orders.List(ctx, "u1", 0, 2)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if f.store.Lists() != 1 || f.cache.Hits() != 1 {
		t.Fatalf("expected second listing to be served from cache, lists=%d hits=%d", f.store.Lists(), f.cache.Hits())
	}
	if again.Total != 3 || again.Orders[0].ID != page.Orders[0].ID {
		t.Fatalf("cached page differs from the stored one")
	}
}

func TestOrderUseCaseListCacheKeyIgnoresWindow(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, _, err := f.orders.Create(ctx, "u1", widgetCheckout(model.PaymentMethodPaypal, model.PaymentFlowFrontend)); err != nil {
			t.Fatalf("create returned error: %v", err)
		}
	}

	first, err := f.orders.List(ctx, "u1", 0, 1)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	second, err := f.orders.List(ctx, "u1", 1, 1)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if second.Orders[0].ID != first.Orders[0].ID {
		t.Fatalf("expected the cached window to be returned for any page")
	}
}

func TestOrderUseCaseListSeesStatusChanges(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	order, _, err := f.orders.Create(ctx, "u1", widgetCheckout(model.PaymentMethodStripe, model.PaymentFlowFrontend))
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if _, err := f.orders.List(ctx, "u1", 0, 10); err != nil {
		t.Fatalf("list returned error: %v", err)
	}

	if _, err := f.updater.Apply(ctx, order.ID, model.Settle(model.PaymentStatusPaid, model.OrderStatusProcessing)); err != nil {
		t.Fatalf("apply returned error: %v", err)
	}

	page, err := f.orders.List(ctx, "u1", 0, 10)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if page.Orders[0].PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("expected fresh listing after status change, got %s", page.Orders[0].PaymentStatus)
	}
}

func TestOrderUseCaseListDegradedCache(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	if _, _, err := f.orders.Create(ctx, "u1", widgetCheckout(model.PaymentMethodPaypal, model.PaymentFlowFrontend)); err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	_ = f.cache.Set(ctx, ordersCacheKey("u1"), []byte("not json"), time.Minute)
	page, err := f.orders.List(ctx, "u1", 0, 10)
	if err != nil || page.Total != 1 {
		t.Fatalf("expected fallback to store on corrupt entry, got %+v, %v", page, err)
	}

	f.cache.GetErr = errors.New("redis down")
	f.cache.SetErr = errors.New("redis down")
	page, err = f.orders.List(ctx, "u1", 0, 10)
	if err != nil || page.Total != 1 {
		t.Fatalf("expected fallback to store on cache failure, got %+v, %v", page, err)
	}

	f.store.ListErr = errors.New("db down")
	if _, err := f.orders.List(ctx, "u1", 0, 10); !errors.Is(err, f.store.ListErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestOrderUseCaseDefaultCacheTTL(t *testing.T) {
	uc := NewOrderUseCase(testhelpers.NewOrderStore(), testhelpers.NewCacheStub(), nil, nil, 0, discardLogger())
	if uc.cacheTTL != 600*time.Second {
		t.Fatalf("expected default ttl of 600s, got %v", uc.cacheTTL)
	}
}

func TestOrderUseCaseUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	o := pendingOrder("o1", "u1")
	o.PaymentStatus = model.PaymentStatusPaid
	o.OrderStatus = model.OrderStatusProcessing
	f.store.Put(o)

	if _, err := f.orders.UpdateOrderStatus(ctx, "o1", "lost"); !errors.Is(err, domainErrors.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := f.orders.UpdateOrderStatus(ctx, "missing", model.OrderStatusShipped); !errors.Is(err, domainErrors.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.orders.UpdateOrderStatus(ctx, "o1", model.OrderStatusDelivered); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	order, err := f.orders.UpdateOrderStatus(ctx, "o1", model.OrderStatusShipped)
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if order.OrderStatus != model.OrderStatusShipped || order.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("unexpected state %s/%s", order.PaymentStatus, order.OrderStatus)
	}
	if f.notifier.Count() != 1 {
		t.Fatalf("expected one notification, got %d", f.notifier.Count())
	}
}
