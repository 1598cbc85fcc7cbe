package paymentControllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	orderControllers "github.com/jyush98/jason-co-ecom/controllers/order"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"github.com/jyush98/jason-co-ecom/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testPricing = Pricing{
	TaxRateBps:            800,
	FlatShippingCents:     1500,
	FreeShippingThreshold: 10000,
}

type stubGateway struct {
	intents map[string]*payments.Intent
}

func (g *stubGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*payments.Intent, error) {
	intent := &payments.Intent{
		ID:       fmt.Sprintf("pi_test_%d", len(g.intents)+1),
		Amount:   amountCents,
		Currency: currency,
		Status:   payments.IntentSucceeded,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *stubGateway) RetrieveIntent(ctx context.Context, intentID string) (*payments.Intent, error) {
	intent, ok := g.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("no such intent %s", intentID)
	}
	return intent, nil
}

type captureQueue struct {
	events []notifications.Event
}

func (q *captureQueue) Publish(ctx context.Context, evt notifications.Event) error {
	q.events = append(q.events, evt)
	return nil
}

func (q *captureQueue) Consume(ctx context.Context, handle func(notifications.Event) error) error {
	return nil
}

func (q *captureQueue) Close() error { return nil }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.UserAddress{},
	))
	return db
}

func seedUserWithCart(t *testing.T, db *gorm.DB) (*models.User, []models.Product) {
	t.Helper()
	user := models.User{ClerkID: "clerk_1", Email: "buyer@example.com"}
	require.NoError(t, db.Create(&user).Error)

	ring := models.Product{
		Name: "Gold Ring", PriceCents: 2000, Status: models.ProductStatusActive,
		TrackInventory: true, InventoryCount: 10,
	}
	chain := models.Product{
		Name: "Silver Chain", PriceCents: 1500, Status: models.ProductStatusActive,
		TrackInventory: true, InventoryCount: 5,
	}
	require.NoError(t, db.Create(&ring).Error)
	require.NoError(t, db.Create(&chain).Error)

	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ProductID: ring.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ProductID: chain.ID, Quantity: 1}).Error)

	return &user, []models.Product{ring, chain}
}

func succeededIntent(id string) *stubGateway {
	return &stubGateway{intents: map[string]*payments.Intent{
		id: {ID: id, Status: payments.IntentSucceeded, Currency: "usd"},
	}}
}

func submitRequest(intentID string) SubmitOrderRequest {
	return SubmitOrderRequest{
		ShippingAddress: models.Address{
			FirstName: "Ava", LastName: "Stone",
			Line1: "1 Main St", City: "New York", State: "NY", PostalCode: "10001",
		},
		PaymentIntentID: intentID,
	}
}

func TestComputeTotals(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 2, Product: models.Product{PriceCents: 2000}},
		{Quantity: 1, Product: models.Product{PriceCents: 1500}},
	}

	totals := ComputeTotals(items, testPricing, ShippingMethod{})
	assert.Equal(t, int64(5500), totals.SubtotalCents)
	assert.Equal(t, int64(440), totals.TaxCents)
	assert.Equal(t, int64(1500), totals.ShippingCents)
	assert.Equal(t, int64(7440), totals.TotalCents)
}

func TestComputeTotalsFreeShippingOverThreshold(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 1, Product: models.Product{PriceCents: 12000}},
	}

	totals := ComputeTotals(items, testPricing, ShippingMethod{})
	assert.Equal(t, int64(0), totals.ShippingCents)
	assert.Equal(t, int64(12960), totals.TotalCents)
}

func TestComputeTotalsShippingMethodPriceWins(t *testing.T) {
	express := int64(3500)
	items := []models.CartItem{
		{Quantity: 1, Product: models.Product{PriceCents: 12000}},
	}

	totals := ComputeTotals(items, testPricing, ShippingMethod{ID: "express", PriceCents: &express})
	assert.Equal(t, int64(3500), totals.ShippingCents)
}

func TestSubmitOrderCreatesOrderAndClearsCart(t *testing.T) {
	db := openTestDB(t)
	user, products := seedUserWithCart(t, db)
	gw := succeededIntent("pi_ok")
	queue := &captureQueue{}

	result, err := SubmitOrder(context.Background(), db, gw, queue, zap.NewNop(), testPricing, user, "", submitRequest("pi_ok"))
	require.NoError(t, err)
	require.True(t, result.Created)

	order := result.Order
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, int64(5500), order.SubtotalCents)
	assert.Equal(t, int64(440), order.TaxCents)
	assert.Equal(t, int64(1500), order.ShippingCents)
	assert.Equal(t, int64(7440), order.TotalCents)
	assert.Regexp(t, `^JC-\d{8}-[0-9A-F]{4}$`, order.OrderNumber)
	assert.Len(t, order.Items, 2)

	// Item snapshots carry name and price at purchase time.
	for _, item := range order.Items {
		assert.NotEmpty(t, item.ProductName)
		assert.Equal(t, item.UnitPriceCents*int64(item.Quantity), item.LineTotalCents)
	}

	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
	assert.Zero(t, cartCount)

	// Inventory was deducted for tracked products.
	var ring models.Product
	require.NoError(t, db.First(&ring, products[0].ID).Error)
	assert.Equal(t, 8, ring.InventoryCount)

	require.Len(t, queue.events, 1)
	assert.Equal(t, notifications.TypeOrderConfirmation, queue.events[0].Type)
	assert.Equal(t, order.ID, queue.events[0].OrderID)
	assert.True(t, queue.events[0].Override)
	assert.True(t, result.NotificationScheduled)
}

func TestSubmitOrderIsIdempotentPerIntent(t *testing.T) {
	db := openTestDB(t)
	user, _ := seedUserWithCart(t, db)
	gw := succeededIntent("pi_dup")
	queue := &captureQueue{}

	first, err := SubmitOrder(context.Background(), db, gw, queue, zap.NewNop(), testPricing, user, "", submitRequest("pi_dup"))
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := SubmitOrder(context.Background(), db, gw, queue, zap.NewNop(), testPricing, user, "", submitRequest("pi_dup"))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Equal(t, int64(1), orderCount)

	// No second confirmation goes out.
	assert.Len(t, queue.events, 1)
}

func TestSubmitOrderRejectsUnconfirmedPayment(t *testing.T) {
	db := openTestDB(t)
	user, _ := seedUserWithCart(t, db)
	gw := &stubGateway{intents: map[string]*payments.Intent{
		"pi_pending": {ID: "pi_pending", Status: payments.IntentRequiresAction},
	}}

	_, err := SubmitOrder(context.Background(), db, gw, &captureQueue{}, zap.NewNop(), testPricing, user, "", submitRequest("pi_pending"))
	require.ErrorIs(t, err, ErrPaymentNotConfirmed)

	// Nothing was written and the cart is intact.
	var orderCount, cartCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.CartItem{}).Count(&cartCount)
	assert.Zero(t, orderCount)
	assert.Equal(t, int64(2), cartCount)
}

func TestSubmitOrderRejectsEmptyCart(t *testing.T) {
	db := openTestDB(t)
	user := models.User{ClerkID: "clerk_empty", Email: "empty@example.com"}
	require.NoError(t, db.Create(&user).Error)
	gw := succeededIntent("pi_empty")

	_, err := SubmitOrder(context.Background(), db, gw, &captureQueue{}, zap.NewNop(), testPricing, &user, "", submitRequest("pi_empty"))
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitOrderRejectsInsufficientStock(t *testing.T) {
	db := openTestDB(t)
	user := models.User{ClerkID: "clerk_stock", Email: "stock@example.com"}
	require.NoError(t, db.Create(&user).Error)

	product := models.Product{
		Name: "Last Pendant", PriceCents: 4000, Status: models.ProductStatusActive,
		TrackInventory: true, InventoryCount: 1,
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 3}).Error)

	gw := succeededIntent("pi_stock")
	_, err := SubmitOrder(context.Background(), db, gw, &captureQueue{}, zap.NewNop(), testPricing, &user, "", submitRequest("pi_stock"))
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The failed transaction left stock untouched.
	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 1, fresh.InventoryCount)
}

func TestSubmitOrderUsesSavedAddress(t *testing.T) {
	db := openTestDB(t)
	user, _ := seedUserWithCart(t, db)

	saved := models.UserAddress{
		UserID: user.ID, Label: "Home",
		FirstName: "Ava", LastName: "Stone",
		Line1: "12 Pearl St", City: "Brooklyn", State: "NY", PostalCode: "11201", Country: "US",
		IsDefault: true,
	}
	require.NoError(t, db.Create(&saved).Error)

	gw := succeededIntent("pi_saved")
	req := SubmitOrderRequest{
		ShippingAddressID: &saved.ID,
		PaymentIntentID:   "pi_saved",
	}

	result, err := SubmitOrder(context.Background(), db, gw, &captureQueue{}, zap.NewNop(), testPricing, user, "", req)
	require.NoError(t, err)
	assert.Equal(t, "12 Pearl St", result.Order.ShippingAddress.Line1)
	assert.Equal(t, "Brooklyn", result.Order.ShippingAddress.City)
	assert.Equal(t, "Ava", result.Order.CustomerFirstName)
}

func TestSubmitOrderRejectsMissingShippingAddress(t *testing.T) {
	db := openTestDB(t)
	user, _ := seedUserWithCart(t, db)
	gw := succeededIntent("pi_noaddr")

	_, err := SubmitOrder(context.Background(), db, gw, &captureQueue{}, zap.NewNop(), testPricing, user, "",
		SubmitOrderRequest{PaymentIntentID: "pi_noaddr"})
	require.ErrorIs(t, err, ErrNoShippingAddress)

	unknown := uint(999)
	_, err = SubmitOrder(context.Background(), db, gw, &captureQueue{}, zap.NewNop(), testPricing, user, "",
		SubmitOrderRequest{ShippingAddressID: &unknown, PaymentIntentID: "pi_noaddr"})
	require.ErrorIs(t, err, ErrAddressNotFound)
}

func TestResolveCustomerEmailFallbackChain(t *testing.T) {
	user := &models.User{Email: "account@example.com"}
	shipping := models.Address{Email: "ship@example.com"}
	billing := &models.Address{Email: "bill@example.com"}

	assert.Equal(t, "token@example.com", ResolveCustomerEmail("token@example.com", user, shipping, billing))
	assert.Equal(t, "account@example.com", ResolveCustomerEmail("", user, shipping, billing))
	assert.Equal(t, "ship@example.com", ResolveCustomerEmail("", &models.User{}, shipping, billing))
	assert.Equal(t, "bill@example.com", ResolveCustomerEmail("", &models.User{}, models.Address{}, billing))
	assert.Equal(t, "", ResolveCustomerEmail("", &models.User{}, models.Address{}, nil))
}

func TestSubmitOrderBroadcastsToOrderFeed(t *testing.T) {
	db := openTestDB(t)
	user, _ := seedUserWithCart(t, db)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/orders-feed", orderControllers.OrderFeedHandler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/admin/orders-feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	// Give the feed handler a beat to register the connection.
	time.Sleep(100 * time.Millisecond)

	gw := succeededIntent("pi_feed")
	result, err := SubmitOrder(context.Background(), db, gw, &captureQueue{}, zap.NewNop(), testPricing, user, "", submitRequest("pi_feed"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err, "a new order must appear on the dashboard feed")

	var msg struct {
		Event       string `json:"event"`
		OrderNumber string `json:"order_number"`
		TotalCents  int64  `json:"total_cents"`
	}
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, "order_created", msg.Event)
	assert.Equal(t, result.Order.OrderNumber, msg.OrderNumber)
	assert.Equal(t, int64(7440), msg.TotalCents)
}

func TestSubmitOrderWithoutEmailStillCreatesOrder(t *testing.T) {
	db := openTestDB(t)

	user := models.User{ClerkID: "clerk_noemail", Email: ""}
	require.NoError(t, db.Create(&user).Error)
	product := models.Product{Name: "Bracelet", PriceCents: 3000, Status: models.ProductStatusActive, TrackInventory: false}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 1}).Error)

	gw := succeededIntent("pi_noemail")
	queue := &captureQueue{}

	result, err := SubmitOrder(context.Background(), db, gw, queue, zap.NewNop(), testPricing, &user, "", submitRequest("pi_noemail"))
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.False(t, result.NotificationScheduled)
	assert.Nil(t, result.Order.CustomerEmail)
	assert.Empty(t, queue.events)
}
