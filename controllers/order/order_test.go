package orderControllers

import (
	"context"
	"fmt"
	"testing"

	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status models.OrderStatus) *models.Order {
	t.Helper()
	user := models.User{ClerkID: "clerk_" + string(status), Email: string(status) + "@example.com"}
	require.NoError(t, db.Create(&user).Error)

	order := models.Order{
		OrderNumber:           "JC-20260829-" + string(status[:2]) + "01",
		UserID:                &user.ID,
		Status:                status,
		PaymentStatus:         models.PaymentStatusCompleted,
		TotalCents:            5500,
		StripePaymentIntentID: "pi_" + string(status),
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func TestTransitionTable(t *testing.T) {
	legal := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusConfirmed, models.OrderStatusProcessing},
		{models.OrderStatusProcessing, models.OrderStatusShipped},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusFailed},
	}
	for _, tc := range legal {
		assert.True(t, models.CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusDelivered, models.OrderStatusShipped},
		{models.OrderStatusDelivered, models.OrderStatusCancelled},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusShipped, models.OrderStatusProcessing},
	}
	for _, tc := range illegal {
		assert.False(t, models.CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTransitionOrderToShippedStampsAndNotifies(t *testing.T) {
	db := openTestDB(t)
	order := seedOrder(t, db, models.OrderStatusProcessing)
	queue := &captureQueue{}

	tracking := "1Z999AA10123456784"
	updated, err := TransitionOrder(context.Background(), db, queue, zap.NewNop(), order.ID,
		models.OrderStatusShipped, TransitionRequest{TrackingNumber: &tracking, ChangedBy: "admin"})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	require.NotNil(t, updated.ShippedAt)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, tracking, *updated.TrackingNumber)

	var history []models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.OrderStatusProcessing, history[0].FromStatus)
	assert.Equal(t, models.OrderStatusShipped, history[0].ToStatus)
	assert.Equal(t, "admin", history[0].ChangedBy)

	require.Len(t, queue.events, 1)
	assert.Equal(t, notifications.TypeShippingNotification, queue.events[0].Type)
	assert.Equal(t, order.ID, queue.events[0].OrderID)
}

func TestTransitionOrderToDeliveredStampsTimestamp(t *testing.T) {
	db := openTestDB(t)
	order := seedOrder(t, db, models.OrderStatusShipped)
	queue := &captureQueue{}

	updated, err := TransitionOrder(context.Background(), db, queue, zap.NewNop(), order.ID,
		models.OrderStatusDelivered, TransitionRequest{})
	require.NoError(t, err)

	require.NotNil(t, updated.DeliveredAt)
	require.Len(t, queue.events, 1)
	assert.Equal(t, notifications.TypeDeliveryConfirmation, queue.events[0].Type)
}

func TestTransitionOrderRejectsIllegalMove(t *testing.T) {
	db := openTestDB(t)
	order := seedOrder(t, db, models.OrderStatusDelivered)
	queue := &captureQueue{}

	_, err := TransitionOrder(context.Background(), db, queue, zap.NewNop(), order.ID,
		models.OrderStatusShipped, TransitionRequest{})
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	// Nothing changed and no event went out.
	var fresh models.Order
	require.NoError(t, db.First(&fresh, order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivered, fresh.Status)
	assert.Empty(t, queue.events)

	var historyCount int64
	db.Model(&models.OrderStatusHistory{}).Count(&historyCount)
	assert.Zero(t, historyCount)
}

func TestMarkPaymentRefunded(t *testing.T) {
	db := openTestDB(t)
	order := seedOrder(t, db, models.OrderStatusCancelled)

	updated, err := MarkPaymentRefunded(db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, updated.PaymentStatus)

	// Refunding twice is rejected: refunded is terminal.
	_, err = MarkPaymentRefunded(db, order.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestPaymentTransitionTable(t *testing.T) {
	assert.True(t, models.CanTransitionPayment(models.PaymentStatusPending, models.PaymentStatusCompleted))
	assert.True(t, models.CanTransitionPayment(models.PaymentStatusPending, models.PaymentStatusFailed))
	assert.True(t, models.CanTransitionPayment(models.PaymentStatusCompleted, models.PaymentStatusRefunded))

	assert.False(t, models.CanTransitionPayment(models.PaymentStatusRefunded, models.PaymentStatusCompleted))
	assert.False(t, models.CanTransitionPayment(models.PaymentStatusFailed, models.PaymentStatusCompleted))
	assert.False(t, models.CanTransitionPayment(models.PaymentStatusPending, models.PaymentStatusRefunded))
}
