package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jyush98/jason-co-ecom/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubMailer struct {
	sent []stubEmail
	err  error
}

type stubEmail struct {
	To      string
	Subject string
}

func (m *stubMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, stubEmail{To: to, Subject: subject})
	return "msg_123", nil
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{ClerkID: "clerk_" + email, Email: email, FirstName: "Ava"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func newTestDispatcher(db *gorm.DB, mailer Mailer) *Dispatcher {
	d := NewDispatcher(db, mailer, zap.NewNop())
	d.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return d
}

func TestDispatcherSendsEmail(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "send@example.com")
	mailer := &stubMailer{}
	d := newTestDispatcher(db, mailer)

	results, err := d.Send(context.Background(), user.ID, TypeOrderUpdate,
		map[string]interface{}{"order_number": "JC-20260829-AB12"}, false)
	require.NoError(t, err)

	require.Contains(t, results, ChannelEmail)
	assert.Equal(t, "sent", results[ChannelEmail].Status)
	assert.Equal(t, "msg_123", results[ChannelEmail].MessageID)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "send@example.com", mailer.sent[0].To)
}

func TestDispatcherDataEmailOverridesUserEmail(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "account@example.com")
	mailer := &stubMailer{}
	d := newTestDispatcher(db, mailer)

	_, err := d.Send(context.Background(), user.ID, TypeOrderConfirmation,
		map[string]interface{}{"email": "guest@example.com"}, true)
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "guest@example.com", mailer.sent[0].To)
}

func TestDispatcherSkipsWhenPreferenceDisabled(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "optout@example.com")

	pref := models.DefaultNotificationPreference(user.ID)
	pref.EmailNotifications.OrderUpdates = false
	require.NoError(t, db.Create(&pref).Error)

	mailer := &stubMailer{}
	d := newTestDispatcher(db, mailer)

	results, err := d.Send(context.Background(), user.ID, TypeOrderUpdate, nil, false)
	require.NoError(t, err)

	assert.Equal(t, "skipped", results[ChannelEmail].Status)
	assert.Empty(t, mailer.sent)
}

func TestDispatcherOverrideForcesDelivery(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "forced@example.com")

	pref := models.DefaultNotificationPreference(user.ID)
	pref.EmailNotifications.OrderUpdates = false
	require.NoError(t, db.Create(&pref).Error)

	mailer := &stubMailer{}
	d := newTestDispatcher(db, mailer)

	results, err := d.Send(context.Background(), user.ID, TypeOrderUpdate, nil, true)
	require.NoError(t, err)

	assert.Equal(t, "sent", results[ChannelEmail].Status)
	require.Len(t, mailer.sent, 1)
}

func TestDispatcherEmailFailureIsIsolated(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "fail@example.com")

	pref := models.DefaultNotificationPreference(user.ID)
	pref.SMSNotifications.Enabled = true
	pref.SMSNotifications.PhoneNumber = "+12125550188"
	pref.SMSNotifications.OrderUpdates = true
	require.NoError(t, db.Create(&pref).Error)

	mailer := &stubMailer{err: errors.New("provider down")}
	d := newTestDispatcher(db, mailer)

	results, err := d.Send(context.Background(), user.ID, TypeOrderUpdate, nil, false)
	require.NoError(t, err, "a channel failure is reported in results, not as an error")

	assert.Equal(t, "error", results[ChannelEmail].Status)
	assert.Contains(t, results[ChannelEmail].Detail, "provider down")

	// The SMS channel still processed despite the email failure.
	assert.Equal(t, "stubbed", results[ChannelSMS].Status)
}

func TestDispatcherUnknownTypeErrors(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "unknown@example.com")
	d := newTestDispatcher(db, &stubMailer{})

	_, err := d.Send(context.Background(), user.ID, Type("bogus"), nil, false)
	require.Error(t, err)
}

func TestDispatcherQuietHoursSkipsMediumPriority(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "quiet@example.com")

	pref := models.DefaultNotificationPreference(user.ID)
	pref.QuietHours = models.QuietHours{Enabled: true, StartTime: "00:00", EndTime: "23:59", Timezone: "UTC"}
	require.NoError(t, db.Create(&pref).Error)

	mailer := &stubMailer{}
	d := newTestDispatcher(db, mailer)

	results, err := d.Send(context.Background(), user.ID, TypeShippingNotification, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "skipped", results[ChannelEmail].Status)
	assert.Contains(t, results[ChannelEmail].Detail, "quiet hours")

	// Required confirmation is delivered through the same window.
	results, err = d.Send(context.Background(), user.ID, TypeOrderConfirmation, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "sent", results[ChannelEmail].Status)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$55.00", FormatCents(5500))
	assert.Equal(t, "$0.09", FormatCents(9))
	assert.Equal(t, "$1234.56", FormatCents(123456))
	assert.Equal(t, "-$5.00", FormatCents(-500))
}
