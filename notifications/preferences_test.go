package notifications

import (
	"fmt"
	"testing"
	"time"

	"github.com/jyush98/jason-co-ecom/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.NotificationPreference{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func prefWithQuietHours(start, end string) *models.NotificationPreference {
	pref := models.DefaultNotificationPreference(1)
	pref.QuietHours = models.QuietHours{
		Enabled:   true,
		StartTime: start,
		EndTime:   end,
		Timezone:  "UTC",
	}
	return &pref
}

func clock(hour, min int) time.Time {
	return time.Date(2026, 8, 29, hour, min, 0, 0, time.UTC)
}

func TestQuietHoursSpansMidnight(t *testing.T) {
	pref := prefWithQuietHours("23:30", "03:00")

	assert.True(t, IsQuietHoursActive(pref, clock(23, 45)))
	assert.True(t, IsQuietHoursActive(pref, clock(1, 0)))
	assert.True(t, IsQuietHoursActive(pref, clock(3, 0)))
	assert.False(t, IsQuietHoursActive(pref, clock(12, 0)))
	assert.False(t, IsQuietHoursActive(pref, clock(23, 0)))
}

func TestQuietHoursSameDayWindow(t *testing.T) {
	pref := prefWithQuietHours("09:00", "17:00")

	assert.True(t, IsQuietHoursActive(pref, clock(9, 0)))
	assert.True(t, IsQuietHoursActive(pref, clock(12, 30)))
	assert.False(t, IsQuietHoursActive(pref, clock(8, 59)))
	assert.False(t, IsQuietHoursActive(pref, clock(17, 1)))
}

func TestQuietHoursDisabled(t *testing.T) {
	pref := models.DefaultNotificationPreference(1)
	pref.QuietHours.Enabled = false

	assert.False(t, IsQuietHoursActive(&pref, clock(23, 0)))
}

func TestQuietHoursMalformedTimesFailOpen(t *testing.T) {
	pref := prefWithQuietHours("25:99", "08:00")
	assert.False(t, IsQuietHoursActive(pref, clock(2, 0)))

	pref = prefWithQuietHours("22:00", "not-a-time")
	assert.False(t, IsQuietHoursActive(pref, clock(23, 0)))
}

func TestQuietHoursUnknownTimezoneFailsOpenToServerTime(t *testing.T) {
	pref := prefWithQuietHours("09:00", "17:00")
	pref.QuietHours.Timezone = "Not/AZone"

	// The malformed timezone is ignored; the window still evaluates.
	assert.True(t, IsQuietHoursActive(pref, clock(12, 0)))
}

func TestResolveUnknownKeyFailsClosed(t *testing.T) {
	pref := models.DefaultNotificationPreference(1)

	assert.False(t, Resolve(&pref, CategoryEmail, "no_such_key"))
	assert.False(t, Resolve(&pref, "no_such_category", "order_updates"))
}

func TestResolveRequiredKeysAlwaysEnabled(t *testing.T) {
	pref := models.DefaultNotificationPreference(1)
	pref.EmailNotifications.OrderConfirmations = false
	pref.AccountNotifications.SecurityAlerts = false

	assert.True(t, Resolve(&pref, CategoryEmail, "order_confirmations"))
	assert.True(t, Resolve(&pref, CategoryAccount, "security_alerts"))

	// Non-required keys honor the stored value.
	pref.EmailNotifications.OrderUpdates = false
	assert.False(t, Resolve(&pref, CategoryEmail, "order_updates"))
}

func TestNormalizeForcesRequiredAndValidates(t *testing.T) {
	pref := models.DefaultNotificationPreference(1)
	pref.EmailNotifications.OrderConfirmations = false
	pref.EmailNotifications.PaymentReceipts = false
	pref.AccountNotifications.PasswordChanges = false
	pref.NotificationFrequency = "hourly"
	pref.SMSNotifications.Enabled = true
	pref.SMSNotifications.PhoneNumber = "12345"
	pref.QuietHours.Enabled = true
	pref.QuietHours.StartTime = "99:99"

	pref.Normalize()

	assert.True(t, pref.EmailNotifications.OrderConfirmations)
	assert.True(t, pref.EmailNotifications.PaymentReceipts)
	assert.True(t, pref.AccountNotifications.PasswordChanges)
	assert.Equal(t, "immediate", pref.NotificationFrequency)
	assert.False(t, pref.SMSNotifications.Enabled, "short phone number disables SMS")
	assert.Equal(t, "22:00", pref.QuietHours.StartTime)
}

func TestNormalizeCountsDigitsNotLength(t *testing.T) {
	// Ten non-digit characters are not a phone number.
	pref := models.DefaultNotificationPreference(1)
	pref.SMSNotifications.Enabled = true
	pref.SMSNotifications.PhoneNumber = "abcdefghij"

	pref.Normalize()
	assert.False(t, pref.SMSNotifications.Enabled)

	pref = models.DefaultNotificationPreference(1)
	pref.SMSNotifications.Enabled = true
	pref.SMSNotifications.PhoneNumber = "call 212-555-0188 anytime"

	pref.Normalize()
	assert.True(t, pref.SMSNotifications.Enabled, "ten digits among other text still count")
}

func TestNormalizeKeepsValidSMSNumber(t *testing.T) {
	pref := models.DefaultNotificationPreference(1)
	pref.SMSNotifications.Enabled = true
	pref.SMSNotifications.PhoneNumber = "+1 (212) 555-0188"

	pref.Normalize()
	assert.True(t, pref.SMSNotifications.Enabled)
}

func TestGetOrCreatePreferencesIsLazy(t *testing.T) {
	db := openTestDB(t)
	user := models.User{ClerkID: "clerk_pref", Email: "pref@example.com"}
	require.NoError(t, db.Create(&user).Error)

	pref, err := GetOrCreatePreferences(db, user.ID)
	require.NoError(t, err)
	assert.True(t, pref.EmailNotifications.OrderConfirmations)
	assert.Equal(t, "immediate", pref.NotificationFrequency)

	again, err := GetOrCreatePreferences(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, pref.ID, again.ID)

	var count int64
	db.Model(&models.NotificationPreference{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestShouldSendQuietHoursSuppressesLowPriorityOnly(t *testing.T) {
	db := openTestDB(t)
	user := models.User{ClerkID: "clerk_qh", Email: "qh@example.com"}
	require.NoError(t, db.Create(&user).Error)

	pref := models.DefaultNotificationPreference(user.ID)
	pref.QuietHours = models.QuietHours{Enabled: true, StartTime: "00:00", EndTime: "23:59", Timezone: "UTC"}
	require.NoError(t, db.Create(&pref).Error)

	now := clock(12, 0)

	// Medium priority is suppressed during quiet hours.
	ok, err := ShouldSend(db, user.ID, TypeShippingNotification, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// Required types bypass quiet hours entirely.
	ok, err = ShouldSend(db, user.ID, TypeOrderConfirmation, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ShouldSend(db, user.ID, TypeSecurityAlert, now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldSendHonorsDisabledPreference(t *testing.T) {
	db := openTestDB(t)
	user := models.User{ClerkID: "clerk_off", Email: "off@example.com"}
	require.NoError(t, db.Create(&user).Error)

	pref := models.DefaultNotificationPreference(user.ID)
	pref.EmailNotifications.ShippingNotifications = false
	require.NoError(t, db.Create(&pref).Error)

	ok, err := ShouldSend(db, user.ID, TypeShippingNotification, clock(12, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}
