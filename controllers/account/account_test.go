package accountControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
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
		&models.UserAddress{},
		&models.UserSetting{},
	))
	return db
}

func seedAccountUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{ClerkID: "clerk_acct", Email: "acct@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func newAccountRouter(db *gorm.DB, clerkID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("clerk_id", clerkID) })

	r.GET("/addresses", ListAddressesHandler(db))
	r.POST("/addresses", CreateAddressHandler(db))
	r.PUT("/addresses/:id", UpdateAddressHandler(db))
	r.POST("/addresses/:id/default", SetDefaultAddressHandler(db))
	r.DELETE("/addresses/:id", DeleteAddressHandler(db))

	r.GET("/settings", GetSettingsHandler(db))
	r.PUT("/settings", UpdateSettingsHandler(db))
	r.POST("/settings/reset", ResetSettingsHandler(db))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func addressBody(label string) map[string]interface{} {
	return map[string]interface{}{
		"label":       label,
		"first_name":  "Ava",
		"last_name":   "Stone",
		"line1":       "12 Pearl St",
		"city":        "Brooklyn",
		"state":       "NY",
		"postal_code": "11201",
	}
}

func TestCreateAddressFirstBecomesDefault(t *testing.T) {
	db := openTestDB(t)
	user := seedAccountUser(t, db)
	r := newAccountRouter(db, user.ClerkID)

	w := doJSON(t, r, http.MethodPost, "/addresses", addressBody("Home"))
	require.Equal(t, http.StatusCreated, w.Code)

	var first models.UserAddress
	require.NoError(t, db.Where("user_id = ? AND label = ?", user.ID, "Home").First(&first).Error)
	assert.True(t, first.IsDefault, "the first saved address is the default")

	w = doJSON(t, r, http.MethodPost, "/addresses", addressBody("Work"))
	require.Equal(t, http.StatusCreated, w.Code)

	var second models.UserAddress
	require.NoError(t, db.Where("user_id = ? AND label = ?", user.ID, "Work").First(&second).Error)
	assert.False(t, second.IsDefault)
}

func TestCreateAddressDuplicateLabelConflicts(t *testing.T) {
	db := openTestDB(t)
	user := seedAccountUser(t, db)
	r := newAccountRouter(db, user.ClerkID)

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/addresses", addressBody("Home")).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, r, http.MethodPost, "/addresses", addressBody("Home")).Code)
}

func TestSetDefaultAddressSwitches(t *testing.T) {
	db := openTestDB(t)
	user := seedAccountUser(t, db)
	r := newAccountRouter(db, user.ClerkID)

	doJSON(t, r, http.MethodPost, "/addresses", addressBody("Home"))
	doJSON(t, r, http.MethodPost, "/addresses", addressBody("Work"))

	var work models.UserAddress
	require.NoError(t, db.Where("user_id = ? AND label = ?", user.ID, "Work").First(&work).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/addresses/%d/default", work.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var defaults int64
	db.Model(&models.UserAddress{}).Where("user_id = ? AND is_default = ?", user.ID, true).Count(&defaults)
	assert.Equal(t, int64(1), defaults, "exactly one default at a time")

	require.NoError(t, db.First(&work, work.ID).Error)
	assert.True(t, work.IsDefault)
}

func TestDeleteDefaultAddressPromotesOldest(t *testing.T) {
	db := openTestDB(t)
	user := seedAccountUser(t, db)
	r := newAccountRouter(db, user.ClerkID)

	doJSON(t, r, http.MethodPost, "/addresses", addressBody("Home"))
	doJSON(t, r, http.MethodPost, "/addresses", addressBody("Work"))

	var home models.UserAddress
	require.NoError(t, db.Where("user_id = ? AND label = ?", user.ID, "Home").First(&home).Error)
	require.True(t, home.IsDefault)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/addresses/%d", home.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var work models.UserAddress
	require.NoError(t, db.Where("user_id = ? AND label = ?", user.ID, "Work").First(&work).Error)
	assert.True(t, work.IsDefault, "remaining address takes over as default")
}

func TestAddressesAreOwnerScoped(t *testing.T) {
	db := openTestDB(t)
	owner := seedAccountUser(t, db)
	other := models.User{ClerkID: "clerk_other", Email: "other@example.com"}
	require.NoError(t, db.Create(&other).Error)

	doJSON(t, newAccountRouter(db, owner.ClerkID), http.MethodPost, "/addresses", addressBody("Home"))

	var home models.UserAddress
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&home).Error)

	w := doJSON(t, newAccountRouter(db, other.ClerkID), http.MethodDelete, fmt.Sprintf("/addresses/%d", home.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	db := openTestDB(t)
	user := seedAccountUser(t, db)
	r := newAccountRouter(db, user.ClerkID)

	w := doJSON(t, r, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "system", resp.Settings["theme"])
	assert.Equal(t, "USD", resp.Settings["currency"])

	w = doJSON(t, r, http.MethodPut, "/settings", map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dark", resp.Settings["theme"])
	assert.Equal(t, "USD", resp.Settings["currency"], "untouched keys keep their defaults")

	// Updating the same key twice upserts rather than duplicating rows.
	w = doJSON(t, r, http.MethodPut, "/settings", map[string]string{"theme": "light"})
	require.Equal(t, http.StatusOK, w.Code)
	var rows int64
	db.Model(&models.UserSetting{}).Where("user_id = ?", user.ID).Count(&rows)
	assert.Equal(t, int64(1), rows)
}

func TestSettingsRejectUnknownKey(t *testing.T) {
	db := openTestDB(t)
	user := seedAccountUser(t, db)
	r := newAccountRouter(db, user.ClerkID)

	w := doJSON(t, r, http.MethodPut, "/settings", map[string]string{"thene": "dark"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var rows int64
	db.Model(&models.UserSetting{}).Count(&rows)
	assert.Zero(t, rows, "nothing stored from a rejected batch")
}

func TestSettingsReset(t *testing.T) {
	db := openTestDB(t)
	user := seedAccountUser(t, db)
	r := newAccountRouter(db, user.ClerkID)

	doJSON(t, r, http.MethodPut, "/settings", map[string]string{"theme": "dark"})
	w := doJSON(t, r, http.MethodPost, "/settings/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "system", resp.Settings["theme"])

	var rows int64
	db.Model(&models.UserSetting{}).Where("user_id = ?", user.ID).Count(&rows)
	assert.Zero(t, rows)
}
