package contactControllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubMailer struct {
	sent int
	err  error
}

func (m *stubMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent++
	return "msg_1", nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ContactInquiry{}, &models.ConsultationBooking{}))
	return db
}

func postJSON(t *testing.T, handler gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST(path, handler)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitInquiryStoresAndEmailsStudio(t *testing.T) {
	db := openTestDB(t)
	mailer := &stubMailer{}

	w := postJSON(t, SubmitInquiryHandler(db, mailer, "studio@example.com", zap.NewNop()), "/contact/inquiry",
		`{"name": "Ava Stone", "email": "ava@example.com", "subject": "custom_order", "message": "Looking for an engagement ring."}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var inquiry models.ContactInquiry
	require.NoError(t, db.First(&inquiry).Error)
	assert.Equal(t, models.InquiryStatusNew, inquiry.Status)
	assert.Equal(t, "contact_page", inquiry.Source)
	assert.Equal(t, 1, mailer.sent)
}

func TestSubmitInquiryRequiresMessage(t *testing.T) {
	db := openTestDB(t)

	w := postJSON(t, SubmitInquiryHandler(db, &stubMailer{}, "", zap.NewNop()), "/contact/inquiry",
		`{"name": "Ava Stone", "email": "ava@example.com", "subject": "general"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.ContactInquiry{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitInquirySurvivesMailerFailure(t *testing.T) {
	db := openTestDB(t)
	mailer := &stubMailer{err: fmt.Errorf("provider down")}

	w := postJSON(t, SubmitInquiryHandler(db, mailer, "studio@example.com", zap.NewNop()), "/contact/inquiry",
		`{"name": "Ava Stone", "email": "ava@example.com", "subject": "general", "message": "Hello"}`)
	assert.Equal(t, http.StatusCreated, w.Code, "the row is the record; the email is best effort")
}

func TestBookConsultationValidatesType(t *testing.T) {
	db := openTestDB(t)

	w := postJSON(t, BookConsultationHandler(db, &stubMailer{}, "", zap.NewNop()), "/contact/consultation",
		`{"name": "Ava Stone", "email": "ava@example.com", "consultation_type": "telepathic"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, BookConsultationHandler(db, &stubMailer{}, "", zap.NewNop()), "/contact/consultation",
		`{"name": "Ava Stone", "email": "ava@example.com", "consultation_type": "virtual"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var booking models.ConsultationBooking
	require.NoError(t, db.First(&booking).Error)
	assert.Equal(t, "pending", booking.Status)
	assert.Equal(t, 60, booking.DurationMinutes)
}
