package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/jyush98/jason-co-ecom/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result is the per-channel delivery outcome. Delivery failures land here
// instead of propagating: callers inspect partial success, they never get an
// error because one channel failed.
type Result struct {
	Status    string `json:"status"` // sent, skipped, stubbed, error
	MessageID string `json:"message_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Dispatcher routes a logical notification event to its configured channels
// after consulting the preference resolver.
type Dispatcher struct {
	db     *gorm.DB
	mailer Mailer
	log    *zap.Logger
	now    func() time.Time
}

func NewDispatcher(db *gorm.DB, mailer Mailer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer, log: log, now: time.Now}
}

// Send delivers a notification of type t to the user over every eligible
// channel. overridePrefs forces delivery regardless of stored preferences
// (used for transactional confirmations); required types always force.
func (d *Dispatcher) Send(ctx context.Context, userID uint, t Type, data map[string]interface{}, overridePrefs bool) (map[Channel]Result, error) {
	results := make(map[Channel]Result)

	cfg, ok := Lookup(t)
	if !ok {
		return results, fmt.Errorf("unknown notification type %q", t)
	}

	var user models.User
	if err := d.db.First(&user, userID).Error; err != nil {
		return results, fmt.Errorf("notification user lookup: %w", err)
	}

	pref, err := GetOrCreatePreferences(d.db, userID)
	if err != nil {
		return results, err
	}

	forced := overridePrefs || cfg.Required

	if !forced {
		if send, reason := evalGate(pref, cfg, d.now()); !send {
			for _, ch := range cfg.Channels {
				results[ch] = Result{Status: "skipped", Detail: reason}
			}
			return results, nil
		}
	}

	for _, ch := range cfg.Channels {
		switch ch {
		case ChannelEmail:
			results[ch] = d.sendEmail(ctx, &user, t, data)
		case ChannelSMS:
			results[ch] = d.sendSMS(&user, pref, cfg, forced)
		}
	}

	d.log.Info("notification dispatched",
		zap.String("type", string(t)),
		zap.Uint("user_id", userID),
		zap.Any("results", results),
	)
	return results, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, user *models.User, t Type, data map[string]interface{}) Result {
	to := user.Email
	if v, ok := data["email"].(string); ok && v != "" {
		to = v
	}
	if to == "" {
		return Result{Status: "skipped", Detail: "no email address"}
	}

	subject, html := renderEmail(t, user, data)
	id, err := d.mailer.Send(ctx, to, subject, html)
	if err != nil {
		d.log.Error("email delivery failed",
			zap.String("type", string(t)),
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return Result{Status: "error", Detail: err.Error()}
	}
	return Result{Status: "sent", MessageID: id}
}

// sendSMS is a stub: it checks the SMS preference gate and phone number but
// hands off to no provider yet.
func (d *Dispatcher) sendSMS(user *models.User, pref *models.NotificationPreference, cfg Config, forced bool) Result {
	phone := pref.SMSPhoneNumber()
	if phone == "" {
		return Result{Status: "skipped", Detail: "sms not enabled or no phone number"}
	}
	if !forced {
		smsKey := smsKeyFor(cfg.Key)
		if smsKey == "" || !Resolve(pref, CategorySMS, smsKey) {
			return Result{Status: "skipped", Detail: "sms disabled for this type"}
		}
	}
	d.log.Info("sms delivery stubbed",
		zap.Uint("user_id", user.ID),
		zap.String("phone", phone),
	)
	return Result{Status: "stubbed", Detail: "sms provider not configured"}
}
