package notifications

import (
	"fmt"
	"strings"

	"github.com/jyush98/jason-co-ecom/models"
)

// renderEmail builds the subject and HTML body for a notification type.
// Template data comes from the event publisher (order details etc.).
func renderEmail(t Type, user *models.User, data map[string]interface{}) (subject, html string) {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = "there"
	}
	if v, ok := data["customer_name"].(string); ok && v != "" {
		name = v
	}

	orderNumber, _ := data["order_number"].(string)

	switch t {
	case TypeOrderConfirmation:
		subject = fmt.Sprintf("Order Confirmed — %s", orderNumber)
		html = orderEmailBody(name,
			fmt.Sprintf("Thank you for your order! Your order <strong>%s</strong> has been confirmed.", orderNumber),
			data)
	case TypeOrderUpdate:
		status, _ := data["status"].(string)
		subject = fmt.Sprintf("Order %s Update", orderNumber)
		html = orderEmailBody(name,
			fmt.Sprintf("Your order <strong>%s</strong> is now <strong>%s</strong>.", orderNumber, status),
			data)
	case TypeShippingNotification:
		subject = fmt.Sprintf("Your Order %s Has Shipped", orderNumber)
		msg := fmt.Sprintf("Great news — your order <strong>%s</strong> is on its way.", orderNumber)
		if tn, ok := data["tracking_number"].(string); ok && tn != "" {
			msg += fmt.Sprintf(" Tracking number: <strong>%s</strong>.", tn)
		}
		html = orderEmailBody(name, msg, data)
	case TypeDeliveryConfirmation:
		subject = fmt.Sprintf("Your Order %s Was Delivered", orderNumber)
		html = orderEmailBody(name,
			fmt.Sprintf("Your order <strong>%s</strong> has been delivered. We hope you love it.", orderNumber),
			data)
	case TypePaymentReceipt:
		subject = fmt.Sprintf("Payment Receipt — %s", orderNumber)
		html = orderEmailBody(name,
			fmt.Sprintf("We received your payment for order <strong>%s</strong>.", orderNumber),
			data)
	case TypePriceDrop:
		product, _ := data["product_name"].(string)
		subject = fmt.Sprintf("Price Drop: %s", product)
		html = simpleEmailBody(name,
			fmt.Sprintf("An item on your wishlist, <strong>%s</strong>, just dropped in price.", product))
	case TypeSecurityAlert:
		subject = "Security Alert on Your Account"
		msg, _ := data["message"].(string)
		if msg == "" {
			msg = "We noticed unusual activity on your account."
		}
		html = simpleEmailBody(name, msg)
	case TypePasswordChange:
		subject = "Your Password Was Changed"
		html = simpleEmailBody(name, "Your account password was just changed. If this wasn't you, contact support immediately.")
	default:
		subject = "Notification from Jason & Co."
		msg, _ := data["message"].(string)
		html = simpleEmailBody(name, msg)
	}
	return subject, html
}

func orderEmailBody(name, lead string, data map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Hi %s,</h2><p>%s</p>", name, lead))

	if items, ok := data["items"].([]map[string]interface{}); ok && len(items) > 0 {
		b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
		for _, it := range items {
			itemName, _ := it["name"].(string)
			qty, _ := it["quantity"].(int)
			price, _ := it["unit_price_cents"].(int64)
			b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
				itemName, qty, FormatCents(price)))
		}
		b.WriteString("</table>")
	}

	if total, ok := data["total_cents"].(int64); ok {
		b.WriteString(fmt.Sprintf("<p>Total: <strong>%s</strong></p>", FormatCents(total)))
	}
	if ed, ok := data["estimated_delivery"].(string); ok && ed != "" {
		b.WriteString(fmt.Sprintf("<p>Estimated delivery: %s</p>", ed))
	}
	b.WriteString("<p>— Jason &amp; Co.</p>")
	return b.String()
}

func simpleEmailBody(name, msg string) string {
	return fmt.Sprintf("<h2>Hi %s,</h2><p>%s</p><p>— Jason &amp; Co.</p>", name, msg)
}

// FormatCents renders integer minor units as a dollar string, e.g. 5500 → "$55.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
