package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/infrastructure/notification"
)

const dateLayout = "2 Jan 2006"

func billIssuedEmail(ev *billing.BillEvent, room string, loc *time.Location) notification.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Your bill for room %s, %s, has been issued.\n\n", room, ev.Month)
	fmt.Fprintf(&b, "Amount due: %s\n", ev.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "Due date: %s\n", ev.DueDate.In(loc).Format(dateLayout))
	if ev.Status == billing.BillStatusPending {
		b.WriteString("\nWe have your payment slip and will confirm it shortly.\n")
	} else {
		b.WriteString("\nPlease upload your payment slip once you have paid.\n")
	}
	return notification.Email{
		Subject: fmt.Sprintf("Bill for %s: %s", ev.Month, ev.TotalAmount.StringFixed(2)),
		Text:    b.String(),
	}
}

func paymentApprovedEmail(ev *payment.PaymentEvent, bill *billing.Bill, loc *time.Location) notification.Email {
	text := fmt.Sprintf("Your payment of %s for %s has been approved. Thank you.\n", ev.Amount.StringFixed(2), bill.Month)
	if ev.VerifiedAt != nil {
		text += fmt.Sprintf("Verified on %s.\n", ev.VerifiedAt.In(loc).Format(dateLayout))
	}
	return notification.Email{
		Subject: fmt.Sprintf("Payment received for %s", bill.Month),
		Text:    text,
	}
}

func paymentRejectedEmail(ev *payment.PaymentEvent, bill *billing.Bill) notification.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Your payment slip for %s could not be verified.\n", bill.Month)
	if ev.RejectReason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", ev.RejectReason)
	}
	fmt.Fprintf(&b, "\nThe bill of %s is open again. Please upload a new slip.\n", bill.TotalAmount.StringFixed(2))
	return notification.Email{
		Subject: fmt.Sprintf("Payment slip for %s was rejected", bill.Month),
		Text:    b.String(),
	}
}
