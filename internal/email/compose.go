package email

import "fmt"

// ComposePayoutLink builds the settlement-link mail sent to a farmer when
// their share of an order is ready to collect.
func ComposePayoutLink(sellerName, sellerEmail, orderID, amount, currency, approvalURL string) Email {
	text := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your share of order %s is ready to collect: %s %s.\n\n"+
			"Open the link below to receive your payout:\n%s\n\n"+
			"The link expires after a few days, so please collect promptly.\n\n"+
			"HarvestLink",
		sellerName, orderID, amount, currency, approvalURL)

	html := fmt.Sprintf(
		"<p>Hello %s,</p>"+
			"<p>Your share of order <strong>%s</strong> is ready to collect: <strong>%s %s</strong>.</p>"+
			"<p><a href=%q>Collect your payout</a></p>"+
			"<p>The link expires after a few days, so please collect promptly.</p>"+
			"<p>HarvestLink</p>",
		sellerName, orderID, amount, currency, approvalURL)

	return Email{
		To:       sellerEmail,
		ToName:   sellerName,
		Subject:  fmt.Sprintf("Payout ready for order %s", orderID),
		TextBody: text,
		HTMLBody: html,
	}
}

// ComposeOrderConfirmation builds the confirmation mail sent to a buyer after
// their paid order is recorded.
func ComposeOrderConfirmation(buyerName, buyerEmail, orderID string, totalCents int64) Email {
	total := fmt.Sprintf("%.2f", float64(totalCents)/100)
	text := fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received your payment and recorded order %s.\n"+
			"Order total: LKR %s.\n\n"+
			"Thank you for buying from local farmers.\n\n"+
			"HarvestLink",
		buyerName, orderID, total)

	return Email{
		To:       buyerEmail,
		ToName:   buyerName,
		Subject:  fmt.Sprintf("Order %s confirmed", orderID),
		TextBody: text,
	}
}

// ComposeProductApproved builds the notification mail sent to a business when
// a product matching their grade preferences is approved.
func ComposeProductApproved(recipientName, recipientEmail, productName, grade string) Email {
	text := fmt.Sprintf(
		"Hello %s,\n\n"+
			"A new product matching your preferences is now available: %s (grade %s).\n\n"+
			"Log in to place an order while stock lasts.\n\n"+
			"HarvestLink",
		recipientName, productName, grade)

	return Email{
		To:       recipientEmail,
		ToName:   recipientName,
		Subject:  fmt.Sprintf("New %s produce available: %s", grade, productName),
		TextBody: text,
	}
}
