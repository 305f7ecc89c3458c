package utils

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// UPIPaymentURI builds a upi://pay deep link for the amount in rupees.
func UPIPaymentURI(vpa, payee, reference string, amount float64) string {
	q := url.Values{}
	q.Set("pa", vpa)
	q.Set("pn", payee)
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	q.Set("tn", "Order "+reference)
	q.Set("tr", reference)
	return "upi://pay?" + q.Encode()
}

// UPIQRCode renders the UPI deep link as a PNG QR code.
func UPIQRCode(vpa, payee, reference string, amount float64, size int) ([]byte, error) {
	if vpa == "" {
		return nil, fmt.Errorf("UPI VPA not configured")
	}
	return qrcode.Encode(UPIPaymentURI(vpa, payee, reference, amount), qrcode.Medium, size)
}
