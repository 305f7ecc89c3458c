package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"farmlyf_back_end/internal/models"
)

const layout = `<!DOCTYPE html>
<html><head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;background:#f6f8f4;padding:20px">
<div style="max-width:600px;margin:auto;background:#fff;padding:24px;border-radius:10px">
<h2 style="color:#2e7d32;margin-top:0">FarmLyf</h2>
{{template "body" .}}
<p style="color:#777;margin-top:32px;font-size:12px">You are receiving this email because of activity on your FarmLyf account.</p>
</div></body></html>`

func mustTemplate(body string) *template.Template {
	t := template.Must(template.New("layout").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	}).Parse(layout))
	return template.Must(t.New("body").Parse(body))
}

var (
	otpTmpl = mustTemplate(`<p>Your FarmLyf login code is</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold">{{.Code}}</p>
<p>It expires in {{.Minutes}} minutes. Never share this code with anyone.</p>`)

	orderPlacedTmpl = mustTemplate(`<p>Thank you for your order <strong>{{.Number}}</strong>.</p>
<table style="width:100%;border-collapse:collapse">
{{range .Items}}<tr><td style="padding:6px 0">{{.Name}} ({{.VariantLabel}}) × {{.Qty}}</td><td style="text-align:right">{{money .Price}}</td></tr>{{end}}
</table>
<p style="text-align:right"><strong>Total {{money .Amount}}</strong></p>`)

	orderStatusTmpl = mustTemplate(`<p>Your order <strong>{{.Number}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if eq (print .Status) "Shipped"}}<p>It is on its way and should reach you in a few days.</p>{{end}}
{{if eq (print .Status) "Delivered"}}<p>We hope you enjoy it. Returns are accepted within the return window from your orders page.</p>{{end}}
{{if eq (print .Status) "Cancelled"}}<p>If you paid online, the amount will be refunded to your original payment method.</p>{{end}}`)

	returnStatusTmpl = mustTemplate(`<p>Your {{.Type}} request for order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if eq (print .Status) "Refunded"}}<p>{{money .RefundAmount}} has been refunded.</p>{{end}}
{{if eq (print .Status) "Rejected"}}<p>Reach out to support if you have questions about this decision.</p>{{end}}`)
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OTPMail is the login code email.
func OTPMail(to, code string, ttl time.Duration) (Mail, error) {
	html, err := render(otpTmpl, struct {
		Code    string
		Minutes int
	}{code, int(ttl.Minutes())})
	return Mail{To: to, Subject: "Your FarmLyf login code", HTML: html}, err
}

// OrderPlacedMail confirms a new order.
func OrderPlacedMail(to string, o models.Order) (Mail, error) {
	html, err := render(orderPlacedTmpl, o)
	return Mail{To: to, Subject: "Order " + o.Number + " confirmed", HTML: html}, err
}

// OrderStatusMail announces an order status change.
func OrderStatusMail(to string, o models.Order) (Mail, error) {
	html, err := render(orderStatusTmpl, o)
	return Mail{To: to, Subject: fmt.Sprintf("Order %s: %s", o.Number, o.Status), HTML: html}, err
}

// ReturnStatusMail announces a return request status change.
func ReturnStatusMail(to string, r models.ReturnRequest) (Mail, error) {
	html, err := render(returnStatusTmpl, r)
	return Mail{To: to, Subject: fmt.Sprintf("Return for %s: %s", r.OrderNumber, r.Status), HTML: html}, err
}
