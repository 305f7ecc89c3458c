package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"farmlyf_back_end/internal/models"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	"line":  func(it models.OrderItem) float64 { return it.Price * float64(it.Qty) },
	"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Invoice {{.Order.Number}}</title>
<style>
body{font-family:Arial,sans-serif;color:#222;margin:32px}
h1{color:#2e7d32;margin:0}
table{width:100%;border-collapse:collapse;margin-top:24px}
th,td{border-bottom:1px solid #ddd;padding:8px;text-align:left}
td.num,th.num{text-align:right}
.totals td{border:none}
</style></head>
<body>
<h1>FarmLyf</h1>
<p>Invoice <strong>{{.Order.Number}}</strong> &middot; {{date .Order.CreatedAt}}</p>
<p>{{.Order.Address.FullName}}<br>{{.Order.Address.Line1}}{{with .Order.Address.Line2}}, {{.}}{{end}}<br>
{{.Order.Address.City}}, {{.Order.Address.State}} {{.Order.Address.Pincode}}<br>{{.Order.Address.Phone}}</p>
<table>
<tr><th>Item</th><th>Variant</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.VariantLabel}}</td><td class="num">{{.Qty}}</td><td class="num">{{money .Price}}</td><td class="num">{{money (line .)}}</td></tr>
{{end}}
<tr class="totals"><td colspan="4" class="num">Subtotal</td><td class="num">{{money .Order.Subtotal}}</td></tr>
<tr class="totals"><td colspan="4" class="num">Shipping</td><td class="num">{{money .Order.ShippingFee}}</td></tr>
<tr class="totals"><td colspan="4" class="num"><strong>Total</strong></td><td class="num"><strong>{{money .Order.Amount}}</strong></td></tr>
</table>
<p>Payment: {{.Order.PaymentMethod}} ({{.Order.PaymentStatus}})</p>
{{with .QR}}<p><img src="{{.}}" width="160" alt="UPI QR"><br>Scan to pay with any UPI app</p>{{end}}
</body></html>`))

// RenderInvoiceHTML renders the printable invoice of o. qrDataURL may be empty.
func RenderInvoiceHTML(o models.Order, qrDataURL string) (string, error) {
	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, struct {
		Order models.Order
		QR    template.URL
	}{o, template.URL(qrDataURL)})
	return buf.String(), err
}

// RenderInvoicePDF prints the invoice HTML through headless Chrome.
func RenderInvoicePDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print invoice: %w", err)
	}
	return pdf, nil
}
