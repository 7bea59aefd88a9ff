package email

import (
	"html/template"
	"strings"
)

// OrderItem is one confirmation line with its prices already formatted
type OrderItem struct {
	Name      string
	Attribute string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// Confirmation is everything the order confirmation email shows
type Confirmation struct {
	To      string
	Name    string
	OrderID string
	Items   []OrderItem
	Total   string
	ShipTo  []string
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Georgia, 'Times New Roman', serif; line-height: 1.6; color: #3a2e2a; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #e8c4b8 0%, #c9a27e 100%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Dear {{.Name}},</p>
		<p>We have received your order and are preparing it with care.</p>

		<div style="background: #faf6f3; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #8a7a72;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.OrderID}}</p>
		</div>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #faf6f3;">
					<th style="padding: 12px; text-align: left;">Fragrance</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Price</th>
					<th style="padding: 12px; text-align: right;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Items}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Name}}{{if .Attribute}} ({{.Attribute}}){{end}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{.UnitPrice}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{.LineTotal}}</td>
				</tr>
			{{- end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 12px; text-align: right; font-weight: bold;">Total</td>
					<td style="padding: 12px; text-align: right; font-weight: bold;">{{.Total}}</td>
				</tr>
			</tfoot>
		</table>

		{{- if .ShipTo}}
		<h2 style="font-size: 16px;">Shipping to</h2>
		<p>{{range $i, $line := .ShipTo}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
		{{- end}}

		<p style="color: #8a7a72; font-size: 12px; margin-top: 30px;">This is an automated message from Sugraé. Please do not reply.</p>
	</div>
</body>
</html>`))

// BuildOrderConfirmationBody renders the HTML body for an order confirmation
func BuildOrderConfirmationBody(c Confirmation) (string, error) {
	var b strings.Builder
	if err := confirmationTmpl.Execute(&b, c); err != nil {
		return "", err
	}
	return b.String(), nil
}
