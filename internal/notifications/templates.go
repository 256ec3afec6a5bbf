package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

var ownerEmailTmpl = template.Must(template.New("owner").Funcs(tmplFuncs).Parse(`
<h2>Nueva venta confirmada</h2>
<p>Pago #{{.PaymentID}} acreditado por <strong>{{money .Total}}</strong>.</p>

<h3>Comprador</h3>
<p>
  {{.Buyer.Name}}<br>
  {{.Buyer.Email}}<br>
  {{.Buyer.Phone}}
</p>

<h3>Envío</h3>
<p>
  {{.Address.Address}}<br>
  {{.Address.City}}, {{.Address.Province}} ({{.Address.PostalCode}})<br>
  {{with .Address.Notes}}Notas: {{.}}<br>{{end}}
  {{with .ShippingService}}{{.}} · {{$.ShippingDays}} días hábiles · {{money $.ShippingCost}}{{end}}
</p>

<h3>Productos</h3>
<table border="0" cellpadding="4">
  {{range .Items}}
  <tr>
    <td>{{.Title}}</td>
    <td>x{{.Quantity}}</td>
    <td>{{money .Subtotal}}</td>
  </tr>
  {{end}}
</table>
`))

var customerEmailTmpl = template.Must(template.New("customer").Funcs(tmplFuncs).Parse(`
<h2>¡Gracias por tu compra, {{.Buyer.Name}}!</h2>
<p>Recibimos tu pago por <strong>{{money .Total}}</strong> (operación #{{.PaymentID}}).</p>

<h3>Tu pedido</h3>
<table border="0" cellpadding="4">
  {{range .Items}}
  <tr>
    <td>{{.Title}}</td>
    <td>x{{.Quantity}}</td>
    <td>{{money .Subtotal}}</td>
  </tr>
  {{end}}
</table>

{{if .ShippingService}}
<p>Lo enviamos a {{.Address.Address}}, {{.Address.City}} por {{.ShippingService}}.
Llega en {{.ShippingDays}} días hábiles.</p>
{{end}}

<p>Cualquier consulta, respondé este correo.</p>
`))

var tmplFuncs = template.FuncMap{
	"money": func(amount float64) string {
		return fmt.Sprintf("$%.2f", amount)
	},
}

func renderOwnerEmail(order Order) (string, error) {
	return render(ownerEmailTmpl, order)
}

func renderCustomerEmail(order Order) (string, error) {
	return render(customerEmailTmpl, order)
}

func render(tmpl *template.Template, order Order) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, order); err != nil {
		return "", err
	}
	return buf.String(), nil
}
