package notify

import (
	"bytes"
	"html/template"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to Pizza App, {{.Name}}!</h2>
  <p>Please verify your email address to start ordering.</p>
  <p><a href="{{.Link}}" style="background-color: #ff6b35; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Verify Email</a></p>
  <p>This link expires in 24 hours.</p>
</div>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password reset</h2>
  <p>Hi {{.Name}}, we received a request to reset your password.</p>
  <p><a href="{{.Link}}" style="background-color: #ff6b35; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Reset Password</a></p>
  <p>This link expires in 10 minutes. If you did not ask for it, ignore this email.</p>
</div>`))

	lowStockTmpl = template.Must(template.New("lowstock").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Low stock alert</h2>
  <p>The following items are at or below their threshold:</p>
  <table style="border-collapse: collapse; width: 100%;">
    <tr><th align="left">Item</th><th align="left">Category</th><th align="right">Stock</th><th align="right">Threshold</th></tr>
    {{range .}}<tr><td>{{.Name}}</td><td>{{.Category}}</td><td align="right">{{.CurrentStock}} {{.Unit}}</td><td align="right">{{.Threshold}}</td></tr>
    {{end}}
  </table>
</div>`))
)

type linkData struct {
	Name string
	Link string
}

// VerificationEmail builds the account verification message
func VerificationEmail(to, name, link string) (Message, error) {
	return render(to, "Verify your Pizza App account", verificationTmpl, linkData{Name: name, Link: link})
}

// PasswordResetEmail builds the password reset message
func PasswordResetEmail(to, name, link string) (Message, error) {
	return render(to, "Your password reset link (valid for 10 minutes)", resetTmpl, linkData{Name: name, Link: link})
}

// LowStockEmail builds the inventory alert sent to the admin
func LowStockEmail(to string, items []models.InventoryItem) (Message, error) {
	return render(to, "Low stock alert", lowStockTmpl, items)
}

func render(to, subject string, tmpl *template.Template, data interface{}) (Message, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
