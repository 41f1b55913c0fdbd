package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed emails/*.html
var emailFS embed.FS

var emailTemplates = template.Must(template.ParseFS(emailFS, "emails/*.html"))

// confirmSignInData feeds the confirm-signin template.
type confirmSignInData struct {
	BaseURL   string
	SignInURL string
	Email     string
}

// welcomeData feeds the welcome template.
type welcomeData struct {
	BaseURL      string
	SupportEmail string
}

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
