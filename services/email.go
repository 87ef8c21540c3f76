package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/i18n"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

//go:embed emails/*
var emailFS embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// loadTemplate renders emails/<name>_<lang>.html/.txt, falling back to the
// base emails/<name>.html/.txt (Indonesian).
func loadTemplate(templateName string, lang string, data interface{}) (html string, text string, err error) {
	read := func(ext string) (string, []byte, error) {
		p := path.Join("emails", fmt.Sprintf("%s_%s%s", templateName, lang, ext))
		content, err := fs.ReadFile(emailFS, p)
		if err != nil {
			p = path.Join("emails", templateName+ext)
			content, err = fs.ReadFile(emailFS, p)
			if err != nil {
				return "", nil, fmt.Errorf("failed to read template %s: %w", p, err)
			}
		}
		return p, content, nil
	}

	p, content, err := read(".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(path.Base(p)).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", p, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", p, err)
	}

	p, content, err = read(".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(path.Base(p)).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", p, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", p, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	zap.L().Info("email sent", zap.String("resend_id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// logEmailToConsole logs email details in development mode
func logEmailToConsole(email *Email) {
	zap.L().Info("email not sent (test mode)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody),
		zap.String("html", truncate(email.HTMLBody, 500)),
	)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email in a goroutine so handlers never wait on
// the mail provider. Failures are logged only.
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			zap.L().Error("async email failed", zap.Strings("to", email.To), zap.Error(err))
		}
	}(cfg, emailCopy)
}

// CaseCompletedEmailData fills the case_completed template
type CaseCompletedEmailData struct {
	KodeKJSB    string
	NamaPemohon string
	TglSelesai  string
	NIB         string
	DetailURL   string
}

// BuildCaseCompletedEmail creates the notice sent when a case is closed at
// BPN. Nil when no recipient is configured.
func BuildCaseCompletedEmail(cfg *config.Config, c *models.Case, lang string) *Email {
	to := strings.TrimSpace(cfg.NotifyEmail)
	if to == "" {
		return nil
	}

	data := CaseCompletedEmailData{
		KodeKJSB:    c.Code(),
		NamaPemohon: c.ApplicantName(),
		TglSelesai:  ptrValue(c.TglSelesaiBPN),
		NIB:         ptrValue(c.NIB),
	}
	if cfg.AppURL != "" {
		data.DetailURL = strings.TrimSuffix(cfg.AppURL, "/") + "/?zoomTo=" + c.Code()
	}

	args := map[string]interface{}{"kode": data.KodeKJSB, "pemohon": data.NamaPemohon, "tanggal": data.TglSelesai}
	email := &Email{
		To:      []string{to},
		Subject: i18n.Translate(lang, "email.completed_subject", args),
	}

	html, text, err := loadTemplate("case_completed", lang, data)
	if err != nil {
		zap.L().Warn("completion email template failed, using plain text", zap.Error(err))
		email.TextBody = i18n.Translate(lang, "email.completed_body", args)
		return email
	}
	email.HTMLBody = html
	email.TextBody = text
	return email
}

// NotifyCaseCompleted sends the completion notice in the background
func NotifyCaseCompleted(cfg *config.Config, c *models.Case, lang string) {
	if email := BuildCaseCompletedEmail(cfg, c, lang); email != nil {
		SendEmailAsync(cfg, email)
	}
}
