package services

import (
	"testing"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplate(t *testing.T) {
	data := CaseCompletedEmailData{KodeKJSB: "BKS-2024-0001", NamaPemohon: "Budi & Sons", TglSelesai: "2024-06-01"}

	t.Run("base template is Indonesian", func(t *testing.T) {
		html, text, err := loadTemplate("case_completed", "id", data)
		require.NoError(t, err)
		assert.Contains(t, html, "selesai di BPN pada 2024-06-01")
		assert.Contains(t, html, "Budi &amp; Sons")
		assert.Contains(t, text, "atas nama Budi & Sons")
	})

	t.Run("localized template", func(t *testing.T) {
		html, text, err := loadTemplate("case_completed", "en", data)
		require.NoError(t, err)
		assert.Contains(t, html, "completed at BPN")
		assert.Contains(t, text, "Case BKS-2024-0001")
	})

	t.Run("template not found", func(t *testing.T) {
		_, _, err := loadTemplate("non_existent", "id", data)
		assert.Error(t, err)
	})
}

func TestBuildCaseCompletedEmail(t *testing.T) {
	c := &models.Case{
		KodeKJSB:      stringPtr("BKS-2024-0007"),
		Pemohon:       &models.Applicant{NamaPemohon: "Siti"},
		TglSelesaiBPN: stringPtr("2024-06-01"),
		NIB:           stringPtr("12345"),
	}

	assert.Nil(t, BuildCaseCompletedEmail(&config.Config{}, c, "id"))

	email := BuildCaseCompletedEmail(&config.Config{NotifyEmail: "kantor@example.com", AppURL: "https://kjsb.example.com/"}, c, "id")
	require.NotNil(t, email)
	assert.Equal(t, []string{"kantor@example.com"}, email.To)
	assert.Equal(t, "Proyek BKS-2024-0007 selesai di BPN", email.Subject)
	assert.Contains(t, email.HTMLBody, "NIB: 12345")
	assert.Contains(t, email.TextBody, "https://kjsb.example.com/?zoomTo=BKS-2024-0007")
}

func TestSendEmail_TestMode(t *testing.T) {
	cfg := &config.Config{EmailTestMode: true}
	email := &Email{To: []string{"test@example.com"}, Subject: "Test", HTMLBody: "Body"}

	assert.NoError(t, SendEmail(cfg, email))
}

func TestSendEmail_NoApiKey(t *testing.T) {
	cfg := &config.Config{EmailTestMode: false, ResendAPIKey: ""}
	email := &Email{To: []string{"test@example.com"}, Subject: "Test", HTMLBody: "Body"}

	err := SendEmail(cfg, email)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY not configured")
}

func TestSendEmail_NoBody(t *testing.T) {
	cfg := &config.Config{EmailTestMode: false, ResendAPIKey: "key"}
	email := &Email{To: []string{"test@example.com"}, Subject: "Test"}

	err := SendEmail(cfg, email)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email must have either HTMLBody or TextBody")
}

func TestTruncate(t *testing.T) {
	s := "Hello World"
	assert.Equal(t, "Hello", truncate(s, 5))
	assert.Equal(t, "Hello World", truncate(s, 20))
}
