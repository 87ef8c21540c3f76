package services

import (
	"fmt"
	"sync"
	"time"

	"kjsb_flow_app_go/config"

	"go.uber.org/zap"
)

// Failed office logins from one IP within failedLoginWindow that raise an alert
const (
	failedLoginThreshold = 5
	failedLoginWindow    = 10 * time.Minute
	alertCooldown        = time.Hour
	maxAlerts            = 100
)

// SecurityEventMonitor watches failed office logins and raises alerts
type SecurityEventMonitor struct {
	mu           sync.Mutex
	cfg          *config.Config
	now          func() time.Time
	failedLogins map[string][]time.Time // IP -> failure timestamps
	alertedIPs   map[string]time.Time   // IP -> last alert time
	alerts       []SecurityAlert        // newest first
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"` // "WARNING", "CRITICAL"
}

// Monitor is the process-wide monitor; nil disables tracking
var Monitor *SecurityEventMonitor

// NewSecurityMonitor creates a monitor. Alerts are mailed to
// cfg.NotifyEmail when set.
func NewSecurityMonitor(cfg *config.Config) *SecurityEventMonitor {
	return &SecurityEventMonitor{
		cfg:          cfg,
		now:          time.Now,
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		alerts:       make([]SecurityAlert, 0),
	}
}

// InitSecurityMonitor installs the global monitor and its cleanup loop
func InitSecurityMonitor(cfg *config.Config) {
	Monitor = NewSecurityMonitor(cfg)
	go Monitor.cleanupLoop()
}

// TrackFailedLogin records a wrong office password from ip
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-failedLoginWindow)
	valid := []time.Time{}
	for _, t := range append(m.failedLogins[ip], now) {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	m.failedLogins[ip] = valid

	if len(valid) >= failedLoginThreshold {
		m.triggerAlertLocked(ip, fmt.Sprintf("%d failed office logins in %s", len(valid), failedLoginWindow))
	}
}

// triggerAlertLocked logs and mails an alert, at most once per hour per IP
func (m *SecurityEventMonitor) triggerAlertLocked(ip, reason string) {
	now := m.now()
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: reason, Level: "CRITICAL"}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}

	zap.L().Error("security alert", zap.String("ip", ip), zap.String("reason", reason))

	if m.cfg != nil && m.cfg.NotifyEmail != "" {
		SendEmailAsync(m.cfg, &Email{
			To:       []string{m.cfg.NotifyEmail},
			Subject:  "Peringatan keamanan KJSB Tracker",
			TextBody: fmt.Sprintf("Terdeteksi %s dari IP %s pada %s.", reason, ip, now.Format(time.RFC1123)),
		})
	}
}

// GetRecentAlerts returns a copy of recent alerts
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}

func (m *SecurityEventMonitor) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		m.cleanup()
	}
}

// cleanup removes stale failures and expired alert cooldowns
func (m *SecurityEventMonitor) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
