// internal/api/notifications.go
package api

import "net/http"

// NotificationSettings describes the notification preferences exposed by the
// API. Delivery itself is not implemented; these are static placeholders
// until a delivery channel exists.
type NotificationSettings struct {
	EmailEnabled     bool `json:"email_enabled"`
	TelegramEnabled  bool `json:"telegram_enabled"`
	NotifyOnIssues   bool `json:"notify_on_issues"`
	NotifyOnPRs      bool `json:"notify_on_prs"`
	NotifyOnSecurity bool `json:"notify_on_security"`
}

// getNotificationSettings returns the current notification settings.
// GET /api/notifications/settings
func (h *Handler) getNotificationSettings(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, NotificationSettings{
		EmailEnabled:     false,
		TelegramEnabled:  false,
		NotifyOnIssues:   true,
		NotifyOnPRs:      true,
		NotifyOnSecurity: true,
	})
}

// sendTestNotification acknowledges a test notification request.
// POST /api/notifications/test
func (h *Handler) sendTestNotification(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Test notification feature - Coming soon!",
		"status":  "placeholder",
	})
}
