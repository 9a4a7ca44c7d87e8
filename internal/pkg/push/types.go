// internal/pkg/push/types.go
package push

// Notification represents a push notification to deliver to a set of
// device tokens
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// FCM API structures
type FCMMessage struct {
	To           string            `json:"to,omitempty"`
	Notification FCMNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Priority     string            `json:"priority,omitempty"`
}

type FCMNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type FCMResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Expo API structures
type ExpoMessage struct {
	To    []string          `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}
