// internal/pkg/push/service.go
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/your-org/mall-marketplace/internal/config"
)

// Service delivers push notifications through the configured provider
type Service struct {
	config *config.Config
	client *http.Client
}

// NewService creates a new push notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.External.Push.Timeout,
		},
	}
}

// Send delivers a notification to the given device tokens using the
// configured provider
func (s *Service) Send(ctx context.Context, tokens []string, notification *Notification) error {
	if len(tokens) == 0 {
		return nil
	}

	switch s.config.External.Push.Provider {
	case "fcm":
		return s.sendFCM(ctx, tokens, notification)
	case "expo":
		return s.sendExpo(ctx, tokens, notification)
	default:
		return fmt.Errorf("unsupported push provider: %s", s.config.External.Push.Provider)
	}
}

// NewOrderNotification builds the notification sent after checkout
func NewOrderNotification(orderNumbers []string) *Notification {
	body := "Your order has been placed."
	if len(orderNumbers) > 1 {
		body = fmt.Sprintf("Your %d orders have been placed.", len(orderNumbers))
	}

	data := map[string]string{"type": "order_created"}
	if len(orderNumbers) > 0 {
		data["order_number"] = orderNumbers[0]
	}

	return &Notification{
		Title: "Order confirmed",
		Body:  body,
		Data:  data,
	}
}

// sendFCM sends the notification via Firebase Cloud Messaging,
// one request per token
func (s *Service) sendFCM(ctx context.Context, tokens []string, notification *Notification) error {
	serverKey := s.config.External.Push.ServerKey
	if serverKey == "" {
		return fmt.Errorf("FCM server key not configured")
	}

	for _, token := range tokens {
		message := FCMMessage{
			To: token,
			Notification: FCMNotification{
				Title: notification.Title,
				Body:  notification.Body,
				Sound: "default",
			},
			Data:     notification.Data,
			Priority: "high",
		}

		jsonData, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal FCM request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", "https://fcm.googleapis.com/fcm/send", bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create FCM request: %w", err)
		}

		req.Header.Set("Authorization", "key="+serverKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send FCM request: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("FCM API returned status %d", resp.StatusCode)
		}
	}

	return nil
}

// sendExpo sends the notification via the Expo push API in one batch
func (s *Service) sendExpo(ctx context.Context, tokens []string, notification *Notification) error {
	message := ExpoMessage{
		To:    tokens,
		Title: notification.Title,
		Body:  notification.Body,
		Data:  notification.Data,
		Sound: "default",
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal Expo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://exp.host/--/api/v2/push/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create Expo request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Expo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Expo API returned status %d", resp.StatusCode)
	}

	return nil
}
