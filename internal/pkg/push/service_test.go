// internal/pkg/push/service_test.go
package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/mall-marketplace/internal/config"
)

func TestNewOrderNotification(t *testing.T) {
	single := NewOrderNotification([]string{"ORD-20260615-00001"})
	assert.Equal(t, "Order confirmed", single.Title)
	assert.Equal(t, "Your order has been placed.", single.Body)
	assert.Equal(t, "order_created", single.Data["type"])
	assert.Equal(t, "ORD-20260615-00001", single.Data["order_number"])

	multi := NewOrderNotification([]string{"ORD-1", "ORD-2", "ORD-3"})
	assert.Equal(t, "Your 3 orders have been placed.", multi.Body)
}

func TestSendExpoBatchesTokens(t *testing.T) {
	var received ExpoMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.External.Push.Provider = "expo"
	cfg.External.Push.Timeout = time.Second

	s := NewService(cfg)

	// point the client at the test server
	s.client = server.Client()
	s.client.Transport = rewriteTransport{base: server.URL}

	err := s.Send(context.Background(), []string{"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"}, &Notification{
		Title: "Order confirmed",
		Body:  "Your order has been placed.",
	})
	require.NoError(t, err)

	assert.Len(t, received.To, 2)
	assert.Equal(t, "Order confirmed", received.Title)
}

func TestSendNoTokensIsNoop(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.Push.Provider = "fcm"
	cfg.External.Push.Timeout = time.Second

	s := NewService(cfg)
	assert.NoError(t, s.Send(context.Background(), nil, &Notification{Title: "x"}))
}

func TestSendUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.External.Push.Provider = "carrier-pigeon"
	cfg.External.Push.Timeout = time.Second

	s := NewService(cfg)
	err := s.Send(context.Background(), []string{"tok"}, &Notification{Title: "x"})
	assert.Error(t, err)
}

// rewriteTransport redirects every request to the test server
type rewriteTransport struct {
	base string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.base[len("http://"):]
	return http.DefaultTransport.RoundTrip(req)
}
