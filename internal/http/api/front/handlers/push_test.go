package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/config"
	"github.com/visora-labs/visora-relay/internal/models"
	"github.com/visora-labs/visora-relay/internal/push"
)

func fakeSendResponse(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil))}
}

func newPushRouter(t *testing.T, send push.SendFunc) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := openTestDB(t)
	seedUser(t, conn)
	service := push.NewService(conn, config.ProviderConfig{VapidPublicKey: "pub", VapidPrivateKey: "priv"}, send)
	r := gin.New()
	handler := NewPushHandler(service)
	group := authedGroup(r, conn)
	group.POST("/push/subscribe", handler.Subscribe)
	group.POST("/push/unsubscribe", handler.Unsubscribe)
	group.POST("/notifications/send", handler.Send)
	return r, conn
}

func TestPushSubscribeAndUnsubscribe(t *testing.T) {
	r, conn := newPushRouter(t, func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		return fakeSendResponse(http.StatusCreated), nil
	})
	token := sessionToken(t)

	body := `{"endpoint":"https://push.example/one","keys":{"p256dh":"pk","auth":"as"}}`
	w := doJSON(r, http.MethodPost, "/api/push/subscribe", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("subscribe: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Resubscribing the same endpoint must not create a second row.
	w = doJSON(r, http.MethodPost, "/api/push/subscribe", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("resubscribe: expected 200, got %d", w.Code)
	}
	var count int64
	conn.Model(&models.PushSubscription{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 subscription, got %d", count)
	}

	w = doJSON(r, http.MethodPost, "/api/push/unsubscribe", token, `{"endpoint":"https://push.example/one"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unsubscribe: expected 200, got %d", w.Code)
	}
	conn.Model(&models.PushSubscription{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected 0 subscriptions, got %d", count)
	}
}

func TestPushSubscribeMissingEndpoint(t *testing.T) {
	r, _ := newPushRouter(t, nil)
	token := sessionToken(t)

	w := doJSON(r, http.MethodPost, "/api/push/subscribe", token, `{"keys":{"p256dh":"pk","auth":"as"}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPushSendBroadcastsAndPrunes(t *testing.T) {
	sent := 0
	r, conn := newPushRouter(t, func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		sent++
		if s.Endpoint == "https://push.example/gone" {
			return fakeSendResponse(http.StatusGone), nil
		}
		return fakeSendResponse(http.StatusCreated), nil
	})
	token := sessionToken(t)

	doJSON(r, http.MethodPost, "/api/push/subscribe", token, `{"endpoint":"https://push.example/live","keys":{"p256dh":"pk","auth":"as"}}`)
	doJSON(r, http.MethodPost, "/api/push/subscribe", token, `{"endpoint":"https://push.example/gone","keys":{"p256dh":"pk","auth":"as"}}`)

	w := doJSON(r, http.MethodPost, "/api/notifications/send", token, `{"title":"Halo","body":"Pesan baru"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("send: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Sent int `json:"sent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Sent != 2 || sent != 2 {
		t.Fatalf("expected 2 deliveries, got resp=%d sent=%d", resp.Sent, sent)
	}

	// The 410 endpoint is pruned.
	var count int64
	conn.Model(&models.PushSubscription{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 remaining subscription, got %d", count)
	}
}

func TestPushSendRequiresTitle(t *testing.T) {
	r, _ := newPushRouter(t, nil)
	token := sessionToken(t)

	w := doJSON(r, http.MethodPost, "/api/notifications/send", token, `{"body":"tanpa judul"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
