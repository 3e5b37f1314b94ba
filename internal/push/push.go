// Package push manages web push subscriptions and broadcast delivery.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/visora-labs/visora-relay/internal/config"
	"github.com/visora-labs/visora-relay/internal/models"
)

const defaultSubscriber = "mailto:support@visora.app"

// SendFunc delivers one push message. It matches webpush.SendNotification so
// tests can substitute a fake transport.
type SendFunc func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// Subscription is the client-provided subscription payload.
type Subscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Notification is a broadcast message. Icon and URL receive defaults when
// empty.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	Image string `json:"image,omitempty"`
	URL   string `json:"url"`
}

// Service stores subscriptions and broadcasts notifications.
type Service struct {
	db         *gorm.DB
	publicKey  string
	privateKey string
	subscriber string
	send       SendFunc
}

// NewService constructs a Service. A nil send falls back to the webpush
// library transport.
func NewService(db *gorm.DB, cfg config.ProviderConfig, send SendFunc) *Service {
	subscriber := cfg.VapidSubscriber
	if subscriber == "" {
		subscriber = defaultSubscriber
	}
	if send == nil {
		send = webpush.SendNotification
	}
	return &Service{
		db:         db,
		publicKey:  cfg.VapidPublicKey,
		privateKey: cfg.VapidPrivateKey,
		subscriber: subscriber,
		send:       send,
	}
}

// Subscribe upserts a subscription keyed by its endpoint.
func (s *Service) Subscribe(ctx context.Context, sub Subscription, userID *string) error {
	if sub.Endpoint == "" {
		return fmt.Errorf("push: missing endpoint")
	}
	row := models.PushSubscription{
		UserID:    userID,
		Endpoint:  sub.Endpoint,
		P256dh:    sub.Keys.P256dh,
		Auth:      sub.Keys.Auth,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(&row).Error
}

// Unsubscribe removes the subscription for an endpoint.
func (s *Service) Unsubscribe(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("push: missing endpoint")
	}
	return s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
}

// Broadcast sends the notification to every stored subscription and returns
// the subscription count. Endpoints answering 404 or 410 are pruned.
func (s *Service) Broadcast(ctx context.Context, notification Notification) (int, error) {
	if notification.Icon == "" {
		notification.Icon = "/icon-192x192.png"
	}
	if notification.URL == "" {
		notification.URL = "/"
	}
	payload, errMarshal := json.Marshal(notification)
	if errMarshal != nil {
		return 0, errMarshal
	}

	var subscriptions []models.PushSubscription
	if errLoad := s.db.WithContext(ctx).Find(&subscriptions).Error; errLoad != nil {
		return 0, errLoad
	}

	options := &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             60,
	}

	for _, sub := range subscriptions {
		target := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}
		resp, errSend := s.send(payload, target, options)
		if errSend != nil {
			log.WithError(errSend).WithField("endpoint", sub.Endpoint).Warn("push delivery failed")
			continue
		}
		if resp != nil {
			if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
				if errDelete := s.db.WithContext(ctx).Where("endpoint = ?", sub.Endpoint).Delete(&models.PushSubscription{}).Error; errDelete != nil {
					log.WithError(errDelete).Warn("failed to prune expired push subscription")
				}
			}
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
		}
	}
	return len(subscriptions), nil
}
