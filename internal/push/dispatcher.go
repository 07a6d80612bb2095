package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/eventmind/eventmind/config"
	"github.com/eventmind/eventmind/internal/entity"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Result classifies one delivery attempt.
type Result int

const (
	// ResultSuccess: the push service accepted the message.
	ResultSuccess Result = iota
	// ResultTransient: delivery failed but the endpoint may still be
	// valid (network error, 5xx, rate limit, timeout). Never pruned.
	ResultTransient
	// ResultPermanentlyInvalid: the push service reported the
	// endpoint gone; the subscription should be removed.
	ResultPermanentlyInvalid
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultPermanentlyInvalid:
		return "permanently_invalid"
	default:
		return "transient"
	}
}

type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Dispatcher delivers one payload to one subscription and classifies
// the outcome. Implementations must keep outcomes independent: a
// failure for one subscription carries no state into the next call.
type Dispatcher interface {
	Send(ctx context.Context, sub *entity.PushSubscription, payload *Payload) (Result, error)
}

// WebPushDispatcher sends VAPID-signed Web Push messages. The HTTP
// client timeout bounds every attempt so a hung push service cannot
// stall a scan tick.
type WebPushDispatcher struct {
	options webpush.Options
}

func NewWebPushDispatcher(cfg *config.PushConfig) *WebPushDispatcher {
	return &WebPushDispatcher{
		options: webpush.Options{
			HTTPClient:      &http.Client{Timeout: cfg.SendTimeout},
			Subscriber:      cfg.Subscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             cfg.TTL,
		},
	}
}

func (d *WebPushDispatcher) Send(ctx context.Context, sub *entity.PushSubscription, payload *Payload) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ResultTransient, fmt.Errorf("failed to marshal payload: %w", err)
	}

	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, s, &d.options)
	if err != nil {
		return ResultTransient, fmt.Errorf("push delivery failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	result := Classify(resp.StatusCode)
	if result == ResultSuccess {
		return result, nil
	}
	return result, fmt.Errorf("push service returned status %d", resp.StatusCode)
}

// Classify maps a push service status code onto a Result. 404 and
// 410 are the two canonical "endpoint is gone" answers.
func Classify(statusCode int) Result {
	switch {
	case statusCode == http.StatusNotFound || statusCode == http.StatusGone:
		return ResultPermanentlyInvalid
	case statusCode >= 200 && statusCode < 300:
		return ResultSuccess
	default:
		return ResultTransient
	}
}
