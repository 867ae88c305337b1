package pispi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// WebhooksService groups the webhook endpoints.
type WebhooksService struct {
	client *Client
}

// Modifier updates the callback URL or alias of webhook id.
func (s *WebhooksService) Modifier(ctx context.Context, id string, body WebhookModificationRequest) (*Webhook, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: webhook id is required", ErrInvalidArgument)
	}
	if body.CallbackURL == "" && body.Alias == "" {
		return nil, fmt.Errorf("%w: nothing to modify", ErrInvalidArgument)
	}
	if body.CallbackURL != "" {
		if u, err := url.Parse(body.CallbackURL); err != nil || u.Scheme != "https" || u.Host == "" {
			return nil, fmt.Errorf("%w: callbackUrl must be an absolute https URL", ErrInvalidArgument)
		}
	}

	var out Webhook
	err := s.client.Call(ctx, Request{
		Method:     http.MethodPatch,
		Path:       "/webhooks/{id}",
		PathParams: map[string]string{"id": id},
		Body:       body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
