package channel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// WebhookChannel posts the generated content together with the original
// event payload to a user supplied endpoint.
type WebhookChannel struct {
	client *resty.Client
}

func NewWebhookChannel(client *resty.Client) *WebhookChannel {
	return &WebhookChannel{client: client}
}

func (c *WebhookChannel) Name() Name { return Extra }

func (c *WebhookChannel) Send(ctx context.Context, webhookURL string, msg *Message) error {
	system := msg.System
	if system == nil {
		system = map[string]any{
			"project_name": msg.ProjectName,
			"url_slug":     msg.Slug,
			"title":        msg.Title,
			"content":      msg.Content,
		}
	}

	var raw any
	if len(msg.Raw) > 0 {
		if err := sonic.Unmarshal(msg.Raw, &raw); err != nil {
			raw = string(msg.Raw)
		}
	}

	payload := map[string]any{
		"ai_codereview_data": system,
		"webhook_data":       raw,
	}
	resp, err := post(ctx, c.client, webhookURL, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("extra webhook failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
