package channel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// FeishuChannel implements Feishu custom bot notification
type FeishuChannel struct {
	client *resty.Client
}

func NewFeishuChannel(client *resty.Client) *FeishuChannel {
	return &FeishuChannel{client: client}
}

func (c *FeishuChannel) Name() Name { return Feishu }

func (c *FeishuChannel) Send(ctx context.Context, webhookURL string, msg *Message) error {
	text := msg.Content
	if msg.MsgType == MsgTypeMarkdown && msg.Title != "" {
		text = msg.Title + "\n" + msg.Content
	}
	payload := map[string]any{
		"msg_type": "text",
		"content":  map[string]string{"text": text},
	}

	resp, err := post(ctx, c.client, webhookURL, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("feishu request failed with status %d", resp.StatusCode())
	}
	if result, ok := decodeResult(resp.Body()); ok && result.Code != nil && *result.Code != 0 {
		return fmt.Errorf("feishu API error: code=%d, msg=%s", *result.Code, result.Msg)
	}
	return nil
}
