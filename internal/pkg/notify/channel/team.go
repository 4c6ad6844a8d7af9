package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var ErrEmptyWebhookURL = errors.New("team webhook url is empty")

// TeamChannel 团队级 webhook，发送 Markdown 日报
type TeamChannel struct {
	client *resty.Client
}

func NewTeamChannel(client *resty.Client) *TeamChannel {
	return &TeamChannel{client: client}
}

// SendMarkdown posts a DingTalk style markdown message. A non-JSON 200
// response is treated as accepted.
func (c *TeamChannel) SendMarkdown(ctx context.Context, webhookURL, title, content string) error {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return ErrEmptyWebhookURL
	}
	if title == "" {
		title = "团队工作日报"
	}
	payload := map[string]any{
		"msgtype": MsgTypeMarkdown,
		"markdown": map[string]string{
			"title": title,
			"text":  content,
		},
	}

	resp, err := post(ctx, c.client, webhookURL, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("team webhook failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if result, ok := decodeResult(resp.Body()); ok && result.ErrCode != nil && *result.ErrCode != 0 {
		return fmt.Errorf("team webhook error: errcode=%d, errmsg=%s", *result.ErrCode, result.ErrMsg)
	}
	return nil
}
