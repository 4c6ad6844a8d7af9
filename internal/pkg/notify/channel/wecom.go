package channel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// WeComChannel implements WeCom (企业微信) robot notification
type WeComChannel struct {
	client *resty.Client
}

func NewWeComChannel(client *resty.Client) *WeComChannel {
	return &WeComChannel{client: client}
}

func (c *WeComChannel) Name() Name { return WeCom }

func (c *WeComChannel) Send(ctx context.Context, webhookURL string, msg *Message) error {
	var payload map[string]any
	if msg.MsgType == MsgTypeMarkdown {
		content := msg.Content
		if msg.Title != "" {
			content = fmt.Sprintf("## %s\n\n%s", msg.Title, msg.Content)
		}
		payload = map[string]any{
			"msgtype":  MsgTypeMarkdown,
			"markdown": map[string]string{"content": content},
		}
	} else {
		text := map[string]any{"content": msg.Content}
		if msg.AtAll {
			text["mentioned_list"] = []string{"@all"}
		}
		payload = map[string]any{
			"msgtype": MsgTypeText,
			"text":    text,
		}
	}

	resp, err := post(ctx, c.client, webhookURL, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("wecom request failed with status %d", resp.StatusCode())
	}
	if result, ok := decodeResult(resp.Body()); ok && result.ErrCode != nil && *result.ErrCode != 0 {
		return fmt.Errorf("wecom API error: errcode=%d, errmsg=%s", *result.ErrCode, result.ErrMsg)
	}
	return nil
}
