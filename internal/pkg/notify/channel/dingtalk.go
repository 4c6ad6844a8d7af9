package channel

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DingTalkChannel implements DingTalk robot notification
type DingTalkChannel struct {
	secret string // optional: SEC-prefixed secret for signing
	client *resty.Client
}

func NewDingTalkChannel(client *resty.Client, secret string) *DingTalkChannel {
	return &DingTalkChannel{secret: secret, client: client}
}

func (c *DingTalkChannel) Name() Name { return DingTalk }

// generateSign generates signature for DingTalk webhook using HmacSHA256
// Sign string format: timestamp + "\n" + secret
func (c *DingTalkChannel) generateSign(timestamp int64) string {
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, c.secret)
	h := hmac.New(sha256.New, []byte(c.secret))
	h.Write([]byte(stringToSign))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(h.Sum(nil)))
}

func (c *DingTalkChannel) signedURL(webhookURL string) string {
	if c.secret == "" {
		return webhookURL
	}
	timestamp := time.Now().UnixMilli()
	sep := "&"
	if !strings.Contains(webhookURL, "?") {
		sep = "?"
	}
	return fmt.Sprintf("%s%stimestamp=%d&sign=%s", webhookURL, sep, timestamp, c.generateSign(timestamp))
}

func (c *DingTalkChannel) Send(ctx context.Context, webhookURL string, msg *Message) error {
	payload := map[string]any{
		"at": map[string]any{"isAtAll": msg.AtAll},
	}
	if msg.MsgType == MsgTypeMarkdown {
		payload["msgtype"] = MsgTypeMarkdown
		payload["markdown"] = map[string]string{"title": msg.Title, "text": msg.Content}
	} else {
		payload["msgtype"] = MsgTypeText
		payload["text"] = map[string]string{"content": msg.Content}
	}

	resp, err := post(ctx, c.client, c.signedURL(webhookURL), payload)
	if err != nil {
		return err
	}
	result, ok := decodeResult(resp.Body())
	if !ok {
		return fmt.Errorf("dingtalk request failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.ErrMsg == "ok" || (result.ErrCode != nil && *result.ErrCode == 0) {
		return nil
	}
	return fmt.Errorf("dingtalk API error: errcode=%v, errmsg=%s", deref(result.ErrCode), result.ErrMsg)
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
