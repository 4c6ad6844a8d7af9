package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// Name 通知渠道类型
type Name string

const (
	DingTalk Name = "dingtalk"
	WeCom    Name = "wecom"
	Feishu   Name = "feishu"
	Extra    Name = "extra"
)

const (
	MsgTypeText     = "text"
	MsgTypeMarkdown = "markdown"

	DefaultTimeout = 10 * time.Second
)

// Message is the content handed to every channel of one notify call.
type Message struct {
	Title   string
	Content string
	MsgType string
	AtAll   bool

	// Extra webhook envelope
	ProjectName string
	Slug        string
	System      map[string]any
	Raw         []byte
}

// Sender delivers a message to one channel endpoint. A nil error means the
// endpoint accepted it.
type Sender interface {
	Name() Name
	Send(ctx context.Context, url string, msg *Message) error
}

// NewClient returns the resty client shared by channel senders.
func NewClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("Content-Type", "application/json").
		SetHeader("Charset", "UTF-8")
}

// apiResult covers the errcode/errmsg and code/msg response shapes.
type apiResult struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	Code    *int   `json:"code"`
	Msg     string `json:"msg"`
}

func post(ctx context.Context, client *resty.Client, url string, payload any) (*resty.Response, error) {
	resp, err := client.R().SetContext(ctx).SetBody(payload).Post(url)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func decodeResult(body []byte) (*apiResult, bool) {
	var r apiResult
	if err := sonic.Unmarshal(body, &r); err != nil {
		return nil, false
	}
	return &r, true
}
