// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultURL = "https://gitlab.com"

	perPage    = 100
	maxRecords = 1000
)

var (
	ErrMissingToken = errors.New("gitlab access token is required")
	// ErrUnavailable wraps every transport or non-200 failure.
	ErrUnavailable = errors.New("gitlab api unavailable")
)

// RoleNames maps GitLab access levels to role names.
var RoleNames = map[int]string{
	50: "Owner",
	40: "Maintainer",
	30: "Developer",
	20: "Reporter",
	10: "Guest",
}

type Member struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PublicEmail     string `json:"public_email,omitempty"`
	AccessLevel     int    `json:"access_level"`
	AccessLevelName string `json:"access_level_name"`
	State           string `json:"state"`
	AvatarURL       string `json:"avatar_url"`
}

// Active reports whether the member can be synced into a roster.
func (m Member) Active() bool {
	return m.State == "active" && strings.TrimSpace(m.Username) != ""
}

type Project struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
	Description       string `json:"description"`
	LastActivityAt    string `json:"last_activity_at"`
}

// Client 是 GitLab REST API v4 的最小客户端
type Client struct {
	baseURL string
	token   string
	client  *resty.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		client: resty.New().
			SetTimeout(timeout).
			SetJSONUnmarshaler(sonic.Unmarshal).
			SetJSONMarshaler(sonic.Marshal),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// ProjectMembers 获取项目成员（含继承成员）
func (c *Client) ProjectMembers(ctx context.Context, projectID string) ([]Member, error) {
	return c.members(ctx, "api/v4/projects/"+url.PathEscape(projectID)+"/members/all")
}

// GroupMembers 获取组成员（含继承成员）
func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]Member, error) {
	return c.members(ctx, "api/v4/groups/"+url.PathEscape(groupID)+"/members/all")
}

func (c *Client) members(ctx context.Context, endpoint string) ([]Member, error) {
	var members []Member
	if err := c.paginate(ctx, endpoint, nil, func(body []byte) (int, error) {
		var page []Member
		if err := sonic.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for i := range page {
			if page[i].Email == "" {
				page[i].Email = page[i].PublicEmail
			}
			if page[i].State == "" {
				page[i].State = "active"
			}
			page[i].AccessLevelName = RoleNames[page[i].AccessLevel]
			if page[i].AccessLevelName == "" {
				page[i].AccessLevelName = "Unknown"
			}
		}
		members = append(members, page...)
		return len(page), nil
	}); err != nil {
		return nil, err
	}
	if len(members) > maxRecords {
		members = members[:maxRecords]
	}
	return members, nil
}

// Projects lists projects visible to the token; membership limits it to the
// token owner's projects.
func (c *Client) Projects(ctx context.Context, membership bool) ([]Project, error) {
	params := map[string]string{"simple": "true", "order_by": "last_activity_at"}
	if membership {
		params["membership"] = "true"
	}
	return c.projects(ctx, "api/v4/projects", params)
}

func (c *Client) GroupProjects(ctx context.Context, groupID string) ([]Project, error) {
	return c.projects(ctx, "api/v4/groups/"+url.PathEscape(groupID)+"/projects",
		map[string]string{"simple": "true", "include_subgroups": "true"})
}

func (c *Client) projects(ctx context.Context, endpoint string, params map[string]string) ([]Project, error) {
	var projects []Project
	err := c.paginate(ctx, endpoint, params, func(body []byte) (int, error) {
		var page []Project
		if err := sonic.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		projects = append(projects, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	if len(projects) > maxRecords {
		projects = projects[:maxRecords]
	}
	return projects, nil
}

// paginate walks pages until a short page or maxRecords entries.
func (c *Client) paginate(ctx context.Context, endpoint string, params map[string]string, onPage func([]byte) (int, error)) error {
	if c.token == "" {
		return ErrMissingToken
	}
	total := 0
	for page := 1; ; page++ {
		log.Debugw("requesting gitlab api", "endpoint", endpoint, "page", page)
		resp, err := c.client.R().
			SetContext(ctx).
			SetHeader("Private-Token", c.token).
			SetQueryParams(params).
			SetQueryParam("per_page", strconv.Itoa(perPage)).
			SetQueryParam("page", strconv.Itoa(page)).
			Get(c.baseURL + "/" + endpoint)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if resp.StatusCode() != http.StatusOK {
			log.Errorw("gitlab api request failed", "endpoint", endpoint, "status", resp.StatusCode(), "body", resp.String())
			return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
		}
		n, err := onPage(resp.Body())
		if err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
		total += n
		if n < perPage {
			break
		}
		if total >= maxRecords {
			log.Warnw("reached maximum limit of gitlab records", "endpoint", endpoint, "limit", maxRecords)
			break
		}
	}
	log.Infow("fetched items from gitlab", "endpoint", endpoint, "count", total)
	return nil
}
