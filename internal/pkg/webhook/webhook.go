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

package webhook

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/tidwall/gjson"
)

type Provider string

const (
	GitLab Provider = "gitlab"
	GitHub Provider = "github"
)

type Kind string

const (
	KindMergeRequest Kind = "merge_request"
	KindPush         Kind = "push"
)

const (
	HeaderGitHubEvent    = "X-GitHub-Event"
	HeaderGitHubToken    = "X-GitHub-Token"
	HeaderGitLabToken    = "X-Gitlab-Token"
	HeaderGitLabInstance = "X-Gitlab-Instance"

	DefaultGitHubURL = "https://github.com"
)

// ProviderConfig 平台全局配置
type ProviderConfig struct {
	URL         string `mapstructure:"url"`
	AccessToken string `mapstructure:"access_token"`
}

// Defaults are the globally configured fallbacks used during classification.
type Defaults struct {
	GitLab ProviderConfig
	GitHub ProviderConfig
}

// HeaderFunc reads a request header by name.
type HeaderFunc func(key string) string

// Event is a validated inbound webhook delivery.
type Event struct {
	Provider  Provider
	Kind      Kind
	RawKind   string
	Token     string
	OriginURL string
	Slug      string
	Body      []byte
}

// Classify determines provider and kind, and resolves credentials and origin.
func Classify(header HeaderFunc, body []byte, d Defaults) (*Event, error) {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, errs.New(errs.MalformedPayload, "Invalid JSON")
	}
	if event := strings.TrimSpace(header(HeaderGitHubEvent)); event != "" {
		return classifyGitHub(event, header, body, d.GitHub)
	}
	return classifyGitLab(header, body, d.GitLab)
}

func classifyGitHub(event string, header HeaderFunc, body []byte, cfg ProviderConfig) (*Event, error) {
	token := firstNonBlank(header(HeaderGitHubToken), cfg.AccessToken)
	if token == "" {
		return nil, errs.New(errs.MissingCredential, "Missing GitHub access token")
	}
	origin := firstNonBlank(cfg.URL, DefaultGitHubURL)

	var kind Kind
	switch event {
	case "pull_request":
		kind = KindMergeRequest
	case "push":
		kind = KindPush
	default:
		return nil, errs.New(errs.UnsupportedEventKind,
			"Only pull_request and push events are supported for GitHub webhook, but received: %s.", event)
	}

	return &Event{
		Provider:  GitHub,
		Kind:      kind,
		RawKind:   event,
		Token:     token,
		OriginURL: origin,
		Slug:      Slugify(origin),
		Body:      body,
	}, nil
}

func classifyGitLab(header HeaderFunc, body []byte, cfg ProviderConfig) (*Event, error) {
	token := firstNonBlank(header(HeaderGitLabToken), cfg.AccessToken)
	if token == "" {
		return nil, errs.New(errs.MissingCredential, "Missing GitLab access token")
	}

	origin := firstNonBlank(cfg.URL, header(HeaderGitLabInstance))
	if origin == "" {
		var err error
		origin, err = originFromHomepage(gjson.GetBytes(body, "repository.homepage").String())
		if err != nil {
			return nil, err
		}
	}

	objectKind := gjson.GetBytes(body, "object_kind").String()
	var kind Kind
	switch objectKind {
	case "merge_request":
		kind = KindMergeRequest
	case "push":
		kind = KindPush
	default:
		return nil, errs.New(errs.UnsupportedEventKind,
			"Only merge_request and push events are supported (both Webhook and System Hook), but received: %s.", objectKind)
	}

	return &Event{
		Provider:  GitLab,
		Kind:      kind,
		RawKind:   objectKind,
		Token:     token,
		OriginURL: origin,
		Slug:      Slugify(origin),
		Body:      body,
	}, nil
}

// originFromHomepage reduces a repository homepage to scheme://host/.
func originFromHomepage(homepage string) (string, error) {
	if strings.TrimSpace(homepage) == "" {
		return "", errs.New(errs.MissingOriginURL, "Missing GitLab URL")
	}
	u, err := url.Parse(homepage)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errs.New(errs.MissingOriginURL, "Failed to parse homepage URL: %s", homepage)
	}
	return fmt.Sprintf("%s://%s/", u.Scheme, u.Host), nil
}

var (
	schemeRe      = regexp.MustCompile(`(?i)^https?://`)
	nonAlphaNumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Slugify turns an origin URL into a lookup key: scheme dropped, every
// non-alphanumeric replaced by '_', trailing '_' trimmed, lower-cased.
func Slugify(origin string) string {
	s := schemeRe.ReplaceAllString(strings.TrimSpace(origin), "")
	s = nonAlphaNumRe.ReplaceAllString(s, "_")
	return strings.ToLower(strings.TrimRight(s, "_"))
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
