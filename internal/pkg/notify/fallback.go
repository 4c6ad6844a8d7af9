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

package notify

import (
	"sort"
	"strings"

	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
)

// FallbackEntry maps an upper-cased project name or slug to a channel URL.
type FallbackEntry struct {
	Channel channel.Name
	Key     string
	URL     string
}

// FallbackTable is the ordered lookup used when a project has no stored
// configuration. It is built once at startup.
type FallbackTable struct {
	entries []FallbackEntry
}

var envPrefixes = []struct {
	prefix string
	name   channel.Name
}{
	{"DINGTALK_WEBHOOK_URL_", channel.DingTalk},
	{"WECOM_WEBHOOK_URL_", channel.WeCom},
	{"FEISHU_WEBHOOK_URL_", channel.Feishu},
}

// LoadFallbackTable collects "<CHANNEL>_WEBHOOK_URL_<KEY>=url" entries from
// environ (sorted by key) followed by each channel's project_webhooks map.
func LoadFallbackTable(environ []string, cfg Config) *FallbackTable {
	var fromEnv []FallbackEntry
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		upper := strings.ToUpper(name)
		for _, p := range envPrefixes {
			if key, found := strings.CutPrefix(upper, p.prefix); found && key != "" {
				fromEnv = append(fromEnv, FallbackEntry{Channel: p.name, Key: key, URL: strings.TrimSpace(value)})
				break
			}
		}
	}
	sort.SliceStable(fromEnv, func(i, j int) bool {
		if fromEnv[i].Channel != fromEnv[j].Channel {
			return fromEnv[i].Channel < fromEnv[j].Channel
		}
		return fromEnv[i].Key < fromEnv[j].Key
	})

	entries := fromEnv
	for _, name := range []channel.Name{channel.DingTalk, channel.WeCom, channel.Feishu, channel.Extra} {
		webhooks := cfg.Channel(name).ProjectWebhooks
		keys := make([]string, 0, len(webhooks))
		for k := range webhooks {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if url := strings.TrimSpace(webhooks[k]); url != "" {
				entries = append(entries, FallbackEntry{Channel: name, Key: strings.ToUpper(k), URL: url})
			}
		}
	}
	return &FallbackTable{entries: entries}
}

// NewFallbackTable builds a table from explicit entries, keeping their order.
func NewFallbackTable(entries ...FallbackEntry) *FallbackTable {
	t := &FallbackTable{}
	for _, e := range entries {
		e.Key = strings.ToUpper(e.Key)
		t.entries = append(t.entries, e)
	}
	return t
}

// Lookup returns the first URL whose key equals UPPER(project) or UPPER(slug).
func (t *FallbackTable) Lookup(name channel.Name, project, slug string) (string, bool) {
	if t == nil {
		return "", false
	}
	p := strings.ToUpper(strings.TrimSpace(project))
	s := strings.ToUpper(strings.TrimSpace(slug))
	for _, e := range t.entries {
		if e.Channel != name {
			continue
		}
		if (p != "" && e.Key == p) || (s != "" && e.Key == s) {
			return e.URL, true
		}
	}
	return "", false
}

func (t *FallbackTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
