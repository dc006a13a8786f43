package barkNotifier

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/ljwu/holdings-monitor/config"
	"github.com/ljwu/holdings-monitor/utils"
)

// BarkNotifier delivers a push message through Bark. A structured POST to
// the push endpoint is tried first; any failure falls back to the
// URL-encoded GET form of the same destination. Callers observe only a
// boolean: delivery never raises past this boundary.
type BarkNotifier struct {
	client    *resty.Client
	baseUrl   string
	pushUrl   string
	deviceKey string
	sound     string
}

func New(cfg *config.Config) *BarkNotifier {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.Bark.Timeout)

	baseUrl := strings.TrimRight(strings.TrimSpace(cfg.Bark.BaseUrl), "/")

	return &BarkNotifier{
		client:    client,
		baseUrl:   baseUrl,
		pushUrl:   cfg.Bark.PushUrl,
		deviceKey: extractDeviceKey(baseUrl),
		sound:     cfg.Bark.Sound,
	}
}

func (n *BarkNotifier) Name() string { return "bark" }

func (n *BarkNotifier) Enabled() bool { return n.baseUrl != "" }

func (n *BarkNotifier) Deliver(ctx context.Context, title, body string) bool {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BarkNotifier.Deliver"

	if n.deliverPost(ctx, title, body) {
		return true
	}

	slog.Warn("primary bark delivery failed, trying GET fallback", slog.String("rqID", rqID), slog.String("op", op))

	if n.deliverGet(ctx, title, body) {
		return true
	}

	slog.Error("bark delivery failed on both paths", slog.String("rqID", rqID), slog.String("op", op))
	return false
}

func (n *BarkNotifier) deliverPost(ctx context.Context, title, body string) bool {
	if n.deviceKey == "" {
		return false
	}

	payload := map[string]string{
		"title":      title,
		"body":       body,
		"device_key": n.deviceKey,
		"isArchive":  "1",
	}
	if n.sound != "" {
		payload["sound"] = n.sound
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.pushUrl)

	return err == nil && !resp.IsError()
}

func (n *BarkNotifier) deliverGet(ctx context.Context, title, body string) bool {
	params := map[string]string{"isArchive": "1"}
	if n.sound != "" {
		params["sound"] = n.sound
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(n.baseUrl + "/" + url.PathEscape(title) + "/" + url.PathEscape(body))

	return err == nil && !resp.IsError()
}

// extractDeviceKey takes the last path segment of the configured base URL,
// which Bark uses as the device key.
func extractDeviceKey(baseUrl string) string {
	if baseUrl == "" {
		return ""
	}
	parts := strings.Split(baseUrl, "/")
	return parts[len(parts)-1]
}
