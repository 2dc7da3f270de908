// Package notify posts operator notifications to an ntfy topic.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second

	// ntfy.sh allows a burst of 60 messages then one every 5 seconds per visitor
	defaultRate  = 5 * time.Second
	defaultBurst = 10
)

// Config holds the notifier settings.
type Config struct {
	// URL is the full topic URL, e.g. https://ntfy.sh/my-topic.
	// An empty URL disables notifications.
	URL string

	// Title is sent as the ntfy Title header when set
	Title string

	// Timeout bounds each POST
	Timeout time.Duration

	Logger *logrus.Logger
}

// NtfyNotifier publishes plain-text messages with an HTTP POST.
type NtfyNotifier struct {
	url     string
	title   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewNtfyNotifier creates a notifier. It never fails; a notifier without a
// URL logs messages at debug level and returns nil from Notify.
func NewNtfyNotifier(config Config) *NtfyNotifier {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &NtfyNotifier{
		url:     strings.TrimSpace(config.URL),
		title:   config.Title,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(rate.Every(defaultRate), defaultBurst),
		logger:  config.Logger,
	}
}

// Enabled reports whether a topic URL is configured.
func (n *NtfyNotifier) Enabled() bool {
	return n.url != ""
}

// Notify posts message to the topic.
func (n *NtfyNotifier) Notify(ctx context.Context, message string) error {
	log := n.logger.WithField("message", message)
	if !n.Enabled() {
		log.Debug("Notifications disabled, skipping")
		return nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notification rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if n.title != "" {
		req.Header.Set("Title", n.title)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification rejected: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	log.Debug("Notification sent")
	return nil
}
