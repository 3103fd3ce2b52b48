package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/metrics"
)

const sendTimeout = 10 * time.Second

type AlertType string

const (
	AlertTypeReorg          AlertType = "REORG"
	AlertTypeChainCooldown  AlertType = "CHAIN_COOLDOWN"
	AlertTypeRotationFailed AlertType = "ROTATION_FAILED"
	AlertTypeRecovery       AlertType = "RECOVERY"
	AlertTypeDBPoolPressure AlertType = "DB_POOL_PRESSURE"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Severity ranks the alert type. Reorgs need an operator to reprocess.
func (t AlertType) Severity() Severity {
	switch t {
	case AlertTypeReorg:
		return SeverityCritical
	case AlertTypeRecovery:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// Alert is one notification. Chain is empty for process-wide alerts.
type Alert struct {
	Type    AlertType
	Chain   string
	Title   string
	Message string
	Fields  map[string]string
}

func (a Alert) sortedFieldKeys() []string {
	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// channel is one delivery target of a MultiAlerter.
type channel interface {
	Alerter
	Name() string
}

// Config selects alert channels. Empty URLs disable a channel.
type Config struct {
	SlackWebhookURL string
	WebhookURL      string
	Cooldown        time.Duration
}

// New returns a NoopAlerter when no channel is configured.
func New(cfg Config, logger *slog.Logger) Alerter {
	var channels []channel
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, NewSlackAlerter(cfg.SlackWebhookURL))
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, NewWebhookAlerter(cfg.WebhookURL))
	}
	if len(channels) == 0 {
		return &NoopAlerter{}
	}
	return newMulti(cfg.Cooldown, logger, channels)
}

// MultiAlerter delivers to every channel and suppresses repeats of the same
// (type, chain) pair within the cooldown.
type MultiAlerter struct {
	channels []channel
	cooldown time.Duration
	logger   *slog.Logger
	nowFn    func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func newMulti(cooldown time.Duration, logger *slog.Logger, channels []channel) *MultiAlerter {
	return &MultiAlerter{
		channels: channels,
		cooldown: cooldown,
		logger:   logger.With("component", "alerter"),
		nowFn:    time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// claim reports whether alert may go out now and records the send time.
func (m *MultiAlerter) claim(a Alert) bool {
	key := string(a.Type) + "/" + a.Chain
	now := m.nowFn()

	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.lastSent[key]; ok && now.Sub(last) < m.cooldown {
		return false
	}
	m.lastSent[key] = now
	return true
}

// Send returns the first channel error. Remaining channels are still tried.
func (m *MultiAlerter) Send(ctx context.Context, a Alert) error {
	if !m.claim(a) {
		m.logger.Debug("alert suppressed by cooldown", "type", a.Type, "chain", a.Chain)
		for _, ch := range m.channels {
			metrics.AlertsCooldownSkipped.WithLabelValues(ch.Name(), string(a.Type)).Inc()
		}
		return nil
	}

	var firstErr error
	for _, ch := range m.channels {
		if err := ch.Send(ctx, a); err != nil {
			m.logger.Warn("alert send failed", "channel", ch.Name(), "type", a.Type, "chain", a.Chain, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.AlertsSentTotal.WithLabelValues(ch.Name(), string(a.Type)).Inc()
	}
	return firstErr
}

// poster posts JSON bodies to one URL.
type poster struct {
	url    string
	client *http.Client
}

func newPoster(url string) poster {
	return poster{url: url, client: &http.Client{Timeout: sendTimeout}}
}

func (p poster) post(ctx context.Context, name string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s alert: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%s returned status %d", name, resp.StatusCode)
	}
	return nil
}

// SlackAlerter posts to a Slack incoming webhook.
type SlackAlerter struct{ poster }

func NewSlackAlerter(webhookURL string) *SlackAlerter {
	return &SlackAlerter{newPoster(webhookURL)}
}

func (s *SlackAlerter) Name() string { return "slack" }

type slackAttachment struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

func (s *SlackAlerter) Send(ctx context.Context, a Alert) error {
	return s.post(ctx, s.Name(), slackPayload(a))
}

func slackPayload(a Alert) slackMessage {
	scope := a.Chain
	if scope == "" {
		scope = "ingestor"
	}
	msg := slackMessage{
		Text: fmt.Sprintf("%s *[%s]* %s: %s", slackEmoji(a.Type), a.Type, scope, a.Title),
	}

	var b strings.Builder
	b.WriteString(a.Message)
	for _, k := range a.sortedFieldKeys() {
		fmt.Fprintf(&b, "\n- *%s*: %s", k, a.Fields[k])
	}
	msg.Attachments = []slackAttachment{{Color: slackColor(a.Type.Severity()), Text: b.String()}}
	return msg
}

func slackEmoji(t AlertType) string {
	switch t {
	case AlertTypeRecovery:
		return ":white_check_mark:"
	case AlertTypeReorg:
		return ":rotating_light:"
	case AlertTypeRotationFailed:
		return ":hourglass:"
	default:
		return ":warning:"
	}
}

func slackColor(s Severity) string {
	switch s {
	case SeverityCritical:
		return "danger"
	case SeverityInfo:
		return "good"
	default:
		return "warning"
	}
}

// WebhookAlerter posts the alert as a flat JSON document.
type WebhookAlerter struct {
	poster
	nowFn func() time.Time
}

func NewWebhookAlerter(url string) *WebhookAlerter {
	return &WebhookAlerter{poster: newPoster(url), nowFn: time.Now}
}

func (w *WebhookAlerter) Name() string { return "webhook" }

type webhookPayload struct {
	Type     AlertType         `json:"type"`
	Severity Severity          `json:"severity"`
	Chain    string            `json:"chain,omitempty"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Time     string            `json:"time"`
}

func (w *WebhookAlerter) Send(ctx context.Context, a Alert) error {
	return w.post(ctx, w.Name(), webhookPayload{
		Type:     a.Type,
		Severity: a.Type.Severity(),
		Chain:    a.Chain,
		Title:    a.Title,
		Message:  a.Message,
		Fields:   a.Fields,
		Time:     w.nowFn().UTC().Format(time.RFC3339),
	})
}

type NoopAlerter struct{}

func (*NoopAlerter) Send(context.Context, Alert) error { return nil }
