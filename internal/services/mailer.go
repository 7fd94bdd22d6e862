package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/utils"
)

// Mailer bridges to the email service provider. It is not on the core
// generation path; handlers call it to push finished artifacts out.
type Mailer interface {
	CreateTemplate(ctx context.Context, name, subject, html, plainText string) (string, error)
	SendTest(ctx context.Context, templateID string, recipients []string) error
	ListLists(ctx context.Context) ([]ProviderList, error)
}

type ProviderList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mailer struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewMailer(log *logger.Logger) (Mailer, error) {
	serviceLog := log.With("service", "Mailer")

	apiKey := utils.GetEnv("MAILER_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("missing MAILER_API_KEY")
	}
	baseURL := utils.GetEnv("MAILER_BASE_URL", "", log)
	if baseURL == "" {
		return nil, fmt.Errorf("missing MAILER_BASE_URL")
	}
	timeoutSec := utils.GetEnvAsInt("MAILER_TIMEOUT_SECONDS", 30, log)

	return &mailer{
		log:        serviceLog,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (m *mailer) CreateTemplate(ctx context.Context, name, subject, html, plainText string) (string, error) {
	payload := map[string]any{
		"name":       name,
		"subject":    subject,
		"html":       html,
		"plain_text": plainText,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := m.do(ctx, http.MethodPost, "/v3/templates", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("provider returned no template id")
	}
	m.log.Info("Created provider template", "template_id", out.ID, "name", name)
	return out.ID, nil
}

func (m *mailer) SendTest(ctx context.Context, templateID string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no test recipients")
	}
	payload := map[string]any{
		"template_id": templateID,
		"recipients":  recipients,
	}
	return m.do(ctx, http.MethodPost, "/v3/templates/test-send", payload, nil)
}

func (m *mailer) ListLists(ctx context.Context) ([]ProviderList, error) {
	var out struct {
		Lists []ProviderList `json:"lists"`
	}
	if err := m.do(ctx, http.MethodGet, "/v3/lists", nil, &out); err != nil {
		return nil, err
	}
	return out.Lists, nil
}

func (m *mailer) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncateBody(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

func truncateBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
