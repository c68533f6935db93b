package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	linePushURL = "https://api.line.me/v2/bot/message/push"

	// LINE rejects text messages longer than this many characters.
	maxTextLength = 5000
)

var ErrNotConfigured = errors.New("LINE channel access token or user id not configured")

// LineSender pushes text messages to a single LINE user.
type LineSender struct {
	accessToken string
	userID      string
	endpoint    string
	httpClient  *http.Client
}

// LineOption configures a LineSender.
type LineOption func(*LineSender)

// WithEndpoint overrides the push API URL.
func WithEndpoint(url string) LineOption {
	return func(s *LineSender) {
		s.endpoint = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) LineOption {
	return func(s *LineSender) {
		s.httpClient = client
	}
}

func NewLineSender(accessToken, userID string, opts ...LineOption) *LineSender {
	s := &LineSender{
		accessToken: accessToken,
		userID:      userID,
		endpoint:    linePushURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Push sends text as one message. Over-long text is truncated.
func (s *LineSender) Push(ctx context.Context, text string) error {
	if s.accessToken == "" || s.userID == "" {
		return ErrNotConfigured
	}

	if r := []rune(text); len(r) > maxTextLength {
		text = string(r[:maxTextLength-1]) + "…"
	}

	body, err := json.Marshal(pushRequest{
		To:       s.userID,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("LINE push returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
