package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ContentPlanner/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends posts and documents to Telegram channels via the bot API.
type Notifier struct {
	apiBase    string
	botToken   string
	channelIDs []int64
	client     *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the bot token and target channel identifiers.
func NewNotifier(botToken string, channelIDs []int64) *Notifier {
	return &Notifier{
		apiBase:    defaultAPIBase,
		botToken:   botToken,
		channelIDs: channelIDs,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// PublishPost sends an HTML-formatted message to every configured channel.
func (n *Notifier) PublishPost(ctx context.Context, text string) error {
	if n.botToken == "" || len(n.channelIDs) == 0 {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	for _, channelID := range n.channelIDs {
		if err := n.sendMessage(ctx, channelID, text); err != nil {
			return fmt.Errorf("channel %d: %w", channelID, err)
		}
	}
	return nil
}

func (n *Notifier) sendMessage(ctx context.Context, channelID int64, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(channelID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return nil
}

// PublishDocument uploads a file (the exported calendar) to every channel.
func (n *Notifier) PublishDocument(ctx context.Context, path, caption string) error {
	if n.botToken == "" || len(n.channelIDs) == 0 {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	for _, channelID := range n.channelIDs {
		if err := n.sendDocument(ctx, channelID, path, caption); err != nil {
			return fmt.Errorf("channel %d: %w", channelID, err)
		}
	}
	return nil
}

func (n *Notifier) sendDocument(ctx context.Context, channelID int64, path, caption string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", strconv.FormatInt(channelID, 10)); err != nil {
		return fmt.Errorf("write chat_id field: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("write caption field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return nil
}
