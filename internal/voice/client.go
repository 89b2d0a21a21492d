// Package voice talks to the speech/LLM ordering service and turns the order
// summaries it produces into cart requests.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no voice service URL is set.
var ErrNotConfigured = errors.New("voice service is not configured")

// UpstreamError is a non-2xx answer from the voice service.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("voice service returned %d: %s", e.Status, e.Body)
}

// ChatMessage is one turn of the ordering conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OrderSummary is what the voice service extracted from a conversation.
// Every field may be missing.
type OrderSummary struct {
	CustomerName    *string `json:"customerName"`
	CustomerAddress *string `json:"customerAddress"`
	MenuName        *string `json:"menuName"`
	MenuStyle       *string `json:"menuStyle"`
	MenuItems       *string `json:"menuItems"`
	DeliveryTime    *string `json:"deliveryTime"`
	OrderID         *string `json:"orderId"`
	OrderTime       *string `json:"orderTime"`
	Quantity        *int    `json:"quantity"`
	CouponCode      *string `json:"couponCode"`
	UseCoupon       *bool   `json:"useCoupon"`
}

// ChatResponse is the assistant's next turn.
type ChatResponse struct {
	Message        string        `json:"message"`
	OrderConfirmed bool          `json:"orderConfirmed"`
	OrderID        *string       `json:"orderId,omitempty"`
	Order          *OrderSummary `json:"order,omitempty"`
}

// ConfirmResponse is the final summary of a confirmed conversation.
type ConfirmResponse struct {
	OrderID     string       `json:"orderId"`
	ConfirmedAt string       `json:"confirmedAt"`
	Order       OrderSummary `json:"order"`
}

// Client calls the voice service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL. An empty baseURL
// yields a client whose calls fail with ErrNotConfigured.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Transcribe sends recorded audio for speech-to-text.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	if filename == "" {
		filename = "audio.webm"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	endpoint := c.baseURL + "/api/stt/transcribe"
	if language != "" {
		endpoint += "?" + url.Values{"language": {language}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Transcript string `json:"transcript"`
		Text       string `json:"text"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Transcript != "" {
		return out.Transcript, nil
	}
	return out.Text, nil
}

// Chat asks the assistant for the next turn of the conversation.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.postJSON(ctx, "/api/llm/generate", map[string]any{"messages": messages}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Confirm closes the conversation and returns the extracted order.
func (c *Client) Confirm(ctx context.Context, history []ChatMessage, finalMessage string) (*ConfirmResponse, error) {
	payload := map[string]any{"history": history}
	if finalMessage != "" {
		payload["finalMessage"] = finalMessage
	}
	var out ConfirmResponse
	if err := c.postJSON(ctx, "/api/order/confirm", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call voice service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read voice response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode voice response: %w", err)
	}
	return nil
}
