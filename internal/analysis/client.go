package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/bestbefore/internal/expiry"
)

// DefaultBaseURL is the Gemini REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is the model used for analysis.
const DefaultModel = "gemini-2.0-flash"

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"topK"`
	TopP        float64 `json:"topP"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

var safetySettings = []safetySetting{
	{"HARM_CATEGORY_HARASSMENT", "BLOCK_MEDIUM_AND_ABOVE"},
	{"HARM_CATEGORY_HATE_SPEECH", "BLOCK_MEDIUM_AND_ABOVE"},
	{"HARM_CATEGORY_SEXUALLY_EXPLICIT", "BLOCK_MEDIUM_AND_ABOVE"},
	{"HARM_CATEGORY_DANGEROUS_CONTENT", "BLOCK_MEDIUM_AND_ABOVE"},
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL string
	model   string
	client  *http.Client

	Now    func() time.Time
	Logger *slog.Logger
}

// NewClient creates a client. Empty arguments select the defaults.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		Now:    time.Now,
		Logger: slog.Default(),
	}
}

// Analyze runs task on a base64 JPEG. Any failure is logged and replaced by
// the task's default result.
func (c *Client) Analyze(ctx context.Context, apiKey, imageBase64 string, task Task) Result {
	res, err := c.Extract(ctx, apiKey, imageBase64, task)
	if err != nil {
		c.Logger.Warn("image analysis failed", "task", task, "error", err)
		return Default(task, c.Now())
	}
	return res
}

// Extract runs task and reports failures instead of substituting defaults.
func (c *Client) Extract(ctx context.Context, apiKey, imageBase64 string, task Task) (Result, error) {
	if apiKey == "" {
		return Result{}, ErrNoAPIKey
	}

	now := c.Now()
	today := now.Format("2006-01-02")
	text, err := c.generate(ctx, apiKey, prompt(task, today), imageBase64, temperature(task))
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := extractJSON(text, &res); err != nil {
		return Result{}, err
	}
	res.Fallback = false

	if task == TaskExpiry {
		d, err := expiry.ParseDate(res.ExpiryDate, now.Location())
		if err != nil {
			return Result{}, fmt.Errorf("model returned unusable expiry date: %w", err)
		}
		res.ExpiryDate = d.String()
		if _, err := expiry.ParseDate(res.PurchaseDate, now.Location()); err != nil {
			res.PurchaseDate = today
		}
	}
	return res, nil
}

func (c *Client) generate(ctx context.Context, apiKey, promptText, imageBase64 string, temp float64) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: promptText},
			{InlineData: &inlineData{MimeType: "image/jpeg", Data: imageBase64}},
		}}},
		GenerationConfig: generationConfig{Temperature: temp, TopK: 32, TopP: 1},
		SafetySettings:   safetySettings,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
