// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/partswap/internal/httputil"
)

// rankingPromptTmpl is the prompt sent to the Claude API. The parameter
// payload is embedded as JSON.
var rankingPromptTmpl = template.Must(template.New("ranking").Parse(`You are assisting in component replacement engineering.

GOAL:
Rank ALL of the provided specification parameters from MOST CRUCIAL to preserve (parameters that, if changed, would likely force a redesign or cause the part to not function as intended) down to LEAST CRUCIAL (parameters that can usually be varied or dropped with minimal redesign risk).

CRITERIA:
- Treat electrical ratings fundamental to function (Voltage - Rated, Current, Power, Frequency, package size critical to PCB fit, connector pin count) as the MOST crucial.
- Treat secondary, mechanical or optional features (packaging style, lead finish, minor tolerances, marking, weight, cosmetic features) as less crucial.
- Rank by what the parameter is, not by its value. Values are given for context only.

OUTPUT:
Respond with a JSON object and nothing else, using this schema:
{"ranked": [{"id": "<id>", "name": "<name>"}]}

Include EVERY provided parameter exactly once, most crucial first. Do not invent parameters.

Input:
{{.Payload}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ErrEmptyRanking is returned when the model answers without a usable ordering.
var ErrEmptyRanking = errors.New("ranking response contained no entries")

// ClaudeOracle ranks parameters with the Claude Messages API.
type ClaudeOracle struct {
	APIKey     string
	Model      string
	Client     *http.Client
	MaxRetries int
	Log        *zap.Logger
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Rank calls the Claude API once and parses the ordering from the reply.
func (c *ClaudeOracle) Rank(ctx context.Context, req Request) (Response, error) {
	if c.APIKey == "" {
		return Response{}, fmt.Errorf("anthropic API key not configured")
	}

	prompt, err := renderPrompt(req)
	if err != nil {
		return Response{}, fmt.Errorf("rendering prompt: %w", err)
	}

	bodyBytes, err := json.Marshal(claudeRequest{
		Model:       c.Model,
		MaxTokens:   4096,
		Temperature: 0.2,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	retrier := &httputil.Retrier{Client: c.Client, MaxRetries: c.MaxRetries, Log: c.Log}
	resp, err := retrier.Do(ctx, httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Response{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return Response{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return ParseResponse(block.Text)
	}
	return Response{}, fmt.Errorf("no text content in Claude API response")
}

// ParseResponse extracts the ranking object from model text. Surrounding
// prose or code fences are tolerated.
func ParseResponse(text string) (Response, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Response{}, fmt.Errorf("no JSON object in ranking response")
	}
	var out Response
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return Response{}, fmt.Errorf("parsing ranking JSON: %w", err)
	}
	if len(out.Ranked) == 0 {
		return Response{}, ErrEmptyRanking
	}
	return out, nil
}

func renderPrompt(req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := rankingPromptTmpl.Execute(&buf, struct{ Payload string }{Payload: string(payload)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FlexibleID accepts a JSON string or number. Models often echo numeric
// parameter ids without quotes.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", string(b))
	}
	*f = FlexibleID(n.String())
	return nil
}
