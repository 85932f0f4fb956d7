// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClaudeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() {
		claudeAPIURL = old
		ts.Close()
	})
	return ts
}

func textReply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	body, _ := json.Marshal(claudeResponse{Content: []claudeContent{{Type: "text", Text: text}}})
	w.Write(body)
}

func TestClaudeOracleRank(t *testing.T) {
	var gotReq claudeRequest
	var gotHeaders http.Header
	ts := withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		textReply(w, `{"ranked":[{"id":2,"name":"Air Flow"},{"id":"1","name":"Voltage - Rated"}]}`)
	})

	c := &ClaudeOracle{APIKey: "ak_test", Model: "test-model", Client: ts.Client()}
	resp, err := c.Rank(context.Background(), Request{
		SubjectIdentifier: "4414F",
		Parameters: []RequestParam{
			{ID: "1", Name: "Voltage - Rated", Value: "24VDC"},
			{ID: "2", Name: "Air Flow"},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Ranked, 2)
	assert.Equal(t, FlexibleID("2"), resp.Ranked[0].ID)
	assert.Equal(t, FlexibleID("1"), resp.Ranked[1].ID)

	assert.Equal(t, "ak_test", gotHeaders.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, `"mpn":"4414F"`)
	assert.Contains(t, gotReq.Messages[0].Content, "Voltage - Rated")
}

func TestClaudeOracleErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errMsg  string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"bad key"}`)
			},
			errMsg: "401",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				textReply(w, `{"ranked": [ {"id": }`)
			},
			errMsg: "parsing ranking JSON",
		},
		{
			name: "no text block",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"content":[{"type":"tool_use"}]}`)
			},
			errMsg: "no text content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withClaudeServer(t, tt.handler)
			c := &ClaudeOracle{APIKey: "k", Model: "m", Client: ts.Client()}
			_, err := c.Rank(context.Background(), Request{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestClaudeOracleWithoutKey(t *testing.T) {
	c := &ClaudeOracle{}
	_, err := c.Rank(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestParseResponse(t *testing.T) {
	t.Run("code fence", func(t *testing.T) {
		resp, err := ParseResponse("```json\n{\"ranked\":[{\"id\":\"a\",\"name\":\"A\"}]}\n```")
		require.NoError(t, err)
		assert.Equal(t, FlexibleID("a"), resp.Ranked[0].ID)
	})
	t.Run("empty list", func(t *testing.T) {
		_, err := ParseResponse(`{"ranked":[]}`)
		assert.ErrorIs(t, err, ErrEmptyRanking)
	})
	t.Run("no object", func(t *testing.T) {
		_, err := ParseResponse("I cannot rank these.")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "no JSON object"))
	})
}

func TestPrioritizerWithUnreachableOracle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()
	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	p := &Prioritizer{Oracle: &ClaudeOracle{APIKey: "k", Model: "m", Client: http.DefaultClient}}
	got := p.Rank(context.Background(), fanParams(), "4414F", "")
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
}
