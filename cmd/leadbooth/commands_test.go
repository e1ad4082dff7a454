package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.Write([]byte(`{"status":"error","message":"not found"}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestClient_CaptureLead(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /": `{"status":"success","row":2}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/", map[string]any{
		"first_name":     "Anne",
		"company":        "Acme Radio",
		"capture_method": "cli",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Status string `json:"status"`
		Row    int    `json:"row"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.Row != 2 {
		t.Errorf("row = %d, want 2", result.Row)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/" {
		t.Errorf("request = %s %s, want POST /", r.Method, r.Path)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["capture_method"] != "cli" {
		t.Errorf("body.capture_method = %v, want cli", body["capture_method"])
	}
}

func TestClient_Search(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /": `{"status":"success","results":[{"row_number":2,"first_name":"Anne","company":"Acme Radio"}]}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/?action=search&q=acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Status  string `json:"status"`
		Results []struct {
			RowNumber int    `json:"row_number"`
			FirstName string `json:"first_name"`
		} `json:"results"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].RowNumber != 2 {
		t.Errorf("results = %+v", result.Results)
	}

	if got := ts.requests[0].Path; got != "/?action=search&q=acme" {
		t.Errorf("path = %q", got)
	}
}

func TestClient_MeetingUpdate(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /": `{"status":"success","row":7,"meeting_status":"completed"}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/", map[string]any{
		"action":         "update_meeting",
		"row_number":     "7",
		"meeting_status": "completed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Status string `json:"status"`
		Row    int    `json:"row"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.Row != 7 {
		t.Errorf("row = %d, want 7", result.Row)
	}
}

// The server reports application errors with HTTP 200 and a status field;
// decodeJSON must surface those as errors.
func TestDecodeJSON_BodyError(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /": `{"status":"error","message":"invalid row number"}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/", map[string]any{"action": "update_meeting", "row_number": 1})
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result map[string]any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error from error-status body")
	}
	if !strings.Contains(err.Error(), "invalid row number") {
		t.Errorf("err = %v, want message included", err)
	}
}

func TestDecodeJSON_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))
	t.Cleanup(srv.Close)

	client := &apiClient{baseURL: srv.URL, httpClient: srv.Client()}
	resp, err := client.get(ctx, "/")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result map[string]any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for HTTP 502")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v, want status code included", err)
	}
}
