package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/leadbooth/internal/lead"
	"github.com/kalambet/leadbooth/internal/sheet"
)

type fakePhotoSaver struct {
	url  string
	err  error
	seen []string
}

func (f *fakePhotoSaver) Save(_ context.Context, dataURI, firstName, lastName, category string) (string, error) {
	f.seen = append(f.seen, category)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newTestHandler(t *testing.T, photos PhotoSaver) (http.Handler, sheet.Table) {
	t.Helper()
	table, err := sheet.Open(":memory:")
	if err != nil {
		t.Fatalf("opening table: %v", err)
	}
	t.Cleanup(func() { table.Close() })

	schema := lead.ExtendedSchema()
	if err := sheet.EnsureHeader(table, schema.Columns); err != nil {
		t.Fatalf("writing header: %v", err)
	}

	h := NewHandler(Deps{
		Writer:   lead.NewWriter(table, schema),
		Searcher: lead.NewSearcher(table, schema),
		Updater:  lead.NewMeetingUpdater(table),
		Photos:   photos,
	})
	return h, table
}

func postJSON(t *testing.T, h http.Handler, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return resp
}

// fakeDataURI is long enough to pass the minimum photo payload check.
func fakeDataURI(t *testing.T) string {
	t.Helper()
	payload := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("pixels ", 30)))
	return "data:image/png;base64," + payload
}

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_GetLiveness(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if msg, _ := resp["message"].(string); !strings.Contains(msg, "POST") {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestHandler_SubmitWithoutPhotos(t *testing.T) {
	h, table := newTestHandler(t, nil)

	resp := postJSON(t, h, `{
		"first_name": "Anne",
		"last_name": "Chen",
		"company": "Acme Radio",
		"email": "anne@acme.example"
	}`)

	if resp["status"] != "success" {
		t.Fatalf("status = %v, want success: %v", resp["status"], resp)
	}
	if resp["row"] != float64(2) {
		t.Errorf("row = %v, want 2", resp["row"])
	}

	// Photo link cells stay empty when no photos were submitted.
	schema := lead.ExtendedSchema()
	for _, col := range []int{schema.CardPhotoCol(), schema.BadgePhotoCol()} {
		v, err := table.ReadCell(2, col)
		if err != nil {
			t.Fatalf("ReadCell(2, %d) failed: %v", col, err)
		}
		if v != "" {
			t.Errorf("photo cell %d = %q, want empty", col, v)
		}
	}
}

func TestHandler_SubmitThenSearch(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	postJSON(t, h, `{"first_name": "Anne", "last_name": "Chen", "company": "Acme Radio"}`)
	postJSON(t, h, `{"first_name": "Bob", "company": "Other Corp"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?action=search&q=acme", nil))

	var resp struct {
		Status  string              `json:"status"`
		Results []lead.SearchResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("status = %q, want success", resp.Status)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	if resp.Results[0].RowNumber != 2 || resp.Results[0].FirstName != "Anne" {
		t.Errorf("result = %+v", resp.Results[0])
	}
}

func TestHandler_SearchEmptyQueryIsLiveness(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?action=search&q=", nil))

	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if _, hasResults := resp["results"]; hasResults {
		t.Error("empty query should fall through to the liveness response")
	}
}

func TestHandler_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	resp := postJSON(t, h, `{not json`)
	if resp["status"] != "error" {
		t.Errorf("status = %v, want error", resp["status"])
	}
	if resp["message"] == "" {
		t.Error("error response has no message")
	}
}

func TestHandler_MeetingUpdate(t *testing.T) {
	h, table := newTestHandler(t, nil)

	postJSON(t, h, `{"first_name": "Anne", "conversation_summary": "booth chat"}`)

	resp := postJSON(t, h, `{
		"action": "update_meeting",
		"row_number": 2,
		"meeting_status": "no_show",
		"meeting_notes": "did not arrive",
		"updated_by": "dana",
		"update_timestamp": "2026-02-18T15:00:00Z"
	}`)

	if resp["status"] != "success" {
		t.Fatalf("status = %v, want success: %v", resp["status"], resp)
	}
	if resp["meeting_status"] != "no_show" {
		t.Errorf("meeting_status = %v", resp["meeting_status"])
	}

	summary, _ := table.ReadCell(2, 13)
	if !strings.Contains(summary, "NO-SHOW") || !strings.Contains(summary, "did not arrive") {
		t.Errorf("summary = %q", summary)
	}
}

func TestHandler_MeetingUpdate_StringRowNumber(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	postJSON(t, h, `{"first_name": "Anne"}`)

	resp := postJSON(t, h, `{
		"action": "update_meeting",
		"row_number": "2",
		"meeting_status": "completed"
	}`)
	if resp["status"] != "success" {
		t.Fatalf("status = %v, want success: %v", resp["status"], resp)
	}
	if resp["row"] != float64(2) {
		t.Errorf("row = %v, want 2", resp["row"])
	}
}

func TestHandler_MeetingUpdate_HeaderRowRejected(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	resp := postJSON(t, h, `{
		"action": "update_meeting",
		"row_number": 1,
		"meeting_status": "completed"
	}`)
	if resp["status"] != "error" {
		t.Errorf("status = %v, want error", resp["status"])
	}
}

func TestHandler_PhotoUploadSuccess(t *testing.T) {
	photos := &fakePhotoSaver{url: "https://drive.google.com/file/d/file-1/view"}
	h, table := newTestHandler(t, photos)

	resp := postJSON(t, h, `{
		"first_name": "Anne",
		"last_name": "Chen",
		"business_card_photo": "`+fakeDataURI(t)+`",
		"badge_photo": "`+fakeDataURI(t)+`"
	}`)
	if resp["status"] != "success" {
		t.Fatalf("status = %v: %v", resp["status"], resp)
	}

	if len(photos.seen) != 2 || photos.seen[0] != "card" || photos.seen[1] != "badge" {
		t.Errorf("categories = %v, want [card badge]", photos.seen)
	}

	schema := lead.ExtendedSchema()
	card, _ := table.ReadCell(2, schema.CardPhotoCol())
	if card != photos.url {
		t.Errorf("card cell = %q, want %q", card, photos.url)
	}
}

func TestHandler_PhotoUploadFailureDoesNotBlockRow(t *testing.T) {
	photos := &fakePhotoSaver{err: errors.New("drive quota exceeded")}
	h, table := newTestHandler(t, photos)

	resp := postJSON(t, h, `{
		"first_name": "Anne",
		"business_card_photo": "`+fakeDataURI(t)+`"
	}`)
	if resp["status"] != "success" {
		t.Fatalf("status = %v, want success despite photo failure: %v", resp["status"], resp)
	}

	schema := lead.ExtendedSchema()
	card, _ := table.ReadCell(2, schema.CardPhotoCol())
	if !strings.HasPrefix(card, "PHOTO_ERROR:") || !strings.Contains(card, "quota") {
		t.Errorf("card cell = %q, want PHOTO_ERROR prefix with cause", card)
	}
}

func TestHandler_TinyPhotoFieldSkipped(t *testing.T) {
	photos := &fakePhotoSaver{url: "https://example.com/x"}
	h, table := newTestHandler(t, photos)

	resp := postJSON(t, h, `{"first_name": "Anne", "business_card_photo": "data:image/png;base64,xx"}`)
	if resp["status"] != "success" {
		t.Fatalf("status = %v: %v", resp["status"], resp)
	}
	if len(photos.seen) != 0 {
		t.Errorf("saver called %d times, want 0", len(photos.seen))
	}

	schema := lead.ExtendedSchema()
	card, _ := table.ReadCell(2, schema.CardPhotoCol())
	if card != "" {
		t.Errorf("card cell = %q, want empty", card)
	}
}

func TestHandler_NoPhotoStoreConfigured(t *testing.T) {
	h, table := newTestHandler(t, nil)

	resp := postJSON(t, h, `{"first_name": "Anne", "business_card_photo": "`+fakeDataURI(t)+`"}`)
	if resp["status"] != "success" {
		t.Fatalf("status = %v: %v", resp["status"], resp)
	}

	schema := lead.ExtendedSchema()
	card, _ := table.ReadCell(2, schema.CardPhotoCol())
	if !strings.HasPrefix(card, "PHOTO_ERROR:") {
		t.Errorf("card cell = %q, want PHOTO_ERROR prefix", card)
	}
}
