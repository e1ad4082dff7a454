// Package api exposes the lead-capture backend over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/leadbooth/internal/lead"
)

// Large enough for two base64-encoded photos plus the form fields.
const maxCaptureBodySize = 20 << 20 // 20MB

// A photo field shorter than this cannot plausibly hold image data and is
// skipped rather than uploaded.
const minPhotoPayloadLen = 100

// PhotoSaver stores one data-URI photo and returns its viewable link.
type PhotoSaver interface {
	Save(ctx context.Context, dataURI, firstName, lastName, category string) (string, error)
}

// Deps holds the handler's collaborators. Photos may be nil when no file
// store is configured; submissions still succeed with error-flagged photo
// links.
type Deps struct {
	Writer   *lead.Writer
	Searcher *lead.Searcher
	Updater  *lead.MeetingUpdater
	Photos   PhotoSaver
}

// NewHandler returns the capture endpoint handler. Application errors are
// reported in the JSON body's status field, never via the HTTP status code;
// the capture form only inspects the body.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/", handleGet(deps))
	r.Post("/", handlePost(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleGet(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		if params.Get("action") == "search" && params.Get("q") != "" {
			handleSearch(deps, w, params.Get("q"))
			return
		}

		writeJSON(w, map[string]any{
			"status":  "ok",
			"message": "Lead capture endpoint is live. Use POST to submit leads.",
		})
	}
}

func handleSearch(deps Deps, w http.ResponseWriter, query string) {
	results, err := deps.Searcher.Search(query)
	if err != nil {
		writeJSON(w, map[string]any{
			"status":  "error",
			"message": err.Error(),
			"results": []lead.SearchResult{},
		})
		return
	}

	writeJSON(w, map[string]any{
		"status":  "success",
		"results": results,
	})
}

type meetingRequest struct {
	Action          string `json:"action"`
	RowNumber       any    `json:"row_number"`
	MeetingStatus   string `json:"meeting_status"`
	MeetingNotes    string `json:"meeting_notes"`
	DealPotential   string `json:"deal_potential"`
	UpdatedBy       string `json:"updated_by"`
	UpdateTimestamp string `json:"update_timestamp"`
}

type leadRequest struct {
	lead.Record
	BusinessCardPhoto string `json:"business_card_photo"`
	BadgePhoto        string `json:"badge_photo"`
}

func handlePost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxCaptureBodySize)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, err)
			return
		}

		var probe struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(body, &probe); err != nil {
			writeError(w, err)
			return
		}

		if probe.Action == "update_meeting" {
			handleMeetingUpdate(deps, w, body)
			return
		}
		handleLeadSubmission(deps, w, r.Context(), body)
	}
}

func handleMeetingUpdate(deps Deps, w http.ResponseWriter, body []byte) {
	var req meetingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, err)
		return
	}

	_, err := deps.Updater.Update(lead.MeetingUpdate{
		RowNumber:     rowNumber(req.RowNumber),
		Status:        req.MeetingStatus,
		Notes:         req.MeetingNotes,
		DealPotential: req.DealPotential,
		UpdatedBy:     req.UpdatedBy,
		Timestamp:     req.UpdateTimestamp,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"status":         "success",
		"row":            rowNumber(req.RowNumber),
		"meeting_status": req.MeetingStatus,
	})
}

func handleLeadSubmission(deps Deps, w http.ResponseWriter, ctx context.Context, body []byte) {
	var req leadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, err)
		return
	}

	cardURL := savePhoto(ctx, deps, req.BusinessCardPhoto, req.Record, "card")
	badgeURL := savePhoto(ctx, deps, req.BadgePhoto, req.Record, "badge")

	row, err := deps.Writer.Append(req.Record, cardURL, badgeURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"status": "success",
		"row":    row,
	})
}

// savePhoto uploads one photo field. Failures degrade to an inline error
// string in the link column; the row write must never be blocked by a
// photo problem.
func savePhoto(ctx context.Context, deps Deps, dataURI string, rec lead.Record, category string) string {
	if len(dataURI) <= minPhotoPayloadLen {
		return ""
	}
	if deps.Photos == nil {
		slog.Warn("photo submitted but no photo store configured", "category", category)
		return "PHOTO_ERROR: photo store not configured"
	}

	url, err := deps.Photos.Save(ctx, dataURI, rec.FirstName, rec.LastName, category)
	if err != nil {
		slog.Warn("photo upload failed", "category", category, "error", err)
		return "PHOTO_ERROR: " + err.Error()
	}
	return url
}

// rowNumber parses a wire row number that may arrive as a JSON number or a
// numeric string. Anything else reads as 0, which the updater rejects.
func rowNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, map[string]any{
		"status":  "error",
		"message": err.Error(),
	})
}

// nowISO is the default timestamp for CLI and MCP originated updates.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
