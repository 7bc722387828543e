package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/meridiancredit/sentinel/internal/chread"
	"go.uber.org/zap"
)

// handleListAssessments implements GET /api/sentinel/assessments.
// Served from the ClickHouse mirror; 503 when it is not configured.
func (d *Dependencies) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if d.Reader == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Analytics storage not available"})
		return
	}

	q := r.URL.Query()
	params := chread.ListParams{}

	if v := q.Get("user_id"); v != "" {
		params.UserID = &v
	}
	if v := q.Get("kind"); v != "" {
		if v != "login" && v != "transaction" {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "kind must be login or transaction"})
			return
		}
		params.Kind = &v
	}
	if v := q.Get("auth_level"); v != "" {
		params.AuthLevel = &v
	}
	if v := q.Get("min_risk"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "min_risk must be a number"})
			return
		}
		params.MinRisk = &f
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "since must be RFC3339"})
			return
		}
		params.Since = &t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "until must be RFC3339"})
			return
		}
		params.Until = &t
	}

	page := 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	pageSize := 50
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			pageSize = n
		}
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	events, total, err := d.Reader.ListAssessments(r.Context(), params)
	if err != nil {
		d.Logger.Error("list assessments failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list assessments"})
		return
	}

	writeJSON(w, http.StatusOK, AssessmentListResp{
		Assessments: events,
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
	})
}

// handleGetAnalytics implements GET /api/sentinel/analytics.
// The window defaults to the trailing 24 hours.
func (d *Dependencies) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	if d.Reader == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "Analytics storage not available"})
		return
	}

	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 24*90 {
			writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "hours must be between 1 and 2160"})
			return
		}
		hours = n
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	analytics, err := d.Reader.GetAnalytics(r.Context(), since)
	if err != nil {
		d.Logger.Error("get analytics failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to compute analytics"})
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}
