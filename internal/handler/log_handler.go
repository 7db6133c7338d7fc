package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/logtide/logtide/internal/commons"
	"github.com/logtide/logtide/internal/logger"
	"github.com/logtide/logtide/internal/model"
	"github.com/logtide/logtide/internal/service"
)

type LogHandler struct {
	logService service.LogServiceInterface
}

func NewLogHandler(logService service.LogServiceInterface) *LogHandler {
	return &LogHandler{
		logService: logService,
	}
}

// SubmitLog ingests a single encoded line: body {source, log}.
func (h *LogHandler) SubmitLog(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Source string `json:"source"`
		Log    string `json:"log"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		commons.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.logService.IngestLine(r.Context(), payload.Source, payload.Log); err != nil {
		commons.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	commons.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// SubmitBatch ingests a batch envelope: body {source, logs:[line,...]}.
// The batch is all-or-nothing; one malformed line rejects the request.
func (h *LogHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Source string   `json:"source"`
		Logs   []string `json:"logs"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		commons.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	count, err := h.logService.IngestBatch(r.Context(), payload.Source, payload.Logs)
	if err != nil {
		commons.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The batch id ties the response to the accepted-batch log line so a
	// client report can be matched against the server's own logs.
	batchID := uuid.New().String()
	logger.Infof("batch %s accepted: %d records from %s", batchID, count, payload.Source)

	commons.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"count":    count,
		"batch_id": batchID,
	})
}

// Query answers GET /api/query with the filter conjunction from the query
// string. An unparseable limit falls back to the default rather than
// failing the request.
func (h *LogHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	filters := model.QueryFilters{
		Source:       q.Get("source"),
		Level:        q.Get("level"),
		TraceID:      q.Get("traceId"),
		StartDate:    q.Get("startDate"),
		EndDate:      q.Get("endDate"),
		ContentRegex: q.Get("contentRegex"),
		Limit:        limit,
	}

	results, err := h.logService.Query(r.Context(), filters)
	if err != nil {
		commons.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	commons.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// RawQuery is the escape hatch: body {sql}, executed verbatim. Reads
// return rows, writes return the affected-row count.
func (h *LogHandler) RawQuery(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SQL string `json:"sql"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		commons.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.SQL == "" {
		commons.RespondWithError(w, http.StatusBadRequest, "missing sql statement")
		return
	}

	res, err := h.logService.RawQuery(r.Context(), payload.SQL)
	if err != nil {
		commons.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if res.IsRead {
		commons.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"results": res.Rows})
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": map[string]interface{}{"changes": res.RowsAffected},
	})
}
