// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_insights/internal/adapters/csvin"
	"review_insights/internal/app"
	"review_insights/internal/domain"
)

type Handlers struct {
	A         *app.AnalysisService
	R         *app.ReportService // nil disables persistence and the /v1/reports routes
	MaxUpload int64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	if h.MaxUpload <= 0 {
		h.MaxUpload = 32 << 20
	}
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/analyze", h.analyzeUpload)
	s.mux.Post("/v1/analyze/json", h.analyzeJSON)
	if h.R != nil {
		s.mux.Get("/v1/reports", h.listReports)
		s.mux.Get("/v1/reports/{id}", h.getReport)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func (h *Handlers) analyzeUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Upload too large", "file exceeds the upload limit")
			return
		}
		writeProblem(w, http.StatusBadRequest, "Missing file", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	ds, err := csvin.Read(file)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid CSV", err.Error())
		return
	}
	res, err := h.A.AnalyzeDataset(r.Context(), ds)
	h.respondAnalysis(w, r, hdr.Filename, res, err)
}

type analyzeRequest struct {
	Reviews []any            `json:"reviews"`
	Rows    []map[string]any `json:"rows"`
}

func (h *Handlers) analyzeJSON(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	res, err := h.A.AnalyzeDataset(r.Context(), req.dataset())
	h.respondAnalysis(w, r, "json", res, err)
}

// dataset turns either body form into rows; "reviews" is shorthand for a single review_text column.
func (req analyzeRequest) dataset() domain.Dataset {
	if req.Reviews != nil {
		ds := domain.Dataset{Columns: []string{app.PrimaryTextColumn}, Rows: make([]map[string]any, len(req.Reviews))}
		for i, v := range req.Reviews {
			ds.Rows[i] = map[string]any{app.PrimaryTextColumn: v}
		}
		return ds
	}
	ds := domain.Dataset{Rows: req.Rows}
	seen := map[string]bool{}
	for _, row := range req.Rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if !seen[k] {
				keys = append(keys, k)
				seen[k] = true
			}
		}
		sort.Strings(keys)
		ds.Columns = append(ds.Columns, keys...)
	}
	return ds
}

func (h *Handlers) respondAnalysis(w http.ResponseWriter, r *http.Request, source string, res domain.AnalysisResult, err error) {
	if err != nil {
		var schemaErr *domain.SchemaError
		switch {
		case errors.As(err, &schemaErr):
			writeProblem(w, http.StatusUnprocessableEntity, "Invalid schema", "CSV must contain review_text column")
		case r.Context().Err() != nil:
			// the timeout middleware has answered already, or the client is gone
			log.Warn().Err(err).Str("source", source).Msg("analysis cancelled")
		default:
			log.Error().Err(err).Msg("analysis failed")
			writeProblem(w, http.StatusInternalServerError, "Analysis failed", "")
		}
		return
	}

	if h.R != nil {
		rep, err := h.R.Save(r.Context(), source, res)
		if err != nil {
			// the caller still gets the result; only the stored copy is missing
			log.Error().Err(err).Str("source", source).Msg("persist report failed")
		} else {
			w.Header().Set("X-Report-ID", rep.ID)
			w.Header().Set("Location", "/v1/reports/"+rep.ID)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.R.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "report not found")
			return
		}
		log.Error().Err(err).Msg("get report failed")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	etag, body := calcETagAndBody(rep)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getReport body")
	}
}

func (h *Handlers) listReports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	page, err := h.R.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list reports failed")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, page)
}
