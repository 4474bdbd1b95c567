// Package web serves a localhost-only single-user UI; it intentionally has no
// auth/CSRF protection in this mode.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"fleetcheck/config"
	"fleetcheck/processor"
	"fleetcheck/report"
	"fleetcheck/storage"
	"fleetcheck/workbook"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	defaultCacheSize = 16
	maxUploadBytes   = 32 << 20
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Options struct {
	Run          processor.Options
	OutputSuffix string
	// CacheSize bounds how many annotated workbooks are kept for download.
	CacheSize int
}

type Server struct {
	opts    Options
	store   *storage.SQLiteStore
	logger  *zap.Logger
	results *lru.Cache[string, *validatedFile]
	mux     *http.ServeMux
}

type validatedFile struct {
	name     string
	workbook []byte
	summary  *report.Summary
}

type validateResponse struct {
	RunID           string      `json:"runId"`
	Source          string      `json:"source"`
	HeaderRow       int         `json:"headerRow"`
	Summary         string      `json:"summary"`
	ErrorCount      int         `json:"errorCount"`
	CorrectionCount int         `json:"correctionCount"`
	Errors          []CellRow   `json:"errors"`
	Corrections     []CellRow   `json:"corrections"`
	Columns         []ColumnRow `json:"columns"`
	Download        string      `json:"download"`
	ChangeLog       string      `json:"changeLog"`
}

type runResponse struct {
	RunID           string    `json:"runId"`
	Source          string    `json:"source"`
	Fingerprint     string    `json:"fingerprint"`
	HeaderRow       int       `json:"headerRow"`
	ErrorCount      int       `json:"errorCount"`
	CorrectionCount int       `json:"correctionCount"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
	Errors          []CellRow `json:"errors"`
	Corrections     []CellRow `json:"corrections"`
}

type indexPageView struct {
	Title      string
	HasHistory bool
}

type historyPageView struct {
	Title      string
	HasHistory bool
	Runs       []RunRow
}

// NewOptions derives server options from configuration.
func NewOptions(cfg config.Config, logger *zap.Logger) (Options, error) {
	run, err := processor.NewOptions(cfg, logger)
	if err != nil {
		return Options{}, err
	}
	return Options{Run: run, OutputSuffix: cfg.Output.Suffix, CacheSize: defaultCacheSize}, nil
}

// NewServer builds the UI handler. store may be nil, which disables the
// history pages.
func NewServer(opts Options, store *storage.SQLiteStore, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = config.DefaultOutputSuffix
	}
	results, err := lru.New[string, *validatedFile](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}

	server := &Server{
		opts:    opts,
		store:   store,
		logger:  logger,
		results: results,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleIndex)
	mux.HandleFunc("POST /api/validate", server.handleAPIValidate)
	mux.HandleFunc("GET /download/{id}", server.handleDownload)
	mux.HandleFunc("GET /download/{id}/changes", server.handleDownloadChanges)
	mux.HandleFunc("GET /history", server.handleHistory)
	mux.HandleFunc("GET /api/runs/{id}", server.handleAPIRun)
	server.mux = mux

	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := indexPageView{Title: "fleetcheck", HasHistory: s.store != nil}
	if err := renderTemplate(w, "index.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(strings.TrimSpace(header.Filename))
	book, err := workbook.OpenReader(file, name, s.opts.Run.Style)
	if err != nil {
		http.Error(w, err.Error(), openErrorStatus(err))
		return
	}
	defer book.Close()

	summary, err := processor.Validate(book, s.opts.Run)
	if err != nil {
		s.logger.Warn("validation aborted", zap.String("source", name), zap.Error(err))
		http.Error(w, err.Error(), validateErrorStatus(err))
		return
	}

	var buf bytes.Buffer
	if _, err := book.WriteTo(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.results.Add(summary.RunID, &validatedFile{name: name, workbook: buf.Bytes(), summary: summary})

	if s.store != nil {
		if err := s.store.InsertRun(summary); err != nil {
			s.logger.Error("record run history", zap.String("run_id", summary.RunID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, validateResponse{
		RunID:           summary.RunID,
		Source:          name,
		HeaderRow:       summary.HeaderRow,
		Summary:         summary.Headline(),
		ErrorCount:      summary.ErrorCount(),
		CorrectionCount: summary.CorrectionCount(),
		Errors:          BuildCellRows(summary.Errors()),
		Corrections:     BuildCellRows(summary.Corrections()),
		Columns:         BuildColumnRows(summary.CorrectionsByColumn()),
		Download:        "/download/" + summary.RunID,
		ChangeLog:       "/download/" + summary.RunID + "/changes",
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	result, ok := s.results.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "result not found or expired; validate the file again", http.StatusNotFound)
		return
	}

	filename := filepath.Base(workbook.OutputName(result.name, s.opts.OutputSuffix))
	writeAttachment(w, filename, result.workbook)
}

func (s *Server) handleDownloadChanges(w http.ResponseWriter, r *http.Request) {
	result, ok := s.results.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "result not found or expired; validate the file again", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := (&report.ExcelChangeLogWriter{}).Write(&buf, result.summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	filename := filepath.Base(workbook.OutputName(result.name, "_cambios"))
	writeAttachment(w, filename, buf.Bytes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history is disabled", http.StatusNotFound)
		return
	}

	records, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view := historyPageView{Title: "fleetcheck history", HasHistory: true, Runs: BuildRunRows(records)}
	if err := renderTemplate(w, "history.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history is disabled", http.StatusNotFound)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	record, err := s.store.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	cells, err := s.store.ListRunOutcomes(id)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}

	errorRows, correctionRows := SplitOutcomes(cells)
	writeJSON(w, http.StatusOK, runResponse{
		RunID:           record.ID,
		Source:          record.Source,
		Fingerprint:     record.Fingerprint,
		HeaderRow:       record.HeaderRow,
		ErrorCount:      record.ErrorCount,
		CorrectionCount: record.CorrectionCount,
		StartedAt:       record.StartedAt,
		FinishedAt:      record.FinishedAt,
		Errors:          errorRows,
		Corrections:     correctionRows,
	})
}

func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"fmtTime": func(value time.Time) string {
			return value.Local().Format("2006-01-02 15:04:05")
		},
		"fmtDuration": func(value time.Duration) string {
			return value.Round(time.Millisecond).String()
		},
	}).ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAttachment(w http.ResponseWriter, filename string, content []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func openErrorStatus(err error) int {
	if errors.Is(err, workbook.ErrUnsupportedFormat) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

func validateErrorStatus(err error) int {
	if errors.Is(err, processor.ErrHeaderNotFound) || errors.Is(err, processor.ErrDuplicateColumn) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func storeErrorStatus(err error) int {
	if errors.Is(err, storage.ErrRunNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
