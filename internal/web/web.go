package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"datetime/internal/calendar"
	"datetime/internal/clock"
	"datetime/internal/config"
	"datetime/internal/ics"
	appLog "datetime/internal/log"
	"datetime/internal/recur"
	"datetime/internal/strftime"
)

const defaultUID = "datetime"

// Server exposes the formatter over HTTP/JSON. Handlers share only the
// immutable config, the compiled layouts and the now-source.
type Server struct {
	cfg     *config.Config
	layouts map[string]*strftime.Layout
	src     clock.Source
	mux     *http.ServeMux
}

// NewServer constructs a new Server. cfg should already be validated.
func NewServer(cfg *config.Config, src clock.Source) *Server {
	s := &Server{
		cfg:     cfg,
		layouts: cfg.CompiledLayouts(),
		src:     src,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="datetime", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves the API on cfg.Listen until ctx is canceled, then shuts
// down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, src clock.Source) error {
	s := NewServer(cfg, src)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/now", s.handleNow)
	s.mux.HandleFunc("/api/format", s.handleFormat)
	s.mux.HandleFunc("/api/decompose", s.handleDecompose)
	s.mux.HandleFunc("/api/mktime", s.handleMktime)
	s.mux.HandleFunc("/api/layouts", s.handleLayouts)
	s.mux.HandleFunc("/api/recur", s.handleRecur)
	s.mux.HandleFunc("/api/ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// textResponse is the JSON shape for /api/now and /api/format.
type textResponse struct {
	EpochMs  uint64 `json:"epoch_ms"`
	Template string `json:"template"`
	Text     string `json:"text"`
}

// recordDTO is the JSON view of a calendar.Record.
type recordDTO struct {
	Second     int `json:"second"`
	Minute     int `json:"minute"`
	Hour       int `json:"hour"`
	DayOfMonth int `json:"day_of_month"`
	Month      int `json:"month"`
	Year       int `json:"year"`
	DayOfWeek  int `json:"day_of_week"`
	DayOfYear  int `json:"day_of_year"`
}

func toDTO(r calendar.Record) recordDTO {
	return recordDTO{
		Second:     r.Second(),
		Minute:     r.Minute(),
		Hour:       r.Hour(),
		DayOfMonth: r.DayOfMonth(),
		Month:      r.Month(),
		Year:       r.Year(),
		DayOfWeek:  r.DayOfWeek(),
		DayOfYear:  r.DayOfYear(),
	}
}

func (d recordDTO) record() calendar.Record {
	return calendar.New(d.Second, d.Minute, d.Hour, d.DayOfMonth, d.Month, d.Year, d.DayOfWeek, d.DayOfYear)
}

type decomposeResponse struct {
	EpochMs uint64    `json:"epoch_ms"`
	Record  recordDTO `json:"record"`
	Mktime  int64     `json:"mktime"`
}

type mktimeResponse struct {
	Seconds int64 `json:"seconds"`
}

type occurrenceDTO struct {
	InstanceKey string `json:"instance_key"`
	StartMs     uint64 `json:"start_ms"`
	EndMs       uint64 `json:"end_ms"`
	Text        string `json:"text"`
}

type recurResponse struct {
	Template    string          `json:"template"`
	Occurrences []occurrenceDTO `json:"occurrences"`
	Truncated   bool            `json:"truncated"`
}

// handleNow renders the now-source.
//
// GET /api/now?format=...  or  ?layout=NAME
func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	layout, err := s.resolveLayout(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeText(w, layout, s.src.NowMillis())
}

// handleFormat renders an explicit epoch value.
//
// GET /api/format?epoch=1234567890543&format=%25F
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	ms, err := parseEpoch(r.URL.Query().Get("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	layout, err := s.resolveLayout(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeText(w, layout, ms)
}

func (s *Server) writeText(w http.ResponseWriter, layout *strftime.Layout, ms calendar.EpochMillis) {
	text, err := layout.FormatMillis(ms)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, textResponse{
		EpochMs:  uint64(ms),
		Template: layout.String(),
		Text:     text,
	})
}

// handleDecompose returns the broken-down record for an epoch value.
//
// GET /api/decompose?epoch=433166421023
func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	ms, err := parseEpoch(r.URL.Query().Get("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec := calendar.Decompose(ms)
	writeJSON(w, http.StatusOK, decomposeResponse{
		EpochMs: uint64(ms),
		Record:  toDTO(rec),
		Mktime:  calendar.Mktime(rec),
	})
}

// handleMktime converts a posted record back to epoch seconds.
//
// POST /api/mktime {"year":1983,"day_of_year":265,...}
func (s *Server) handleMktime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	var dto recordDTO
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid record: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mktimeResponse{Seconds: calendar.Mktime(dto.record())})
}

// handleLayouts lists the builtin and configured layouts by name.
func (s *Server) handleLayouts(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]string, len(s.layouts))
	for name, l := range s.layouts {
		out[name] = l.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRecur expands an RRULE and renders every occurrence.
//
// GET /api/recur?rrule=FREQ=DAILY;COUNT=3&start=...&format=...&count=N
//   - start: epoch ms anchor (default: now)
//   - count: cap on occurrences (default: config max_occurrences)
func (s *Server) handleRecur(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.recurConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	layout, err := s.resolveLayout(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := recur.Expand(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dtos := make([]occurrenceDTO, 0, len(res.Occurrences))
	for _, occ := range res.Occurrences {
		text, err := layout.FormatMillis(occ.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dtos = append(dtos, occurrenceDTO{
			InstanceKey: occ.InstanceKey,
			StartMs:     uint64(occ.Start),
			EndMs:       uint64(occ.End),
			Text:        text,
		})
	}
	writeJSON(w, http.StatusOK, recurResponse{
		Template:    layout.String(),
		Occurrences: dtos,
		Truncated:   res.Truncated,
	})
}

// handleICS expands an RRULE and returns it as an iCalendar document.
//
// GET /api/ics?rrule=...&start=...&summary=...&uid=...
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.recurConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := recur.Expand(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := ics.Export(res.Occurrences, s.src.NowMillis())
	if err != nil {
		appLog.Error("api ics: export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) recurConfig(r *http.Request) (recur.Config, error) {
	q := r.URL.Query()
	cfg := recur.Config{
		Rule:           q.Get("rrule"),
		UID:            q.Get("uid"),
		Summary:        q.Get("summary"),
		MaxOccurrences: s.cfg.MaxOccurrences,
	}
	if cfg.Rule == "" {
		return cfg, errors.New("rrule is required")
	}
	if cfg.UID == "" {
		cfg.UID = defaultUID
	}

	cfg.Start = s.src.NowMillis()
	if v := q.Get("start"); v != "" {
		ms, err := parseEpoch(v)
		if err != nil {
			return cfg, err
		}
		cfg.Start = ms
	}

	if n := parseIntDefault(q.Get("count"), 0); n > 0 && n < cfg.MaxOccurrences {
		cfg.MaxOccurrences = n
	}
	return cfg, nil
}

// resolveLayout picks ?layout=NAME, then ?format=TEMPLATE, then the
// configured default template.
func (s *Server) resolveLayout(r *http.Request) (*strftime.Layout, error) {
	q := r.URL.Query()
	if name := q.Get("layout"); name != "" {
		l, ok := s.layouts[name]
		if !ok {
			return nil, errors.New("unknown layout: " + name)
		}
		return l, nil
	}
	tpl := q.Get("format")
	if tpl == "" {
		tpl = s.cfg.Template
	}
	return strftime.Compile(tpl)
}

func parseEpoch(v string) (calendar.EpochMillis, error) {
	if v == "" {
		return 0, errors.New("epoch is required")
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.New("epoch must be a non-negative integer of milliseconds")
	}
	return calendar.EpochMillis(n), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
