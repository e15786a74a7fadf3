package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hazyhaar/wordsort/pkg/kit"
	"github.com/hazyhaar/wordsort/pkg/preset"
	"github.com/hazyhaar/wordsort/pkg/wordio"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

// NewRouter returns an http.Handler with all wordsort API routes.
func NewRouter(svc *Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		sort:        sortPipeline(svc),
		listPresets: listPresetsEndpoint(svc),
		listLocales: listLocalesEndpoint(svc),
		history:     historyEndpoint(svc),
		svc:         svc,
	}

	mux.HandleFunc("GET /v1/sort", methodNotAllowed)
	mux.HandleFunc("POST /v1/sort", h.handleSortJSON)
	mux.HandleFunc("POST /v1/sort/text", h.handleSortText)
	mux.HandleFunc("GET /v1/presets", h.handleListPresets)
	mux.HandleFunc("GET /v1/locales", h.handleListLocales)
	mux.HandleFunc("GET /v1/history", h.handleHistory)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(requestID(mux))
}

type handler struct {
	sort        kit.Endpoint
	listPresets kit.Endpoint
	listLocales kit.Endpoint
	history     kit.Endpoint
	svc         *Service
}

// --- sort (JSON) ---

type httpSortRequest struct {
	Text    string          `json:"text"`
	Preset  string          `json:"preset,omitempty"`
	Options optionOverrides `json:"options"`
}

func (h *handler) handleSortJSON(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.svc.maxBody())
	var req httpSortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.runSort(w, r, &sortReq{Text: req.Text, Preset: req.Preset, Overrides: req.Options})
}

// --- sort (plain text) ---

func (h *handler) handleSortText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.svc.maxBody())
	text, err := wordio.ReadText(r.Body, r.URL.Query().Get("encoding"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, wordio.ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	overrides, err := parseOverrides(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := &sortReq{Text: text, Preset: r.URL.Query().Get("preset"), Overrides: overrides}

	resp, err := h.sort(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	res := resp.(*sortResponse).Result
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Wordsort-Status", string(res.Status))
	if res.Locale != "" {
		w.Header().Set("X-Wordsort-Locale", res.Locale)
	}
	switch res.Status {
	case wordsort.StatusSuccess:
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, res.Text())
	case wordsort.StatusEmpty:
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, res.Err().Error()+"\n")
	default:
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, res.Err().Error()+"\n")
	}
}

func (h *handler) runSort(w http.ResponseWriter, r *http.Request, req *sortReq) {
	resp, err := h.sort(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	sr := resp.(*sortResponse)
	writeJSON(w, statusCode(sr.Result), sr)
}

// --- presets, locales, history ---

func (h *handler) handleListPresets(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listPresets(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleListLocales(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listLocales(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	resp, err := h.history(r.Context(), &historyReq{Limit: limit})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status  string `json:"status"`
	Presets int    `json:"presets"`
	Locales int    `json:"locales"`
	History bool   `json:"history"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Presets: h.svc.Presets.Count(),
		Locales: len(wordsort.Locales()),
		History: h.svc.History != nil,
	})
}

// --- helpers ---

// parseOverrides reads the query flags of /v1/sort/text. Flags only set
// options that appear in the query.
func parseOverrides(r *http.Request) (optionOverrides, error) {
	q := r.URL.Query()
	var o optionOverrides
	flag := func(name string) (*bool, error) {
		if !q.Has(name) {
			return nil, nil
		}
		v := q.Get(name)
		if v == "" {
			t := true
			return &t, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid value for " + name + ": " + v)
		}
		return &b, nil
	}

	desc, err := flag("desc")
	if err != nil {
		return o, err
	}
	caseSensitive, err := flag("case_sensitive")
	if err != nil {
		return o, err
	}
	keepAccents, err := flag("keep_accents")
	if err != nil {
		return o, err
	}
	dedup, err := flag("dedup")
	if err != nil {
		return o, err
	}
	o.Ascending = negate(desc)
	o.IgnoreCase = negate(caseSensitive)
	o.IgnoreAccents = negate(keepAccents)
	o.RemoveDuplicates = dedup
	if q.Has("locale") {
		loc := q.Get("locale")
		o.Locale = &loc
	}
	return o, nil
}

func statusCode(res *wordsort.Result) int {
	switch res.Status {
	case wordsort.StatusSuccess:
		return http.StatusOK
	case wordsort.StatusEmpty:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeEndpointError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, preset.ErrNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errHistoryDisabled):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID propagates X-Request-ID into the endpoint context, echoing it
// back when the client sent one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			w.Header().Set("X-Request-ID", id)
			r = r.WithContext(kit.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
