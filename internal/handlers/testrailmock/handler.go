// Package testrailmock serves an in-memory TestRail API v2 subset: suites, cases,
// runs and results. It backs the mock-server command and HTTP client tests.
package testrailmock

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/handlers"
	"gitlab.com/casesync.net/internal/handlers/response"
)

const authFailed = "Authentication failed: invalid or missing user/password or session cookie."

type Handler struct {
	store    *Store
	username string
	apiKey   string
	logger   primary.Logger
}

func NewHandler(store *Store, username, apiKey string, logger primary.Logger) *Handler {
	return &Handler{
		store:    store,
		username: username,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// Router serves the "index.php?/api/v2/<endpoint>" URL shape by moving the query
// into the path before routing.
func (h *Handler) Router() http.Handler {
	inner := mux.NewRouter()
	inner.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Unknown method '"+r.URL.Path+"'")
	})
	h.RegisterRoutes(inner)

	return handlers.LogRequests(h.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/index.php") || !strings.HasPrefix(r.URL.RawQuery, "/api/v2/") {
			writeError(w, http.StatusNotFound, "Unknown endpoint")
			return
		}
		path, query, _ := strings.Cut(r.URL.RawQuery, "&")
		routed := r.Clone(r.Context())
		routed.URL.Path = path
		routed.URL.RawPath = ""
		routed.URL.RawQuery = query
		inner.ServeHTTP(w, routed)
	}))
}

// RegisterRoutes registers the API routes for Handler
func (h *Handler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v2").Subrouter()
	api.Use(h.authenticate, h.injectFailures)

	api.HandleFunc("/get_suites/{projectId:[0-9]+}", h.GetSuites).Methods("GET").Name("get_suites")
	api.HandleFunc("/add_suite/{projectId:[0-9]+}", h.AddSuite).Methods("POST").Name("add_suite")
	api.HandleFunc("/add_case/{suiteId:[0-9]+}", h.AddCase).Methods("POST").Name("add_case")
	api.HandleFunc("/add_run/{projectId:[0-9]+}", h.AddRun).Methods("POST").Name("add_run")
	api.HandleFunc("/close_run/{runId:[0-9]+}", h.CloseRun).Methods("POST").Name("close_run")
	api.HandleFunc("/add_result_for_case/{runId:[0-9]+}/{caseId:[0-9]+}", h.AddResultForCase).Methods("POST").Name("add_result_for_case")
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, key, ok := r.BasicAuth()
		if !ok || user != h.username || key != h.apiKey {
			writeError(w, http.StatusUnauthorized, authFailed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := ""
		if route := mux.CurrentRoute(r); route != nil {
			endpoint = route.GetName()
		}
		if status := h.store.failure(endpoint); status != 0 {
			h.logger.Debug("Injected failure", "endpoint", endpoint, "status", status)
			writeError(w, status, "Injected failure for "+endpoint)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) GetSuites(w http.ResponseWriter, r *http.Request) {
	suites := h.store.listSuites(pathID(r, "projectId"))
	if h.store.Paginated {
		response.WriteSuccess(w, map[string]interface{}{
			"offset": 0,
			"limit":  250,
			"size":   len(suites),
			"suites": suites,
		})
		return
	}
	response.WriteSuccess(w, suites)
}

type addSuiteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) AddSuite(w http.ResponseWriter, r *http.Request) {
	var req addSuiteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Field :name is a required field.")
		return
	}

	h.store.mu.Lock()
	suite := h.store.addSuite(pathID(r, "projectId"), req.Name, req.Description)
	h.store.mu.Unlock()

	h.logger.Info("Suite added", "suiteId", suite.ID, "name", suite.Name)
	response.WriteSuccess(w, suite)
}

type addCaseRequest struct {
	Title      string          `json:"title"`
	TypeID     int             `json:"type_id"`
	PriorityID domain.Priority `json:"priority_id"`
}

func (h *Handler) AddCase(w http.ResponseWriter, r *http.Request) {
	var req addCaseRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Field :title is a required field.")
		return
	}
	suiteID := pathID(r, "suiteId")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if !h.store.suiteExists(suiteID) {
		writeError(w, http.StatusBadRequest, "Field :suite_id is not a valid test suite.")
		return
	}
	priority := req.PriorityID
	if priority == 0 {
		priority = domain.PriorityMedium
	}
	c := domain.Case{ID: h.store.id(), SuiteID: suiteID, Title: req.Title, Priority: priority}
	h.store.cases[c.ID] = c

	response.WriteSuccess(w, c)
}

type addRunRequest struct {
	SuiteID     int64   `json:"suite_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IncludeAll  *bool   `json:"include_all"`
	CaseIDs     []int64 `json:"case_ids"`
}

func (h *Handler) AddRun(w http.ResponseWriter, r *http.Request) {
	var req addRunRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Field :name is a required field.")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if !h.store.suiteExists(req.SuiteID) {
		writeError(w, http.StatusBadRequest, "Field :suite_id is not a valid test suite.")
		return
	}
	includeAll := true
	if req.IncludeAll != nil {
		includeAll = *req.IncludeAll
	}
	run := &domain.Run{
		ID:          h.store.id(),
		Name:        req.Name,
		Description: req.Description,
		SuiteID:     req.SuiteID,
		IncludeAll:  includeAll,
		CaseIDs:     req.CaseIDs,
	}
	h.store.runs[run.ID] = run

	response.WriteSuccess(w, run)
}

func (h *Handler) CloseRun(w http.ResponseWriter, r *http.Request) {
	runID := pathID(r, "runId")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	run, ok := h.store.runs[runID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Field :run_id is not a valid test run.")
		return
	}
	if run.IsCompleted {
		writeError(w, http.StatusBadRequest, "Field :run_id refers to a closed test run.")
		return
	}
	run.IsCompleted = true

	response.WriteSuccess(w, run)
}

type addResultRequest struct {
	StatusID domain.StatusID `json:"status_id"`
	Comment  string          `json:"comment"`
	Elapsed  string          `json:"elapsed"`
}

func (h *Handler) AddResultForCase(w http.ResponseWriter, r *http.Request) {
	var req addResultRequest
	if !decode(w, r, &req) {
		return
	}
	runID, caseID := pathID(r, "runId"), pathID(r, "caseId")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	run, ok := h.store.runs[runID]
	if !ok || run.IsCompleted {
		writeError(w, http.StatusBadRequest, "Field :run_id is not a valid or active test run.")
		return
	}
	c, ok := h.store.cases[caseID]
	if !ok || c.SuiteID != run.SuiteID || (!run.IncludeAll && !slices.Contains(run.CaseIDs, caseID)) {
		writeError(w, http.StatusBadRequest, "No (active) test found for the run/case combination.")
		return
	}
	if req.StatusID < domain.StatusPassed || req.StatusID > domain.StatusFailed {
		writeError(w, http.StatusBadRequest, "Field :status_id is not a valid status.")
		return
	}

	recorded := RecordedResult{
		RunID:    runID,
		CaseID:   caseID,
		StatusID: req.StatusID,
		Comment:  req.Comment,
		Elapsed:  req.Elapsed,
	}
	h.store.results = append(h.store.results, recorded)

	response.WriteSuccess(w, map[string]interface{}{
		"id":        len(h.store.results),
		"test_id":   caseID,
		"status_id": req.StatusID,
		"comment":   req.Comment,
		"elapsed":   req.Elapsed,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func writeError(w http.ResponseWriter, status int, message string) {
	response.WriteError(w, response.ErrorMessage{Message: message, StatusCode: status})
}
