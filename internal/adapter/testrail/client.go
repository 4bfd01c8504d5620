// Package testrail implements secondary.RemoteTestRepository over the TestRail API v2.
package testrail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gitlab.com/casesync.net/internal/config"
	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/static/errs"
)

const (
	apiPrefix       = "/index.php?/api/v2/"
	applicationName = "casesync"
	maxErrorBody    = 4096
)

var _ secondary.RemoteTestRepository = (*Client)(nil)

// APIError is a non-200 answer from TestRail.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("testrail %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("testrail %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return errs.ErrRemote
}

type Client struct {
	baseURL  string
	username string
	apiKey   string
	client   *http.Client
	logger   primary.Logger
}

func NewClient(cfg *config.TestRailConfig, clientCfg *config.ClientConfig, logger primary.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.Url, "/"),
		username: cfg.Username,
		apiKey:   cfg.ApiKey,
		client:   &http.Client{Timeout: clientCfg.RequestTimeout},
		logger:   logger,
	}
}

// ListSuites returns the suites of a project. Both the legacy bare array and the
// paginated {"suites": [...]} shapes are accepted.
func (c *Client) ListSuites(ctx context.Context, projectID int64) ([]domain.Suite, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("get_suites/%d", projectID), nil, &raw); err != nil {
		return nil, err
	}

	var suites []domain.Suite
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &suites); err != nil {
			return nil, fmt.Errorf("%w: failed to decode suites: %w", errs.ErrRemote, err)
		}
		return suites, nil
	}

	var page struct {
		Suites []domain.Suite `json:"suites"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode suites: %w", errs.ErrRemote, err)
	}
	return page.Suites, nil
}

func (c *Client) AddSuite(ctx context.Context, projectID int64, name, description string) (*domain.Suite, error) {
	req := suiteRequest{Name: name, Description: description}
	var suite domain.Suite
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("add_suite/%d", projectID), req, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// FindOrCreateSuite scans the project suites for an exact name match before creating
// one; TestRail itself does not keep suite names unique.
func (c *Client) FindOrCreateSuite(ctx context.Context, projectID int64, name, description string) (int64, error) {
	suites, err := c.ListSuites(ctx, projectID)
	if err != nil {
		return 0, err
	}
	for _, s := range suites {
		if s.Name == name {
			c.logger.Info("Found existing suite", "suite", name, "suiteId", s.ID)
			return s.ID, nil
		}
	}

	suite, err := c.AddSuite(ctx, projectID, name, description)
	if err != nil {
		return 0, err
	}
	c.logger.Info("Created new suite", "suite", name, "suiteId", suite.ID)
	return suite.ID, nil
}

func (c *Client) CreateCase(ctx context.Context, suiteID int64, title string, isSmoke bool) (*domain.Case, error) {
	req := caseRequest{
		Title:      title,
		TypeID:     domain.CaseTypeAutomated,
		PriorityID: domain.PriorityFor(isSmoke),
	}
	var created domain.Case
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("add_case/%d", suiteID), req, &created); err != nil {
		return nil, err
	}
	if created.SuiteID == 0 {
		created.SuiteID = suiteID
	}
	return &created, nil
}

func (c *Client) CreateRun(ctx context.Context, projectID int64, name, description string, suiteID int64, caseIDs []int64) (*domain.Run, error) {
	run := domain.NewRun(name, description, suiteID, caseIDs)
	req := runRequest{
		SuiteID:     run.SuiteID,
		Name:        run.Name,
		Description: run.Description,
		IncludeAll:  run.IncludeAll,
		CaseIDs:     run.CaseIDs,
	}
	var created domain.Run
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("add_run/%d", projectID), req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) SubmitResult(ctx context.Context, runID int64, result domain.Result) error {
	req := resultRequest{
		StatusID: result.StatusID,
		Comment:  result.Comment,
		Elapsed:  result.Elapsed(),
	}
	endpoint := fmt.Sprintf("add_result_for_case/%d/%d", runID, result.CaseID)
	return c.do(ctx, http.MethodPost, endpoint, req, nil)
}

func (c *Client) CloseRun(ctx context.Context, runID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("close_run/%d", runID), struct{}{}, nil)
}

// do performs one API call. body is JSON encoded when non-nil; out, when non-nil,
// receives the decoded answer.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request body: %w", endpoint, err)
		}
		reader = bytes.NewReader(bodyJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.SetBasicAuth(c.username, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", applicationName)

	c.logger.Debug("Calling TestRail", "method", method, "endpoint", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrRemote, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(endpoint, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", errs.ErrRemote, endpoint, err)
	}
	return nil
}

func decodeAPIError(endpoint string, resp *http.Response) error {
	apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
