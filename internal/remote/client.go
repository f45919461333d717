package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/splitpocket/splitpocket-sync/pkg/config"
	apperrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
)

// Client exposes one operation per mutation the sync coordinator can replay.
// Every failure is typed; the coordinator treats them all as retry-later.
type Client interface {
	CreatePersonalExpense(ctx context.Context, req PersonalExpenseCreate) error
	DeletePersonalExpense(ctx context.Context, req PersonalExpenseDelete) error
	CreateSharedExpense(ctx context.Context, req SharedExpenseCreate) error
	CreateBudget(ctx context.Context, req BudgetUpsert) error
	UpdateBudget(ctx context.Context, req BudgetUpsert) error
	CreateCategory(ctx context.Context, req CategoryUpsert) error
	UpdateCategory(ctx context.Context, req CategoryUpsert) error
}

type httpClient struct {
	baseURL   string
	authToken string
	http      *http.Client
}

// NewHTTPClient builds the REST-backed client from configuration.
func NewHTTPClient(cfg config.RemoteConfig) Client {
	return &httpClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		http:      &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (c *httpClient) CreatePersonalExpense(ctx context.Context, req PersonalExpenseCreate) error {
	return c.do(ctx, http.MethodPost, "/v1/expenses", req)
}

func (c *httpClient) DeletePersonalExpense(ctx context.Context, req PersonalExpenseDelete) error {
	return c.do(ctx, http.MethodDelete, "/v1/expenses/"+req.ID, nil)
}

func (c *httpClient) CreateSharedExpense(ctx context.Context, req SharedExpenseCreate) error {
	return c.do(ctx, http.MethodPost, "/v1/groups/"+req.GroupID+"/expenses", req)
}

func (c *httpClient) CreateBudget(ctx context.Context, req BudgetUpsert) error {
	return c.do(ctx, http.MethodPost, "/v1/budgets", req)
}

func (c *httpClient) UpdateBudget(ctx context.Context, req BudgetUpsert) error {
	return c.do(ctx, http.MethodPut, "/v1/budgets/"+req.ID, req)
}

func (c *httpClient) CreateCategory(ctx context.Context, req CategoryUpsert) error {
	return c.do(ctx, http.MethodPost, "/v1/categories", req)
}

func (c *httpClient) UpdateCategory(ctx context.Context, req CategoryUpsert) error {
	return c.do(ctx, http.MethodPut, "/v1/categories/"+req.ID, req)
}

func (c *httpClient) do(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeValidation, err, "encoding request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return statusError(resp)
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.CodeTimeout, err, "request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(apperrors.CodeTimeout, err, "request timed out")
	}
	return apperrors.Wrap(apperrors.CodeNetwork, err, "request transport failed")
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.New(apperrors.CodeUnauthorized, "remote rejected credentials")
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.New(apperrors.CodeBadRequest, errorMessage(resp.Body))
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.CodeNotFound, "remote resource not found")
	case resp.StatusCode >= 500:
		return apperrors.New(apperrors.CodeServerError, fmt.Sprintf("remote returned %d", resp.StatusCode))
	default:
		return apperrors.New(apperrors.CodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "request rejected"
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Message == "" {
		return strings.TrimSpace(string(raw))
	}
	return envelope.Error.Message
}
