package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitpocket/splitpocket-sync/pkg/config"
	apperrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewHTTPClient(config.RemoteConfig{
		BaseURL:        server.URL,
		AuthToken:      "test-token",
		RequestTimeout: 2 * time.Second,
	})
	return client, server
}

func TestCreatePersonalExpenseSendsAuthorizedJSON(t *testing.T) {
	var got PersonalExpenseCreate
	var header http.Header
	var method, path string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		header = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	req := PersonalExpenseCreate{
		ID:         uuid.NewString(),
		Amount:     decimal.RequireFromString("12.50"),
		Category:   "groceries",
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, client.CreatePersonalExpense(context.Background(), req))

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/v1/expenses", path)
	assert.Equal(t, "Bearer test-token", header.Get("Authorization"))
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, req.ID, got.ID)
	assert.True(t, got.Amount.Equal(req.Amount))
}

func TestDeletePersonalExpenseTargetsResource(t *testing.T) {
	var method, path string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	id := uuid.NewString()
	require.NoError(t, client.DeletePersonalExpense(context.Background(), PersonalExpenseDelete{ID: id}))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/v1/expenses/"+id, path)
}

func TestCreateSharedExpenseTargetsGroup(t *testing.T) {
	var path string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	groupID := uuid.NewString()
	req := SharedExpenseCreate{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Description: "dinner",
		Category:    "food",
		TotalAmount: decimal.NewFromInt(90),
		PaidBy:      uuid.NewString(),
		Splits:      []SplitPayload{{MemberID: uuid.NewString(), ShareAmount: decimal.NewFromInt(90)}},
	}
	require.NoError(t, client.CreateSharedExpense(context.Background(), req))
	assert.Equal(t, "/v1/groups/"+groupID+"/expenses", path)
}

func TestBudgetAndCategoryRoutes(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{method: r.Method, path: r.URL.Path})
		w.WriteHeader(http.StatusOK)
	}))

	ctx := context.Background()
	budget := BudgetUpsert{ID: uuid.NewString(), Category: "food", Limit: decimal.NewFromInt(400), Month: "2026-08"}
	category := CategoryUpsert{ID: uuid.NewString(), Name: "Food"}

	require.NoError(t, client.CreateBudget(ctx, budget))
	require.NoError(t, client.UpdateBudget(ctx, budget))
	require.NoError(t, client.CreateCategory(ctx, category))
	require.NoError(t, client.UpdateCategory(ctx, category))

	assert.Equal(t, []call{
		{method: http.MethodPost, path: "/v1/budgets"},
		{method: http.MethodPut, path: "/v1/budgets/" + budget.ID},
		{method: http.MethodPost, path: "/v1/categories"},
		{method: http.MethodPut, path: "/v1/categories/" + category.ID},
	}, calls)
}

func TestStatusCodesMapToTypedErrors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.Code
		wantMsg  string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "bad request with envelope", status: http.StatusBadRequest, body: `{"error":{"message":"amount must be positive"}}`, wantCode: apperrors.CodeBadRequest, wantMsg: "amount must be positive"},
		{name: "bad request raw body", status: http.StatusBadRequest, body: "malformed expense", wantCode: apperrors.CodeBadRequest, wantMsg: "malformed expense"},
		{name: "not found", status: http.StatusNotFound, wantCode: apperrors.CodeNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantCode: apperrors.CodeServerError},
		{name: "bad gateway", status: http.StatusBadGateway, wantCode: apperrors.CodeServerError},
		{name: "unexpected status", status: http.StatusTeapot, wantCode: apperrors.CodeServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.body != "" {
					_, _ = w.Write([]byte(tc.body))
				}
			}))

			err := client.CreateCategory(context.Background(), CategoryUpsert{ID: uuid.NewString(), Name: "x"})
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, apperrors.CodeOf(err))
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestTransportFailuresMapToNetworkAndTimeout(t *testing.T) {
	// A closed server yields a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewHTTPClient(config.RemoteConfig{BaseURL: baseURL, RequestTimeout: time.Second})
	err := client.CreateCategory(context.Background(), CategoryUpsert{ID: uuid.NewString(), Name: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNetwork, apperrors.CodeOf(err))

	// A stalled server trips the client timeout.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	client = NewHTTPClient(config.RemoteConfig{BaseURL: slow.URL, RequestTimeout: 50 * time.Millisecond})
	err = client.CreateCategory(context.Background(), CategoryUpsert{ID: uuid.NewString(), Name: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTimeout, apperrors.CodeOf(err))
}
