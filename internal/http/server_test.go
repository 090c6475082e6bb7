package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"budget/internal/app"
	"budget/internal/core"
	"budget/internal/kv/memory"
	"budget/internal/log"
	"budget/internal/persist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db locked") }

func newTestServer(t *testing.T, opts ...Option) (*Server, *app.Controller) {
	t.Helper()
	ctrl := app.New(persist.NewAdapter(memory.New()), app.WithLogger(log.Discard()))
	require.NoError(t, ctrl.Load(context.Background()))
	srv, err := NewServer(":0", ctrl, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, ctrl
}

func do(t *testing.T, srv *Server, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, srv *Server, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, srv, http.MethodPost, target, values.Encode(), "application/x-www-form-urlencoded")
}

func listTransactions(t *testing.T, srv *Server) []core.Transaction {
	t.Helper()
	rec := do(t, srv, http.MethodGet, "/api/transactions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Budget Tracker")
	assert.Contains(t, body, "$0.00")
	assert.Contains(t, body, "No transactions yet.")
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "cdn.jsdelivr.net")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, srv, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/static/app.js", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chart.destroy()")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestSubmit_AddsAndRedirects(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postForm(t, srv, "/transactions", url.Values{"name": {"Salary"}, "amount": {"1500"}, "date": {"2024-01-15"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	txs := listTransactions(t, srv)
	require.Len(t, txs, 1)
	assert.Equal(t, "Salary", txs[0].Name)
	assert.Equal(t, 1500.0, txs[0].Amount)
	assert.NotEmpty(t, txs[0].ID)

	page := do(t, srv, http.MethodGet, "/", "", "").Body.String()
	assert.Contains(t, page, "$1500.00")
	assert.Contains(t, page, "Salary")
	assert.Contains(t, page, `#4caf50`)
}

func TestSubmit_ValidationFailure(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postForm(t, srv, "/transactions", url.Values{"name": {"Coffee"}, "amount": {"abc"}, "date": {"2024-01-03"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-alert="Please provide valid transaction details."`)
	assert.Contains(t, body, `value="Coffee"`, "typed values are kept")
	assert.Empty(t, listTransactions(t, srv))

	rec = postForm(t, srv, "/transactions", url.Values{"name": {"   "}, "amount": {"5"}, "date": {"2024-01-03"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = postForm(t, srv, "/transactions", url.Values{"name": {"Lunch"}, "amount": {"5"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, listTransactions(t, srv))
}

func TestEditThenUpdateInPlace(t *testing.T) {
	srv, _ := newTestServer(t)
	postForm(t, srv, "/transactions", url.Values{"name": {"Salary"}, "amount": {"1500"}, "date": {"2024-01-15"}})
	postForm(t, srv, "/transactions", url.Values{"name": {"Rent"}, "amount": {"-800"}, "date": {"2024-01-01"}})
	id := listTransactions(t, srv)[0].ID

	rec := do(t, srv, http.MethodGet, "/transactions/"+id+"/edit", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="id" value="`+id+`"`)
	assert.Contains(t, body, `value="1500"`)
	assert.Contains(t, body, "Update")
	assert.Len(t, listTransactions(t, srv), 2, "edit does not remove the record")

	rec = postForm(t, srv, "/transactions", url.Values{"id": {id}, "name": {"Salary"}, "amount": {"1600"}, "date": {"2024-01-15"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	txs := listTransactions(t, srv)
	require.Len(t, txs, 2)
	assert.Equal(t, id, txs[0].ID, "position and id kept")
	assert.Equal(t, 1600.0, txs[0].Amount)
	assert.Equal(t, "Rent", txs[1].Name)
}

func TestEdit_UnknownID(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/transactions/missing/edit", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-alert="That transaction no longer exists."`)
}

func TestDeleteForm(t *testing.T) {
	srv, _ := newTestServer(t)
	postForm(t, srv, "/transactions", url.Values{"name": {"Coffee"}, "amount": {"-3.5"}, "date": {"2024-01-03"}})
	id := listTransactions(t, srv)[0].ID

	rec := do(t, srv, http.MethodPost, "/transactions/"+id+"/delete", "", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, listTransactions(t, srv))

	rec = do(t, srv, http.MethodPost, "/transactions/"+id+"/delete", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "second click on a stale row")
}

func TestDeleteAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	postForm(t, srv, "/transactions", url.Values{"name": {"Coffee"}, "amount": {"-3.5"}, "date": {"2024-01-03"}})
	id := listTransactions(t, srv)[0].ID

	rec := do(t, srv, http.MethodDelete, "/transactions/"+id, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/transactions/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"That transaction no longer exists."}`, rec.Body.String())
}

func TestSummaryAndChartAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	postForm(t, srv, "/transactions", url.Values{"name": {"Salary"}, "amount": {"1500"}, "date": {"2024-01-15"}})
	postForm(t, srv, "/transactions", url.Values{"name": {"Rent"}, "amount": {"-800"}, "date": {"2024-01-01"}})

	rec := do(t, srv, http.MethodGet, "/api/summary", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"gains":"$1500.00","expenses":"$800.00","net":"$700.00"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/chart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var chart struct {
		Type string `json:"type"`
		Data struct {
			Labels   []string `json:"labels"`
			Datasets []struct {
				Data            []float64 `json:"data"`
				BackgroundColor []string  `json:"backgroundColor"`
			} `json:"datasets"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Equal(t, "bar", chart.Type)
	assert.Equal(t, []string{"Salary (2024-01-15)", "Rent (2024-01-01)"}, chart.Data.Labels)
	require.Len(t, chart.Data.Datasets, 1)
	assert.Equal(t, []float64{1500, -800}, chart.Data.Datasets[0].Data)
	assert.Equal(t, []string{"#4caf50", "#f44336"}, chart.Data.Datasets[0].BackgroundColor)
}

func TestSubmitJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/transactions", `{"name":"Salary","amount":1500,"date":"2024-01-15"}`, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = do(t, srv, http.MethodPost, "/transactions", `{"id":"`+created.ID+`","name":"Salary","amount":"1600","date":"2024-01-15"}`, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/transactions", `{"name":"","amount":1,"date":"2024-01-15"}`, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Please provide valid transaction details."}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/transactions", `{"name":`, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	txs := listTransactions(t, srv)
	require.Len(t, txs, 1)
	assert.Equal(t, 1600.0, txs[0].Amount)
}

func TestReadyz_StorageDown(t *testing.T) {
	srv, _ := newTestServer(t, WithReadiness(failingPinger{}))
	rec := do(t, srv, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimitOnWrites(t *testing.T) {
	srv, _ := newTestServer(t, WithRateLimit(1))
	values := url.Values{"name": {"Coffee"}, "amount": {"-3"}, "date": {"2024-01-03"}}

	assert.Equal(t, http.StatusSeeOther, postForm(t, srv, "/transactions", values).Code)
	assert.Equal(t, http.StatusTooManyRequests, postForm(t, srv, "/transactions", values).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/", "", "").Code, "reads are not limited")
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/transactions", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, int64(1), srv.Metrics().TotalRequests)
}

func TestParseJSONBody(t *testing.T) {
	in, err := parseJSONBody(strings.NewReader(`{"name":"  Tea\u0007 ","amount":-2.25,"date":"2024-02-01"}`))
	require.NoError(t, err)
	assert.Equal(t, app.FormInput{Name: "  Tea ", Amount: "-2.25", Date: "2024-02-01"}, in)

	in, err = parseJSONBody(strings.NewReader(`{"name":"Tea","date":"2024-02-01"}`))
	require.NoError(t, err)
	assert.Empty(t, in.Amount)

	_, err = parseJSONBody(strings.NewReader(`{"name":"Tea","amount":true}`))
	assert.Error(t, err)

	_, err = parseJSONBody(strings.NewReader(`{"nome":"Tea"}`))
	assert.Error(t, err, "unknown fields rejected")
}
