package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/models"
)

const grantID = "5f0c6a8e-3d55-4d8a-9f57-0a4a3c1e2b10"

func TestListGrantsSendsDefinedFieldsOnly(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/grants", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [{"id": "` + grantID + `", "source": "jgrants", "title": "ものづくり補助金",
				"organization": "中小企業庁", "amount_max": 12500000, "application_deadline": "2026-03-01",
				"status": "open", "last_synced_at": "2026-02-01T00:00:00Z"}],
			"pagination": {"total": 45, "page": 2, "limit": 20, "total_pages": 3},
			"meta": {"sources": {"jgrants": 30, "erad": 15}, "last_synced": "2026-02-01T00:00:00Z"}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.ListGrants(context.Background(), filter.State{Status: "open", Keyword: "", Page: 2})
	require.NoError(t, err)

	assert.Equal(t, "status=open&page=2", gotQuery)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, models.SourceJGrants, resp.Data[0].Source)
	require.NotNil(t, resp.Data[0].AmountMax)
	assert.Equal(t, int64(12500000), *resp.Data[0].AmountMax)
	assert.Nil(t, resp.Data[0].AmountMin)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, 15, resp.SourceCount(models.SourceERad))
	assert.True(t, resp.Pagination.Consistent())
}

func TestGetGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/grants/"+grantID, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":         grantID,
			"source":     "erad",
			"title":      "科学研究費",
			"status":     "upcoming",
			"raw_data":   map[string]any{"code": "R-1"},
			"created_at": "2026-01-01T00:00:00Z",
			"updated_at": "2026-01-02T00:00:00Z",
		})
	}))
	defer srv.Close()

	g, err := New(srv.URL + "/").GetGrant(context.Background(), grantID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpcoming, g.Status)
	assert.Equal(t, "R-1", g.RawData["code"])
	assert.Equal(t, "2026-01-02T00:00:00Z", g.UpdatedAt)
}

func TestTriggerSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/grants/sync", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body models.SyncRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "all", body.Source)

		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"scrape_log_id": "b1d7a2a4-0c3e-4d9f-8e1a-1f2e3d4c5b6a", "message": "Sync started for all"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).TriggerSync(context.Background(), models.SyncAll)
	require.NoError(t, err)
	assert.Equal(t, "b1d7a2a4-0c3e-4d9f-8e1a-1f2e3d4c5b6a", resp.ScrapeLogID)
	assert.Equal(t, "Sync started for all", resp.Message)
}

func TestTriggerSyncRejectsUnknownSource(t *testing.T) {
	_, err := New("http://127.0.0.1:1").TriggerSync(context.Background(), "kaken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRequestFailed))
}

func TestGetSyncStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sync/status/log-1", r.URL.Path)
		w.Write([]byte(`{"id": "log-1", "source_id": "s", "started_at": "2026-02-01T00:00:00Z",
			"finished_at": "2026-02-01T00:01:00Z", "status": "success", "records_found": 12,
			"records_created": 3, "records_updated": 9}`))
	}))
	defer srv.Close()

	log, err := New(srv.URL).GetSyncStatus(context.Background(), "log-1")
	require.NoError(t, err)
	assert.True(t, log.Finished())
	assert.Equal(t, 12, log.RecordsFound)
}

func TestNonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail": "nope"}`, code)
		}))

		_, err := New(srv.URL).GetGrant(context.Background(), grantID)
		srv.Close()

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRequestFailed))
		assert.Equal(t, code, StatusCode(err))
		assert.Equal(t, "API error: "+strconv.Itoa(code), err.Error())
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.ListGrants(context.Background(), filter.Default())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.Equal(t, 0, StatusCode(err))
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListGrants(context.Background(), filter.Default())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
}
