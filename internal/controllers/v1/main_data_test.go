package v1_test

import (
	"net/http"
	"time"

	"github.com/staffplan/backend/internal/cache"
	v1 "github.com/staffplan/backend/internal/controllers/v1"
	"github.com/staffplan/backend/internal/merge"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/test"
)

func (suite *TestSuiteStandard) TestMainDataDefault() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Nil(response.Error)
	suite.Assert().Equal(planning.SchemaVersion, response.Data.SchemaVersion)
	suite.Assert().NotNil(response.Data.Users)
	suite.Assert().Len(response.Data.Users, 0)
	suite.Assert().Equal("database", recorder.Header().Get("x-data-source"))
	suite.Assert().NotEmpty(recorder.Header().Get("etag"))
}

func (suite *TestSuiteStandard) TestMainDataNotModified() {
	_ = createTestUser(suite.T(), planning.User{})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	etag := recorder.Header().Get("etag")

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "", map[string]string{"If-None-Match": etag})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotModified)

	// A change results in a new ETag
	_ = createTestUser(suite.T(), planning.User{Name: "Grace Hopper"})
	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "", map[string]string{"If-None-Match": etag})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	suite.Assert().NotEqual(etag, recorder.Header().Get("etag"))
}

func (suite *TestSuiteStandard) TestMainDataSave() {
	_ = createTestUser(suite.T(), planning.User{ID: "u-1", Name: "Ada Lovelace"})

	body := map[string]any{
		"users": []map[string]any{
			{"id": "u-1", "department": "Engineering"},
			{"id": "u-2", "name": "Grace Hopper"},
		},
	}

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data.Users, 2)
	suite.Assert().Equal("Ada Lovelace", response.Data.Users[0].Name, "Fields that are not sent must be kept")
	suite.Assert().Equal("Engineering", response.Data.Users[0].Department)
	suite.Assert().Equal("Grace Hopper", response.Data.Users[1].Name)
	suite.Assert().NotNil(response.Data.LastModified)
}

func (suite *TestSuiteStandard) TestMainDataSaveFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Empty body", "", http.StatusBadRequest},
		{"Not an object", `[{"id": "u-1"}]`, http.StatusBadRequest},
		{"Broken JSON", `{"users": [`, http.StatusBadRequest},
		{"User without name", `{"users": [{"id": "u-1"}]}`, http.StatusBadRequest},
		{"Invalid work week", `{"users": [{"id": "u-1", "name": "Ada", "workDays": "sat-wed"}]}`, http.StatusBadRequest},
		{"Negative allocation", `{"allocations": [{"id": "a-1", "userId": "u-1", "projectId": "p-1", "monthIndex": 5, "percentage": -50}]}`, http.StatusBadRequest},
		{"Negative position budget", `{"positions": [{"id": "pos", "projectId": "p-1", "monthIndex": 5, "name": "Engineer", "percentage": -100}]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", tt.body)
			test.AssertHTTPStatus(suite.T(), &recorder, tt.status)
			suite.Assert().NotEmpty(test.DecodeError(suite.T(), &recorder))
		})
	}
}

func (suite *TestSuiteStandard) TestMainDataStaleWrite() {
	_ = createTestUser(suite.T(), planning.User{ID: "u-1"})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	loaded := response.Data.LastModified.Format(time.RFC3339Nano)

	stale := response.Data.LastModified.Add(-time.Hour).Format(time.RFC3339Nano)
	body := `{"users": [{"id": "u-1", "name": "Changed"}]}`

	// Stale version is rejected
	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", body, map[string]string{"x-client-lastmodified": stale})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusPreconditionFailed)

	// Unless the check is bypassed
	time.Sleep(2 * time.Millisecond)
	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", body, map[string]string{"x-client-lastmodified": stale, "x-bypass-concurrency": "true"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	// The version loaded before the bypassed write is now stale, too
	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", body, map[string]string{"x-client-lastmodified": loaded})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusPreconditionFailed)

	// Invalid header
	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", body, map[string]string{"x-client-lastmodified": "yesterday"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMainDataCurrentVersion() {
	_ = createTestUser(suite.T(), planning.User{ID: "u-1"})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", `{"users": [{"id": "u-1", "name": "Changed"}]}`, map[string]string{"x-client-lastmodified": response.Data.LastModified.Format(time.RFC3339Nano)})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
}

func (suite *TestSuiteStandard) TestMainDataStrictMode() {
	v1.Configure(cache.NewMemory(), merge.ModeStrict)
	_ = createTestUser(suite.T(), planning.User{ID: "u-1"})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", `{"users": []}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)

	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", `{"users": []}`, map[string]string{"x-allow-deletions": "true"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data.Users, 0)
}

func (suite *TestSuiteStandard) TestMainDataEmptyNotPersisted() {
	_ = createTestUser(suite.T(), planning.User{ID: "u-1"})

	// Normal mode replaces with the empty list, but an empty document is not saved
	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", `{"users": []}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data.Users, 1)
}

func (suite *TestSuiteStandard) TestMainDataFromMirror() {
	_ = createTestUser(suite.T(), planning.User{ID: "u-1"})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	suite.CloseDB()

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	suite.Assert().Equal("cache", recorder.Header().Get("x-data-source"))

	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data.Users, 1)

	// Writes are never served from the mirror
	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/main-data", `{"users": [{"id": "u-2", "name": "Grace"}]}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusServiceUnavailable)
}

func (suite *TestSuiteStandard) TestMainDataDBError() {
	suite.CloseDB()

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusServiceUnavailable)
	suite.Assert().Contains(test.DecodeError(suite.T(), &recorder), "the data store is currently unavailable")
}
