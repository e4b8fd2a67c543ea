package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/staffplan/backend/internal/controllers/v1"
	"github.com/staffplan/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestRoot() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.Response
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Equal("http://example.com/v1/main-data", response.Links.MainData)
	suite.Assert().Equal("http://example.com/v1/monthly-allocations", response.Links.MonthlyAllocations)
	suite.Assert().Equal("http://example.com/v1/calendar", response.Links.Calendar)
}

func (suite *TestSuiteStandard) TestRootOptions() {
	recorder := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
	suite.Assert().Equal("OPTIONS, GET, DELETE", recorder.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestCleanup() {
	user, project := staffedProject(suite.T(), 100)
	_ = createTestAllocation(suite.T(), v1.AllocationCreate{UserID: user.ID, ProjectID: project.ID, MonthIndex: june, PositionName: "Engineer"})

	// Delete
	recorder := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	// Verify
	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Len(response.Data.Users, 0)
	suite.Assert().Len(response.Data.Projects, 0)
	suite.Assert().Len(response.Data.Positions, 0)
	suite.Assert().Len(response.Data.Allocations, 0)
}

func (suite *TestSuiteStandard) TestCleanupFails() {
	tests := []struct {
		name string
		path string
	}{
		{"Invalid path", "confirm=2"},
		{"Confirmation wrong", "confirm=invalid-confirmation"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1?%s", tt.path), "")
			test.AssertHTTPStatus(t, &recorder, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestCleanupDBError() {
	suite.CloseDB()

	recorder := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusServiceUnavailable)
}

func (suite *TestSuiteStandard) TestOptions() {
	tests := []struct {
		path  string
		allow string
	}{
		{"http://example.com/v1/main-data", "OPTIONS, GET, POST"},
		{"http://example.com/v1/monthly-allocations/2024-5", "OPTIONS, GET, POST"},
		{"http://example.com/v1/lock-states/2024-5", "OPTIONS, GET, POST"},
		{"http://example.com/v1/allocations", "OPTIONS, POST"},
		{"http://example.com/v1/allocations/a-1", "OPTIONS, PATCH, DELETE"},
		{"http://example.com/v1/projects/p-1", "OPTIONS, PUT, DELETE"},
		{"http://example.com/v1/projects/p-1/position-lines", "OPTIONS, GET, PUT"},
		{"http://example.com/v1/projects/p-1/position-lines/l-1", "OPTIONS, DELETE"},
		{"http://example.com/v1/users/u-1", "OPTIONS, PUT, DELETE"},
		{"http://example.com/v1/entities/e-1", "OPTIONS, PUT, DELETE"},
		{"http://example.com/v1/grid", "OPTIONS, GET"},
		{"http://example.com/v1/calendar/2024-06", "OPTIONS, GET"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.path, func(t *testing.T) {
			recorder := test.Request(t, http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &recorder, http.StatusNoContent)
			assert.Equal(t, tt.allow, recorder.Header().Get("allow"))
		})
	}
}
