package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	v1 "github.com/staffplan/backend/internal/controllers/v1"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/types"
	"github.com/staffplan/backend/test"
)

// June 2024
const june = types.MonthIndex(5)

func createTestUser(t *testing.T, u planning.User, expectedStatus ...int) v1.UserResponse {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	if u.Name == "" {
		u.Name = "Ada Lovelace"
	}

	// Default to 200 OK as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusOK)
	}

	r := test.Request(t, http.MethodPut, fmt.Sprintf("http://example.com/v1/users/%s", u.ID), u)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.UserResponse
	test.DecodeResponse(t, &r, &response)

	return response
}

func createTestProject(t *testing.T, p planning.Project, expectedStatus ...int) v1.ProjectResponse {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if p.Name == "" {
		p.Name = "Apollo"
	}

	if p.StartYear == 0 {
		p.StartYear = 2024
	}

	// Default to 200 OK as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusOK)
	}

	r := test.Request(t, http.MethodPut, fmt.Sprintf("http://example.com/v1/projects/%s", p.ID), p)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.ProjectResponse
	test.DecodeResponse(t, &r, &response)

	return response
}

func saveTestPositionLines(t *testing.T, projectID string, lines []planning.PositionLine, expectedStatus ...int) v1.PositionLinesResponse {
	// Default to 200 OK as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusOK)
	}

	r := test.Request(t, http.MethodPut, fmt.Sprintf("http://example.com/v1/projects/%s/position-lines", projectID), lines)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.PositionLinesResponse
	test.DecodeResponse(t, &r, &response)

	return response
}

func createTestAllocation(t *testing.T, a v1.AllocationCreate, expectedStatus ...int) v1.AllocationResponse {
	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations", a)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.AllocationResponse
	test.DecodeResponse(t, &r, &response)

	return response
}

// staffedProject creates a user and a project with an "Engineer" position
// of the given percentage in June 2024.
func staffedProject(t *testing.T, percentage int64) (planning.User, planning.Project) {
	user := createTestUser(t, planning.User{})
	project := createTestProject(t, planning.Project{})

	_ = saveTestPositionLines(t, project.Data.ID, []planning.PositionLine{
		{
			ID:     "l-1",
			Name:   "Engineer",
			Values: map[types.MonthIndex]decimal.Decimal{june: decimal.NewFromInt(percentage)},
		},
	})

	return *user.Data, *project.Data
}

func lockMonth(t *testing.T, key string) {
	r := test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/lock-states/%s", key), v1.LockStateEditable{IsLocked: true, LockedBy: "ada@example.com"})
	test.AssertHTTPStatus(t, &r, http.StatusOK)
}
