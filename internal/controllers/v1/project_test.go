package v1_test

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	v1 "github.com/staffplan/backend/internal/controllers/v1"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/types"
	"github.com/staffplan/backend/test"
)

func (suite *TestSuiteStandard) TestSaveProject() {
	p := createTestProject(suite.T(), planning.Project{ID: "p-1", Name: "Apollo", StartMonth: 3})

	suite.Assert().Equal("p-1", p.Data.ID)
	suite.Assert().Equal(planning.ModePercentage, p.Data.AllocationMode, "Allocation mode defaults to percentage")
	suite.Assert().NotNil(p.Data.Positions)

	// Replace
	p = createTestProject(suite.T(), planning.Project{ID: "p-1", Name: "Gemini", AllocationMode: planning.ModeDays})
	suite.Assert().Equal("Gemini", p.Data.Name)
	suite.Assert().Equal(planning.ModeDays, p.Data.AllocationMode)
}

func (suite *TestSuiteStandard) TestSaveProjectFails() {
	invalidMonth := 12

	tests := []struct {
		name    string
		path    string
		project any
		status  int
	}{
		{"ID mismatch", "p-1", planning.Project{ID: "p-2", Name: "Apollo", StartYear: 2024}, http.StatusBadRequest},
		{"No name", "p-1", planning.Project{StartYear: 2024}, http.StatusBadRequest},
		{"Invalid end month", "p-1", planning.Project{Name: "Apollo", StartYear: 2024, EndMonth: &invalidMonth, EndYear: &invalidMonth}, http.StatusBadRequest},
		{"Invalid allocation mode", "p-1", planning.Project{Name: "Apollo", StartYear: 2024, AllocationMode: "hours"}, http.StatusBadRequest},
		{"Empty body", "p-1", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := test.Request(suite.T(), http.MethodPut, fmt.Sprintf("http://example.com/v1/projects/%s", tt.path), tt.project)
			test.AssertHTTPStatus(suite.T(), &recorder, tt.status)
			suite.Assert().NotEmpty(test.DecodeError(suite.T(), &recorder))
		})
	}
}

func (suite *TestSuiteStandard) TestDeleteProject() {
	user, project := staffedProject(suite.T(), 100)
	_ = createTestAllocation(suite.T(), v1.AllocationCreate{UserID: user.ID, ProjectID: project.ID, MonthIndex: june, PositionName: "Engineer"})

	recorder := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/projects/%s", project.ID), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Len(response.Data.Projects, 0)
	suite.Assert().Len(response.Data.Positions, 0, "Positions of the project must be deleted")
	suite.Assert().Len(response.Data.Allocations, 0, "Allocations of the project must be deleted")
	suite.Assert().Len(response.Data.Users, 1)

	recorder = test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/projects/%s", project.ID), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestPositionLines() {
	project := createTestProject(suite.T(), planning.Project{})

	lines := saveTestPositionLines(suite.T(), project.Data.ID, []planning.PositionLine{
		{
			Name:        "Engineer",
			ProjectTask: "T-100",
			Values: map[types.MonthIndex]decimal.Decimal{
				june:     decimal.NewFromInt(100),
				june + 1: decimal.NewFromInt(50),
			},
		},
		{
			ID:     "l-design",
			Name:   "Designer",
			Values: map[types.MonthIndex]decimal.Decimal{june: decimal.NewFromInt(20)},
		},
	})

	suite.Require().Len(lines.Data, 2)
	suite.Assert().Equal("Designer", lines.Data[0].Name, "Lines are sorted by name")
	suite.Assert().Equal("l-design", lines.Data[0].ID)
	suite.Assert().NotEmpty(lines.Data[1].ID, "Lines without ID must get one")
	suite.Assert().Len(lines.Data[1].Values, 2)

	recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/position-lines", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.PositionLinesResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(lines.Data, response.Data)

	// Delete a line
	recorder = test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/projects/%s/position-lines/l-design", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/projects/%s/position-lines", project.Data.ID), "")
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 1)
	suite.Assert().Equal("Engineer", response.Data[0].Name)

	recorder = test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/projects/%s/position-lines/l-design", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestPositionLinesDaysProject() {
	project := createTestProject(suite.T(), planning.Project{AllocationMode: planning.ModeDays})

	// June 2024 has 20 working days from Monday to Friday
	lines := saveTestPositionLines(suite.T(), project.Data.ID, []planning.PositionLine{
		{Name: "Engineer", Values: map[types.MonthIndex]decimal.Decimal{june: decimal.NewFromInt(10)}},
	})
	suite.Require().Len(lines.Data, 1)
	suite.Assert().True(decimal.NewFromInt(10).Equal(lines.Data[0].Values[june]))

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data.Positions, 1)
	suite.Assert().True(decimal.NewFromInt(50).Equal(response.Data.Positions[0].Percentage), "Budgets are stored as percentage")
}

func (suite *TestSuiteStandard) TestPositionLinesCapAllocations() {
	user, project := staffedProject(suite.T(), 100)
	a := createTestAllocation(suite.T(), v1.AllocationCreate{UserID: user.ID, ProjectID: project.ID, MonthIndex: june, PositionName: "Engineer"})
	suite.Require().True(decimal.NewFromInt(100).Equal(a.Data.Percentage))

	_ = saveTestPositionLines(suite.T(), project.ID, []planning.PositionLine{
		{ID: "l-1", Name: "Engineer", Values: map[types.MonthIndex]decimal.Decimal{june: decimal.NewFromInt(40)}},
	})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	var response v1.MainDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Require().Len(response.Data.Allocations, 1)
	suite.Assert().True(decimal.NewFromInt(40).Equal(response.Data.Allocations[0].Percentage))

	// Removing the month removes the allocation
	_ = saveTestPositionLines(suite.T(), project.ID, []planning.PositionLine{
		{ID: "l-1", Name: "Engineer", Values: map[types.MonthIndex]decimal.Decimal{june + 1: decimal.NewFromInt(40)}},
	})

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/main-data", "")
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data.Allocations, 0)
}

func (suite *TestSuiteStandard) TestPositionLinesFails() {
	end, endYear := 6, 2024
	project := createTestProject(suite.T(), planning.Project{EndMonth: &end, EndYear: &endYear})

	tests := []struct {
		name   string
		id     string
		lines  any
		status int
	}{
		{"Unknown project", "p-unknown", []planning.PositionLine{{Name: "Engineer"}}, http.StatusNotFound},
		{"No name", project.Data.ID, []planning.PositionLine{{Values: map[types.MonthIndex]decimal.Decimal{june: decimal.NewFromInt(10)}}}, http.StatusBadRequest},
		{"Negative value", project.Data.ID, []planning.PositionLine{{Name: "Engineer", Values: map[types.MonthIndex]decimal.Decimal{june: decimal.NewFromInt(-10)}}}, http.StatusBadRequest},
		{"After project end", project.Data.ID, []planning.PositionLine{{Name: "Engineer", Values: map[types.MonthIndex]decimal.Decimal{june + 2: decimal.NewFromInt(10)}}}, http.StatusBadRequest},
		{"Not a list", project.Data.ID, `{"name": "Engineer"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := test.Request(suite.T(), http.MethodPut, fmt.Sprintf("http://example.com/v1/projects/%s/position-lines", tt.id), tt.lines)
			test.AssertHTTPStatus(suite.T(), &recorder, tt.status)
			suite.Assert().NotEmpty(test.DecodeError(suite.T(), &recorder))
		})
	}
}
