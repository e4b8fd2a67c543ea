package v1_test

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/calendar"
	v1 "github.com/staffplan/backend/internal/controllers/v1"
	"github.com/staffplan/backend/test"
)

func (suite *TestSuiteStandard) TestCalendarMonth() {
	tests := []struct {
		name        string
		query       string
		workDays    calendar.WorkWeek
		workingDays int
		percentage  *decimal.Decimal
		days        *decimal.Decimal
	}{
		{"Plain", "", calendar.MondayToFriday, 20, nil, nil},
		{"Percentage to days", "?percentage=50", calendar.MondayToFriday, 20, decimalRef(50), decimalRef(10)},
		{"Days to percentage", "?days=10", calendar.MondayToFriday, 20, decimalRef(50), decimalRef(10)},
		{"Sunday to Thursday", "?workDays=sun-thu", calendar.SundayToThursday, 21, nil, nil},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/calendar/2024-06"+tt.query, "")
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

			var response v1.CalendarMonthResponse
			test.DecodeResponse(suite.T(), &recorder, &response)

			suite.Assert().Equal("2024-06", response.Data.Month.String())
			suite.Assert().Equal(tt.workDays, response.Data.WorkDays)
			suite.Assert().Equal(30, response.Data.DaysInMonth)
			suite.Assert().Equal(tt.workingDays, response.Data.WorkingDays)

			if tt.percentage == nil {
				suite.Assert().Nil(response.Data.Percentage)
				suite.Assert().Nil(response.Data.Days)
				return
			}

			suite.Require().NotNil(response.Data.Percentage)
			suite.Require().NotNil(response.Data.Days)
			suite.Assert().True(tt.percentage.Equal(*response.Data.Percentage), response.Data.Percentage.String())
			suite.Assert().True(tt.days.Equal(*response.Data.Days), response.Data.Days.String())
		})
	}
}

func (suite *TestSuiteStandard) TestCalendarMonthFails() {
	tests := []struct {
		name  string
		path  string
		error string
	}{
		{"Invalid month", "June", ""},
		{"Both values", "2024-06?percentage=50&days=10", "only one of the percentage and days parameters can be set"},
		{"Invalid work week", "2024-06?workDays=sat-wed", "sat-wed"},
		{"Invalid percentage", "2024-06?percentage=half", "the value is not a valid number"},
		{"Invalid days", "2024-06?days=ten", "the value is not a valid number"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/calendar/"+tt.path, "")
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
			suite.Assert().Contains(test.DecodeError(suite.T(), &recorder), tt.error)
		})
	}
}

func decimalRef(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
