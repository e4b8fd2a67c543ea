package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/staffplan/backend/internal/calendar"
	"github.com/staffplan/backend/internal/httputil"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/internal/types"
)

// RegisterCalendarRoutes registers the routes for the working day calendar
// with the RouterGroup that is passed.
func RegisterCalendarRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:month", OptionsCalendarMonth)
	r.GET("/:month", GetCalendarMonth)
}

type URIMonth struct {
	Month string `uri:"month" binding:"required" example:"2024-06"` // Month in YYYY-MM format
}

type CalendarQueryFilter struct {
	Percentage string `form:"percentage" example:"50"`    // Percentage to convert to days
	Days       string `form:"days" example:"10"`          // Days to convert to a percentage
	WorkDays   string `form:"workDays" example:"sun-thu"` // Work week, mon-fri if not set
}

type CalendarMonth struct {
	Month       types.Month       `json:"month" example:"2024-06"`
	WorkDays    calendar.WorkWeek `json:"workDays" example:"mon-fri"`
	DaysInMonth int               `json:"daysInMonth" example:"30"`
	WorkingDays int               `json:"workingDays" example:"20"`
	Percentage  *decimal.Decimal  `json:"percentage,omitempty" example:"50"` // Percentage, set if it was requested or converted
	Days        *decimal.Decimal  `json:"days,omitempty" example:"10"`       // Days, set if they were requested or converted
}

type CalendarMonthResponse struct {
	Data  *CalendarMonth `json:"data"`                                                                      // Working days of the month
	Error *string        `json:"error" example:"only one of the percentage and days parameters can be set"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Calendar
// @Success		204
// @Param			month	path	string	true	"Month in YYYY-MM format"
// @Router			/v1/calendar/{month} [options]
func OptionsCalendarMonth(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get calendar month
// @Description	Returns the working days of a month. With the percentage or days parameter, the value is converted to the other unit.
// @Tags			Calendar
// @Produce		json
// @Success		200			{object}	CalendarMonthResponse
// @Failure		400			{object}	CalendarMonthResponse
// @Param			month		path		string	true	"Month in YYYY-MM format"
// @Param			percentage	query		string	false	"Percentage to convert to days"
// @Param			days		query		string	false	"Days to convert to a percentage"
// @Param			workDays	query		string	false	"Work week, mon-fri or sun-thu"
// @Router			/v1/calendar/{month} [get]
func GetCalendarMonth(c *gin.Context) {
	var uri URIMonth
	if err := c.ShouldBindUri(&uri); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, CalendarMonthResponse{Error: &e})
		return
	}

	var filter CalendarQueryFilter
	if err := c.BindQuery(&filter); err != nil {
		return
	}

	m, err := calendarMonth(uri.Month, filter)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CalendarMonthResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, CalendarMonthResponse{Data: &m})
}

func calendarMonth(month string, filter CalendarQueryFilter) (CalendarMonth, error) {
	parsed, err := types.ParseMonth(month)
	if err != nil {
		return CalendarMonth{}, err
	}

	if filter.Percentage != "" && filter.Days != "" {
		return CalendarMonth{}, errConversionAmbiguous
	}

	week := calendar.MondayToFriday
	if filter.WorkDays != "" {
		week = calendar.WorkWeek(filter.WorkDays)
		if !week.Valid() {
			return CalendarMonth{}, fmt.Errorf("%w: %s", planning.ErrInvalidWorkWeek, filter.WorkDays)
		}
	}

	year, mon := parsed.Year(), parsed.Month()
	conv := calendar.For(week)

	m := CalendarMonth{
		Month:       parsed,
		WorkDays:    week,
		DaysInMonth: calendar.DaysInMonth(year, mon),
		WorkingDays: conv.WorkingDays(year, mon),
	}

	switch {
	case filter.Percentage != "":
		p, err := decimal.NewFromString(filter.Percentage)
		if err != nil {
			return CalendarMonth{}, fmt.Errorf("%w: %w", errInvalidNumber, err)
		}
		d := conv.ToDays(p, year, mon)
		m.Percentage, m.Days = &p, &d
	case filter.Days != "":
		d, err := decimal.NewFromString(filter.Days)
		if err != nil {
			return CalendarMonth{}, fmt.Errorf("%w: %w", errInvalidNumber, err)
		}
		p := conv.ToPercentage(d, year, mon)
		m.Percentage, m.Days = &p, &d
	}

	return m, nil
}
