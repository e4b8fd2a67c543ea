package calendar

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PercentageToDays converts a percentage of a full-time month to the
// rounded number of working days it represents.
//
// Months without working days convert to zero.
func PercentageToDays(percentage decimal.Decimal, year int, month time.Month, w WorkWeek) decimal.Decimal {
	workingDays := WorkingDaysInMonth(year, month, w)
	if workingDays == 0 {
		return decimal.Zero
	}

	return percentage.Div(hundred).Mul(decimal.NewFromInt(int64(workingDays))).Round(0)
}

// DaysToPercentage converts a number of working days to the percentage of
// a full-time month they represent. The result is not rounded.
//
// Months without working days convert to zero.
func DaysToPercentage(days decimal.Decimal, year int, month time.Month, w WorkWeek) decimal.Decimal {
	workingDays := WorkingDaysInMonth(year, month, w)
	if workingDays == 0 {
		return decimal.Zero
	}

	return days.Mul(hundred).Div(decimal.NewFromInt(int64(workingDays)))
}

// Converter converts between percentages and days for a fixed work week.
type Converter struct {
	WorkWeek WorkWeek
}

// Budget is the converter for position budgets, which are not tied
// to a specific user and therefore always use MondayToFriday.
var Budget = Converter{WorkWeek: MondayToFriday}

// For returns a converter for the work week.
func For(w WorkWeek) Converter {
	return Converter{WorkWeek: ParseWorkWeek(string(w))}
}

func (c Converter) ToDays(percentage decimal.Decimal, year int, month time.Month) decimal.Decimal {
	return PercentageToDays(percentage, year, month, c.WorkWeek)
}

func (c Converter) ToPercentage(days decimal.Decimal, year int, month time.Month) decimal.Decimal {
	return DaysToPercentage(days, year, month, c.WorkWeek)
}

// WorkingDays returns the working days of the month for the converter's work week.
func (c Converter) WorkingDays(year int, month time.Month) int {
	return WorkingDaysInMonth(year, month, c.WorkWeek)
}
