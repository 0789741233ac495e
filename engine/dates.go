// api/engine/dates.go
package engine

import (
	"time"

	"mabletask/analytics/models"
)

// BuildDateDimension generates one calendar row per day in [start, end]
// inclusive. Pure calendar arithmetic, no dependency on events.
func BuildDateDimension(start, end time.Time) []models.DateDimension {
	start = dateOf(start)
	end = dateOf(end)
	if end.Before(start) {
		return nil
	}

	rows := make([]models.DateDimension, 0, daysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		_, isoWeek := d.ISOWeek()
		rows = append(rows, models.DateDimension{
			Date:         d,
			DateKey:      d.Year()*10000 + int(d.Month())*100 + d.Day(),
			Year:         d.Year(),
			Quarter:      (int(d.Month())-1)/3 + 1,
			Month:        int(d.Month()),
			MonthName:    d.Month().String(),
			ISOWeek:      isoWeek,
			DayOfMonth:   d.Day(),
			DayOfWeek:    mondayIndexed(d.Weekday()),
			DayName:      d.Weekday().String(),
			IsWeekend:    d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			IsMonthStart: d.Day() == 1,
			IsMonthEnd:   d.AddDate(0, 0, 1).Day() == 1,
		})
	}
	return rows
}

// mondayIndexed maps Go's Sunday-first weekday to Monday=0..Sunday=6.
func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
