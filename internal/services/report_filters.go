package services

import (
	"fmt"
	"time"

	"aguipuntos_backend/internal/repositories"
)

// DefaultTimezone is the business timezone used for calendar-day boundaries.
// All timestamps are stored in UTC; report windows are computed in this zone
// and converted before being compared against createdat.
const DefaultTimezone = "America/Argentina/Tucuman"

const reportDateLayout = "2006-01-02"

// ReportOptions are the caller-facing report parameters. From/To are calendar
// dates (YYYY-MM-DD) interpreted in the business timezone; empty From means
// today, empty To means the same day as From. UserID takes precedence over
// UserName when both are present.
type ReportOptions struct {
	From     string
	To       string
	UserID   *int64
	UserName *string
	Timezone string
}

// DailyRange is a resolved report window. Start/End are half-open instants;
// FormattedDate/StartISODate describe the first day in the business zone.
type DailyRange struct {
	Zone          *time.Location
	Start         time.Time
	End           time.Time
	FormattedDate string
	StartISODate  string
}

// ResolveTimezone loads the named zone, falling back to DefaultTimezone for
// an empty name.
func ResolveTimezone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrValidation, name)
	}
	return zone, nil
}

// StartOfDay truncates t to midnight in the given zone.
func StartOfDay(t time.Time, zone *time.Location) time.Time {
	local := t.In(zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
}

// BuildDailyRange converts the calendar-date range [from, to] into the
// half-open instant window [startOfDay(from), startOfDay(to)+1d), both in the
// business zone. Getting this conversion wrong is the classic source of
// off-by-one-day reporting bugs, hence the dedicated tests.
func BuildDailyRange(from, to, timezone string) (*DailyRange, error) {
	zone, err := ResolveTimezone(timezone)
	if err != nil {
		return nil, err
	}

	startDate := time.Now().In(zone)
	if from != "" {
		startDate, err = time.ParseInLocation(reportDateLayout, from, zone)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from date %q", ErrValidation, from)
		}
	}
	endDate := startDate
	if to != "" {
		endDate, err = time.ParseInLocation(reportDateLayout, to, zone)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to date %q", ErrValidation, to)
		}
	}

	start := StartOfDay(startDate, zone)
	end := StartOfDay(endDate.AddDate(0, 0, 1), zone)

	return &DailyRange{
		Zone:          zone,
		Start:         start,
		End:           end,
		FormattedDate: start.Format("02/01/2006"),
		StartISODate:  start.Format(reportDateLayout),
	}, nil
}

// BuildReportFilters resolves the options into repository filters with the
// window translated to UTC.
func BuildReportFilters(opts ReportOptions) (repositories.ReportFilters, *DailyRange, error) {
	dailyRange, err := BuildDailyRange(opts.From, opts.To, opts.Timezone)
	if err != nil {
		return repositories.ReportFilters{}, nil, err
	}

	filters := repositories.ReportFilters{
		Start: dailyRange.Start.UTC(),
		End:   dailyRange.End.UTC(),
	}
	if opts.UserID != nil {
		filters.UserID = opts.UserID
	} else if opts.UserName != nil && *opts.UserName != "" {
		filters.UserName = opts.UserName
	}
	return filters, dailyRange, nil
}
