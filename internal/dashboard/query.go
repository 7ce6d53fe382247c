package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"PriceFeed/internal/model"
)

const dateLayout = "2006-01-02"

// ErrInvalidQuery is returned for unparsable or inconsistent query parameters.
var ErrInvalidQuery = errors.New("invalid query")

// Query holds the dashboard filter inputs.
type Query struct {
	Start string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
	MA    bool   `query:"ma" json:"ma"`
	Rows  int    `query:"rows" json:"rows" default:"50" validate:"gte=1,lte=5000"`
}

var validate = validator.New()

// bindQuery binds, defaults and validates the request query string.
func bindQuery(c echo.Context) (Query, error) {
	var q Query
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, fmt.Errorf("%w: %s", ErrInvalidQuery, bindMessage(err))
	}
	if err := defaults.Set(&q); err != nil {
		return q, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if err := validate.StructCtx(c.Request().Context(), &q); err != nil {
		return q, fmt.Errorf("%w: %s", ErrInvalidQuery, validationMessage(err))
	}
	return q, nil
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprintf("%v", he.Message)
	}
	return err.Error()
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", field))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be between 1 and 5000", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation: %s", field, e.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Window resolves the chart/table time range. Without dates it covers the
// defaultDays days before the latest reading's date. End covers the whole day.
func (q Query) Window(latest time.Time, defaultDays int) (model.TimeRange, error) {
	latest = latest.UTC()
	lastDay := time.Date(latest.Year(), latest.Month(), latest.Day(), 0, 0, 0, 0, time.UTC)

	endDay := lastDay
	if q.End != "" {
		d, err := time.ParseInLocation(dateLayout, q.End, time.UTC)
		if err != nil {
			return model.TimeRange{}, fmt.Errorf("%w: end: %w", ErrInvalidQuery, err)
		}
		endDay = d
	}

	startDay := endDay.AddDate(0, 0, -defaultDays)
	if q.Start != "" {
		d, err := time.ParseInLocation(dateLayout, q.Start, time.UTC)
		if err != nil {
			return model.TimeRange{}, fmt.Errorf("%w: start: %w", ErrInvalidQuery, err)
		}
		startDay = d
	}

	if startDay.After(endDay) {
		return model.TimeRange{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidQuery,
			startDay.Format(dateLayout), endDay.Format(dateLayout))
	}
	return model.TimeRange{
		From: startDay,
		To:   endDay.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}, nil
}

// ExportRange is the range of the CSV export: only explicit dates narrow it.
func (q Query) ExportRange() (model.TimeRange, error) {
	if q.Start == "" && q.End == "" {
		return model.TimeRange{}, nil
	}
	var rng model.TimeRange
	if q.Start != "" {
		d, err := time.ParseInLocation(dateLayout, q.Start, time.UTC)
		if err != nil {
			return rng, fmt.Errorf("%w: start: %w", ErrInvalidQuery, err)
		}
		rng.From = d
	}
	if q.End != "" {
		d, err := time.ParseInLocation(dateLayout, q.End, time.UTC)
		if err != nil {
			return rng, fmt.Errorf("%w: end: %w", ErrInvalidQuery, err)
		}
		rng.To = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.From.After(rng.To) {
		return model.TimeRange{}, fmt.Errorf("%w: start is after end", ErrInvalidQuery)
	}
	return rng, nil
}
