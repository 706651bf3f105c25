// Package params resolves user-chosen filters into the query parameters the
// upstream analytics API expects. Resolution is a pure transform: no side
// effects, and any failure here halts the render before network access.
package params

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/expahub/exchange-funnel/internal/models"
)

// InputError is a validation failure in user-supplied filters. It is fatal
// for the render and must be raised before the fetcher is ever invoked.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var exchangeTypeParam = map[models.ExchangeType]string{
	models.Outgoing: "person",
	models.Incoming: "opportunity",
}

var programmeParam = map[models.Programme]int{
	models.GlobalVolunteer: 6,
	models.GlobalTalent:    7,
	models.GlobalTeacher:   8,
}

var validate = validator.New()

// ParseEntityID parses the raw entity id field. Anything that is not a
// positive integer is an InputError.
func ParseEntityID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &InputError{Field: "entity_id", Reason: "must be a numeric entity id"}
	}
	if id <= 0 {
		return 0, &InputError{Field: "entity_id", Reason: "must be positive"}
	}
	return id, nil
}

// ParseExchangeType maps the user-facing name to the enum, rejecting
// anything outside the two-entry set.
func ParseExchangeType(raw string) (models.ExchangeType, error) {
	switch models.ExchangeType(strings.TrimSpace(raw)) {
	case models.Outgoing:
		return models.Outgoing, nil
	case models.Incoming:
		return models.Incoming, nil
	}
	return "", &InputError{Field: "exchange_type", Reason: "must be Outgoing or Incoming"}
}

// Resolve turns a FilterSet into the upstream query parameters. The end date
// is intentionally not checked against the start date; the upstream API is
// the arbiter of odd ranges.
func Resolve(fs models.FilterSet) (url.Values, error) {
	if fs.Interval == "" {
		fs.Interval = "month"
	}
	if err := validate.Struct(fs); err != nil {
		return nil, &InputError{Field: "filters", Reason: err.Error()}
	}

	et := exchangeTypeParam[fs.ExchangeType]
	v := url.Values{}
	v.Set("start_date", fs.StartDate.Format("2006-01-02"))
	v.Set("end_date", fs.EndDate.Format("2006-01-02"))
	v.Set("histogram[type]", et)
	v.Set("histogram[interval]", fs.Interval)
	v.Set("exchange_type", et)
	v.Set("histogram[office_id]", strconv.Itoa(fs.EntityID))
	for _, p := range fs.Programmes {
		v.Add("programmes[]", strconv.Itoa(programmeParam[p]))
	}
	return v, nil
}
