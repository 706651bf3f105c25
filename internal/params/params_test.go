package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expahub/exchange-funnel/internal/models"
)

func validFilters() models.FilterSet {
	return models.FilterSet{
		ExchangeType: models.Outgoing,
		Programmes:   models.AllProgrammes,
		EntityID:     1585,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Interval:     "month",
	}
}

func TestParseEntityID(t *testing.T) {
	id, err := ParseEntityID("1585")
	require.NoError(t, err)
	assert.Equal(t, 1585, id)

	for _, raw := range []string{"", "abc", "12.5", "-3", "0"} {
		_, err := ParseEntityID(raw)
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr, "raw=%q", raw)
	}
}

func TestParseExchangeType(t *testing.T) {
	et, err := ParseExchangeType("Outgoing")
	require.NoError(t, err)
	assert.Equal(t, models.Outgoing, et)

	et, err = ParseExchangeType("Incoming")
	require.NoError(t, err)
	assert.Equal(t, models.Incoming, et)

	_, err = ParseExchangeType("Sideways")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestResolveExchangeTypeLookup(t *testing.T) {
	fs := validFilters()
	v, err := Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, "person", v.Get("exchange_type"))
	assert.Equal(t, "person", v.Get("histogram[type]"))

	fs.ExchangeType = models.Incoming
	v, err = Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, "opportunity", v.Get("exchange_type"))
	assert.Equal(t, "opportunity", v.Get("histogram[type]"))
}

func TestResolveParams(t *testing.T) {
	v, err := Resolve(validFilters())
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", v.Get("start_date"))
	assert.Equal(t, "2024-12-31", v.Get("end_date"))
	assert.Equal(t, "month", v.Get("histogram[interval]"))
	assert.Equal(t, "1585", v.Get("histogram[office_id]"))
	assert.Equal(t, []string{"6", "7", "8"}, v["programmes[]"])
}

func TestResolveEmptyProgrammes(t *testing.T) {
	fs := validFilters()
	fs.Programmes = nil
	v, err := Resolve(fs)
	require.NoError(t, err)
	assert.NotContains(t, v, "programmes[]")
}

func TestResolveDefaultsInterval(t *testing.T) {
	fs := validFilters()
	fs.Interval = ""
	v, err := Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, "month", v.Get("histogram[interval]"))
}

func TestResolveRejectsBadEntity(t *testing.T) {
	fs := validFilters()
	fs.EntityID = 0
	_, err := Resolve(fs)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}

// The original never checked date ordering; the upstream API arbitrates.
func TestResolveAllowsReversedDates(t *testing.T) {
	fs := validFilters()
	fs.StartDate, fs.EndDate = fs.EndDate, fs.StartDate
	_, err := Resolve(fs)
	require.NoError(t, err)
}
