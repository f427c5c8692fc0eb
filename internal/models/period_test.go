package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2016-08")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2016, Month: time.August}, p)
	assert.Equal(t, "2016-08", p.String())
	assert.Equal(t, "August 2016", p.Label())

	for _, bad := range []string{"", "2016", "2016-13", "08-2016", "2016/08"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestPeriodNextAcrossYear(t *testing.T) {
	dec := Period{Year: 2016, Month: time.December}
	assert.Equal(t, Period{Year: 2017, Month: time.January}, dec.Next())
	assert.Equal(t, time.Date(2016, 12, 1, 0, 0, 0, 0, time.UTC), dec.Start())
}

func TestPeriodContains(t *testing.T) {
	aug := Period{Year: 2016, Month: time.August}
	assert.True(t, aug.Contains(time.Date(2016, 8, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, aug.Contains(time.Date(2016, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, aug.Contains(time.Date(2015, 8, 10, 0, 0, 0, 0, time.UTC)))
	assert.False(t, aug.Contains(time.Time{}))
}

func TestPeriodCompare(t *testing.T) {
	a := Period{Year: 2016, Month: time.December}
	b := Period{Year: 2017, Month: time.January}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestPeriodRange(t *testing.T) {
	got := PeriodRange(Period{Year: 2016, Month: time.November}, Period{Year: 2017, Month: time.February})
	require.Len(t, got, 4)
	assert.Equal(t, "2016-11", got[0].String())
	assert.Equal(t, "2017-02", got[3].String())

	assert.Nil(t, PeriodRange(Period{Year: 2017, Month: time.January}, Period{Year: 2016, Month: time.January}))
	assert.Len(t, PeriodRange(Period{Year: 2016, Month: time.May}, Period{Year: 2016, Month: time.May}), 1)
}

func TestPeriodJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Period{"p": {Year: 2016, Month: time.September}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"2016-09"}`, string(b))

	var out struct {
		P Period `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"p":"2016-10"}`), &out))
	assert.Equal(t, Period{Year: 2016, Month: time.October}, out.P)

	assert.Error(t, json.Unmarshal([]byte(`{"p":"october"}`), &out))
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusComplete, NormalizeStatus(" Complete "))
	assert.Equal(t, StatusReturned, NormalizeStatus("RETURNED"))
	assert.Equal(t, Status(""), NormalizeStatus("   "))
}

func TestRelevantDate(t *testing.T) {
	order := time.Date(2016, 8, 1, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2016, 8, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, ret, TransactionRecord{OrderDate: order, ReturnDate: ret, Status: StatusReturned}.RelevantDate())
	assert.Equal(t, order, TransactionRecord{OrderDate: order, ReturnDate: ret, Status: StatusComplete}.RelevantDate())
	assert.Equal(t, order, TransactionRecord{OrderDate: order, Status: "pending"}.RelevantDate())
}
