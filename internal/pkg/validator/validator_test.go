package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.False(t, IsEmpty("x"))
}

func TestIsValidEmployeeNumber(t *testing.T) {
	assert.True(t, IsValidEmployeeNumber("100234"))
	assert.True(t, IsValidEmployeeNumber("123"))
	assert.False(t, IsValidEmployeeNumber("12"))
	assert.False(t, IsValidEmployeeNumber("EMP-100234"))
	assert.False(t, IsValidEmployeeNumber(""))
}

func TestIsValidDate(t *testing.T) {
	date, ok := IsValidDate("2026-08-29")
	assert.True(t, ok)
	assert.Equal(t, 2026, date.Year())

	_, ok = IsValidDate("29-08-2026")
	assert.False(t, ok)

	_, ok = IsValidDate("2026-02-30")
	assert.False(t, ok)
}

func TestCoordinateRanges(t *testing.T) {
	assert.True(t, IsValidLatitude(14.5547))
	assert.True(t, IsValidLatitude(-90))
	assert.False(t, IsValidLatitude(91))

	assert.True(t, IsValidLongitude(121.0244))
	assert.True(t, IsValidLongitude(180))
	assert.False(t, IsValidLongitude(-181))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "start_date", Message: "start_date is required"},
		{Field: "end_date", Message: "end_date is required"},
	}
	assert.Equal(t, "start_date: start_date is required; end_date: end_date is required", errs.Error())
	assert.Len(t, errs.ToMap(), 2)
}
