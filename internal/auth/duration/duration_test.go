package duration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	cases := []struct {
		in   string
		want Spec
	}{
		{"1d 3h 25m", Spec{Days: 1, Hours: 3, Minutes: 25}},
		{"1d", Spec{Days: 1}},
		{"3h", Spec{Hours: 3}},
		{"25m", Spec{Minutes: 25}},
		{"1d3h25m", Spec{Days: 1, Hours: 3, Minutes: 25}},
		{"2h  30m ", Spec{Hours: 2, Minutes: 30}},
		{"730d", Spec{Days: 730}},
		{"0d 0h 1m", Spec{Minutes: 1}},
		{"23h 59m", Spec{Hours: 23, Minutes: 59}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		in     string
		reason Reason
		field  string
	}{
		{"", ReasonNoUnit, ""},
		{"0d 0h 0m", ReasonNoUnit, ""},
		{"25h", ReasonOutOfRange, "hours"},
		{"60m", ReasonOutOfRange, "minutes"},
		{"731d", ReasonOutOfRange, "days"},
		{"3h 1d", ReasonSyntax, ""},
		{"1w", ReasonSyntax, ""},
		{"1d 3h 25m extra", ReasonSyntax, ""},
		{" 1d", ReasonSyntax, ""},
		{"100h", ReasonSyntax, ""},
		{"1000d", ReasonSyntax, ""},
		{"-1d", ReasonSyntax, ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := Parse(tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDuration))

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.reason, perr.Reason)
			assert.Equal(t, tc.field, perr.Field)
			assert.NotEmpty(t, perr.Error())
		})
	}
}

func TestErrorMessagesNameTheField(t *testing.T) {
	_, err := Parse("25h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hours")

	_, err = Parse("731d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "730")
}

func TestSpecDuration(t *testing.T) {
	spec := Spec{Days: 1, Hours: 3, Minutes: 25}
	assert.Equal(t, 27*time.Hour+25*time.Minute, spec.Duration())
	assert.Equal(t, "1d 3h 25m", spec.String())

	again, err := Parse(spec.String())
	require.NoError(t, err)
	assert.Equal(t, spec, again)
}
