/*
This project is the automatic timetable backend for the OpenSourceDUTH team. It builds weekly class timetables from teacher availability with the help of a generative model.
Timetable API Copyright (C) 2025 OpenSourceDUTH
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package timetable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecover(t *testing.T, raw string) Payload {
	t.Helper()
	p, err := Recover(raw)
	require.NoError(t, err)
	return p
}

func TestValidateSingle(t *testing.T) {
	payload := mustRecover(t, `{
		"className": "8",
		"division": "A",
		"days": [
			{"day": "Monday", "periods": [
				{"periodNumber": 1, "subject": "Assembly", "teacher": null, "room": "Hall", "note": null},
				{"periodNumber": 2, "subject": "Mathematics", "teacher": "Mrs. Rao", "room": "", "note": "double period"}
			]},
			{"day": "Funday", "periods": []}
		]
	}`)

	days, err := ValidateSingle(payload)
	require.NoError(t, err)
	require.Len(t, days, 2)

	monday := days[0]
	assert.Equal(t, "Monday", monday.Day)
	require.Len(t, monday.Periods, 2)
	assert.Nil(t, monday.Periods[0].Teacher, "null teacher is a free period")
	assert.Equal(t, strPtr("Hall"), monday.Periods[0].Room)
	assert.Equal(t, strPtr("Mrs. Rao"), monday.Periods[1].Teacher)
	assert.Equal(t, strPtr(""), monday.Periods[1].Room, "empty string is kept distinct from absent")

	// Day names are not checked.
	assert.Equal(t, "Funday", days[1].Day)
}

func TestValidateSingleShapeErrors(t *testing.T) {
	cases := map[string]string{
		"missing days":    `{"className":"8","division":"A"}`,
		"null days":       `{"days":null}`,
		"days not array":  `{"days":{"Monday":[]}}`,
		"period mistyped": `{"days":[{"day":"Monday","periods":[{"periodNumber":"one","subject":"Art"}]}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			days, err := ValidateSingle(mustRecover(t, raw))
			assert.Nil(t, days)

			var se *ShapeError
			require.True(t, errors.As(err, &se), "want ShapeError, got %T", err)
			assert.Equal(t, "days", se.Field)
		})
	}
}

func TestValidateSingleEmptyDays(t *testing.T) {
	days, err := ValidateSingle(Payload{"days": []any{}})
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestValidateBatchAcceptsAnyCount(t *testing.T) {
	for _, raw := range []string{
		`{"timetables":[]}`,
		`{"timetables":[{"className":"8","division":"A","days":[]}]}`,
		`{"timetables":[{"className":"8","division":"A","days":[]},{"className":"8","division":"A","days":[]},{"className":"X","division":"?","days":[]}]}`,
	} {
		entries, err := ValidateBatch(mustRecover(t, raw))
		require.NoError(t, err)
		assert.NotNil(t, entries)
	}
}

func TestValidateBatchShapeErrors(t *testing.T) {
	for _, raw := range []string{
		`{"days":[]}`,
		`{"timetables":"8A,8B"}`,
		`{"timetables":[{"className":8}]}`,
	} {
		_, err := ValidateBatch(mustRecover(t, raw))
		var se *ShapeError
		require.True(t, errors.As(err, &se), raw)
		assert.Equal(t, "timetables", se.Field)
	}
}
