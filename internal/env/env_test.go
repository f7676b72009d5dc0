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

package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Run("missing keys fall back to defaults", func(t *testing.T) {
		assert.Equal(t, "4000", GetEnv("TIMETABLE_TEST_UNSET", "4000"))
		assert.Equal(t, 7, GetInt("TIMETABLE_TEST_UNSET", 7))
		assert.True(t, GetBool("TIMETABLE_TEST_UNSET", true))
		assert.Equal(t, time.Second, GetDuration("TIMETABLE_TEST_UNSET", time.Second))
	})

	t.Run("unparsable values fall back to defaults", func(t *testing.T) {
		t.Setenv("TIMETABLE_TEST_INT", "six")
		t.Setenv("TIMETABLE_TEST_BOOL", "maybe")
		t.Setenv("TIMETABLE_TEST_DURATION", "soon")

		assert.Equal(t, 9, GetInt("TIMETABLE_TEST_INT", 9))
		assert.False(t, GetBool("TIMETABLE_TEST_BOOL", false))
		assert.Equal(t, time.Minute, GetDuration("TIMETABLE_TEST_DURATION", time.Minute))
	})

	t.Run("set values win", func(t *testing.T) {
		t.Setenv(EnvPort, "8080")
		t.Setenv(EnvAuthRequired, "true")
		t.Setenv(EnvShutdownTimeout, "3s")

		assert.Equal(t, "8080", GetEnv(EnvPort, "4000"))
		assert.True(t, GetBool(EnvAuthRequired, false))
		assert.Equal(t, 3*time.Second, GetDuration(EnvShutdownTimeout, time.Second))
	})
}

func TestGetList(t *testing.T) {
	t.Setenv(EnvCORSOrigin, " http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, GetList(EnvCORSOrigin, nil))

	t.Setenv(EnvCORSOrigin, " , ")
	assert.Equal(t, []string{"fallback"}, GetList(EnvCORSOrigin, []string{"fallback"}))
}
