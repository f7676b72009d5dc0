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
	"encoding/json"
	"errors"
)

const (
	fieldDays       = "days"
	fieldTimetables = "timetables"
)

// decodeArray requires payload[field] to be a JSON array and decodes it
// into out. Only the top-level shape and Go types are checked: day names,
// period numbering and entry counts are left to the prompt.
func decodeArray(payload Payload, field string, out any) error {
	value, ok := payload[field]
	if !ok || value == nil {
		return &ShapeError{Field: field}
	}
	if _, ok := value.([]any); !ok {
		return &ShapeError{Field: field, Err: errors.New("not an array")}
	}

	buf, err := json.Marshal(value)
	if err != nil {
		return &ShapeError{Field: field, Err: err}
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return &ShapeError{Field: field, Err: err}
	}
	return nil
}

// ValidateSingle accepts a payload carrying a "days" array.
func ValidateSingle(payload Payload) ([]Day, error) {
	days := []Day{}
	if err := decodeArray(payload, fieldDays, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// ValidateBatch accepts a payload carrying a "timetables" array of any
// length, including empty.
func ValidateBatch(payload Payload) ([]GeneratedTimetable, error) {
	entries := []GeneratedTimetable{}
	if err := decodeArray(payload, fieldTimetables, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
