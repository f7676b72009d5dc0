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
	"fmt"
	"strings"
)

// ConfigurationError means a required setting, such as the backend
// credential, is missing. It is raised before any network call.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// ValidationError means the request body is missing required fields.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
	}
	if e.Err != nil {
		return "invalid request body: " + e.Err.Error()
	}
	return "invalid request body"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError wraps any failure talking to the generative backend.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "generative backend call failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError means the backend answered but no JSON object could be
// recovered. Raw is the backend's text exactly as received.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return "no JSON object in model output: " + e.Err.Error()
	}
	return "no JSON object in model output"
}

func (e *FormatError) Unwrap() error { return e.Err }

// ShapeError means a JSON object was recovered but it lacks the top-level
// field for the requested mode, or that field does not decode.
type ShapeError struct {
	Field string
	Raw   string
	Err   error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model output field %q has the wrong shape: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("model output is missing the %q array", e.Field)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// PersistenceError means the store rejected a write. Written counts the
// entities committed before the failure; they are not rolled back.
type PersistenceError struct {
	Written int
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist timetable (after %d written): %v", e.Written, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
