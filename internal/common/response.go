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

package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RawErrorResponse is returned when the model answered with text that could
// not be used. Raw is the model's literal output.
type RawErrorResponse struct {
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

func CreateErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

func CreateRawErrorResponse(message, raw string) RawErrorResponse {
	return RawErrorResponse{Error: message, Raw: raw}
}

// GetRequestID returns the id set by RequestID, generating one when the
// middleware did not run.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(ContextKeyRequestID); id != "" {
		return id
	}
	return uuid.New().String()
}
