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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"TimetableAPI/internal/common"
	"TimetableAPI/internal/logger"
)

const (
	MsgMissingFields   = "Missing required fields in request body."
	MsgInvalidJSON     = "Model did not return valid JSON."
	MsgInvalidShape    = "Model response did not match the expected timetable shape."
	MsgBackendFailed   = "Failed to generate timetable from Gemini."
	MsgPersistFailed   = "Failed to save timetable."
	MsgListFailed      = "Failed to fetch timetables."
	MsgUnexpectedError = "Unexpected server error."
)

// Handler holds the generation service used by the HTTP endpoints.
type Handler struct {
	svc *Service
	log *logger.Logger
}

func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// newValidationError lists the offending fields when the binding error
// comes from validator, and keeps the decode error otherwise.
func newValidationError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return &ValidationError{Fields: fields, Err: err}
	}
	return &ValidationError{Err: err}
}

func (h *Handler) reject(c *gin.Context, err error) {
	h.log.Warn("rejected generation request",
		"request_id", common.GetRequestID(c),
		"path", c.FullPath(),
		"error", newValidationError(err).Error(),
	)
	c.JSON(http.StatusBadRequest, common.CreateErrorResponse(MsgMissingFields))
}

// writeError maps pipeline failures to responses. written is only set for
// batch persistence failures.
func (h *Handler) writeError(c *gin.Context, err error, written []Timetable) {
	log := h.log.With("request_id", common.GetRequestID(c), "path", c.FullPath())

	var (
		formatErr  *FormatError
		shapeErr   *ShapeError
		transport  *TransportError
		persistErr *PersistenceError
	)

	switch {
	case errors.As(err, &formatErr):
		log.Warn("model output had no JSON object", "error", err)
		c.JSON(http.StatusOK, common.CreateRawErrorResponse(MsgInvalidJSON, formatErr.Raw))
	case errors.As(err, &shapeErr):
		log.Warn("model output had the wrong shape", "error", err)
		c.JSON(http.StatusOK, common.CreateRawErrorResponse(MsgInvalidShape, shapeErr.Raw))
	case errors.As(err, &transport):
		log.Error("Gemini error", "error", err)
		c.JSON(http.StatusInternalServerError, common.CreateErrorResponse(MsgBackendFailed))
	case errors.As(err, &persistErr):
		log.Error("timetable persistence failed", "error", err, "written", persistErr.Written)
		if written != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      MsgPersistFailed,
				"timetables": summaries(written),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, common.CreateErrorResponse(MsgPersistFailed))
	default:
		log.Error("timetable generation route error", "error", err)
		c.JSON(http.StatusInternalServerError, common.CreateErrorResponse(MsgUnexpectedError))
	}
}

func summaries(ts []Timetable) []Summary {
	out := make([]Summary, len(ts))
	for i := range ts {
		out[i] = ts[i].Summary()
	}
	return out
}

func (h *Handler) GenerateTimetable(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, err)
		return
	}

	t, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"timetable": t.Summary()})
}

func (h *Handler) GenerateTimetableBatch(c *gin.Context) {
	var req BatchScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, err)
		return
	}

	written, err := h.svc.GenerateBatch(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, written)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"timetables": summaries(written)})
}

func (h *Handler) ListTimetables(c *gin.Context) {
	timetables, err := h.svc.Recent(c.Request.Context())
	if err != nil {
		h.log.Error("fetch timetables error", "request_id", common.GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, common.CreateErrorResponse(MsgListFailed))
		return
	}
	c.JSON(http.StatusOK, gin.H{"timetables": timetables})
}
