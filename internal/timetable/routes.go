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
	"TimetableAPI/internal/auth"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the timetable endpoints. authMiddleware is nil when
// AUTH_REQUIRED is off, leaving the routes open.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, authMiddleware *auth.Middleware) {
	generate := rg.Group("")
	read := rg.Group("")
	if authMiddleware != nil {
		generate.Use(authMiddleware.RequireToken(auth.ScopeGenerate))
		read.Use(authMiddleware.RequireToken(auth.ScopeRead))
	}
	{
		generate.POST("/generate-timetable", h.GenerateTimetable)
		generate.POST("/generate-timetable-batch", h.GenerateTimetableBatch)
	}
	{
		read.GET("/timetables", h.ListTimetables)
	}
}
