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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const ServiceName = "automatic-timetable-backend"

type StatusResponse struct {
	Status                string `json:"status"`
	Service               string `json:"service"`
	InternalServerLatency string `json:"internal_server_latency,omitempty"`
	Uptime                string `json:"uptime,omitempty"`
}

// Uptime Logic
var startTime time.Time

func uptime() time.Duration {
	return time.Since(startTime)
}

func init() {
	startTime = time.Now()
}

// Ping Logic
func ping() time.Duration {
	start := time.Now()
	duration := time.Since(start)
	return duration
}

// Root is the plain liveness probe served at "/".
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok", Service: ServiceName})
}

func Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:                "ok",
		Service:               ServiceName,
		InternalServerLatency: ping().String(),
		Uptime:                uptime().Truncate(time.Second).String(),
	})
}

func RegisterRoutes(router *gin.Engine, api *gin.RouterGroup) {
	router.GET("/", Root)
	api.GET("/status", Status)
}
