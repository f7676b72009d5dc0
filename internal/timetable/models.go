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

import "time"

// Batch generation always covers the same grid of classes.
const (
	BatchDaysPerWeek   = 6
	BatchPeriodsPerDay = 9
)

var (
	BatchGrades    = []string{"8", "9"}
	BatchDivisions = []string{"A", "B", "C", "D"}
)

// ValidDays are the only day names the model is allowed to emit.
var ValidDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ScheduleRequest is the body of POST /generate-timetable.
type ScheduleRequest struct {
	ClassName      string `json:"className" binding:"required"`
	Division       string `json:"division" binding:"required"`
	DaysPerWeek    int    `json:"daysPerWeek" binding:"required,gt=0"`
	PeriodsPerDay  int    `json:"periodsPerDay" binding:"required,gt=0"`
	TeacherContext string `json:"teacherContext" binding:"required"`
}

// BatchScheduleRequest is the body of POST /generate-timetable-batch.
type BatchScheduleRequest struct {
	TeacherContext string `json:"teacherContext" binding:"required"`
}

// Period is one slot of a day. Teacher, Room and Note are nil when absent;
// a nil Teacher is a genuine free or self-study period, not an unknown one.
type Period struct {
	PeriodNumber int     `json:"periodNumber"`
	Subject      string  `json:"subject"`
	Teacher      *string `json:"teacher"`
	Room         *string `json:"room"`
	Note         *string `json:"note"`
}

type Day struct {
	Day     string   `json:"day"`
	Periods []Period `json:"periods"`
}

// Timetable is the persisted entity. It is never modified after Create.
type Timetable struct {
	ID             string    `json:"id"`
	ClassName      string    `json:"className"`
	Division       string    `json:"division"`
	DaysPerWeek    int       `json:"daysPerWeek"`
	PeriodsPerDay  int       `json:"periodsPerDay"`
	TeacherContext string    `json:"teacherContext"`
	Days           []Day     `json:"days"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GeneratedTimetable is one entry of the model's batch answer.
type GeneratedTimetable struct {
	ClassName string `json:"className"`
	Division  string `json:"division"`
	Days      []Day  `json:"days"`
}

// Summary is the shape echoed back by the generation endpoints.
type Summary struct {
	ClassName string `json:"className"`
	Division  string `json:"division"`
	Days      []Day  `json:"days"`
}

func (t *Timetable) Summary() Summary {
	days := t.Days
	if days == nil {
		days = []Day{}
	}
	return Summary{ClassName: t.ClassName, Division: t.Division, Days: days}
}
