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

import "context"

// Persister is the only component that creates Timetable entities.
type Persister struct {
	store Store
}

func NewPersister(store Store) *Persister {
	return &Persister{store: store}
}

// PersistSingle stores the validated days together with the request's
// parameters.
func (p *Persister) PersistSingle(ctx context.Context, req ScheduleRequest, days []Day) (*Timetable, error) {
	t := &Timetable{
		ClassName:      req.ClassName,
		Division:       req.Division,
		DaysPerWeek:    req.DaysPerWeek,
		PeriodsPerDay:  req.PeriodsPerDay,
		TeacherContext: req.TeacherContext,
		Days:           days,
	}
	if err := p.store.Create(ctx, t); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return t, nil
}

// PersistBatch writes one entity per entry, in order. Writes are
// independent: on failure the entities already written stay committed and
// are returned alongside the error.
func (p *Persister) PersistBatch(ctx context.Context, req BatchScheduleRequest, entries []GeneratedTimetable) ([]Timetable, error) {
	written := make([]Timetable, 0, len(entries))
	for _, entry := range entries {
		t := &Timetable{
			ClassName:      entry.ClassName,
			Division:       entry.Division,
			DaysPerWeek:    BatchDaysPerWeek,
			PeriodsPerDay:  BatchPeriodsPerDay,
			TeacherContext: req.TeacherContext,
			Days:           entry.Days,
		}
		if err := p.store.Create(ctx, t); err != nil {
			return written, &PersistenceError{Written: len(written), Err: err}
		}
		written = append(written, *t)
	}
	return written, nil
}
