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
	"context"
	"errors"
	"time"

	"TimetableAPI/internal/logger"
)

// Service runs the generation pipeline: prompt, backend call, recovery,
// shape check, persistence. It keeps no state between requests.
type Service struct {
	prompts   *PromptBuilder
	generator Generator
	persister *Persister
	store     Store
	log       *logger.Logger
}

func NewService(prompts *PromptBuilder, generator Generator, store Store, log *logger.Logger) *Service {
	return &Service{
		prompts:   prompts,
		generator: generator,
		persister: NewPersister(store),
		store:     store,
		log:       log,
	}
}

func (s *Service) call(ctx context.Context, in Instructions) (string, error) {
	start := time.Now()
	raw, err := s.generator.Generate(ctx, in)
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Err: err}
		}
		return "", err
	}
	s.log.Debug("generative backend answered", "duration_ms", time.Since(start).Milliseconds(), "chars", len(raw))
	return raw, nil
}

// attachRaw gives shape failures the model text so callers can inspect it.
func attachRaw(err error, raw string) error {
	var se *ShapeError
	if errors.As(err, &se) {
		se.Raw = raw
	}
	return err
}

// Generate produces and stores one timetable.
func (s *Service) Generate(ctx context.Context, req ScheduleRequest) (*Timetable, error) {
	raw, err := s.call(ctx, s.prompts.BuildSingle(req))
	if err != nil {
		return nil, err
	}

	payload, err := Recover(raw)
	if err != nil {
		return nil, err
	}

	days, err := ValidateSingle(payload)
	if err != nil {
		return nil, attachRaw(err, raw)
	}

	return s.persister.PersistSingle(ctx, req, days)
}

// GenerateBatch produces and stores one timetable per entry of the model's
// answer. With a PersistenceError the returned slice holds what was
// written before the failure.
func (s *Service) GenerateBatch(ctx context.Context, req BatchScheduleRequest) ([]Timetable, error) {
	raw, err := s.call(ctx, s.prompts.BuildBatch(req))
	if err != nil {
		return nil, err
	}

	payload, err := Recover(raw)
	if err != nil {
		return nil, err
	}

	entries, err := ValidateBatch(payload)
	if err != nil {
		return nil, attachRaw(err, raw)
	}
	if want := len(BatchGrades) * len(BatchDivisions); len(entries) != want {
		s.log.Warn("batch answer has an unexpected number of timetables", "got", len(entries), "want", want)
	}

	return s.persister.PersistBatch(ctx, req, entries)
}

// Recent returns the latest timetables, newest first.
func (s *Service) Recent(ctx context.Context) ([]Timetable, error) {
	return s.store.ListRecent(ctx, RecentLimit)
}
