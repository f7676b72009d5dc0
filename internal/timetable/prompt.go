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

// Instructions is what the generative backend receives for one request.
type Instructions struct {
	System string
	User   string
}

// Rules holds the school's fixed placements. They are written into every
// system instruction; nothing checks the model's answer against them.
type Rules struct {
	AssemblyDays        []string
	DoublePeriodSubject string
	DoublePeriodDays    int
	WeeklyTestDay       string
	ActivityDays        []string
	SharedSlotSubject   string
	SyncedSubject       string
	SyncedPairs         [][2]string
}

func DefaultRules() Rules {
	return Rules{
		AssemblyDays:        []string{"Monday", "Friday"},
		DoublePeriodSubject: "Mathematics",
		DoublePeriodDays:    3,
		WeeklyTestDay:       "Saturday",
		ActivityDays:        []string{"Wednesday", "Friday"},
		SharedSlotSubject:   "Physical Education",
		SyncedSubject:       "Second Language",
		SyncedPairs:         [][2]string{{"A", "B"}, {"C", "D"}},
	}
}

// PromptBuilder turns requests into instruction pairs. It does no
// validation; callers reject bad input first.
type PromptBuilder struct {
	rules Rules
}

func NewPromptBuilder(rules Rules) *PromptBuilder {
	return &PromptBuilder{rules: rules}
}

const periodShape = `{
          "periodNumber": number,
          "subject": string,
          "teacher": string | null,
          "room": string | null,
          "note": string | null
        }`

func dayNames() string {
	quoted := make([]string, len(ValidDays))
	for i, d := range ValidDays {
		quoted[i] = `"` + d + `"`
	}
	return strings.Join(quoted, " | ")
}

func (b *PromptBuilder) constraints(batch bool) string {
	r := b.rules
	var sb strings.Builder

	sb.WriteString("HARD CONSTRAINTS (DO NOT VIOLATE):\n")
	sb.WriteString("- A teacher cannot be assigned to more than one class or division in the same day and period.\n")
	sb.WriteString("- Respect each teacher's availability and subject expertise given in the context.\n")
	sb.WriteString("- Each subject must appear exactly as many times per week as its weekly quota in the context.\n")
	fmt.Fprintf(&sb, "- Assembly is period 1 and happens only on %s.\n", strings.Join(r.AssemblyDays, " and "))
	fmt.Fprintf(&sb, "- %s is a consecutive double period taking periods 1 and 2 on exactly %d days of the week.\n",
		r.DoublePeriodSubject, r.DoublePeriodDays)
	fmt.Fprintf(&sb, "- The weekly test is a fixed block of periods 1, 2 and 3 on %s.\n", r.WeeklyTestDay)
	fmt.Fprintf(&sb, "- The last period on %s is an \"Activity\" period.\n", strings.Join(r.ActivityDays, " and "))
	fmt.Fprintf(&sb, "- %s uses the same day and period for every division of the same grade.\n", r.SharedSlotSubject)
	pairs := make([]string, len(r.SyncedPairs))
	for i, p := range r.SyncedPairs {
		pairs[i] = p[0] + "+" + p[1]
	}
	fmt.Fprintf(&sb, "- %s periods are synchronized across the paired divisions %s.\n",
		r.SyncedSubject, strings.Join(pairs, ", "))
	if batch {
		sb.WriteString("- All timetables are generated together, so the no-double-booking rule applies across every class and division.\n")
	}
	sb.WriteString("- Use a null teacher only for a genuine free or self-study period.\n")
	sb.WriteString("- If a slot is impossible to fill, leave it with a note; never invent availability.\n")
	return sb.String()
}

func timetableShape(indent string) string {
	shape := fmt.Sprintf(`{
  "className": string,
  "division": string,
  "days": [
    {
      "day": %s,
      "periods": [
        %s
      ]
    }
  ]
}`, dayNames(), periodShape)
	return strings.ReplaceAll(shape, "\n", "\n"+indent)
}

// BuildSingle returns instructions for one class and division.
func (b *PromptBuilder) BuildSingle(req ScheduleRequest) Instructions {
	var sys strings.Builder
	sys.WriteString("You are an expert school timetable generator.\n")
	sys.WriteString("You must generate a weekly timetable for ONE specific class and division.\n\n")
	sys.WriteString(b.constraints(false))
	sys.WriteString("\nOUTPUT FORMAT:\n")
	sys.WriteString("Return ONLY a single JSON object, no explanations, no markdown.\n")
	sys.WriteString("Use exactly this structure:\n")
	sys.WriteString(timetableShape(""))
	sys.WriteString("\n\nNumber of days = daysPerWeek from the user.\n")
	sys.WriteString("Number of periods in each day = periodsPerDay from the user, numbered from 1.\n")

	user := fmt.Sprintf(`Generate a conflict-free timetable for the following:

Class: %s
Division: %s
Days per week: %d
Periods per day: %d

Teacher and availability context (subjects, free slots, constraints):
%s

Remember: respond with ONLY valid JSON that matches the specified structure. Do not add markdown or explanations.
`, req.ClassName, req.Division, req.DaysPerWeek, req.PeriodsPerDay, req.TeacherContext)

	return Instructions{System: sys.String(), User: user}
}

// BatchClasses lists the grade/division pairs a batch request covers.
func BatchClasses() []string {
	var out []string
	for _, g := range BatchGrades {
		for _, d := range BatchDivisions {
			out = append(out, g+d)
		}
	}
	return out
}

// BuildBatch returns instructions for the whole fixed grid of classes.
func (b *PromptBuilder) BuildBatch(req BatchScheduleRequest) Instructions {
	var sys strings.Builder
	sys.WriteString("You are an expert school timetable generator.\n")
	fmt.Fprintf(&sys, "You must generate weekly timetables for grades %s, divisions %s: %d timetables in total.\n\n",
		strings.Join(BatchGrades, " and "), strings.Join(BatchDivisions, ", "), len(BatchGrades)*len(BatchDivisions))
	sys.WriteString(b.constraints(true))
	sys.WriteString("\nOUTPUT FORMAT:\n")
	sys.WriteString("Return ONLY a single JSON object, no explanations, no markdown.\n")
	sys.WriteString("Use exactly this structure, with one entry per class and division:\n")
	sys.WriteString("{\n  \"timetables\": [\n    ")
	sys.WriteString(timetableShape("    "))
	sys.WriteString("\n  ]\n}\n\n")
	fmt.Fprintf(&sys, "Every timetable has %d days and %d periods per day, numbered from 1.\n",
		BatchDaysPerWeek, BatchPeriodsPerDay)

	user := fmt.Sprintf(`Generate conflict-free timetables for these classes: %s.

Days per week: %d
Periods per day: %d

Teacher and availability context (subjects, free slots, constraints):
%s

Remember: respond with ONLY valid JSON that matches the specified structure. Do not add markdown or explanations.
`, strings.Join(BatchClasses(), ", "), BatchDaysPerWeek, BatchPeriodsPerDay, req.TeacherContext)

	return Instructions{System: sys.String(), User: user}
}
