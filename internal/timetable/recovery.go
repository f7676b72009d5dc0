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
	"strings"
)

// Payload is the JSON object recovered from the model's text.
type Payload map[string]any

const fence = "```"

// stripFence removes an opening fence (three or more backticks plus an
// optional language tag) and a trailing fence of the same length.
func stripFence(text string) string {
	if !strings.HasPrefix(text, fence) {
		return text
	}

	n := len(text) - len(strings.TrimLeft(text, "`"))
	marker := text[:n]
	text = text[n:]

	// Language tag, e.g. ```json
	text = strings.TrimLeftFunc(text, func(r rune) bool {
		return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
	})
	text = strings.TrimSpace(text)

	text = strings.TrimSuffix(text, marker)
	return strings.TrimSpace(text)
}

// Recover extracts the JSON object the model was asked for. It takes
// everything from the first '{' to the last '}', so an unrelated brace in
// prose before the payload breaks recovery. On failure the FormatError
// carries raw exactly as it was passed in.
func Recover(raw string) (Payload, error) {
	text := stripFence(strings.TrimSpace(raw))

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last <= first {
		return nil, &FormatError{Raw: raw, Err: errors.New("no braced object found")}
	}

	var payload Payload
	if err := json.Unmarshal([]byte(text[first:last+1]), &payload); err != nil {
		return nil, &FormatError{Raw: raw, Err: err}
	}
	return payload, nil
}
