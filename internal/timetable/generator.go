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
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Generator is the generative backend: instructions in, raw text out.
// Implementations make exactly one call and never retry.
type Generator interface {
	Generate(ctx context.Context, in Instructions) (string, error)
}

// GeminiClient talks to the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient fails with a ConfigurationError when apiKey is empty.
// Client construction does not touch the network.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &ConfigurationError{Setting: "GEMINI_API_KEY"}
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Model() string {
	return g.model
}

// Generate blocks until the backend answers or ctx is done.
func (g *GeminiClient) Generate(ctx context.Context, in Instructions) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(in.System, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(in.User), config)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	return result.Text(), nil
}
