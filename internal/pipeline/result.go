package pipeline

import "github.com/google/uuid"

// Run is the state of one pipeline execution. It is created by Execute and
// owned exclusively by the caller that started the run.
type Run struct {
	ID       uuid.UUID
	Input    FormInput
	Text     string
	Entities Fields
	FormType string
	Route    string
	Trace    *Trace
}

// ProcessedForm is the final structured record for a form.
type ProcessedForm struct {
	FormType        string   `json:"form_type"`
	ExtractedFields Fields   `json:"extracted_fields"`
	SuggestedRoute  string   `json:"suggested_route"`
	AgentWorkflow   []string `json:"agent_workflow"`
	OCRText         string   `json:"ocr_text"`
}

// Assemble builds the ProcessedForm for a completed run. The result shares
// no mutable state with run.
func Assemble(run *Run) ProcessedForm {
	return ProcessedForm{
		FormType:        run.FormType,
		ExtractedFields: run.Entities.Clone(),
		SuggestedRoute:  run.Route,
		AgentWorkflow:   run.Trace.Entries(),
		OCRText:         run.Text,
	}
}
