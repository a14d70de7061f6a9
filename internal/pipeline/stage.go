// Package pipeline runs the fixed form processing sequence:
// text extraction (image input only), entity extraction, classification,
// and routing. Each stage's output feeds the next, and the agents that
// executed are recorded in an ordered trace returned with the result.
package pipeline

import "context"

// Stage identities reported in StageError.
const (
	StageTextExtraction   = "text-extraction"
	StageEntityExtraction = "entity-extraction"
	StageClassification   = "classification"
	StageRouting          = "routing"
)

// Agent identities recorded in the workflow trace.
const (
	AgentOrchestrator = "Orchestrator"
	AgentOCR          = "OCRAgent"
	AgentNER          = "NERAgent"
	AgentClassifier   = "ClassifierAgent"
	AgentRouter       = "RouterAgent"
)

// Image is a scanned form. ContentType may be empty, in which case
// stage implementations sniff it from Data.
type Image struct {
	Data        []byte
	ContentType string
}

// TextExtractor reads the text content of a scanned form.
type TextExtractor interface {
	Name() string
	ExtractText(ctx context.Context, image Image) (string, error)
}

// EntityExtractor pulls named fields out of form text.
type EntityExtractor interface {
	Name() string
	ExtractEntities(ctx context.Context, text string) (Fields, error)
}

// Classifier determines the form type from form text.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (string, error)
}

// Router suggests the department that should handle a form.
type Router interface {
	Name() string
	Route(ctx context.Context, text, formType string) (string, error)
}

// Stages is the fixed set of stage implementations an Executor drives.
type Stages struct {
	Extractor  TextExtractor
	Entities   EntityExtractor
	Classifier Classifier
	Router     Router
}

func (s Stages) validate() error {
	switch {
	case s.Extractor == nil:
		return missingStage(StageTextExtraction)
	case s.Entities == nil:
		return missingStage(StageEntityExtraction)
	case s.Classifier == nil:
		return missingStage(StageClassification)
	case s.Router == nil:
		return missingStage(StageRouting)
	}
	return nil
}
