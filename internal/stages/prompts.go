package stages

import (
	"strings"
)

const ocrInstructions = `Extract all text from this document.`

const nerInstructions = `Extract the fields present in the government form text below, such as applicant name, father's or spouse's name, address, district, dates, phone numbers, identity document numbers, and any incident or request details.

Return the output as a single JSON object whose keys are field names and whose values are strings. If a field is not present, omit it. Do not include commentary outside the JSON object.`

const classifierInstructions = `Classify the following document text into exactly one of the categories listed below. Respond with the category name only.`

const routerInstructions = `Given the form type and the text below, suggest the most appropriate government department to route this form to. Respond with the department name only.`

func composeNER(instructions, text string) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nText:\n")
	sb.WriteString(text)
	return sb.String()
}

func composeClassifier(instructions string, categories []string, text string) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nCategories: ")
	sb.WriteString(strings.Join(categories, ", "))
	sb.WriteString("\n\nText:\n")
	sb.WriteString(text)
	return sb.String()
}

func composeRouter(instructions, formType, text string) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nForm type: ")
	sb.WriteString(formType)
	sb.WriteString("\n\nText:\n")
	sb.WriteString(text)
	return sb.String()
}
