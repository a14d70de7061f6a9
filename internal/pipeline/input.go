package pipeline

import "strings"

// Modality identifies which input variant a run starts from.
type Modality string

const (
	ModalityImage Modality = "image"
	ModalityText  Modality = "text"
)

// FormInput holds exactly one of an image or text.
type FormInput struct {
	modality Modality
	image    Image
	text     string
}

// Modality reports which variant is populated.
func (in FormInput) Modality() Modality {
	return in.modality
}

// Image returns the image variant. It is zero for text input.
func (in FormInput) Image() Image {
	return in.image
}

// Text returns the text variant. It is empty for image input.
func (in FormInput) Text() string {
	return in.text
}

// ImageInput builds a FormInput from an image, bypassing selection.
func ImageInput(img Image) (FormInput, error) {
	if len(img.Data) == 0 {
		return FormInput{}, &InvalidInputError{Reason: "image is empty"}
	}
	return FormInput{modality: ModalityImage, image: img}, nil
}

// TextInput builds a FormInput from text, bypassing selection. Whitespace-only
// text is rejected as in Select.
func TextInput(text string) (FormInput, error) {
	if strings.TrimSpace(text) == "" {
		return FormInput{}, &InvalidInputError{Reason: "text is empty"}
	}
	return FormInput{modality: ModalityText, text: text}, nil
}

// Select resolves the caller payload into a FormInput. An image takes
// precedence: when both are supplied the text is ignored. A payload with
// neither fails with ErrInvalidInput. Text made only of whitespace counts
// as absent, so a blank form never reaches the model; the text is otherwise
// passed through untrimmed.
//
// TODO: confirm with API consumers whether a multipart submission carrying
// both a file and a text field should be rejected instead of dropping the text.
func Select(img Image, text string) (FormInput, error) {
	if len(img.Data) > 0 {
		return FormInput{modality: ModalityImage, image: img}, nil
	}
	if strings.TrimSpace(text) != "" {
		return FormInput{modality: ModalityText, text: text}, nil
	}
	return FormInput{}, &InvalidInputError{Reason: "either an image or text must be provided"}
}
