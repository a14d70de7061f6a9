package formatting_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/intake/pkg/formatting"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sample
		wantErr bool
	}{
		{"direct JSON", `{"name":"test","value":42}`, sample{"test", 42}, false},
		{"padded", "  {\"name\":\"padded\",\"value\":1}\n", sample{"padded", 1}, false},
		{"fenced", "```json\n{\"name\":\"fenced\",\"value\":7}\n```", sample{"fenced", 7}, false},
		{"fenced without tag", "```\n{\"name\":\"bare\",\"value\":3}\n```", sample{"bare", 3}, false},
		{"prose around fence", "Here you go:\n```json\n{\"name\":\"wrapped\",\"value\":5}\n```\nDone.", sample{"wrapped", 5}, false},
		{"prose around braces", "Sure! {\"name\":\"inline\",\"value\":9} Hope that helps.", sample{"inline", 9}, false},
		{"not json", "name: test", sample{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[sample](tt.input)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Fatalf("err = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []formatting.Pair
	}{
		{
			"colon and equals",
			"name: Asha Patil\ndistrict = Pune",
			[]formatting.Pair{{"name", "Asha Patil"}, {"district", "Pune"}},
		},
		{
			"quoted with trailing commas",
			"\"item\": \"bicycle\",\n'colour': 'red'",
			[]formatting.Pair{{"item", "bicycle"}, {"colour", "red"}},
		},
		{
			"markdown list",
			"- **Applicant**: R. Kumar\n* Age: 61",
			[]formatting.Pair{{"Applicant", "R. Kumar"}, {"Age", "61"}},
		},
		{
			"skips prose and empty values",
			"Here are the fields I found.\nname:\nphone: 98220",
			[]formatting.Pair{{"phone", "98220"}},
		},
		{
			"nothing structured",
			"The document could not be read.",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatting.ParsePairs(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePairs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
