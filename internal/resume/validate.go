package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError pairs a JSON field path with a human-readable message.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries every field-level problem found during validation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Path == "" {
			msgs = append(msgs, f.Message)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Path, f.Message))
	}
	return "invalid resume data: " + strings.Join(msgs, "; ")
}

var structValidator = validator.New()

// Validate coerces arbitrary JSON-shaped input into a ResumeData, applying
// defaults for every optional and list field so a minimal
// {"header":{"name":"X"}} input validates successfully. Pure, no side effects.
func Validate(raw any) (*ResumeData, error) {
	payload, err := toJSON(raw)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Message: "input is not JSON-shaped"}}}
	}

	var data ResumeData
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&data); err != nil {
		return nil, decodeError(err)
	}

	applyDefaults(&data)

	if err := structValidator.Struct(&data); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, FieldError{
					Path:    jsonPath(fe.StructNamespace()),
					Message: fmt.Sprintf("%s is required", fe.StructField()),
				})
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, &ValidationError{Fields: []FieldError{{Message: err.Error()}}}
	}

	return &data, nil
}

func toJSON(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("nil input")
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(raw)
	}
}

func decodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Fields: []FieldError{{
			Path:    typeErr.Field,
			Message: fmt.Sprintf("must be a %s", typeErr.Type),
		}}}
	}
	return &ValidationError{Fields: []FieldError{{Message: "malformed JSON"}}}
}

// applyDefaults guarantees that every list field is an empty slice rather
// than nil, so consumers never null-check list fields.
func applyDefaults(data *ResumeData) {
	if data.Header.Skills == nil {
		data.Header.Skills = []string{}
	}
	if data.WorkExperience == nil {
		data.WorkExperience = []WorkExperience{}
	}
	if data.Projects == nil {
		data.Projects = []Project{}
	}
	if data.Education == nil {
		data.Education = []Education{}
	}
	for i := range data.Projects {
		if data.Projects[i].Technologies == nil {
			data.Projects[i].Technologies = []string{}
		}
		if data.Projects[i].Highlights == nil {
			data.Projects[i].Highlights = []string{}
		}
	}
}

// jsonPath converts a validator struct namespace like "ResumeData.Header.Name"
// into the JSON field path "header.name".
func jsonPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "ResumeData" {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}
