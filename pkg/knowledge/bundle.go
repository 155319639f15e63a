package knowledge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fip.yaml
var fipYAML []byte

var loadDefault = sync.OnceValues(func() (*Bundle, error) {
	return Load(fipYAML)
})

// Default returns the embedded FIP knowledge base. It is parsed on first use
// and shared afterwards.
func Default() (*Bundle, error) {
	return loadDefault()
}

// MustDefault is like Default but panics if the embedded data is invalid.
func MustDefault() *Bundle {
	b, err := Default()
	if err != nil {
		panic(err)
	}
	return b
}

// Load parses a knowledge base from YAML. Unknown keys are rejected so a
// typo in the data file is caught at startup instead of silently dropping a
// section from the prompt.
func Load(data []byte) (*Bundle, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var b Bundle
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	text, err := render(&b)
	if err != nil {
		return nil, err
	}
	b.promptText = text

	return &b, nil
}

// PromptText returns the bundle as indented JSON for embedding in a system
// prompt. The output is identical for identical input.
func (b *Bundle) PromptText() string {
	return b.promptText
}

// Size returns the length of the prompt text in bytes.
func (b *Bundle) Size() int {
	return len(b.promptText)
}

func (b *Bundle) validate() error {
	var errs []error
	missing := func(section string) {
		errs = append(errs, fmt.Errorf("knowledge base section %q is empty", section))
	}

	if b.Overview.Definition == "" {
		missing("overview")
	}
	if b.Types.empty() {
		missing("types")
	}
	if len(b.BloodworkIndicators.WetFIP) == 0 && len(b.BloodworkIndicators.DryFIP) == 0 {
		missing("bloodworkIndicators")
	}
	if len(b.DiagnosticTools) == 0 {
		missing("diagnosticTools")
	}
	if len(b.DiagnosticAlgorithms.RapidTriage) == 0 {
		missing("diagnosticAlgorithms")
	}
	if b.RecommendedSamples.empty() {
		missing("recommendedSamples")
	}
	if len(b.DifferentialDiagnosis) == 0 {
		missing("differentialDiagnosis")
	}
	if b.TreatmentProtocols.GS441524.Description == "" {
		missing("treatmentProtocols")
	}
	if len(b.Prognosis) == 0 {
		missing("prognosis")
	}

	return errors.Join(errs...)
}

// render encodes the bundle without HTML escaping so thresholds such as
// "<0.5" reach the model as written. Map keys are sorted by encoding/json.
func render(b *Bundle) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return "", fmt.Errorf("failed to render knowledge base: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
