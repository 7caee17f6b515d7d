package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"

	"content-analyzer/internal/domain/entity"
)

//go:embed templates/*.txt
var templateFS embed.FS

var taskTemplates = template.Must(template.ParseFS(templateFS, "templates/*.txt"))

const genericTemplate = "generic.txt"

type promptData struct {
	Input        string
	PriorResults string
}

// Render builds the prompt for one task from its embedded template.
// Unknown tasks fall back to the generic template; the engine never fails
// on a prompt lookup. Dependent-phase templates additionally receive the
// serialized prior results.
func Render(desc entity.TaskDescriptor, input string, prior map[string]entity.TaskResult) (string, error) {
	name := desc.Name + ".txt"
	tmpl := taskTemplates.Lookup(name)
	if tmpl == nil {
		tmpl = taskTemplates.Lookup(genericTemplate)
	}
	if tmpl == nil {
		return "", fmt.Errorf("no template for task %q and no generic fallback", desc.Name)
	}

	data := promptData{Input: input}
	if len(prior) > 0 {
		serialized, err := serializePrior(prior)
		if err != nil {
			return "", fmt.Errorf("serialize prior results: %w", err)
		}
		data.PriorResults = serialized
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt for %q: %w", desc.Name, err)
	}
	return buf.String(), nil
}

type priorEntry struct {
	Status  entity.TaskStatus `json:"status"`
	Score   float64           `json:"score"`
	Payload map[string]any    `json:"payload,omitempty"`
}

func serializePrior(prior map[string]entity.TaskResult) (string, error) {
	entries := make(map[string]priorEntry, len(prior))
	for name, res := range prior {
		entries[name] = priorEntry{
			Status:  res.Status,
			Score:   res.Score,
			Payload: res.Payload,
		}
	}

	// json.Marshal sorts map keys, so the serialization is deterministic.
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
