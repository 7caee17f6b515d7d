package executor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ysmood/gson"

	"content-analyzer/internal/domain/entity"
)

// ParsePayload salvages a structured payload from raw collaborator
// output. Strategies are tried in order: direct parse, fenced code block,
// outermost brace-delimited substring. Each is pure and independently
// testable.
func ParsePayload(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty response")
	}

	if payload, ok := tryUnmarshal(raw); ok {
		return payload, nil
	}

	if fenced, ok := extractFenced(raw); ok {
		if payload, ok := tryUnmarshal(fenced); ok {
			return payload, nil
		}
	}

	if braced, ok := extractBraced(raw); ok {
		if payload, ok := tryUnmarshal(braced); ok {
			return payload, nil
		}
	}

	return nil, fmt.Errorf("no parseable JSON object in response")
}

func tryUnmarshal(s string) (map[string]any, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, false
	}
	return payload, true
}

// extractFenced pulls the body of the first ```json fenced block, or of
// the first anonymous fence when no ```json block exists.
func extractFenced(raw string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(raw, marker)
		if start == -1 {
			continue
		}
		body := raw[start+len(marker):]
		end := strings.Index(body, "```")
		if end == -1 {
			continue
		}
		return strings.TrimSpace(body[:end]), true
	}
	return "", false
}

func extractBraced(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// ExtractScore reads the task's numeric score from its payload, clamped
// to the score range. Tasks report the standardized agent_score field;
// a bare score field is accepted as a fallback. A payload without either
// yields the neutral default.
func ExtractScore(payload map[string]any) float64 {
	g := gson.New(payload)
	for _, field := range []string{"agent_score", "score"} {
		if !g.Has(field) {
			continue
		}
		if v, ok := asNumber(g.Get(field).Val()); ok {
			return clampScore(v)
		}
	}
	return entity.DefaultScore
}

func asNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func clampScore(v float64) float64 {
	if v < entity.MinScore {
		return entity.MinScore
	}
	if v > entity.MaxScore {
		return entity.MaxScore
	}
	return v
}

// isFallback reports whether the parsed payload self-reports an inability
// to produce a real judgment.
func isFallback(payload map[string]any) bool {
	g := gson.New(payload)
	if g.Has("fallback") {
		if b, ok := g.Get("fallback").Val().(bool); ok && b {
			return true
		}
	}
	if g.Has("status") {
		if s, ok := g.Get("status").Val().(string); ok && strings.EqualFold(s, "fallback") {
			return true
		}
	}
	return false
}
