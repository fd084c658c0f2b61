package parsers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/krish-ai/chat-server/internal/agent/model"
	errx "github.com/krish-ai/chat-server/internal/core/error"
	logx "github.com/krish-ai/chat-server/pkg/logger"
)

const codeFence = "```"

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024
	maxSearches   = 50
	maxErrSnippet = 200
)

var ErrEmptyPlan = errors.New("empty search plan")

// NormalizePlanText trims the planner reply and strips a surrounding code
// fence. The first line of a fenced reply is dropped along with the fence
// marker so a language tag such as "json" goes with it.
func NormalizePlanText(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, codeFence) {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, codeFence)
	}
	if idx := strings.LastIndex(s, codeFence); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// ParseSearchPlan parses the planner reply. Both "needs_search" and
// "needsSearch" are accepted, and wrong-typed optional fields are treated as
// absent. Callers fall back to model.NoSearchPlan on any error.
func ParseSearchPlan(content string) (plan model.SearchPlan, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "plan_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("plan parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			plan = model.NoSearchPlan()
		}
	}()

	if len(content) > maxContentLen {
		return model.NoSearchPlan(), fmt.Errorf("plan too large: %d bytes", len(content))
	}

	text := NormalizePlanText(content)
	if text == "" {
		return model.NoSearchPlan(), ErrEmptyPlan
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return model.NoSearchPlan(), fmt.Errorf("plan not a json object: %w (%s)", err, safeSnippet(text))
	}

	plan = model.NoSearchPlan()
	needs, ok := boolField(fields, "needs_search")
	if !ok {
		needs, _ = boolField(fields, "needsSearch")
	}
	plan.NeedsSearch = needs
	plan.Reasoning = stringField(fields, "reasoning")
	plan.Searches = searchesField(fields["searches"])
	return plan, nil
}

func boolField(fields map[string]json.RawMessage, key string) (bool, bool) {
	raw, ok := fields[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// searchesField keeps one entry per element so positions in the list are
// preserved; entries it cannot read become empty searches.
func searchesField(raw json.RawMessage) []model.PlannedSearch {
	out := []model.PlannedSearch{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for i, item := range items {
		if i >= maxSearches {
			break
		}
		var query string
		if err := json.Unmarshal(item, &query); err == nil {
			out = append(out, model.PlannedSearch{Query: query})
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			out = append(out, model.PlannedSearch{})
			continue
		}
		out = append(out, model.PlannedSearch{
			Query:   stringField(obj, "query"),
			Purpose: stringField(obj, "purpose"),
		})
	}
	return out
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
