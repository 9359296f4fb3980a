package inferrer

import (
	"strings"

	"github.com/marcus-ai/marcus/internal/domain/task"
)

// pattern is one entry of the fixed pattern list from §4.2.1:
// {name, cond_regex, dep_regex, confidence, mandatory}. For a pair (a, b),
// matchDependency(a) true means a plays the "dependency" role, and
// matchDependent must also hold for b, the candidate dependent.
type pattern struct {
	name            string
	matchDependency func(t task.Task) bool
	matchDependent  func(t task.Task) bool
	confidence      float64
	mandatory       bool
	componentScoped bool
}

func hasAnyKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var infraKeywords = []string{"infrastructure", "infra", "provision", "scaffold", "setup"}
var backendKeywords = []string{"backend", "api", "server", "database", "service"}
var frontendKeywords = []string{"frontend", "ui", "client", "dashboard", "view"}

func classIs(class task.Class) func(task.Task) bool {
	return func(t task.Task) bool { return t.Class() == class }
}

func nameHas(keywords []string) func(task.Task) bool {
	return func(t task.Task) bool { return hasAnyKeyword(t.Name, keywords) }
}

// patterns is the canonical, fixed list of safety patterns (§4.2.1). The
// first four are mandatory at confidence 0.95; the last is non-mandatory at
// 0.85 and component-scoped.
var patterns = []pattern{
	{
		name:            "infrastructure_before_features",
		matchDependency: nameHas(infraKeywords),
		matchDependent:  func(t task.Task) bool { return !hasAnyKeyword(t.Name, infraKeywords) },
		confidence:      0.95,
		mandatory:       true,
	},
	{
		name:            "design_before_implementation",
		matchDependency: classIs(task.ClassDesign),
		matchDependent:  classIs(task.ClassImplementation),
		confidence:      0.95,
		mandatory:       true,
	},
	{
		name:            "implementation_before_testing",
		matchDependency: classIs(task.ClassImplementation),
		matchDependent:  classIs(task.ClassTesting),
		confidence:      0.95,
		mandatory:       true,
	},
	{
		name:            "testing_before_deployment",
		matchDependency: classIs(task.ClassTesting),
		matchDependent:  classIs(task.ClassDeployment),
		confidence:      0.95,
		mandatory:       true,
	},
	{
		name:            "backend_before_frontend",
		matchDependency: nameHas(backendKeywords),
		matchDependent:  nameHas(frontendKeywords),
		confidence:      0.85,
		mandatory:       false,
		componentScoped: true,
	},
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "for": {}, "to": {},
	"of": {}, "in": {}, "on": {}, "with": {}, "is": {}, "it": {}, "as": {},
}

func nonStopwordTokens(name string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(name)) {
		field = strings.Trim(field, ".,:;!?()[]{}\"'")
		if field == "" {
			continue
		}
		if _, stop := stopwords[field]; stop {
			continue
		}
		tokens[field] = struct{}{}
	}
	return tokens
}

func sharedTokenCount(a, b string) int {
	ta, tb := nonStopwordTokens(a), nonStopwordTokens(b)
	n := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			n++
		}
	}
	return n
}

var techKeywords = []string{"api", "database", "frontend", "backend", "auth", "user", "admin"}

func sharesTechKeyword(a, b task.Task) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	for _, kw := range techKeywords {
		if strings.Contains(an, kw) && strings.Contains(bn, kw) {
			return true
		}
	}
	return false
}
