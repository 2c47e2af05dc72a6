package skills

import "strings"

// Pattern pairs a file glob with a short label, for targets that
// advertise which files a skill applies to.
type Pattern struct {
	Glob  string
	Label string
}

// skillOrder fixes the combine order for targets that merge all rules
// from one flat directory; lower prefixes load first.
var skillOrder = map[string]string{
	"sf-apex":           "01",
	"sf-flow":           "02",
	"sf-lwc":            "03",
	"sf-soql":           "04",
	"sf-testing":        "05",
	"sf-debug":          "06",
	"sf-metadata":       "07",
	"sf-data":           "08",
	"sf-connected-apps": "09",
	"sf-integration":    "10",
	"sf-ai-agentforce":  "11",
	"sf-deploy":         "12",
	"sf-diagram":        "13",
	"skill-builder":     "14",
}

// OrderPrefix returns the two-digit load-order prefix for a skill.
// Skills outside the catalog sort last.
func OrderPrefix(name string) string {
	if p, ok := skillOrder[name]; ok {
		return p
	}
	return "99"
}

var displayNames = map[string]string{
	"sf-apex":           "Salesforce Apex Development",
	"sf-flow":           "Salesforce Flow Automation",
	"sf-lwc":            "Lightning Web Components",
	"sf-soql":           "SOQL Query Patterns",
	"sf-testing":        "Apex Testing Standards",
	"sf-debug":          "Debug Log Analysis",
	"sf-metadata":       "Metadata Operations",
	"sf-data":           "Data Factory Patterns",
	"sf-connected-apps": "Connected Apps & OAuth",
	"sf-integration":    "Integration Patterns",
	"sf-ai-agentforce":  "Agentforce AI Agents",
	"sf-deploy":         "Deployment Automation",
	"sf-diagram":        "Mermaid Diagrams",
	"skill-builder":     "Skill Builder",
}

// DisplayName returns the human-readable title for a skill. Unknown
// skills fall back to their name with hyphens spaced and words
// capitalized.
func DisplayName(name string) string {
	if d, ok := displayNames[name]; ok {
		return d
	}
	words := strings.Split(name, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var filePatterns = map[string][]Pattern{
	"sf-apex": {
		{"**/*.cls", "Apex classes"},
		{"**/*.trigger", "Apex triggers"},
	},
	"sf-flow": {
		{"**/*.flow-meta.xml", "Flow definitions"},
	},
	"sf-lwc": {
		{"**/lwc/**/*.js", "LWC JavaScript"},
		{"**/lwc/**/*.html", "LWC templates"},
		{"**/lwc/**/*.css", "LWC styles"},
	},
	"sf-soql": {
		{"**/*.soql", "SOQL query files"},
		{"**/*.apex", "Anonymous Apex scripts"},
	},
	"sf-testing": {
		{"**/*Test.cls", "Test classes"},
	},
	"sf-debug": {
		{"**/*.log", "Debug log files"},
	},
	"sf-metadata": {
		{"**/*-meta.xml", "Metadata files"},
	},
	"sf-data": {
		{"**/*.json", "Data files"},
		{"**/*.csv", "CSV data files"},
	},
	"sf-connected-apps": {
		{"**/*.connectedApp-meta.xml", "Connected Apps"},
	},
	"sf-integration": {
		{"**/*.namedCredential-meta.xml", "Named Credentials"},
		{"**/*.externalService-meta.xml", "External Services"},
	},
	"sf-ai-agentforce": {
		{"**/*.agent-meta.xml", "Agent definitions"},
		{"**/*.genAiFunction-meta.xml", "GenAI functions"},
	},
	"sf-deploy": {
		{"**/sfdx-project.json", "Project config"},
		{"**/package.xml", "Package manifests"},
	},
	"sf-diagram": {
		{"**/*.md", "Markdown with diagrams"},
	},
	"skill-builder": {
		{"**/SKILL.md", "Skill definitions"},
	},
}

// catchAll applies to skills without a catalog entry.
var catchAll = []Pattern{{"**/*", "All files"}}

// FilePatterns returns the glob and label pairs for a skill.
func FilePatterns(name string) []Pattern {
	if p, ok := filePatterns[name]; ok {
		return p
	}
	return catchAll
}

// Globs returns just the file globs for a skill.
func Globs(name string) []string {
	patterns := FilePatterns(name)
	globs := make([]string, len(patterns))
	for i, p := range patterns {
		globs[i] = p.Glob
	}
	return globs
}
