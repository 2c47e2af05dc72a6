package flow

import (
	"fmt"
	"regexp"
	"strings"
)

// Naming conventions by flow launch type. Record-triggered flows use
// RTF_<Object>_<Purpose> regardless of process type; the rest key off
// processType.
var conventions = map[string]convention{
	"AutoLaunchedFlow": {
		patterns: compileAll(`^Auto_[A-Z][A-Za-z0-9_]*$`, `^AL_[A-Z][A-Za-z0-9_]*$`, `^Sub_[A-Z][A-Za-z0-9_]*$`),
		prefixes: []string{"Auto_", "AL_", "Sub_"},
		hint:     "Autolaunched flows should use Auto_, AL_, or Sub_ prefix",
	},
	"Flow": {
		patterns: compileAll(`^Screen_[A-Z][A-Za-z0-9_]*$`, `^SCR_[A-Z][A-Za-z0-9_]*$`),
		prefixes: []string{"Screen_", "SCR_"},
		hint:     "Screen flows should use Screen_ or SCR_ prefix",
	},
	"InvocableProcess": {
		patterns: compileAll(`^Scheduled_[A-Z][A-Za-z0-9_]*$`, `^SCHED_[A-Z][A-Za-z0-9_]*$`),
		prefixes: []string{"Scheduled_", "SCHED_"},
		hint:     "Scheduled flows should use Scheduled_ or SCHED_ prefix",
	},
}

type convention struct {
	patterns []*regexp.Regexp
	prefixes []string
	hint     string
}

var recordTriggeredRe = regexp.MustCompile(`^RTF_[A-Z][A-Za-z][A-Za-z0-9]*_[A-Z][A-Za-z0-9_]*$`)

// NameResult is the outcome of checking a flow's label against its
// naming convention.
type NameResult struct {
	Follows   bool
	Hint      string
	Suggested []string
}

// CheckName validates the flow label against the convention for its
// launch type. Unknown process types pass; there is nothing to hold
// them to.
func CheckName(f *Flow) NameResult {
	label := f.LabelOrUnknown()

	if f.IsRecordTriggered() {
		if recordTriggeredRe.MatchString(label) {
			return NameResult{Follows: true}
		}
		return NameResult{
			Hint:      "Record-triggered flows should use format: RTF_<Object>_<Purpose>",
			Suggested: suggestRecordTriggeredNames(f),
		}
	}

	conv, ok := conventions[f.ProcessType]
	if !ok {
		return NameResult{Follows: true}
	}
	for _, p := range conv.patterns {
		if p.MatchString(label) {
			return NameResult{Follows: true}
		}
	}
	return NameResult{
		Hint:      conv.hint,
		Suggested: suggestStandardNames(label, conv),
	}
}

func suggestRecordTriggeredNames(f *Flow) []string {
	object := f.TriggerObject()
	if object == "" {
		object = "Object"
	}

	suggestions := []string{
		"RTF_" + object + "_UpdateRelated",
		"RTF_" + object + "_ValidateData",
		"RTF_" + object + "_SendNotifications",
	}

	// Carry the apparent purpose over from the current label when it has one.
	label := f.LabelOrUnknown()
	if parts := strings.SplitN(label, "_", 2); len(parts) == 2 && parts[1] != "" {
		suggestions = append([]string{"RTF_" + object + "_" + parts[1]}, suggestions...)
	}
	return suggestions
}

var leadingPrefixRe = regexp.MustCompile(`^[A-Za-z]+_`)

func suggestStandardNames(label string, conv convention) []string {
	clean := leadingPrefixRe.ReplaceAllString(label, "")
	if clean == "" {
		clean = "Purpose"
	} else {
		clean = strings.ToUpper(clean[:1]) + clean[1:]
	}

	suggestions := make([]string, 0, len(conv.prefixes))
	for _, prefix := range conv.prefixes {
		suggestions = append(suggestions, prefix+clean)
	}
	return suggestions
}

var (
	generatedNameRe = regexp.MustCompile(`_\d{10,}`)
	numberedNameRe  = regexp.MustCompile(`^[A-Za-z]+_?\d+$`)
)

// DefaultNamedElements returns the names of flow nodes still carrying
// builder-generated default names (trailing timestamps or bare numbering).
func DefaultNamedElements(f *Flow) []string {
	var names []string
	check := func(name string) {
		if name == "" {
			return
		}
		if generatedNameRe.MatchString(name) || numberedNameRe.MatchString(name) {
			names = append(names, name)
		}
	}

	for _, e := range f.Decisions {
		check(e.Name)
	}
	for _, e := range f.Assignments {
		check(e.Name)
	}
	for _, e := range f.RecordCreates {
		check(e.Name)
	}
	for _, e := range f.RecordUpdates {
		check(e.Name)
	}
	for _, e := range f.RecordDeletes {
		check(e.Name)
	}
	for _, e := range f.RecordLookups {
		check(e.Name)
	}
	for _, e := range f.Subflows {
		check(e.Name)
	}
	for _, e := range f.ActionCalls {
		check(e.Name)
	}
	return names
}

// RenameSuggestion proposes a convention-following replacement for one
// badly named variable or button.
type RenameSuggestion struct {
	Name      string
	Reason    string
	Suggested string
}

var variablePrefixes = []string{"var_", "col_", "rec_", "inp_", "out_"}

// VariableIssues returns the variables whose names lack a type prefix,
// with the prefix their declaration calls for. System variables ($-names)
// are exempt.
func VariableIssues(f *Flow) []RenameSuggestion {
	var issues []RenameSuggestion
	for _, v := range f.Variables {
		if v.Name == "" || strings.HasPrefix(v.Name, "$") {
			continue
		}
		if hasAnyPrefix(v.Name, variablePrefixes) {
			continue
		}

		// Prefix priority: collection beats input beats output beats record.
		prefix, reason := "var_", "Regular variable"
		switch {
		case v.IsCollection.True():
			prefix, reason = "col_", "Collection variable"
		case v.IsInput.True():
			prefix, reason = "inp_", "Input variable"
		case v.IsOutput.True():
			prefix, reason = "out_", "Output variable"
		case v.DataType == "SObject":
			prefix, reason = "rec_", "Record variable"
		}

		issues = append(issues, RenameSuggestion{
			Name:      v.Name,
			Reason:    reason,
			Suggested: prefix + stripLoosePrefix(v.Name),
		})
	}
	return issues
}

// stripLoosePrefix removes an old-style var/col/rec prefix (with or
// without the underscore) so the suggestion does not stutter.
func stripLoosePrefix(name string) string {
	lower := strings.ToLower(name)
	for _, old := range []string{"var", "col", "rec"} {
		if !strings.HasPrefix(lower, old) || len(name) <= len(old) {
			continue
		}
		next := name[len(old)]
		if next == '_' || (next >= 'A' && next <= 'Z') {
			return strings.TrimLeft(name[len(old):], "_")
		}
	}
	return name
}

var (
	buttonNameRe = regexp.MustCompile(`^Action_[A-Z][a-z]+_[A-Z][A-Za-z]+$`)
	camelWordRe  = regexp.MustCompile(`[A-Z][a-z]+`)
)

// ButtonIssues returns screen buttons and actions that stray from the
// Action_<Verb>_<Object> pattern.
func ButtonIssues(f *Flow) []RenameSuggestion {
	var issues []RenameSuggestion
	for _, screen := range f.Screens {
		walkFields(screen.Fields, func(field ScreenField) {
			if field.FieldType != "ComponentInstance" && field.FieldType != "DisplayText" {
				return
			}
			lower := strings.ToLower(field.Name)
			if !strings.Contains(lower, "button") && !strings.Contains(lower, "action") {
				return
			}
			if buttonNameRe.MatchString(field.Name) {
				return
			}

			suggested := "Action_Perform_" + strings.ReplaceAll(field.Name, "_", "")
			if words := camelWordRe.FindAllString(field.Name, -1); len(words) >= 2 {
				suggested = fmt.Sprintf("Action_%s_%s", words[0], words[1])
			}
			issues = append(issues, RenameSuggestion{
				Name:      field.Name,
				Reason:    "Button name should follow Action_[Verb]_[Object] pattern",
				Suggested: suggested,
			})
		})
	}
	return issues
}

func walkFields(fields []ScreenField, visit func(ScreenField)) {
	for _, field := range fields {
		visit(field)
		walkFields(field.Fields, visit)
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
