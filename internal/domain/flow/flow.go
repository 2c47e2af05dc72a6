// Package flow parses Salesforce Flow metadata XML and scores it across
// six best-practice categories. All findings are advisory; a flow is never
// blocked from deployment, only rated.
package flow

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
)

// MetadataNamespace is the namespace Salesforce stamps on Flow metadata.
// Parsing matches elements by local name, so files with a missing or odd
// namespace still load instead of scoring an empty document.
const MetadataNamespace = "http://soap.sforce.com/2006/04/metadata"

// Flow is the subset of Flow metadata the validator inspects.
type Flow struct {
	XMLName     xml.Name `xml:"Flow"`
	Label       string   `xml:"label"`
	Description string   `xml:"description"`
	APIVersion  string   `xml:"apiVersion"`
	ProcessType string   `xml:"processType"`
	Status      string   `xml:"status"`
	RunInMode   string   `xml:"runInMode"`
	Start       *Start   `xml:"start"`

	Loops         []Element    `xml:"loops"`
	Decisions     []Element    `xml:"decisions"`
	Assignments   []Element    `xml:"assignments"`
	Formulas      []Element    `xml:"formulas"`
	Transforms    []Element    `xml:"transforms"`
	ActionCalls   []Element    `xml:"actionCalls"`
	RecordCreates []DMLElement `xml:"recordCreates"`
	RecordUpdates []DMLElement `xml:"recordUpdates"`
	RecordDeletes []DMLElement `xml:"recordDeletes"`
	RecordLookups []Lookup     `xml:"recordLookups"`
	Subflows      []Subflow    `xml:"subflows"`
	Variables     []Variable   `xml:"variables"`
	Screens       []Screen     `xml:"screens"`
}

// Start describes how the flow is launched.
type Start struct {
	Object      string    `xml:"object"`
	TriggerType string    `xml:"triggerType"`
	Schedule    *Schedule `xml:"schedule"`
}

// Schedule is present on scheduled flows.
type Schedule struct {
	Frequency string `xml:"frequency"`
	StartDate string `xml:"startDate"`
	StartTime string `xml:"startTime"`
}

// Element is any named flow node the validator only counts or name-checks.
type Element struct {
	Name  string `xml:"name"`
	Label string `xml:"label"`
}

// Connector marks an outgoing edge; its presence is what matters here.
type Connector struct {
	TargetReference string `xml:"targetReference"`
}

// FieldAssignment maps a value onto a record field.
type FieldAssignment struct {
	Field string `xml:"field"`
}

// DMLElement is a recordCreates, recordUpdates or recordDeletes node.
type DMLElement struct {
	Name             string            `xml:"name"`
	Label            string            `xml:"label"`
	Object           string            `xml:"object"`
	FaultConnector   *Connector        `xml:"faultConnector"`
	Filters          []Filter          `xml:"filters"`
	InputAssignments []FieldAssignment `xml:"inputAssignments"`
}

// Filter is one filter condition on a Get Records element.
type Filter struct {
	Field string `xml:"field"`
}

// Flag is a tolerant boolean element. Salesforce emits "true"/"false",
// but empty or malformed text must not abort the parse.
type Flag string

// True reports whether the element text is exactly "true".
func (f Flag) True() bool { return f == "true" }

// Lookup is a recordLookups (Get Records) node.
type Lookup struct {
	Name                     string     `xml:"name"`
	Label                    string     `xml:"label"`
	Object                   string     `xml:"object"`
	StoreOutputAutomatically Flag       `xml:"storeOutputAutomatically"`
	GetFirstRecordOnly       Flag       `xml:"getFirstRecordOnly"`
	Filters                  []Filter   `xml:"filters"`
	QueriedFields            []string   `xml:"queriedFields"`
	FaultConnector           *Connector `xml:"faultConnector"`
}

// Subflow is a call into another flow.
type Subflow struct {
	Name     string `xml:"name"`
	Label    string `xml:"label"`
	FlowName string `xml:"flowName"`
}

// Variable is a flow variable declaration.
type Variable struct {
	Name         string `xml:"name"`
	DataType     string `xml:"dataType"`
	ObjectType   string `xml:"objectType"`
	IsCollection Flag   `xml:"isCollection"`
	IsInput      Flag   `xml:"isInput"`
	IsOutput     Flag   `xml:"isOutput"`
}

// Screen is a screen node; fields nest inside section regions.
type Screen struct {
	Name   string        `xml:"name"`
	Fields []ScreenField `xml:"fields"`
}

// ScreenField is one field or region on a screen.
type ScreenField struct {
	Name      string        `xml:"name"`
	FieldType string        `xml:"fieldType"`
	Fields    []ScreenField `xml:"fields"`
}

// Parse decodes Flow metadata XML.
func Parse(content []byte) (*Flow, error) {
	var f Flow
	if err := xml.Unmarshal(content, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LabelOrUnknown returns the flow label, or "Unknown" when absent.
func (f *Flow) LabelOrUnknown() string {
	if f.Label == "" {
		return "Unknown"
	}
	return f.Label
}

// APIVersionValue returns the API version as a number, zero when missing
// or malformed.
func (f *Flow) APIVersionValue() float64 {
	v, err := strconv.ParseFloat(f.APIVersion, 64)
	if err != nil {
		return 0
	}
	return v
}

// DMLCount is the total of create, update and delete elements.
func (f *Flow) DMLCount() int {
	return len(f.RecordCreates) + len(f.RecordUpdates) + len(f.RecordDeletes)
}

// DMLWithFaultPaths counts DML elements that have a fault connector.
func (f *Flow) DMLWithFaultPaths() int {
	n := 0
	for _, e := range f.RecordCreates {
		if e.FaultConnector != nil {
			n++
		}
	}
	for _, e := range f.RecordUpdates {
		if e.FaultConnector != nil {
			n++
		}
	}
	for _, e := range f.RecordDeletes {
		if e.FaultConnector != nil {
			n++
		}
	}
	return n
}

// FaultCoverage reports fault path coverage as "covered/total". A flow
// with no DML at all reports "N/A".
func (f *Flow) FaultCoverage() string {
	total := f.DMLCount()
	if total == 0 {
		return "N/A"
	}
	return strconv.Itoa(f.DMLWithFaultPaths()) + "/" + strconv.Itoa(total)
}

// HasDMLInLoops reports whether DML likely executes inside a loop. The
// check is coarse: any loop plus any DML element. Tracing connectors for
// real path containment is a known follow-up.
func (f *Flow) HasDMLInLoops() bool {
	return len(f.Loops) > 0 && f.DMLCount() > 0
}

// HasFormulaInLoops reports whether formula variables coexist with loops,
// a common source of CPU timeouts on bulk runs. Same coarseness as
// HasDMLInLoops.
func (f *Flow) HasFormulaInLoops() bool {
	return len(f.Formulas) > 0 && len(f.Loops) > 0
}

// HasTransform reports whether the flow uses a Transform element.
func (f *Flow) HasTransform() bool {
	return len(f.Transforms) > 0
}

// ShouldUseTransform reports whether the flow shows the loop-plus-
// assignments field-mapping pattern a Transform element replaces.
func (f *Flow) ShouldUseTransform() bool {
	return len(f.Loops) > 0 && len(f.Assignments) > 0
}

// ElementCount totals the nodes that contribute to flow complexity.
func (f *Flow) ElementCount() int {
	return len(f.Decisions) + len(f.Assignments) + f.DMLCount() +
		len(f.RecordLookups) + len(f.Subflows) + len(f.Loops)
}

// EstimatedLines approximates the metadata size from the element count.
func (f *Flow) EstimatedLines() int {
	return f.ElementCount() * 15
}

// IsAutolaunched reports whether the flow runs without a UI.
func (f *Flow) IsAutolaunched() bool {
	return f.ProcessType == "AutoLaunchedFlow"
}

// HasInputOutput reports whether any variable is marked input or output.
func (f *Flow) HasInputOutput() bool {
	for _, v := range f.Variables {
		if v.IsInput.True() || v.IsOutput.True() {
			return true
		}
	}
	return false
}

// IsRecordTriggered reports whether the flow starts from a record event.
func (f *Flow) IsRecordTriggered() bool {
	return f.Start != nil && strings.HasPrefix(f.Start.TriggerType, "Record")
}

// IsScheduled reports whether the flow runs on a schedule.
func (f *Flow) IsScheduled() bool {
	if f.Start == nil {
		return false
	}
	return f.Start.TriggerType == "Scheduled" || f.Start.Schedule != nil
}

// IsActive reports whether the flow status is Active.
func (f *Flow) IsActive() bool {
	return f.Status == "Active"
}

// TriggerObject returns the object a record-triggered flow fires on.
func (f *Flow) TriggerObject() string {
	if f.Start == nil {
		return ""
	}
	return f.Start.Object
}

// StoreAllFieldsLookups names the Get Records elements that store every
// field of the queried object.
func (f *Flow) StoreAllFieldsLookups() []string {
	var names []string
	for _, l := range f.RecordLookups {
		if l.StoreOutputAutomatically.True() {
			names = append(names, nameOrUnknown(l.Name))
		}
	}
	return names
}

// SameObjectLookups names the Get Records elements that query the object
// the flow already triggered on; $Record carries those fields for free.
func (f *Flow) SameObjectLookups() []string {
	obj := f.TriggerObject()
	if obj == "" {
		return nil
	}
	var names []string
	for _, l := range f.RecordLookups {
		if l.Object == obj {
			names = append(names, nameOrUnknown(l.Name))
		}
	}
	return names
}

// UnfilteredLookups names the Get Records elements with no filter
// conditions at all.
func (f *Flow) UnfilteredLookups() []string {
	var names []string
	for _, l := range f.RecordLookups {
		if len(l.Filters) == 0 {
			names = append(names, nameOrUnknown(l.Name))
		}
	}
	return names
}

var (
	singleIndicators     = []string{"get", "var_", "rec_", "record", "single", "one"}
	collectionIndicators = []string{"col_", "list", "all", "many", "multiple", "records"}
)

// SingleRecordLookups names the Get Records elements whose name suggests
// a single record but that do not set getFirstRecordOnly.
func (f *Flow) SingleRecordLookups() []string {
	var names []string
	for _, l := range f.RecordLookups {
		if l.GetFirstRecordOnly.True() {
			continue
		}
		lower := strings.ToLower(l.Name)
		single := containsAny(lower, singleIndicators)
		collection := containsAny(lower, collectionIndicators)
		if single && !collection {
			names = append(names, l.Name)
		}
	}
	return names
}

// PossiblyUncheckedLookups names Get Records elements that may lack a
// following null check. Heuristic: with fewer decisions than lookups,
// the surplus lookups are the likely unchecked ones.
func (f *Flow) PossiblyUncheckedLookups() []string {
	lookups := len(f.RecordLookups)
	decisions := len(f.Decisions)
	if lookups == 0 || decisions >= lookups {
		return nil
	}
	var names []string
	for _, l := range f.RecordLookups {
		names = append(names, nameOrUnknown(l.Name))
	}
	return names[:lookups-decisions]
}

// HasErrorLogging reports whether any subflow call reaches a LogError
// flow, the convention for structured fault logging.
func (f *Flow) HasErrorLogging() bool {
	for _, s := range f.Subflows {
		if strings.Contains(s.FlowName, "LogError") {
			return true
		}
	}
	return false
}

// BypassesPermissions reports whether the flow runs in system mode, which
// skips field- and object-level security checks.
func (f *Flow) BypassesPermissions() bool {
	return strings.Contains(f.RunInMode, "SystemMode")
}

// sensitiveFieldRe matches field names that usually carry regulated data.
var sensitiveFieldRe = regexp.MustCompile(`(?i)(ssn|social.*security|password|credit.*card|bank.*account|routing.*number|tax.*id|driver.*license|passport|pin.*code)`)

// SensitiveFields returns the distinct regulated-looking field names the
// flow filters on or writes to. Queried fields are reads and are not
// reported.
func (f *Flow) SensitiveFields() []string {
	seen := make(map[string]bool)
	var fields []string
	record := func(field string) {
		if field == "" || seen[field] || !sensitiveFieldRe.MatchString(field) {
			return
		}
		seen[field] = true
		fields = append(fields, field)
	}

	for _, l := range f.RecordLookups {
		for _, flt := range l.Filters {
			record(flt.Field)
		}
	}
	for _, group := range [][]DMLElement{f.RecordCreates, f.RecordUpdates, f.RecordDeletes} {
		for _, e := range group {
			for _, flt := range e.Filters {
				record(flt.Field)
			}
			for _, a := range e.InputAssignments {
				record(a.Field)
			}
		}
	}
	return fields
}

func nameOrUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
