package flow

import (
	"strings"
	"text/template"
)

// docTemplate renders a parsed flow as a markdown reference document.
var docTemplate = template.Must(template.New("flowdoc").Parse(`# Flow: {{.Label}}

{{if .Description}}{{.Description}}{{else}}_No description provided._{{end}}

| Property | Value |
|----------|-------|
| Process type | {{.ProcessType}} |
| API version | {{.APIVersion}} |
| Status | {{.Status}} |
| Run mode | {{.RunMode}} |
{{- if .TriggerObject}}
| Trigger object | {{.TriggerObject}} |
| Trigger type | {{.TriggerType}} |
{{- end}}
| Fault path coverage | {{.FaultCoverage}} |

## Elements

| Element | Count |
|---------|-------|
{{- range .Elements}}
| {{.Name}} | {{.Count}} |
{{- end}}
{{- if .Inputs}}

## Input variables
{{range .Inputs}}
- ` + "`{{.Name}}`" + ` ({{.Type}})
{{- end}}
{{- end}}
{{- if .Outputs}}

## Output variables
{{range .Outputs}}
- ` + "`{{.Name}}`" + ` ({{.Type}})
{{- end}}
{{- end}}
{{- if .Subflows}}

## Subflows
{{range .Subflows}}
- ` + "`{{.}}`" + `
{{- end}}
{{- end}}
`))

type docData struct {
	Label         string
	Description   string
	ProcessType   string
	APIVersion    string
	Status        string
	RunMode       string
	TriggerObject string
	TriggerType   string
	FaultCoverage string
	Elements      []docCount
	Inputs        []docVar
	Outputs       []docVar
	Subflows      []string
}

type docCount struct {
	Name  string
	Count int
}

type docVar struct {
	Name string
	Type string
}

// Document renders a markdown reference for a parsed flow.
func Document(f *Flow) (string, error) {
	data := docData{
		Label:         f.LabelOrUnknown(),
		Description:   strings.TrimSpace(f.Description),
		ProcessType:   orDash(f.ProcessType),
		APIVersion:    apiVersionOrDefault(f),
		Status:        orDash(f.Status),
		RunMode:       orDash(f.RunInMode),
		FaultCoverage: f.FaultCoverage(),
		Elements: []docCount{
			{"Decisions", len(f.Decisions)},
			{"Assignments", len(f.Assignments)},
			{"Loops", len(f.Loops)},
			{"Get Records", len(f.RecordLookups)},
			{"Create Records", len(f.RecordCreates)},
			{"Update Records", len(f.RecordUpdates)},
			{"Delete Records", len(f.RecordDeletes)},
			{"Subflows", len(f.Subflows)},
			{"Screens", len(f.Screens)},
		},
	}
	if f.Start != nil {
		data.TriggerObject = f.Start.Object
		data.TriggerType = f.Start.TriggerType
	}
	for _, v := range f.Variables {
		dv := docVar{Name: v.Name, Type: variableType(v)}
		if v.IsInput.True() {
			data.Inputs = append(data.Inputs, dv)
		}
		if v.IsOutput.True() {
			data.Outputs = append(data.Outputs, dv)
		}
	}
	for _, s := range f.Subflows {
		if s.FlowName != "" {
			data.Subflows = append(data.Subflows, s.FlowName)
		}
	}

	var b strings.Builder
	if err := docTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func variableType(v Variable) string {
	if v.DataType == "SObject" && v.ObjectType != "" {
		t := v.ObjectType
		if v.IsCollection.True() {
			t += " collection"
		}
		return t
	}
	t := orDash(v.DataType)
	if v.IsCollection.True() {
		t += " collection"
	}
	return t
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
