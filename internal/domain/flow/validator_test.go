package flow_test

import (
	"strings"
	"testing"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateFlow(t *testing.T, xml string) *domain.ValidationReport {
	t.Helper()
	art := domain.NewArtifact("Example.flow-meta.xml", xml)
	return flow.Validate(art, domain.DefaultConfig())
}

func flowCategory(t *testing.T, r *domain.ValidationReport, name string) domain.CategoryResult {
	t.Helper()
	for _, c := range r.Categories {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %s not found", name)
	return domain.CategoryResult{}
}

func flowIssues(r *domain.ValidationReport, rule string) []domain.Issue {
	var out []domain.Issue
	for _, i := range r.Issues {
		if i.Rule == rule {
			out = append(out, i)
		}
	}
	return out
}

func TestValidate_CleanTriggeredFlowScoresFull(t *testing.T) {
	r := validateFlow(t, triggeredFlowXML)

	assert.Equal(t, 110, r.MaxScore)
	assert.Equal(t, 110, r.Score, "issues: %v", r.Issues)
	assert.Equal(t, 5, r.Stars)
	assert.Equal(t, "Excellent", r.Rating)
	assert.Empty(t, r.Issues)

	require.NotNil(t, r.Meta)
	assert.Equal(t, "RTF_Account_UpdateIndustry", r.Meta["flow_label"])
	assert.Equal(t, "62.0", r.Meta["api_version"])
	assert.Equal(t, "1/1", r.Meta["fault_coverage"])
}

func TestValidate_DMLInLoopCostsLogicAndPerformance(t *testing.T) {
	r := validateFlow(t, `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>Auto_ProcessOrders</label>
    <description>Processes open orders and updates their shipping status.</description>
    <processType>AutoLaunchedFlow</processType>
    <loops><name>Loop_Over_Orders</name></loops>
    <recordUpdates><name>Update_Order</name><object>Order</object></recordUpdates>
    <variables>
        <name>inp_OrderIds</name>
        <dataType>String</dataType>
        <isCollection>true</isCollection>
        <isInput>true</isInput>
    </variables>
</Flow>`)

	logic := flowCategory(t, r, "logic_structure")
	perf := flowCategory(t, r, "performance_bulk")
	assert.Equal(t, 10, logic.Score)
	assert.Equal(t, 10, perf.Score)

	// One CRITICAL issue, not two: the performance cost rides along.
	crits := flowIssues(r, "dml-in-loop")
	require.Len(t, crits, 1)
	assert.Equal(t, domain.SeverityCritical, crits[0].Severity)
	assert.Contains(t, crits[0].Message, "WILL CAUSE BULK FAILURES")

	// Missing fault path (-2) and no error logging (-10).
	eh := flowCategory(t, r, "error_handling")
	assert.Equal(t, 8, eh.Score)
	assert.Equal(t, "0/1", r.Meta["fault_coverage"])

	// 110 - 10 - 10 - 12 = 78 -> 70% -> two stars on the flow ladder.
	assert.Equal(t, 78, r.Score)
	assert.Equal(t, 2, r.Stars)
	assert.Equal(t, "Fair", r.Rating)
}

func TestValidate_NoMutationsMeansNoErrorHandlingDeduction(t *testing.T) {
	r := validateFlow(t, `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>Screen_CollectFeedback</label>
    <description>Collects user feedback through a guided screen sequence.</description>
    <processType>Flow</processType>
    <screens><name>Feedback_Form</name></screens>
    <decisions><name>Check_Response</name></decisions>
    <recordLookups>
        <name>Get_Survey</name>
        <object>Survey__c</object>
        <filters><field>Id</field></filters>
    </recordLookups>
</Flow>`)

	eh := flowCategory(t, r, "error_handling")
	assert.Equal(t, 20, eh.Score)
	assert.Equal(t, 20, eh.MaxScore)
	assert.Empty(t, eh.Issues)
	assert.Equal(t, "N/A", r.Meta["fault_coverage"])
}

func TestValidate_DesignNamingDeductions(t *testing.T) {
	r := validateFlow(t, `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>process_stuff</label>
    <processType>AutoLaunchedFlow</processType>
    <decisions><name>Decision_1</name></decisions>
    <variables>
        <name>AccountIds</name>
        <dataType>String</dataType>
        <isCollection>true</isCollection>
        <isInput>true</isInput>
    </variables>
</Flow>`)

	design := flowCategory(t, r, "design_naming")
	// -5 name, -5 description, -1 one default name, -1 one variable.
	assert.Equal(t, 8, design.Score)

	name := flowIssues(r, "flow-name-convention")
	require.Len(t, name, 1)
	assert.Contains(t, name[0].Message, `"process_stuff"`)
	assert.Contains(t, name[0].Fix, "Auto_")

	assert.NotEmpty(t, design.Suggestions)
	joined := strings.Join(design.Suggestions, "\n")
	assert.Contains(t, joined, "Decision_1")
	assert.Contains(t, joined, "col_AccountIds")
}

func TestValidate_DefaultNameDeductionCapsAtFive(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>Auto_BulkThing</label>
    <description>Does a great many things to a great many records.</description>
    <processType>AutoLaunchedFlow</processType>
    <variables><name>inp_Ids</name><dataType>String</dataType><isInput>true</isInput></variables>`)
	for i := 0; i < 8; i++ {
		b.WriteString("\n    <assignments><name>Assignment_" + string(rune('1'+i)) + "</name></assignments>")
	}
	b.WriteString("\n</Flow>")

	r := validateFlow(t, b.String())
	design := flowCategory(t, r, "design_naming")
	assert.Equal(t, 15, design.Score)

	issues := flowIssues(r, "default-element-names")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "8 elements use default names")
}

func TestValidate_PerformanceFindings(t *testing.T) {
	r := validateFlow(t, `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>RTF_Account_Enrich</label>
    <description>Enriches accounts with derived fields after every save.</description>
    <processType>AutoLaunchedFlow</processType>
    <start><object>Account</object><triggerType>RecordAfterSave</triggerType></start>
    <decisions><name>Check_Found</name></decisions>
    <recordLookups>
        <name>Get_Account_Details</name>
        <object>Account</object>
        <storeOutputAutomatically>true</storeOutputAutomatically>
    </recordLookups>
    <variables>
        <name>inp_Mode</name>
        <dataType>String</dataType>
        <isInput>true</isInput>
    </variables>
</Flow>`)

	perf := flowCategory(t, r, "performance_bulk")
	// -3 store all fields, -2 same-object query, -2 unfiltered lookup.
	assert.Equal(t, 13, perf.Score)

	store := flowIssues(r, "store-all-fields")
	require.Len(t, store, 1)
	assert.Equal(t, domain.SeverityWarning, store[0].Severity)
	assert.Contains(t, store[0].Message, "Get_Account_Details")

	same := flowIssues(r, "same-object-query")
	require.Len(t, same, 1)
	assert.Contains(t, same[0].Fix, "$Record")

	// getFirstRecordOnly stays advisory: a suggestion, not an issue.
	joined := strings.Join(perf.Suggestions, "\n")
	assert.Contains(t, joined, "getFirstRecordOnly")
}

func TestValidate_LookupVolumeThresholds(t *testing.T) {
	build := func(n int) string {
		var b strings.Builder
		b.WriteString(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>Auto_LookupHeavy</label>
    <description>Queries far too many things in a single run.</description>
    <processType>AutoLaunchedFlow</processType>
    <variables><name>inp_Id</name><dataType>String</dataType><isInput>true</isInput></variables>`)
		for i := 0; i < n; i++ {
			b.WriteString("\n    <recordLookups><name>col_Batch_Lookup_Step</name><object>Case</object><filters><field>Id</field></filters></recordLookups>")
		}
		b.WriteString("\n</Flow>")
		return b.String()
	}

	warn := validateFlow(t, build(51))
	issues := flowIssues(warn, "lookup-count")
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "51 SOQL queries detected")

	advisory := validateFlow(t, build(31))
	issues = flowIssues(advisory, "lookup-count")
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityInfo, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "31 SOQL queries")
}

func TestValidate_SecurityGovernance(t *testing.T) {
	r := validateFlow(t, `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>58.0</apiVersion>
    <label>Auto_PayrollSync</label>
    <description>Synchronizes payroll records into the HR system nightly.</description>
    <processType>AutoLaunchedFlow</processType>
    <status>Active</status>
    <runInMode>SystemModeWithoutSharing</runInMode>
    <start>
        <triggerType>Scheduled</triggerType>
        <schedule><frequency>Daily</frequency></schedule>
    </start>
    <recordLookups>
        <name>rec_Employee</name>
        <object>Employee__c</object>
        <queriedFields>Salary__c</queriedFields>
        <filters><field>SSN__c</field></filters>
        <getFirstRecordOnly>true</getFirstRecordOnly>
    </recordLookups>
    <decisions><name>Check_Employee_Found</name></decisions>
    <variables><name>inp_RunDate</name><dataType>Date</dataType><isInput>true</isInput></variables>
</Flow>`)

	sec := flowCategory(t, r, "security_governance")
	// -3 system mode, -2 sensitive field, -5 old API version.
	assert.Equal(t, 5, sec.Score)

	require.Len(t, flowIssues(r, "system-mode"), 1)
	require.Len(t, flowIssues(r, "sensitive-fields"), 1)

	api := flowIssues(r, "api-version")
	require.Len(t, api, 1)
	assert.Contains(t, api[0].Message, "API version 58.0 is outdated")

	joined := strings.Join(sec.Suggestions, "\n")
	assert.Contains(t, joined, "Active scheduled flow")
}

func TestValidate_MalformedXMLScoresZero(t *testing.T) {
	r := validateFlow(t, "definitely not xml <<<")

	assert.Equal(t, 0, r.Score)
	assert.Equal(t, 110, r.MaxScore)
	assert.Equal(t, 1, r.Stars)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, domain.SeverityCritical, r.Issues[0].Severity)
	assert.Contains(t, r.Issues[0].Message, "could not parse flow XML")
}

func TestValidate_Deterministic(t *testing.T) {
	xml := `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>58.0</apiVersion>
    <label>bad_name</label>
    <processType>AutoLaunchedFlow</processType>
    <loops><name>Loop_1</name></loops>
    <recordUpdates><name>Update_1</name><object>Case</object></recordUpdates>
</Flow>`

	first := validateFlow(t, xml)
	second := validateFlow(t, xml)
	assert.Equal(t, first, second)
}

func TestValidate_SkippedCategoryKeepsFullBudget(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Skip.Categories = []string{"security_governance"}

	art := domain.NewArtifact("Old.flow-meta.xml", `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>45.0</apiVersion>
    <label>Auto_Legacy</label>
    <description>Legacy flow kept around for a subsidiary integration.</description>
    <processType>AutoLaunchedFlow</processType>
    <runInMode>SystemModeWithoutSharing</runInMode>
    <variables><name>inp_Id</name><dataType>String</dataType><isInput>true</isInput></variables>
</Flow>`)
	r := flow.Validate(art, cfg)

	sec := flowCategory(t, r, "security_governance")
	assert.Equal(t, 15, sec.Score)
	assert.Empty(t, sec.Issues)
}

func TestValidate_SkippedRule(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Skip.Rules = []string{"dml-in-loop"}

	art := domain.NewArtifact("Loopy.flow-meta.xml", `<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>Auto_Loopy</label>
    <description>Iterates over orders and updates them one at a time.</description>
    <processType>AutoLaunchedFlow</processType>
    <loops><name>Loop_Orders</name></loops>
    <recordUpdates>
        <name>Update_Order</name>
        <object>Order</object>
        <faultConnector><targetReference>Log_It</targetReference></faultConnector>
    </recordUpdates>
    <subflows><name>Log_It</name><flowName>Sub_LogError</flowName></subflows>
    <variables><name>inp_Ids</name><dataType>String</dataType><isInput>true</isInput></variables>
</Flow>`)
	r := flow.Validate(art, cfg)

	assert.Empty(t, flowIssues(r, "dml-in-loop"))
	assert.Equal(t, 20, flowCategory(t, r, "logic_structure").Score)
	assert.Equal(t, 20, flowCategory(t, r, "performance_bulk").Score)
}
