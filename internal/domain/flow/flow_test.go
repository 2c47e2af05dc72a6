package flow_test

import (
	"testing"

	"github.com/forcekit/forcekit/internal/domain/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triggeredFlowXML = `<?xml version="1.0" encoding="UTF-8"?>
<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <apiVersion>62.0</apiVersion>
    <label>RTF_Account_UpdateIndustry</label>
    <description>Keeps contact industry fields in sync when an account changes.</description>
    <processType>AutoLaunchedFlow</processType>
    <status>Active</status>
    <start>
        <object>Account</object>
        <triggerType>RecordAfterSave</triggerType>
    </start>
    <decisions>
        <name>Check_Contacts_Found</name>
        <label>Check contacts found</label>
    </decisions>
    <recordLookups>
        <name>Get_Related_Contacts</name>
        <object>Contact</object>
        <storeOutputAutomatically>false</storeOutputAutomatically>
        <queriedFields>Id</queriedFields>
        <queriedFields>Industry__c</queriedFields>
        <filters>
            <field>AccountId</field>
        </filters>
    </recordLookups>
    <recordUpdates>
        <name>Update_Contacts</name>
        <object>Contact</object>
        <faultConnector>
            <targetReference>Log_Failure</targetReference>
        </faultConnector>
        <inputAssignments>
            <field>Industry__c</field>
        </inputAssignments>
    </recordUpdates>
    <subflows>
        <name>Log_Failure</name>
        <flowName>Sub_LogError</flowName>
    </subflows>
    <variables>
        <name>var_SkipSync</name>
        <dataType>Boolean</dataType>
        <isCollection>false</isCollection>
        <isInput>true</isInput>
        <isOutput>false</isOutput>
    </variables>
</Flow>`

func TestParse_TriggeredFlow(t *testing.T) {
	f, err := flow.Parse([]byte(triggeredFlowXML))
	require.NoError(t, err)

	assert.Equal(t, "RTF_Account_UpdateIndustry", f.Label)
	assert.Equal(t, "AutoLaunchedFlow", f.ProcessType)
	assert.Equal(t, 62.0, f.APIVersionValue())
	assert.True(t, f.IsRecordTriggered())
	assert.True(t, f.IsActive())
	assert.False(t, f.IsScheduled())
	assert.Equal(t, "Account", f.TriggerObject())

	assert.Equal(t, 1, f.DMLCount())
	assert.Equal(t, 1, f.DMLWithFaultPaths())
	assert.Equal(t, "1/1", f.FaultCoverage())
	assert.True(t, f.HasErrorLogging())
	assert.True(t, f.HasInputOutput())
	assert.False(t, f.HasDMLInLoops())
	assert.False(t, f.BypassesPermissions())
}

func TestParse_InvalidXML(t *testing.T) {
	_, err := flow.Parse([]byte("this is not xml <<<"))
	require.Error(t, err)
}

func TestFaultCoverage_NoDMLReportsNA(t *testing.T) {
	f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Screen_CollectFeedback</label>
    <processType>Flow</processType>
    <recordLookups>
        <name>Get_Survey</name>
        <object>Survey__c</object>
        <filters><field>Id</field></filters>
    </recordLookups>
</Flow>`))
	require.NoError(t, err)

	assert.Equal(t, 0, f.DMLCount())
	assert.Equal(t, "N/A", f.FaultCoverage())
}

func TestHasDMLInLoops_CoarseHeuristic(t *testing.T) {
	f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Auto_ProcessOrders</label>
    <processType>AutoLaunchedFlow</processType>
    <loops><name>Loop_Over_Orders</name></loops>
    <recordUpdates><name>Update_Order</name><object>Order</object></recordUpdates>
</Flow>`))
	require.NoError(t, err)

	assert.True(t, f.HasDMLInLoops())
	assert.Equal(t, "0/1", f.FaultCoverage())
}

func TestLookupInspection(t *testing.T) {
	f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>RTF_Account_Refresh</label>
    <start>
        <object>Account</object>
        <triggerType>RecordBeforeSave</triggerType>
    </start>
    <recordLookups>
        <name>Get_Account_Again</name>
        <object>Account</object>
        <storeOutputAutomatically>true</storeOutputAutomatically>
    </recordLookups>
    <recordLookups>
        <name>col_OpenCases</name>
        <object>Case</object>
        <filters><field>Status</field></filters>
    </recordLookups>
</Flow>`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Get_Account_Again"}, f.StoreAllFieldsLookups())
	assert.Equal(t, []string{"Get_Account_Again"}, f.SameObjectLookups())
	assert.Equal(t, []string{"Get_Account_Again"}, f.UnfilteredLookups())

	// Get_Account_Again reads like a single record and lacks
	// getFirstRecordOnly; col_OpenCases is a collection by name.
	assert.Equal(t, []string{"Get_Account_Again"}, f.SingleRecordLookups())

	// Two lookups, zero decisions: both may lack null checks.
	assert.Equal(t, []string{"Get_Account_Again", "col_OpenCases"}, f.PossiblyUncheckedLookups())
}

func TestSensitiveFields(t *testing.T) {
	f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Auto_PayrollSync</label>
    <recordLookups>
        <name>Get_Employee</name>
        <object>Employee__c</object>
        <queriedFields>Password_Hint__c</queriedFields>
        <filters><field>SSN__c</field></filters>
        <filters><field>Name</field></filters>
    </recordLookups>
    <recordUpdates>
        <name>Update_Employee</name>
        <object>Employee__c</object>
        <filters><field>Credit_Card_Token__c</field></filters>
        <inputAssignments><field>Bank_Account_Number__c</field></inputAssignments>
        <inputAssignments><field>Status__c</field></inputAssignments>
    </recordUpdates>
</Flow>`))
	require.NoError(t, err)

	fields := f.SensitiveFields()
	assert.ElementsMatch(t, []string{"SSN__c", "Credit_Card_Token__c", "Bank_Account_Number__c"}, fields)
}

func TestBypassesPermissions(t *testing.T) {
	for mode, want := range map[string]bool{
		"SystemModeWithoutSharing": true,
		"SystemModeWithSharing":    true,
		"DefaultMode":              false,
		"":                         false,
	} {
		f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Auto_Test</label>
    <runInMode>` + mode + `</runInMode>
</Flow>`))
		require.NoError(t, err)
		assert.Equal(t, want, f.BypassesPermissions(), "mode %q", mode)
	}
}

func TestIsScheduled(t *testing.T) {
	f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Scheduled_NightlyCleanup</label>
    <status>Active</status>
    <start>
        <triggerType>Scheduled</triggerType>
        <schedule>
            <frequency>Daily</frequency>
            <startDate>2026-01-01</startDate>
        </schedule>
    </start>
</Flow>`))
	require.NoError(t, err)

	assert.True(t, f.IsScheduled())
	assert.True(t, f.IsActive())
	assert.False(t, f.IsRecordTriggered())
}

func TestAPIVersionValue_Malformed(t *testing.T) {
	f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata">
    <label>Auto_Test</label>
    <apiVersion>not-a-number</apiVersion>
</Flow>`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.APIVersionValue())
}

func TestLabelOrUnknown(t *testing.T) {
	f, err := flow.Parse([]byte(`<Flow xmlns="http://soap.sforce.com/2006/04/metadata"></Flow>`))
	require.NoError(t, err)
	assert.Equal(t, "Unknown", f.LabelOrUnknown())
}
