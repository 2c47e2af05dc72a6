package apex_test

import (
	"strings"
	"testing"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/apex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, name, content string) *domain.ValidationReport {
	t.Helper()
	return apex.Validate(domain.NewArtifact(name, content), domain.DefaultConfig())
}

func issuesByRule(r *domain.ValidationReport, rule string) []domain.Issue {
	var out []domain.Issue
	for _, i := range r.Issues {
		if i.Rule == rule {
			out = append(out, i)
		}
	}
	return out
}

func category(t *testing.T, r *domain.ValidationReport, name string) domain.CategoryResult {
	t.Helper()
	for _, c := range r.Categories {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %s not found", name)
	return domain.CategoryResult{}
}

const unsharedQueryInLoop = `public class AccountSync {
    public void sync(List<Id> ids) {
        for (Id accountId : ids) {
            Account a = [SELECT Id, Name FROM Account WHERE Id = :accountId];
        }
    }
}`

func TestValidate_SelectInLoopWithoutSharing(t *testing.T) {
	r := validate(t, "AccountSync.cls", unsharedQueryInLoop)

	bulk := category(t, r, "bulkification")
	sec := category(t, r, "security")
	assert.LessOrEqual(t, bulk.Score, bulk.MaxScore-10)
	assert.LessOrEqual(t, sec.Score, sec.MaxScore-5)

	soql := issuesByRule(r, "soql-in-loop")
	require.Len(t, soql, 1)
	assert.Equal(t, domain.SeverityCritical, soql[0].Severity)
	assert.Equal(t, 4, soql[0].Line)
	assert.Contains(t, soql[0].Message, "loop started line 3")

	sharing := issuesByRule(r, "missing-sharing")
	require.Len(t, sharing, 1)
	assert.Equal(t, domain.SeverityWarning, sharing[0].Severity)
	assert.Equal(t, 1, sharing[0].Line)
}

func TestValidate_DMLOutsideLoopNeverFlagged(t *testing.T) {
	src := `public with sharing class AccountWriter {
    public void write(List<Account> accounts) {
        insert accounts;
        for (Account a : accounts) {
            a.Name = a.Name.trim();
        }
        update accounts;
    }
}`
	r := validate(t, "AccountWriter.cls", src)
	assert.Empty(t, issuesByRule(r, "dml-in-loop"))
	assert.Empty(t, issuesByRule(r, "soql-in-loop"))
	assert.Equal(t, 25, category(t, r, "bulkification").Score)
}

func TestValidate_DMLInsideLoopAlwaysCritical(t *testing.T) {
	src := `public with sharing class AccountWriter {
    public void write(List<Account> accounts) {
        for (Account a : accounts) { update a; }
    }
}`
	r := validate(t, "AccountWriter.cls", src)
	dml := issuesByRule(r, "dml-in-loop")
	require.Len(t, dml, 1)
	assert.Equal(t, domain.SeverityCritical, dml[0].Severity)
	assert.Equal(t, 3, dml[0].Line)
}

func TestValidate_ScoreWithinBounds(t *testing.T) {
	// Pile up enough violations to exhaust several budgets.
	var b strings.Builder
	b.WriteString("public class bad {\n")
	for i := 0; i < 10; i++ {
		b.WriteString("    public void run() {\n")
		b.WriteString("        for (Account a : accounts) {\n")
		b.WriteString("            insert a;\n")
		b.WriteString("            Account x = [SELECT Id FROM Account];\n")
		b.WriteString("        }\n")
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")

	r := validate(t, "bad.cls", b.String())
	assert.GreaterOrEqual(t, r.Score, 0)
	assert.LessOrEqual(t, r.Score, r.MaxScore)
	assert.Equal(t, 150, r.MaxScore)
	for _, c := range r.Categories {
		assert.GreaterOrEqual(t, c.Score, 0, c.Name)
		assert.LessOrEqual(t, c.Score, c.MaxScore, c.Name)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	first := validate(t, "AccountSync.cls", unsharedQueryInLoop)
	second := validate(t, "AccountSync.cls", unsharedQueryInLoop)
	assert.Equal(t, first, second)
}

func TestValidate_CategoriesSumToTotal(t *testing.T) {
	r := validate(t, "AccountSync.cls", unsharedQueryInLoop)
	sum := 0
	for _, c := range r.Categories {
		sum += c.Score
	}
	assert.Equal(t, r.Score, sum)
	assert.Equal(t, r.CustomScore, sum)
}

func TestValidate_WithoutSharingWarns(t *testing.T) {
	src := `public without sharing class LeadSweeper {
    public void sweep() {}
}`
	r := validate(t, "LeadSweeper.cls", src)
	ws := issuesByRule(r, "without-sharing")
	require.Len(t, ws, 1)
	assert.Equal(t, 1, ws[0].Line)
	assert.Empty(t, issuesByRule(r, "missing-sharing"))
}

func TestValidate_WithSharingClean(t *testing.T) {
	src := `public with sharing class LeadService {
    /** @description fetches leads */
    public List<Lead> fetch() {
        return [SELECT Id FROM Lead LIMIT 10];
    }
}`
	r := validate(t, "LeadService.cls", src)
	assert.Empty(t, issuesByRule(r, "missing-sharing"))
	assert.Empty(t, issuesByRule(r, "without-sharing"))
	assert.Empty(t, issuesByRule(r, "soql-in-loop"))
	assert.Equal(t, 25, category(t, r, "security").Score)
}

func TestValidate_TriggerHasNoSharingExpectation(t *testing.T) {
	src := `trigger AccountTrigger on Account (before insert) {
    AccountService.handle(Trigger.new);
}`
	r := validate(t, "AccountTrigger.trigger", src)
	assert.Empty(t, issuesByRule(r, "missing-sharing"))
}

func TestValidate_DynamicSOQLEscapeSuppression(t *testing.T) {
	unescaped := `public with sharing class Finder {
    public List<SObject> find(String name) {
        return Database.query('SELECT Id FROM Account WHERE Name = \'' + name + '\'');
    }
}`
	r := validate(t, "Finder.cls", unescaped)
	require.Len(t, issuesByRule(r, "unescaped-dynamic-soql"), 1)

	escaped := strings.Replace(unescaped, "+ name +", "+ String.escapeSingleQuotes(name) +", 1)
	r = validate(t, "Finder.cls", escaped)
	assert.Empty(t, issuesByRule(r, "unescaped-dynamic-soql"))
}

func TestValidate_EmptyCatch(t *testing.T) {
	src := `public with sharing class Quiet {
    public void run() {
        try {
            doWork();
        } catch (Exception e) {}
    }
}`
	r := validate(t, "Quiet.cls", src)
	ec := issuesByRule(r, "empty-catch")
	require.Len(t, ec, 1)
	assert.Equal(t, 5, ec[0].Line)
	assert.Equal(t, 10, category(t, r, "error_handling").Score)
}

func TestValidate_MethodNamingSuggestsCamelCase(t *testing.T) {
	src := `public with sharing class Renamer {
    public void DoTheThing() {}
}`
	r := validate(t, "Renamer.cls", src)
	naming := issuesByRule(r, "method-camel-case")
	require.Len(t, naming, 1)
	assert.Contains(t, naming[0].Message, `"DoTheThing"`)
	assert.Contains(t, naming[0].Fix, `"doTheThing"`)
}

func TestValidate_ConstructorNotFlagged(t *testing.T) {
	src := `public with sharing class Builder {
    public Builder Builder() { return this; }
}`
	r := validate(t, "Builder.cls", src)
	assert.Empty(t, issuesByRule(r, "method-camel-case"))
}

func TestValidate_TestFileSkipsMethodNaming(t *testing.T) {
	src := `@isTest
private class RenamerTest {
    public static void RunChecks() {}
}`
	r := validate(t, "RenamerTest.cls", src)
	assert.Empty(t, issuesByRule(r, "method-camel-case"))

	// The same method outside a test file is flagged.
	r = validate(t, "Renamer.cls", `public class Renamer {
    public static void RunChecks() {}
}`)
	assert.Len(t, issuesByRule(r, "method-camel-case"), 1)
}

func TestValidate_LowercaseClassName(t *testing.T) {
	src := `public with sharing class accountHelper {
}`
	r := validate(t, "accountHelper.cls", src)
	naming := issuesByRule(r, "class-pascal-case")
	require.Len(t, naming, 1)
	assert.Contains(t, naming[0].Fix, `"AccountHelper"`)
}

func TestValidate_UndocumentedPublicMethod(t *testing.T) {
	src := `public with sharing class Service {

    public String name() {
        return 'svc';
    }
}`
	r := validate(t, "Service.cls", src)
	doc := issuesByRule(r, "missing-method-doc")
	require.Len(t, doc, 1)
	assert.Equal(t, 3, doc[0].Line)
	assert.Equal(t, 8, category(t, r, "documentation").Score)
}

func TestValidate_DocumentedMethodClean(t *testing.T) {
	src := `public with sharing class Service {
    /** @description returns the service name */
    public String name() {
        return 'svc';
    }
}`
	r := validate(t, "Service.cls", src)
	assert.Empty(t, issuesByRule(r, "missing-method-doc"))
}

func TestValidate_SkipRuleConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Skip.Rules = []string{"soql-in-loop"}
	r := apex.Validate(domain.NewArtifact("AccountSync.cls", unsharedQueryInLoop), cfg)
	assert.Empty(t, issuesByRule(r, "soql-in-loop"))
}

func TestValidate_SkipCategoryConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Skip.Categories = []string{"security"}
	r := apex.Validate(domain.NewArtifact("AccountSync.cls", unsharedQueryInLoop), cfg)
	assert.Equal(t, 25, category(t, r, "security").Score)
	assert.Empty(t, issuesByRule(r, "missing-sharing"))
}

func TestValidate_UntouchedCategoriesStayFull(t *testing.T) {
	r := validate(t, "AccountSync.cls", unsharedQueryInLoop)
	assert.Equal(t, 25, category(t, r, "testing").Score)
	assert.Equal(t, 20, category(t, r, "architecture").Score)
	assert.Equal(t, 10, category(t, r, "performance").Score)
}

func TestValidate_IssuesSortedBySeverity(t *testing.T) {
	r := validate(t, "AccountSync.cls", unsharedQueryInLoop)
	require.NotEmpty(t, r.Issues)
	assert.Equal(t, domain.SeverityCritical, r.Issues[0].Severity)
	for i := 1; i < len(r.Issues); i++ {
		assert.GreaterOrEqual(t,
			domain.SeverityRank(r.Issues[i].Severity),
			domain.SeverityRank(r.Issues[i-1].Severity))
	}
}
