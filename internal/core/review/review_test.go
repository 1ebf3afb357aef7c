package review

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testHeader = Header{Icon: "🔧", Title: "Backend Developer", Affirmation: "Solid backend code."}

func findings(sev Severity, n int) Findings {
	var fs Findings
	for i := 0; i < n; i++ {
		fs.Add(fmt.Sprintf("%s_%d", sev, i), sev, fmt.Sprintf("%s item %d", sev, i))
	}
	return fs
}

func TestCriticalBlocksAndLimits(t *testing.T) {
	fs := append(findings(Warning, 1), findings(Critical, 5)...)
	fs = append(fs, findings(Suggestion, 1)...)

	d := Report{Header: testHeader, Subject: "users.py", Findings: fs}.Decision()

	assert.True(t, d.Block)
	assert.True(t, strings.HasPrefix(d.Message, "🔧 Backend Developer: Reviewing users.py\n🚨 Critical Issues Found:"))
	assert.Equal(t, 3, strings.Count(d.Message, "   • "))
	assert.Contains(t, d.Message, "critical item 2")
	assert.NotContains(t, d.Message, "critical item 3")
	assert.NotContains(t, d.Message, "warning item")
	assert.NotContains(t, d.Message, "suggestion item")
}

func TestNonCriticalLimits(t *testing.T) {
	fs := append(findings(Warning, 4), findings(Suggestion, 4)...)

	d := Report{Header: testHeader, Subject: "app.py", Findings: fs}.Decision()

	assert.False(t, d.Block)
	assert.Equal(t, strings.Join([]string{
		"🔧 Backend Developer: Reviewing app.py",
		"⚠️ Warnings:",
		"   • warning item 0",
		"   • warning item 1",
		"💡 Suggestions:",
		"   • suggestion item 0",
		"   • suggestion item 1",
	}, "\n"), d.Message)
}

func TestOnlySuggestions(t *testing.T) {
	d := Report{Header: testHeader, Subject: "app.py", Findings: findings(Suggestion, 1)}.Decision()
	assert.False(t, d.Block)
	assert.NotContains(t, d.Message, "Warnings")
	assert.Contains(t, d.Message, "💡 Suggestions:")
}

func TestEmptyReport(t *testing.T) {
	d := Report{Header: testHeader, Subject: "app.py", Affirm: true}.Decision()
	assert.False(t, d.Block)
	assert.Equal(t, "🔧 Backend Developer: app.py looks good! Solid backend code.", d.Message)

	d = Report{Header: testHeader, Subject: "npm test"}.Decision()
	assert.Equal(t, "", d.Message)
	assert.False(t, d.Block)
}

func TestCustomLabels(t *testing.T) {
	h := Header{Icon: "🧪", Title: "Tester", Labels: Labels{
		Critical:    "🚨 Critical Test Issues:",
		Warnings:    "⚠️ Test Warnings:",
		Suggestions: "💡 Test Suggestions:",
	}}
	d := Report{Header: h, Subject: "test_calc.py", Findings: findings(Critical, 1)}.Decision()
	assert.Contains(t, d.Message, "🚨 Critical Test Issues:")
}

func TestFindingsHelpers(t *testing.T) {
	var fs Findings
	fs.Add("security_hardcoded_secrets", Critical, "Hardcoded secrets detected")
	fs.Add("database_n_plus_one", Warning, "Possible N+1 query")
	fs.Add("security_authentication", Warning, "Use bcrypt")

	assert.True(t, fs.HasCritical())
	assert.False(t, fs.Of(Warning).HasCritical())
	assert.Equal(t, []string{"Hardcoded secrets detected", "Use bcrypt"}, fs.Security().Messages())
	assert.Len(t, fs.Of(Suggestion), 0)
}

func TestAdvice(t *testing.T) {
	a := Advice{
		Header:      testHeader,
		Topic:       "Database command analysis",
		Warnings:    []string{"Destructive database operation detected - ensure you have backups!"},
		Suggestions: []string{"Consider adding WHERE clause to limit query scope"},
	}
	d := a.Decision()
	assert.False(t, d.Block)
	assert.Equal(t, "🔧 Backend Developer: Database command analysis\n"+
		"   ⚠️ Destructive database operation detected - ensure you have backups!\n"+
		"   💡 Consider adding WHERE clause to limit query scope", d.Message)

	assert.Equal(t, "", Advice{Header: testHeader, Topic: "x"}.Decision().Message)
}
