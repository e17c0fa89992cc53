package qclause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-tracker/constants"
	"github.com/joseph-ayodele/po-tracker/internal/common"
)

func codesOf(es []Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Code)
	}
	return out
}

func TestClassify(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		name    string
		codes   []string
		accept  []string
		review  []string
		object  []string
		unknown []string
		impact  constants.TimesheetImpact
		action  bool
		summary string
	}{
		{
			name:    "none",
			codes:   nil,
			accept:  []string{},
			review:  []string{},
			object:  []string{},
			unknown: []string{},
			impact:  constants.ImpactNone,
			summary: "No Q clauses found",
		},
		{
			name:    "object clauses do not raise impact",
			codes:   []string{"Q1", "Q15", "Q33"},
			accept:  []string{"Q1"},
			review:  []string{},
			object:  []string{"Q15", "Q33"},
			unknown: []string{},
			impact:  constants.ImpactNone,
			action:  true,
			summary: "1 auto-accept; 2 to object",
		},
		{
			name:    "medium review",
			codes:   []string{"Q2", "Q9", "Q26"},
			accept:  []string{"Q26"},
			review:  []string{"Q2", "Q9"},
			object:  []string{},
			unknown: []string{},
			impact:  constants.ImpactMedium,
			summary: "1 auto-accept; 2 need review",
		},
		{
			name:    "high alert review",
			codes:   []string{"Q14", "Q11"},
			accept:  []string{},
			review:  []string{"Q14", "Q11"},
			object:  []string{},
			unknown: []string{},
			impact:  constants.ImpactHigh,
			summary: "2 need review",
		},
		{
			name:    "unknown forces high and action",
			codes:   []string{"Q5", "Q99"},
			accept:  []string{"Q5"},
			review:  []string{},
			object:  []string{},
			unknown: []string{"Q99"},
			impact:  constants.ImpactHigh,
			action:  true,
			summary: "1 auto-accept; 1 unknown",
		},
		{
			name:    "duplicates and case",
			codes:   []string{"q1", "Q1", " Q1 "},
			accept:  []string{"Q1"},
			review:  []string{},
			object:  []string{},
			unknown: []string{},
			impact:  constants.ImpactNone,
			summary: "1 auto-accept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := c.Classify(tt.codes, nil)
			assert.Equal(t, tt.accept, codesOf(a.AcceptClauses))
			assert.Equal(t, tt.review, codesOf(a.ReviewClauses))
			assert.Equal(t, tt.object, codesOf(a.ObjectClauses))
			assert.Equal(t, tt.unknown, codesOf(a.UnknownClauses))
			assert.Equal(t, tt.impact, a.TimesheetImpact)
			assert.Equal(t, tt.action, a.ActionRequired)
			assert.Equal(t, tt.summary, a.Summary)
		})
	}
}

func TestClassifyPartition(t *testing.T) {
	c := NewClassifier(nil, nil)
	inputs := [][]string{
		{"Q1", "Q2", "Q5", "Q9", "Q11", "Q13", "Q14", "Q15", "Q26", "Q32", "Q33"},
		{"Q7", "Q1", "Q7", "Q40", "Q33"},
		{"Q99"},
	}
	for _, in := range inputs {
		a := c.Classify(in, nil)

		seen := map[string]int{}
		for _, code := range a.Codes() {
			seen[code]++
		}
		distinct := map[string]struct{}{}
		for _, code := range in {
			distinct[code] = struct{}{}
		}
		assert.Len(t, seen, len(distinct))
		assert.Equal(t, len(distinct), a.TotalClauses)
		for code, n := range seen {
			assert.Equal(t, 1, n, "code %s in more than one bucket", code)
			_, ok := distinct[code]
			assert.True(t, ok)
		}
	}
}

func TestClassifyDescriptions(t *testing.T) {
	c := NewClassifier(nil, nil)
	a := c.Classify([]string{"Q1", "Q42"}, map[string]string{
		"Q1":  "something OCR mangled",
		"Q42": "EXPORT CONTROL",
	})

	require.Len(t, a.AcceptClauses, 1)
	assert.Equal(t, "QUALITY SYSTEMS REQUIREMENTS", a.AcceptClauses[0].Description)
	assert.Equal(t, "Standard quality compliance - no special handling", a.AcceptClauses[0].Notes)
	require.Len(t, a.UnknownClauses, 1)
	assert.Equal(t, "EXPORT CONTROL", a.UnknownClauses[0].Description)
	assert.Equal(t, constants.BucketUnknown, a.UnknownClauses[0].Bucket)
}

func TestTrackingFields(t *testing.T) {
	c := NewClassifier(nil, nil)

	f := c.Classify([]string{"Q1", "Q5", "Q9", "Q33"}, nil).TrackingFields()
	assert.Equal(t, "Q1, Q5", f["Q_Clauses_Accept"])
	assert.Equal(t, "Q9", f["Q_Clauses_Review"])
	assert.Equal(t, "Q33", f["Q_Clauses_Object"])
	assert.Equal(t, "PENDING_REVIEW", f["Q_Clauses_Status"])
	assert.Equal(t, "MEDIUM", f["Q_Timesheet_Impact"])
	assert.Equal(t, true, f["Q_Action_Required"])

	f = c.Classify([]string{"Q26"}, nil).TrackingFields()
	assert.Equal(t, "ACCEPTED", f["Q_Clauses_Status"])
	assert.Equal(t, "", f["Q_Clauses_Review"])
}

func TestDefaultRuleTable(t *testing.T) {
	rt := DefaultRuleTable()
	assert.Len(t, rt.Codes(), 11)

	r, ok := rt.Lookup("q33")
	require.True(t, ok)
	assert.Equal(t, constants.BucketObject, r.Bucket)
	assert.Equal(t, constants.AlertCritical, r.Alert)

	d, ok := rt.Description("Q26")
	require.True(t, ok)
	assert.Equal(t, "PACKING FOR SHIPMENT", d)

	_, ok = rt.Lookup("Q3")
	assert.False(t, ok)
}

func TestNewRuleTableRejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		field string
	}{
		{name: "bad code", rules: []Rule{{Code: "X1", Bucket: constants.BucketAccept}}, field: "rules[0].code"},
		{name: "unknown bucket", rules: []Rule{{Code: "Q1", Bucket: constants.BucketUnknown}}, field: "rules[0].bucket"},
		{name: "bad alert", rules: []Rule{{Code: "Q1", Bucket: constants.BucketReview, Alert: "LOW"}}, field: "rules[0].alert_level"},
		{
			name: "duplicate",
			rules: []Rule{
				{Code: "Q1", Bucket: constants.BucketAccept},
				{Code: "q1", Bucket: constants.BucketObject},
			},
			field: "rules[1].code",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleTable(tt.rules)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadRuleTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `rules:
  - code: Q1
    description: QUALITY SYSTEMS REQUIREMENTS
    bucket: accept
  - code: Q7
    description: FIRST ARTICLE INSPECTION
    bucket: review
    alert_level: HIGH
    timesheet_impact: true
    notes: FAI report required
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	rt, err := LoadRuleTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q7"}, rt.Codes())

	a := NewClassifier(rt, nil).Classify([]string{"Q7", "Q15"}, nil)
	assert.Equal(t, []string{"Q7"}, codesOf(a.ReviewClauses))
	assert.Equal(t, []string{"Q15"}, codesOf(a.UnknownClauses), "Q15 is not in the override table")
	assert.Equal(t, constants.ImpactHigh, a.TimesheetImpact)
	assert.Equal(t, "FAI report required", a.ReviewClauses[0].Notes)
}

func TestReviewWithoutTimesheetImpact(t *testing.T) {
	rt, err := ParseRuleTable([]byte(`rules:
  - code: Q7
    description: FIRST ARTICLE INSPECTION
    bucket: review
    alert_level: HIGH
    timesheet_impact: false
  - code: Q8
    description: SOURCE INSPECTION
    bucket: review
    alert_level: MEDIUM
    timesheet_impact: true
`))
	require.NoError(t, err)
	c := NewClassifier(rt, nil)

	tests := []struct {
		name   string
		codes  []string
		impact constants.TimesheetImpact
	}{
		{name: "untimed review only", codes: []string{"Q7"}, impact: constants.ImpactNone},
		{name: "timed review", codes: []string{"Q7", "Q8"}, impact: constants.ImpactMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := c.Classify(tt.codes, nil)
			assert.Equal(t, tt.codes, codesOf(a.ReviewClauses))
			assert.Equal(t, tt.impact, a.TimesheetImpact)
			assert.False(t, a.ActionRequired)
		})
	}
}

func TestLoadRuleTableErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("rules: []\n"), 0o600))
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("rules: [\n  - code: Q1\n"), 0o600))

	for _, p := range []string{filepath.Join(dir, "missing.yaml"), empty, broken} {
		_, err := LoadRuleTable(p)
		require.Error(t, err, p)
		assert.True(t, common.HasCode(err, common.CodeConfig), p)
	}
}
