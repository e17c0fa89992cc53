// Package qclause classifies quality clause codes ("Q1", "Q33", ...) found on
// a purchase order against a declarative rule table and aggregates the
// document-level business impact.
package qclause

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/joseph-ayodele/po-tracker/constants"
	"github.com/joseph-ayodele/po-tracker/internal/common"
)

var reCode = regexp.MustCompile(`^Q\d+$`)

// Rule is one entry of the classification table. Only review rules with
// TimesheetImpact raise the timesheet impact; an omitted YAML key means false.
type Rule struct {
	Code            string               `yaml:"code" json:"code"`
	Description     string               `yaml:"description" json:"description"`
	Bucket          constants.Bucket     `yaml:"bucket" json:"bucket"`
	Alert           constants.AlertLevel `yaml:"alert_level,omitempty" json:"alert_level,omitempty"`
	TimesheetImpact bool                 `yaml:"timesheet_impact" json:"timesheet_impact"`
	Notes           string               `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// RuleTable is the single canonical code → rule mapping. It is consulted both
// for clause descriptions during extraction and for bucket assignment.
type RuleTable struct {
	rules map[string]Rule
	order []string
}

// NewRuleTable validates rules and builds a table. Codes are uppercased.
func NewRuleTable(rules []Rule) (*RuleTable, error) {
	t := &RuleTable{rules: make(map[string]Rule, len(rules))}
	v := common.NewValidator()
	for i, r := range rules {
		r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
		field := fmt.Sprintf("rules[%d]", i)
		v.Check(reCode.MatchString(r.Code), field+".code", r.Code, "must look like Q<n>")
		v.Check(r.Bucket.Valid(), field+".bucket", r.Bucket, "must be accept, review or object")
		v.Check(r.Alert.Valid(), field+".alert_level", r.Alert, "must be empty, MEDIUM, HIGH or CRITICAL")
		_, dup := t.rules[r.Code]
		v.Check(!dup, field+".code", r.Code, "is duplicated")
		if v.HasErrors() {
			continue
		}
		t.rules[r.Code] = r
		t.order = append(t.order, r.Code)
	}
	if v.HasErrors() {
		return nil, common.NewAppError(common.CodeConfig, v.ErrorMessage(), common.ErrInvalidConfig)
	}
	return t, nil
}

// Lookup returns the rule for code, if any.
func (t *RuleTable) Lookup(code string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	r, ok := t.rules[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Description returns the table description for code.
func (t *RuleTable) Description(code string) (string, bool) {
	r, ok := t.Lookup(code)
	if !ok {
		return "", false
	}
	return r.Description, true
}

// Rules returns the rules in table order.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, t.rules[c])
	}
	return out
}

// Codes returns the known codes in table order.
func (t *RuleTable) Codes() []string { return slices.Clone(t.order) }

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// ParseRuleTable decodes a YAML document of the form
//
//	rules:
//	  - code: Q1
//	    description: QUALITY SYSTEMS REQUIREMENTS
//	    bucket: accept
func ParseRuleTable(data []byte) (*RuleTable, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, common.NewAppError(common.CodeConfig, "decode rule table", err)
	}
	if len(f.Rules) == 0 {
		return nil, common.ConfigError("rule table has no rules")
	}
	return NewRuleTable(f.Rules)
}

// LoadRuleTable reads a YAML rule table from path.
func LoadRuleTable(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("read rule table %s", path), err)
	}
	return ParseRuleTable(data)
}

// DefaultRules is the built-in classification table.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "Q1", Description: "QUALITY SYSTEMS REQUIREMENTS", Bucket: constants.BucketAccept,
			Notes: "Standard quality compliance - no special handling"},
		{Code: "Q5", Description: "CERTIFICATION OF CONFORMANCE AND RECORD RETENTION", Bucket: constants.BucketAccept,
			Notes: "Standard COC - include in normal process"},
		{Code: "Q26", Description: "PACKING FOR SHIPMENT", Bucket: constants.BucketAccept,
			Notes: "Standard packing - no additional cost"},

		{Code: "Q2", Description: "SURVEILLANCE BY MEGGITT AND RIGHT OF ENTRY", Bucket: constants.BucketReview,
			Alert: constants.AlertMedium, TimesheetImpact: true,
			Notes: "Customer access required - coordinate scheduling"},
		{Code: "Q9", Description: "CORRECTIVE ACTION", Bucket: constants.BucketReview,
			Alert: constants.AlertMedium, TimesheetImpact: true,
			Notes: "CA documentation required - add time for reporting"},
		{Code: "Q11", Description: "SPECIAL PROCESS SOURCES REQUIRED", Bucket: constants.BucketReview,
			Alert: constants.AlertHigh, TimesheetImpact: true,
			Notes: "Verify certifications - may require source approval"},
		{Code: "Q13", Description: "REPORT OF DISCREPANCY # Quality Notification (QN)", Bucket: constants.BucketReview,
			Alert: constants.AlertHigh, TimesheetImpact: true,
			Notes: "QN reporting required - add admin time"},
		{Code: "Q14", Description: "FOREIGN OBJECT DAMAGE (FOD)", Bucket: constants.BucketReview,
			Alert: constants.AlertMedium, TimesheetImpact: true,
			Notes: "FOD prevention measures - additional handling time"},

		{Code: "Q15", Description: "ANTI-TERRORIST POLICY", Bucket: constants.BucketObject,
			Alert: constants.AlertHigh,
			Notes: "Standard objection - conflicts with commercial practices"},
		{Code: "Q32", Description: "FLOWDOWN OF REQUIREMENTS [QUALITY AND ENVIRONMENTAL]", Bucket: constants.BucketObject,
			Alert: constants.AlertHigh,
			Notes: "Flowdown too broad - negotiate specific requirements"},
		{Code: "Q33", Description: "FAR and DOD FAR SUPPLEMENTAL FLOWDOWN PROVISIONS", Bucket: constants.BucketObject,
			Alert: constants.AlertCritical,
			Notes: "FAR inappropriate for commercial work - standard objection"},
	}
}

// DefaultRuleTable builds the table from DefaultRules.
func DefaultRuleTable() *RuleTable {
	t, err := NewRuleTable(DefaultRules())
	if err != nil {
		panic(err) // built-in table is static
	}
	return t
}
