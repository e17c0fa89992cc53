package qclause

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/po-tracker/constants"
)

// Entry is one detected clause with its classification.
type Entry struct {
	Code        string               `json:"code"`
	Description string               `json:"description"`
	Bucket      constants.Bucket     `json:"bucket"`
	Alert       constants.AlertLevel `json:"alert_level,omitempty"`
	Notes       string               `json:"notes,omitempty"`
}

// Analysis partitions the detected clauses into four disjoint buckets whose
// union is the detected set.
type Analysis struct {
	TotalClauses    int                       `json:"total_clauses"`
	AcceptClauses   []Entry                   `json:"accept_clauses"`
	ReviewClauses   []Entry                   `json:"review_clauses"`
	ObjectClauses   []Entry                   `json:"object_clauses"`
	UnknownClauses  []Entry                   `json:"unknown_clauses"`
	TimesheetImpact constants.TimesheetImpact `json:"timesheet_impact"`
	ActionRequired  bool                      `json:"action_required"`
	Summary         string                    `json:"summary"`
}

// Classifier maps clause codes to buckets using a RuleTable.
type Classifier struct {
	rules  *RuleTable
	logger *slog.Logger
}

func NewClassifier(rules *RuleTable, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = DefaultRuleTable()
	}
	return &Classifier{rules: rules, logger: logger}
}

// Rules returns the table the classifier uses.
func (c *Classifier) Rules() *RuleTable { return c.rules }

// Classify buckets codes in the given order. Duplicate codes are counted once.
// descriptions supplies text for codes the table does not know; table
// descriptions take precedence for known codes.
//
// Impact is NONE, raised to MEDIUM by any review clause whose rule has
// TimesheetImpact and to HIGH by such a clause alerting HIGH or above or by
// any unknown clause. Object-to clauses set ActionRequired without raising
// the impact.
func (c *Classifier) Classify(codes []string, descriptions map[string]string) Analysis {
	a := Analysis{
		AcceptClauses:   []Entry{},
		ReviewClauses:   []Entry{},
		ObjectClauses:   []Entry{},
		UnknownClauses:  []Entry{},
		TimesheetImpact: constants.ImpactNone,
	}

	var timed []Entry // review clauses that affect the timesheet
	seen := make(map[string]struct{}, len(codes))
	for _, raw := range codes {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		rule, ok := c.rules.Lookup(code)
		if !ok {
			a.UnknownClauses = append(a.UnknownClauses, Entry{
				Code:        code,
				Description: descriptions[code],
				Bucket:      constants.BucketUnknown,
			})
			continue
		}
		e := Entry{Code: code, Description: rule.Description, Bucket: rule.Bucket, Alert: rule.Alert, Notes: rule.Notes}
		switch rule.Bucket {
		case constants.BucketAccept:
			a.AcceptClauses = append(a.AcceptClauses, e)
		case constants.BucketReview:
			a.ReviewClauses = append(a.ReviewClauses, e)
			if rule.TimesheetImpact {
				timed = append(timed, e)
			}
		case constants.BucketObject:
			a.ObjectClauses = append(a.ObjectClauses, e)
		}
	}

	a.TotalClauses = len(seen)
	a.ActionRequired = len(a.ObjectClauses) > 0 || len(a.UnknownClauses) > 0
	a.TimesheetImpact = impact(timed, a.UnknownClauses)
	a.Summary = summarize(a)

	c.logger.Debug("quality clauses classified",
		"total", a.TotalClauses,
		"timesheet_impact", a.TimesheetImpact,
		"action_required", a.ActionRequired,
	)
	return a
}

func impact(review, unknown []Entry) constants.TimesheetImpact {
	if len(unknown) > 0 {
		return constants.ImpactHigh
	}
	for _, e := range review {
		if e.Alert.AtLeastHigh() {
			return constants.ImpactHigh
		}
	}
	if len(review) > 0 {
		return constants.ImpactMedium
	}
	return constants.ImpactNone
}

func summarize(a Analysis) string {
	if a.TotalClauses == 0 {
		return "No Q clauses found"
	}
	var parts []string
	if n := len(a.AcceptClauses); n > 0 {
		parts = append(parts, fmt.Sprintf("%d auto-accept", n))
	}
	if n := len(a.ReviewClauses); n > 0 {
		parts = append(parts, fmt.Sprintf("%d need review", n))
	}
	if n := len(a.ObjectClauses); n > 0 {
		parts = append(parts, fmt.Sprintf("%d to object", n))
	}
	if n := len(a.UnknownClauses); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unknown", n))
	}
	return strings.Join(parts, "; ")
}

// Codes lists every classified code: accept, review, object, then unknown.
func (a Analysis) Codes() []string {
	out := make([]string, 0, a.TotalClauses)
	for _, group := range [][]Entry{a.AcceptClauses, a.ReviewClauses, a.ObjectClauses, a.UnknownClauses} {
		for _, e := range group {
			out = append(out, e.Code)
		}
	}
	return out
}

// TrackingFields flattens the analysis into the columns the downstream
// tracking database stores.
func (a Analysis) TrackingFields() map[string]any {
	status := constants.ClauseStatusAccepted
	if a.ActionRequired {
		status = constants.ClauseStatusPendingReview
	}
	return map[string]any{
		"Q_Clauses_Accept":   joinCodes(a.AcceptClauses),
		"Q_Clauses_Review":   joinCodes(a.ReviewClauses),
		"Q_Clauses_Object":   joinCodes(a.ObjectClauses),
		"Q_Clauses_Status":   string(status),
		"Q_Timesheet_Impact": string(a.TimesheetImpact),
		"Q_Action_Required":  a.ActionRequired,
	}
}

func joinCodes(es []Entry) string {
	codes := make([]string, len(es))
	for i, e := range es {
		codes[i] = e.Code
	}
	return strings.Join(codes, ", ")
}
