package constants

// Bucket is the business action assigned to a quality clause.
type Bucket string

const (
	BucketAccept  Bucket = "accept"
	BucketReview  Bucket = "review"
	BucketObject  Bucket = "object"
	BucketUnknown Bucket = "unknown"
)

// Valid reports whether b is one of the buckets a rule table may assign.
// BucketUnknown is reserved for codes missing from the table.
func (b Bucket) Valid() bool {
	switch b {
	case BucketAccept, BucketReview, BucketObject:
		return true
	}
	return false
}

// AlertLevel grades review and object clauses.
type AlertLevel string

const (
	AlertNone     AlertLevel = ""
	AlertMedium   AlertLevel = "MEDIUM"
	AlertHigh     AlertLevel = "HIGH"
	AlertCritical AlertLevel = "CRITICAL"
)

func (a AlertLevel) Valid() bool {
	switch a {
	case AlertNone, AlertMedium, AlertHigh, AlertCritical:
		return true
	}
	return false
}

// AtLeastHigh is true for HIGH and CRITICAL.
func (a AlertLevel) AtLeastHigh() bool {
	return a == AlertHigh || a == AlertCritical
}

// TimesheetImpact is the document-level impact derived from the clause analysis.
type TimesheetImpact string

const (
	ImpactNone   TimesheetImpact = "NONE"
	ImpactMedium TimesheetImpact = "MEDIUM"
	ImpactHigh   TimesheetImpact = "HIGH"
)

// ClauseStatus is the tracking status written alongside the analysis.
type ClauseStatus string

const (
	ClauseStatusPendingReview ClauseStatus = "PENDING_REVIEW"
	ClauseStatusAccepted      ClauseStatus = "ACCEPTED"
)
