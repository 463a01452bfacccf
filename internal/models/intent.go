// ABOUTME: Intent types produced by the keyword classifier
// ABOUTME: Each incoming message maps to exactly one intent
package models

// Intent represents what the user wants done with the current message
type Intent string

const (
	// IntentGenerate - No routine yet → draft a new week
	IntentGenerate Intent = "generate"

	// IntentEdit - Routine exists → apply the requested correction
	IntentEdit Intent = "edit"

	// IntentApprove - User accepts the draft → persist it
	IntentApprove Intent = "approve"

	// IntentOther - Nothing actionable → reply with help
	IntentOther Intent = "other"
)

// IsValid reports whether the intent is one of the known values
func (i Intent) IsValid() bool {
	switch i {
	case IntentGenerate, IntentEdit, IntentApprove, IntentOther:
		return true
	}
	return false
}

// String returns the intent label
func (i Intent) String() string {
	return string(i)
}
