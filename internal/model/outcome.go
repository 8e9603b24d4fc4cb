package model

// ReconcileDecision is the per-record result of a reconciliation pass.
type ReconcileDecision string

const (
	// DecisionVerified: the stored coordinate agreed with the freshly
	// fetched one (or the fetch was inconclusive and existing data kept).
	DecisionVerified ReconcileDecision = "verified"
	// DecisionCorrected: the stored coordinate was overwritten, or a
	// missing coordinate was filled in.
	DecisionCorrected ReconcileDecision = "corrected"
	// DecisionUnresolved: no coordinate stored and none could be fetched.
	DecisionUnresolved ReconcileDecision = "unresolved"
)

// ReconcileOutcome captures one record's reconciliation result. It exists
// only to build the summary report and is never persisted.
type ReconcileOutcome struct {
	Name           string
	Previous       *Coordinate
	Fetched        *Coordinate
	DistanceMeters float64
	Decision       ReconcileDecision
}
