package conflict

import "github.com/nodeorb/scm-risk-engine/internal/domain/compliance"

// Scoring weights and thresholds
const (
	DirectWeight   = 0.5
	IndirectWeight = 0.3
	HistoryWeight  = 0.2

	CommonCompanyScore = 0.3
	MaxIndirectScore   = 0.8
	ConflictThreshold  = 0.7
)

// Relationship descriptions
const (
	RelationshipDirect   = "Direct relationship detected"
	RelationshipCompany  = "Common companies in history"
	RelationshipFrequent = "Frequent transactions"
)

// Recommendation is the action advised for a conflict score
type Recommendation string

const (
	RecommendBlock           Recommendation = "BLOCK_TRANSACTION"
	RecommendManualReview    Recommendation = "MANUAL_REVIEW_REQUIRED"
	RecommendEnhancedMonitor Recommendation = "ENHANCED_MONITORING"
	RecommendProceed         Recommendation = "PROCEED_NORMAL"
)

// ConflictCheckResult is the outcome of a conflict of interest check
type ConflictCheckResult struct {
	HasConflict           bool                 `json:"has_conflict"`
	ConflictScore         float64              `json:"conflict_score"`
	DetectedRelationships []string             `json:"detected_relationships"`
	RiskLevel             compliance.RiskLevel `json:"risk_level"`
	Recommendation        Recommendation       `json:"recommendation"`
}
