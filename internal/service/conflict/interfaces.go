package conflict

import "context"

// Service defines the conflict of interest detection interface
type Service interface {
	CheckConflictOfInterest(ctx context.Context, shipperUserID, carrierUserID, orderID string) (*ConflictCheckResult, error)
}

// DirectRelationshipSource scores known links between two parties, in [0,1]
type DirectRelationshipSource interface {
	DirectRelationship(ctx context.Context, shipperUserID, carrierUserID string) (float64, error)
}

// TransactionHistorySource scores how often two parties trade together, in [0,1]
type TransactionHistorySource interface {
	TransactionHistory(ctx context.Context, shipperUserID, carrierUserID string) (float64, error)
}

// NoDirectRelationship reports no link. Default until a relationship registry is wired.
type NoDirectRelationship struct{}

func (NoDirectRelationship) DirectRelationship(context.Context, string, string) (float64, error) {
	return 0, nil
}

// BaselineTransactionHistory reports a constant baseline score
type BaselineTransactionHistory struct {
	Score float64
}

func (b BaselineTransactionHistory) TransactionHistory(context.Context, string, string) (float64, error) {
	return b.Score, nil
}

// DefaultTransactionHistory is the baseline score applied when no trade history is available
const DefaultTransactionHistory = 0.1
