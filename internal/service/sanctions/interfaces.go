package sanctions

import "context"

// Service defines the denied-party screening interface
type Service interface {
	// CheckSanctions screens a user's compliance passport against the watch lists
	CheckSanctions(ctx context.Context, userID string) (*SanctionCheckResult, error)
	// CheckCompanySanctions screens a company through the company sanctions source
	CheckCompanySanctions(ctx context.Context, companyID string) (*SanctionCheckResult, error)
	// CheckCountrySanctions looks a country code up in the sanctioned country table
	CheckCountrySanctions(ctx context.Context, countryCode string) (*CountrySanctionResult, error)
	// CheckCounterparty dispatches on counterparty type ("user" or "company")
	CheckCounterparty(ctx context.Context, counterpartyID, counterpartyType string) (*SanctionCheckResult, error)
}

// CompanySanctionSource returns the watch lists a company appears on
type CompanySanctionSource interface {
	CompanyListings(ctx context.Context, companyID string) ([]string, error)
}

// NoCompanySanctions never lists a company. It is the default until a
// company registry feed is connected.
type NoCompanySanctions struct{}

func (NoCompanySanctions) CompanyListings(context.Context, string) ([]string, error) {
	return nil, nil
}
