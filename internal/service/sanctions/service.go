package sanctions

import (
	"context"
	"strings"
	"time"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const component = "sanctions"

// service implements the Service interface
type service struct {
	repo      compliance.ComplianceRepository
	companies CompanySanctionSource
	lists     []WatchList
	countries map[string][]string
	logger    *zap.Logger
	metrics   *metrics.Registry
	now       func() time.Time
}

// Config holds the screening data
type Config struct {
	WatchLists          []WatchList
	CountryRestrictions map[string][]string
}

// DefaultConfig returns the built-in screening data
func DefaultConfig() Config {
	return Config{
		WatchLists:          DefaultWatchLists(),
		CountryRestrictions: DefaultCountryRestrictions(),
	}
}

// NewService creates a new sanction checker. A nil company source never lists a company.
func NewService(
	cfg Config,
	repo compliance.ComplianceRepository,
	companies CompanySanctionSource,
	logger *zap.Logger,
	registry *metrics.Registry,
) Service {
	if cfg.WatchLists == nil {
		cfg.WatchLists = DefaultWatchLists()
	}
	if cfg.CountryRestrictions == nil {
		cfg.CountryRestrictions = DefaultCountryRestrictions()
	}
	if companies == nil {
		companies = NoCompanySanctions{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	countries := make(map[string][]string, len(cfg.CountryRestrictions))
	for code, restrictions := range cfg.CountryRestrictions {
		countries[strings.ToUpper(code)] = restrictions
	}

	return &service{
		repo:      repo,
		companies: companies,
		lists:     cfg.WatchLists,
		countries: countries,
		logger:    logger.Named(component),
		metrics:   registry,
		now:       time.Now,
	}
}

func (s *service) notSanctioned() *SanctionCheckResult {
	return &SanctionCheckResult{
		SanctionLists: []string{},
		LastCheck:     s.now(),
		RiskLevel:     compliance.RiskLevelLow,
	}
}

func (s *service) resultFor(matches []string) *SanctionCheckResult {
	if matches == nil {
		matches = []string{}
	}
	return &SanctionCheckResult{
		IsSanctioned:  len(matches) > 0,
		SanctionLists: matches,
		LastCheck:     s.now(),
		RiskLevel:     RiskLevelFor(matches),
	}
}

// CheckSanctions screens the user's passport. A user without a passport is not sanctioned.
func (s *service) CheckSanctions(ctx context.Context, userID string) (result *SanctionCheckResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "CheckSanctions", attribute.String("user_id", userID))
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "user_sanctions", metrics.Outcome(result != nil && result.IsSanctioned, err), time.Since(start))
	}()

	if userID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "user id is required")
	}

	passport, err := s.repo.GetCompliancePassport(ctx, userID)
	if err != nil {
		return nil, errors.NewExternalError("compliance-repository", "failed to load compliance passport").WithCause(err)
	}
	if passport == nil {
		s.logger.Debug("no compliance passport, treating as not sanctioned", zap.String("user_id", userID))
		return s.notSanctioned(), nil
	}

	var matches []string
	for _, list := range s.lists {
		if list.Matches(passport.FullName(), passport.Country()) {
			matches = append(matches, list.Name)
		}
	}

	result = s.resultFor(matches)
	if result.IsSanctioned {
		telemetry.WithTrace(ctx, s.logger).Warn("sanctions match",
			zap.String("user_id", userID),
			zap.Strings("lists", matches),
			zap.String("risk_level", string(result.RiskLevel)),
		)
	}
	return result, nil
}

// CheckCompanySanctions screens a company through the configured source
func (s *service) CheckCompanySanctions(ctx context.Context, companyID string) (result *SanctionCheckResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, component, "CheckCompanySanctions", attribute.String("company_id", companyID))
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.WithSpanError(span, err)
		s.metrics.RecordCheck(ctx, "company_sanctions", metrics.Outcome(result != nil && result.IsSanctioned, err), time.Since(start))
	}()

	if companyID == "" {
		return nil, errors.NewValidationError("INVALID_ID", "company id is required")
	}

	listings, err := s.companies.CompanyListings(ctx, companyID)
	if err != nil {
		return nil, errors.NewExternalError("company-sanctions", "company sanctions lookup failed").WithCause(err)
	}

	result = s.resultFor(listings)
	if result.IsSanctioned {
		telemetry.WithTrace(ctx, s.logger).Warn("company sanctions match",
			zap.String("company_id", companyID),
			zap.Strings("lists", listings),
		)
	}
	return result, nil
}

// CheckCountrySanctions looks the country up in the restriction table
func (s *service) CheckCountrySanctions(ctx context.Context, countryCode string) (*CountrySanctionResult, error) {
	_, span := telemetry.StartServiceSpan(ctx, component, "CheckCountrySanctions", attribute.String("country_code", countryCode))
	defer span.End()

	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		err := errors.NewValidationError("INVALID_COUNTRY", "country code is required")
		telemetry.WithSpanError(span, err)
		return nil, err
	}

	restrictions, sanctioned := s.countries[code]
	result := &CountrySanctionResult{
		CountryCode:   code,
		IsSanctioned:  sanctioned,
		SanctionLists: []string{},
		Restrictions:  []string{},
	}
	if sanctioned {
		result.SanctionLists = append(result.SanctionLists, CountrySanctionLists...)
		result.Restrictions = append(result.Restrictions, restrictions...)
	}
	return result, nil
}

// CheckCounterparty dispatches case-insensitively; unknown types are not sanctioned
func (s *service) CheckCounterparty(ctx context.Context, counterpartyID, counterpartyType string) (*SanctionCheckResult, error) {
	switch strings.ToLower(counterpartyType) {
	case "user":
		return s.CheckSanctions(ctx, counterpartyID)
	case "company":
		return s.CheckCompanySanctions(ctx, counterpartyID)
	default:
		s.logger.Debug("unknown counterparty type",
			zap.String("counterparty_id", counterpartyID),
			zap.String("counterparty_type", counterpartyType),
		)
		return s.notSanctioned(), nil
	}
}
