package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
)

// EntryMatching matches a manual entry by verdict and appeal status
func EntryMatching(verdict compliance.VerdictStatus, appeal compliance.AppealStatus) interface{} {
	return mock.MatchedBy(func(e *compliance.ManualEntryValidation) bool {
		return e != nil && e.RiskVerdict == verdict && e.AppealStatus == appeal
	})
}

// EventWithDetail matches a security event of the given type carrying details[key] == value
func EventWithDetail(eventType security.EventType, key, value string) interface{} {
	return mock.MatchedBy(func(e security.SecurityEvent) bool {
		got, ok := e.Details[key]
		return e.EventType == eventType && ok && got == value
	})
}

// TimeWithin matches a time within a duration of expected
func TimeWithin(expected time.Time, delta time.Duration) interface{} {
	return mock.MatchedBy(func(t time.Time) bool {
		diff := t.Sub(expected)
		if diff < 0 {
			diff = -diff
		}
		return diff <= delta
	})
}
