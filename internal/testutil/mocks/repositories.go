package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
	"github.com/stretchr/testify/mock"
)

// ComplianceRepository mock
type ComplianceRepository struct {
	mock.Mock
}

func (m *ComplianceRepository) GetCompliancePassport(ctx context.Context, userID string) (*compliance.CompliancePassport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.CompliancePassport), args.Error(1)
}

// ManualEntryRepository mock
type ManualEntryRepository struct {
	mock.Mock
}

func (m *ManualEntryRepository) Save(ctx context.Context, entry *compliance.ManualEntryValidation) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ManualEntryRepository) UpdateAppealStatus(ctx context.Context, id uuid.UUID, status compliance.AppealStatus, comment *string) error {
	args := m.Called(ctx, id, status, comment)
	return args.Error(0)
}

// EventBus mock
type EventBus struct {
	mock.Mock
}

func (m *EventBus) Publish(ctx context.Context, event security.SecurityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ExpectPublish registers an expectation for one event of the given type
func (m *EventBus) ExpectPublish(eventType security.EventType) *mock.Call {
	return m.On("Publish", mock.Anything, mock.MatchedBy(func(e security.SecurityEvent) bool {
		return e.EventType == eventType
	}))
}

// Published returns every event passed to Publish, in call order
func (m *EventBus) Published() []security.SecurityEvent {
	var events []security.SecurityEvent
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			events = append(events, call.Arguments.Get(1).(security.SecurityEvent))
		}
	}
	return events
}
