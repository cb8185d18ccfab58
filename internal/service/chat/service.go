package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
)

var (
	ErrMentorRequired  = errors.New("mentor id is required")
	ErrMentorNotFound  = errors.New("mentor not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Service keeps the single live chat session. Opening a chat with another
// mentor discards the previous controller together with its state.
type Service struct {
	mentors     mentor.Store
	transport   ai.Transport
	logger      *zap.Logger
	turnTimeout time.Duration

	mu         sync.RWMutex
	session    *chat.Session
	controller *Controller
}

// NewService bootstraps the in-memory session service.
func NewService(mentors mentor.Store, transport ai.Transport, logger *zap.Logger, turnTimeout time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		mentors:     mentors,
		transport:   transport,
		logger:      logger,
		turnTimeout: turnTimeout,
	}
}

// CreateSession provisions a fresh session bound to a mentor.
func (s *Service) CreateSession(_ context.Context, mentorID string) (chat.Session, error) {
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return chat.Session{}, ErrMentorRequired
	}

	m, ok := s.mentors.FindByID(mentorID)
	if !ok {
		return chat.Session{}, ErrMentorNotFound
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		MentorID:  m.ID,
		CreatedAt: time.Now().UTC(),
	}
	controller := NewController(m, s.transport,
		WithLogger(s.logger),
		WithSessionID(session.ID),
		WithTurnTimeout(s.turnTimeout),
	)

	s.mu.Lock()
	previous := s.controller
	s.session = &session
	s.controller = controller
	s.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	s.logger.Info("session created", zap.String("session", session.ID), zap.String("mentor", m.ID))
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.ID != sessionID {
		return chat.Session{}, ErrSessionNotFound
	}
	return *s.session, nil
}

// Controller returns the controller driving a session.
func (s *Service) Controller(sessionID string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.ID != sessionID {
		return nil, ErrSessionNotFound
	}
	return s.controller, nil
}

// LoadTranscript returns a snapshot of the session state.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) (chat.Transcript, error) {
	controller, err := s.Controller(sessionID)
	if err != nil {
		return chat.Transcript{}, err
	}
	return controller.Snapshot(), nil
}

// DiscardSession drops the session; its in-flight stream is ignored from now on.
func (s *Service) DiscardSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	if s.session == nil || s.session.ID != sessionID {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	controller := s.controller
	s.session = nil
	s.controller = nil
	s.mu.Unlock()

	controller.Close()
	s.logger.Info("session discarded", zap.String("session", sessionID))
	return nil
}

// Shutdown discards whatever session is still open.
func (s *Service) Shutdown() {
	s.mu.Lock()
	controller := s.controller
	s.session = nil
	s.controller = nil
	s.mu.Unlock()

	if controller != nil {
		controller.Close()
	}
}
