// Package groundcontrol is the in-flight help desk: the emergency
// panel's "Call" and "Chat" actions. Questions go to an OpenAI model
// primed with the passenger's flight context; when it cannot be reached
// a built-in responder answers instead.
package groundcontrol

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yegors/skyglyde/internal/config"
	"github.com/yegors/skyglyde/pkg/logger"
)

// ErrEmptyQuestion is returned for a blank question
var ErrEmptyQuestion = errors.New("question is empty")

// Service answers passenger questions
type Service struct {
	primary  Responder
	fallback Responder
	phone    string
	now      func() time.Time
	logger   *logger.Logger
}

// NewService builds the service from configuration. Without an API key
// every question is answered offline.
func NewService(cfg config.GroundControlConfig, log *logger.Logger) *Service {
	log = log.Named("ground-control")

	var primary Responder
	ai, err := NewOpenAIResponder(cfg, log)
	if err != nil {
		log.Warn("OpenAI API key is empty - Ground Control chat answers offline")
	} else {
		primary = ai
	}
	return NewServiceWithResponder(primary, cfg.PhoneNumber, log)
}

// NewServiceWithResponder builds a service around any responder. A nil
// primary answers everything offline.
func NewServiceWithResponder(primary Responder, phoneNumber string, log *logger.Logger) *Service {
	return &Service{
		primary:  primary,
		fallback: CannedResponder{},
		phone:    phoneNumber,
		now:      time.Now,
		logger:   log,
	}
}

// PhoneNumber returns the number the "Call" action dials
func (s *Service) PhoneNumber() string { return s.phone }

// Emergency returns the contact shown by the emergency panel
func (s *Service) Emergency() EmergencyContact {
	return EmergencyContact{PhoneNumber: s.phone, Available: "24/7"}
}

// Ask answers one question. Assistant failures are logged and answered
// by the offline responder, so Ask only fails on a blank question.
func (s *Service) Ask(ctx context.Context, fc FlightContext, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}
	if fc.PhoneNumber == "" {
		fc.PhoneNumber = s.phone
	}

	reply := Reply{Question: question}
	var answer string
	var err error
	if s.primary != nil {
		answer, err = s.primary.Respond(ctx, fc, question)
		if err != nil {
			s.logger.Warn("Ground control assistant failed, answering offline", logger.Error(err))
		}
	}
	if s.primary == nil || err != nil {
		reply.Offline = true
		if answer, err = s.fallback.Respond(ctx, fc, question); err != nil {
			return Reply{}, err
		}
	}

	reply.Answer = Message{
		Role:      RoleGroundControl,
		Content:   answer,
		Timestamp: s.now().UTC(),
	}
	return reply, nil
}
