package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type Service struct {
	journals Journals
	logger   zerolog.Logger
}

func NewService(journals Journals, logger zerolog.Logger) *Service {
	return &Service{journals: journals, logger: logger}
}

// Submit validates p and appends its journal line. Validation failures match
// ErrValidation; journal failures match ErrPersistence.
func (s *Service) Submit(ctx context.Context, p *Prescription) error {
	if err := Validate(p); err != nil {
		s.logRejected("prescription rejected", err)
		return err
	}
	if err := s.journals.Prescriptions.Append(ctx, Line(p)); err != nil {
		s.logger.Error().Err(err).Msg("failed to write prescription")
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.logger.Info().
		Str("first_name", p.firstName).
		Str("last_name", p.lastName).
		Msg("prescription recorded")
	return nil
}

// AddPrescription reports whether p passed validation and was written.
func (s *Service) AddPrescription(ctx context.Context, p *Prescription) bool {
	return s.Submit(ctx, p) == nil
}

// SubmitRemark validates a remark, writes it to the remark journal and
// records it on p. The remark is kept on p only when the write succeeds.
func (s *Service) SubmitRemark(ctx context.Context, p *Prescription, text, category string) error {
	s.logger.Debug().
		Str("remark", text).
		Int("words", WordCount(text)).
		Int("count", p.RemarkCount()).
		Msg("checking remark")

	if err := ValidateRemark(text, category); err != nil {
		s.logRejected("remark rejected", err)
		return err
	}

	err := p.acceptRemark(text, func() error {
		if err := s.journals.Remarks.Append(ctx, RemarkLine(category, text)); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPersistence) {
			s.logger.Error().Err(err).Msg("failed to write remark")
		} else {
			s.logRejected("remark rejected", err)
		}
		return err
	}

	s.logger.Info().
		Str("category", category).
		Int("count", p.RemarkCount()).
		Msg("remark recorded")
	return nil
}

// AddRemark reports whether the remark was accepted and written.
func (s *Service) AddRemark(ctx context.Context, p *Prescription, text, category string) bool {
	return s.SubmitRemark(ctx, p, text, category) == nil
}

func (s *Service) logRejected(msg string, err error) {
	evt := s.logger.Debug()
	var verr *ValidationError
	if errors.As(err, &verr) {
		evt = evt.Str("field", verr.Field).Str("reason", verr.Reason)
	}
	evt.Msg(msg)
}
