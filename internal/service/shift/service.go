package shift

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
	"go.uber.org/zap"
)

type ShiftServiceImpl struct {
	shifts shift.ShiftRepository
	tx     database.Transactor
	logger *zap.Logger
}

func (s *ShiftServiceImpl) Create(ctx context.Context, req shift.CreateShiftRequest) (shift.Shift, error) {
	if err := req.Validate(); err != nil {
		return shift.Shift{}, err
	}

	created, err := s.shifts.Create(ctx, shift.Shift{
		Name:                req.Name,
		StartTime:           req.StartTime[:5],
		EndTime:             req.EndTime[:5],
		EarlyCheckInMinutes: req.EarlyCheckInMinutes,
		LateCheckoutMinutes: req.LateCheckoutMinutes,
	})
	if err != nil {
		if errors.Is(err, shift.ErrShiftNameExists) {
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	s.logger.Info("shift created", zap.String("shift_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *ShiftServiceImpl) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	if !validator.IsValidUUID(id) {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return sh, nil
}

func (s *ShiftServiceImpl) List(ctx context.Context, includeDeleted bool) ([]shift.Shift, error) {
	shifts, err := s.shifts.List(ctx, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

func (s *ShiftServiceImpl) Update(ctx context.Context, req shift.UpdateShiftRequest) (shift.Shift, error) {
	if err := req.Validate(); err != nil {
		return shift.Shift{}, err
	}

	current, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return shift.Shift{}, err
	}
	if current.Deleted {
		return shift.Shift{}, shift.ErrShiftNotFound
	}

	current.Name = req.Name
	current.StartTime = req.StartTime[:5]
	current.EndTime = req.EndTime[:5]
	current.EarlyCheckInMinutes = req.EarlyCheckInMinutes
	current.LateCheckoutMinutes = req.LateCheckoutMinutes

	updated, err := s.shifts.Update(ctx, current)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNameExists) || errors.Is(err, shift.ErrShiftNotFound) {
			return shift.Shift{}, err
		}
		return shift.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}

	s.logger.Info("shift updated", zap.String("shift_id", updated.ID))
	return updated, nil
}

// Delete retires the shift. Attendance already recorded against it is kept.
func (s *ShiftServiceImpl) Delete(ctx context.Context, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Deleted {
		return shift.ErrShiftNotFound
	}

	if err := s.shifts.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return shift.ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}

	s.logger.Info("shift deleted", zap.String("shift_id", id))
	return nil
}

// Seed creates or updates every definition by name in one transaction.
// Nothing is written when any definition is invalid.
func (s *ShiftServiceImpl) Seed(ctx context.Context, defs []shift.CreateShiftRequest) ([]shift.Shift, error) {
	for i := range defs {
		if err := defs[i].Validate(); err != nil {
			return nil, fmt.Errorf("shift %d (%s): %w", i+1, defs[i].Name, err)
		}
	}

	seeded := make([]shift.Shift, 0, len(defs))
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, def := range defs {
			sh, err := s.shifts.UpsertByName(ctx, shift.Shift{
				Name:                def.Name,
				StartTime:           def.StartTime[:5],
				EndTime:             def.EndTime[:5],
				EarlyCheckInMinutes: def.EarlyCheckInMinutes,
				LateCheckoutMinutes: def.LateCheckoutMinutes,
			})
			if err != nil {
				return fmt.Errorf("failed to seed shift %s: %w", def.Name, err)
			}
			seeded = append(seeded, sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shifts seeded", zap.Int("count", len(seeded)))
	return seeded, nil
}

func NewShiftService(shiftRepo shift.ShiftRepository, tx database.Transactor, logger *zap.Logger) shift.ShiftService {
	return &ShiftServiceImpl{
		shifts: shiftRepo,
		tx:     tx,
		logger: logger.Named("shift"),
	}
}
