package services

import (
	"context"
	"errors"

	"lodge-backoffice/internal/models"
	"lodge-backoffice/internal/repositories"
)

// PaymentService exposes the ledger reads the back office screens need.
type PaymentService struct {
	payments repositories.PaymentRepository
}

func NewPaymentService(payments repositories.PaymentRepository) *PaymentService {
	return &PaymentService{payments: payments}
}

// ListPayments queries the ledger by room, by period, or by both.
func (s *PaymentService) ListPayments(ctx context.Context, roomNumber, year, month int) ([]*models.PaymentRecord, error) {
	switch {
	case roomNumber > 0 && year > 0 && month > 0:
		record, err := s.payments.FindByNaturalKey(ctx, roomNumber, year, month)
		if errors.Is(err, models.ErrPaymentNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*models.PaymentRecord{record}, nil
	case roomNumber > 0:
		return s.payments.ListByRoom(ctx, roomNumber)
	case year > 0 && month > 0:
		return s.payments.ListByPeriod(ctx, year, month)
	default:
		return nil, errors.New("room number or year and month are required")
	}
}
