package mappers

import (
	"subcycle/internal/domain/order"
	"subcycle/internal/infrastructure/persistence/models"
)

// OrderMapper converts orders between the domain and database
// representations.
type OrderMapper struct{}

func NewOrderMapper() *OrderMapper {
	return &OrderMapper{}
}

func (m *OrderMapper) ToModel(ord *order.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:            ord.ID(),
		Status:        ord.Status().String(),
		TotalCents:    ord.TotalCents(),
		DateCreated:   ord.DateCreated(),
		DatePaid:      timePtr(ord.DatePaid()),
		DateCompleted: timePtr(ord.DateCompleted()),
	}
}

func (m *OrderMapper) ToEntity(model *models.OrderModel) (*order.Order, error) {
	status, err := order.ParseStatus(model.Status)
	if err != nil {
		return nil, err
	}

	return order.ReconstructOrder(
		model.ID,
		status,
		model.TotalCents,
		model.DateCreated,
		timeVal(model.DatePaid),
		timeVal(model.DateCompleted),
	), nil
}
