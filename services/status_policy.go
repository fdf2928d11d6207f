package services

import "garageflow-backend/models"

// StatusPolicy decides whether an invoice may move from one status to another.
type StatusPolicy interface {
	Allows(from, to models.InvoiceStatus) bool
}

// PermissivePolicy lets any known status move to any other known status.
type PermissivePolicy struct{}

func (PermissivePolicy) Allows(from, to models.InvoiceStatus) bool {
	return from.IsValid() && to.IsValid()
}

// GraphPolicy only allows the listed edges. Moving to the same status is
// always allowed.
type GraphPolicy map[models.InvoiceStatus][]models.InvoiceStatus

func (g GraphPolicy) Allows(from, to models.InvoiceStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}
