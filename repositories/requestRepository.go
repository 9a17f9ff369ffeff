package repositories

import (
	"context"
	"fmt"

	"MediLedger/cache"
	"MediLedger/ledger"
	"MediLedger/models"

	"go.uber.org/zap"
)

// RequestRepository reads appointment requests from the ledger and keeps the
// local mirror of them.
type RequestRepository struct {
	ledger ledger.Ledger
	store  *cache.Store
	logger *zap.Logger
}

func NewRequestRepository(l ledger.Ledger, store *cache.Store, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{ledger: l, store: store, logger: logger}
}

// Create writes the request to the ledger and returns its assigned id.
func (r *RequestRepository) Create(ctx context.Context, request models.AppointmentRequest) (string, error) {
	id, err := r.ledger.CreateAppointmentRequest(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to create appointment request: %w", err)
	}
	return id, nil
}

// ListFromLedger returns every request on the ledger.
func (r *RequestRepository) ListFromLedger(ctx context.Context) ([]models.AppointmentRequest, error) {
	requests, err := r.ledger.GetAppointmentRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment requests: %w", err)
	}
	return requests, nil
}

// Resolve records a terminal status for the request on the ledger.
func (r *RequestRepository) Resolve(ctx context.Context, id string, status models.RequestStatus, actorID string) error {
	if err := r.ledger.ResolveAppointmentRequest(ctx, id, status, actorID); err != nil {
		return fmt.Errorf("failed to mark request %s %s: %w", id, status, err)
	}
	return nil
}

// Delete removes the request from the ledger.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	if err := r.ledger.DeleteAppointmentRequest(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment request: %w", err)
	}
	return nil
}

// Cached returns every mirrored request.
func (r *RequestRepository) Cached(ctx context.Context) ([]models.AppointmentRequest, error) {
	return cache.ReadAll[models.AppointmentRequest](ctx, r.store, cache.CollectionRequests)
}

// Mirror adds or replaces the request in the mirror.
func (r *RequestRepository) Mirror(ctx context.Context, request models.AppointmentRequest) {
	err := cache.Update(ctx, r.store, cache.CollectionRequests, func(all []models.AppointmentRequest) []models.AppointmentRequest {
		for i := range all {
			if all[i].ID == request.ID {
				all[i] = request
				return all
			}
		}
		return append(all, request)
	})
	if err != nil {
		r.logger.Warn("failed to mirror appointment request", zap.String("request_id", request.ID), zap.Error(err))
	}
}

// ReplaceAll rewrites the mirror with the ledger's requests. Every request
// is written to the ledger before it is mirrored, so a cached request the
// ledger no longer returns was deleted there.
func (r *RequestRepository) ReplaceAll(ctx context.Context, requests []models.AppointmentRequest) {
	if err := cache.WriteAll(ctx, r.store, cache.CollectionRequests, requests); err != nil {
		r.logger.Warn("failed to refresh request mirror", zap.Error(err))
	}
}

// FindCached returns the mirrored copy of a request, or nil.
func (r *RequestRepository) FindCached(ctx context.Context, id string) (*models.AppointmentRequest, error) {
	all, err := r.Cached(ctx)
	if err != nil {
		return nil, err
	}
	for _, req := range all {
		if req.ID == id {
			return &req, nil
		}
	}
	return nil, nil
}

// Forget removes the request from the mirror.
func (r *RequestRepository) Forget(ctx context.Context, id string) {
	err := cache.Update(ctx, r.store, cache.CollectionRequests, func(all []models.AppointmentRequest) []models.AppointmentRequest {
		kept := all[:0]
		for _, req := range all {
			if req.ID != id {
				kept = append(kept, req)
			}
		}
		return kept
	})
	if err != nil {
		r.logger.Warn("failed to remove appointment request from mirror", zap.String("request_id", id), zap.Error(err))
	}
}
