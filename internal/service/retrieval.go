package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"valet/internal/domain"
	internalRedis "valet/internal/redis"
	"valet/internal/repository"
)

const assignLockTTL = 10 * time.Second

// RetrievalService owns the dispatch queue and the per-request state
// machine: enqueueing, driver assignment, step advancement, handover
// completion and cancellation.
type RetrievalService struct {
	requestRepo repository.RequestRepository
	vehicleRepo repository.VehicleRepository
	driverRepo  repository.DriverRepository
	txManager   repository.TxManager
	pricing     *PricingService
	lockStore   internalRedis.LockStoreInterface
	cacheStore  *internalRedis.CacheStore
}

// NewRetrievalService creates a new RetrievalService.
func NewRetrievalService(
	requestRepo repository.RequestRepository,
	vehicleRepo repository.VehicleRepository,
	driverRepo repository.DriverRepository,
	txManager repository.TxManager,
	pricing *PricingService,
	lockStore internalRedis.LockStoreInterface,
	cacheStore *internalRedis.CacheStore,
) *RetrievalService {
	return &RetrievalService{
		requestRepo: requestRepo,
		vehicleRepo: vehicleRepo,
		driverRepo:  driverRepo,
		txManager:   txManager,
		pricing:     pricing,
		lockStore:   lockStore,
		cacheStore:  cacheStore,
	}
}

// EnqueueRequest contains the parameters for requesting a retrieval.
type EnqueueRequest struct {
	CardID        string // Either CardID or VehicleID identifies the vehicle
	VehicleID     string
	IsPriority    bool
	PaymentMethod domain.PaymentMethod
	PaidOnline    bool // Online payments arrive already confirmed
}

// Enqueue creates a retrieval request for a parked vehicle. At most one
// active request may exist per vehicle; the vehicle status compare-and-set
// inside the transaction is what makes the guard hold under concurrency.
func (s *RetrievalService) Enqueue(ctx context.Context, req EnqueueRequest) (*domain.RetrievalRequest, error) {
	if req.CardID == "" && req.VehicleID == "" {
		return nil, ErrInvalidCardID
	}

	var vehicle *domain.Vehicle
	var err error
	if req.CardID != "" {
		vehicle, err = s.vehicleRepo.GetActiveByCardID(ctx, req.CardID)
	} else {
		vehicle, err = s.vehicleRepo.GetByID(ctx, req.VehicleID)
	}
	if err != nil {
		return nil, err
	}

	if vehicle.Status != domain.VehicleStatusParked {
		return nil, ErrDuplicateActiveRequest
	}

	amount := s.pricing.Amount(time.Since(vehicle.CheckInTime), req.IsPriority)

	request := &domain.RetrievalRequest{
		ID:               uuid.New().String(),
		VehicleID:        vehicle.ID,
		CardID:           vehicle.CardID,
		IsPriority:       req.IsPriority,
		PaymentMethod:    req.PaymentMethod,
		Amount:           amount,
		Status:           domain.RequestStatusPending,
		PaymentConfirmed: req.PaidOnline,
		RequestedAt:      time.Now(),
	}

	err = s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		if _, err := r.Requests.GetActiveByVehicleID(ctx, vehicle.ID); err == nil {
			return ErrDuplicateActiveRequest
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		moved, err := r.Vehicles.UpdateStatusFrom(ctx, vehicle.ID,
			domain.VehicleStatusParked, domain.VehicleStatusRetrievalRequested)
		if err != nil {
			return err
		}
		if !moved {
			// Lost the race to another request for the same vehicle.
			return ErrDuplicateActiveRequest
		}

		return r.Requests.Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateQueue(ctx)

	return request, nil
}

// NextPending returns the next request to assign, or ErrNotFound from the
// repository when the queue is empty. Priority requests come first, FIFO
// within each class.
func (s *RetrievalService) NextPending(ctx context.Context) (*domain.RetrievalRequest, error) {
	return s.requestRepo.NextPending(ctx)
}

// Assign claims a pending request for a driver. Racing dispatchers
// serialize on the request lock; whoever reaches the database guard first
// wins and the loser gets ErrRequestNotPending.
func (s *RetrievalService) Assign(ctx context.Context, requestID, driverID string) error {
	if requestID == "" {
		return ErrInvalidRequestID
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireRequestLock(ctx, requestID, assignLockTTL)
		if err != nil {
			return err
		}
		if !locked {
			return ErrRequestNotPending
		}
		defer func() { _ = s.lockStore.ReleaseRequestLock(ctx, requestID) }()
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.Status != domain.RequestStatusPending {
		return ErrRequestNotPending
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return err
	}

	err = s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		claimed, err := r.Drivers.ClaimRequest(ctx, driverID, requestID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrDriverBusy
		}

		assigned, err := r.Requests.AssignFrom(ctx, requestID, driverID, time.Now())
		if err != nil {
			return err
		}
		if !assigned {
			return ErrRequestNotPending
		}

		moved, err := r.Vehicles.UpdateStatusFrom(ctx, request.VehicleID,
			domain.VehicleStatusRetrievalRequested, domain.VehicleStatusRetrieving)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidTransition
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateQueue(ctx)

	return nil
}

// Advance moves a request one step along the driver execution path. The
// caller states the status it believes the request is in; a stale client
// repeating an advance is rejected with ErrStatusMismatch and the state is
// left untouched.
func (s *RetrievalService) Advance(ctx context.Context, requestID string, expected domain.RequestStatus) (domain.RequestStatus, error) {
	if requestID == "" {
		return "", ErrInvalidRequestID
	}

	next, ok := domain.NextRequestStatus(expected)
	if !ok {
		return "", ErrInvalidStatus
	}

	advanced, err := s.requestRepo.AdvanceFrom(ctx, requestID, expected, next)
	if err != nil {
		return "", err
	}

	if !advanced {
		// Distinguish a missing request from a stale expectation.
		if _, err := s.requestRepo.GetByID(ctx, requestID); err != nil {
			return "", err
		}
		return "", ErrStatusMismatch
	}

	s.invalidateQueue(ctx)

	return next, nil
}

// VerifyCard records that the driver scanned the customer's card at the
// stand and it matches the one bound at check-in. Scanning an unrelated
// card is rejected, which catches a driver about to complete the wrong
// vehicle's request.
func (s *RetrievalService) VerifyCard(ctx context.Context, requestID, scannedCardID string) error {
	if requestID == "" {
		return ErrInvalidRequestID
	}
	if scannedCardID == "" {
		return ErrInvalidCardID
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.Status.IsTerminal() {
		return ErrRequestNotActive
	}

	if request.CardID != scannedCardID {
		return ErrCardMismatch
	}

	if _, err := s.requestRepo.SetCardVerified(ctx, requestID); err != nil {
		return err
	}

	return nil
}

// ConfirmPayment records the payment collaborator's confirmation that the
// amount (and any tip) was collected.
func (s *RetrievalService) ConfirmPayment(ctx context.Context, requestID string, tipAmount float64) error {
	if requestID == "" {
		return ErrInvalidRequestID
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.Status.IsTerminal() {
		return ErrRequestNotActive
	}

	if _, err := s.requestRepo.SetPaymentConfirmed(ctx, requestID, tipAmount); err != nil {
		return err
	}

	return nil
}

// Complete finishes the handover: the request must be ready, payment must
// be confirmed and the card scan must have matched. On success the vehicle
// is marked retrieved, the card binding and the hook are released, the
// driver becomes available and a payment record is written, all in one
// transaction.
func (s *RetrievalService) Complete(ctx context.Context, requestID string) error {
	if requestID == "" {
		return ErrInvalidRequestID
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.Status != domain.RequestStatusReady {
		return ErrRequestNotReady
	}
	if !request.PaymentConfirmed {
		return ErrPaymentNotConfirmed
	}
	if !request.CardVerified {
		return ErrCardNotVerified
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
	if err != nil {
		return err
	}

	err = s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		completed, err := r.Requests.CompleteFrom(ctx, requestID, time.Now())
		if err != nil {
			return err
		}
		if !completed {
			return ErrRequestNotReady
		}

		moved, err := r.Vehicles.UpdateStatusFrom(ctx, vehicle.ID,
			domain.VehicleStatusRetrieving, domain.VehicleStatusRetrieved)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidTransition
		}

		// The vehicle is retrieved within this transaction, so the
		// safety predicate passes here and only here.
		released, err := r.Cards.ReleaseIfSafe(ctx, vehicle.CardID)
		if err != nil {
			return err
		}
		if !released {
			return ErrUnsafeToRelease
		}

		// Double release of the hook is tolerated: the guard exists to
		// catch it, not to fail the handover.
		if _, err := r.Hooks.Release(ctx, vehicle.HookNumber); err != nil {
			return err
		}

		if request.AssignedDriverID != "" {
			if _, err := r.Drivers.ReleaseRequest(ctx, request.AssignedDriverID); err != nil {
				return err
			}
		}

		return r.Payments.Create(ctx, &domain.PaymentRecord{
			ID:              uuid.New().String(),
			RequestID:       request.ID,
			VehicleID:       vehicle.ID,
			DriverID:        request.AssignedDriverID,
			Amount:          request.Amount,
			TipAmount:       request.TipAmount,
			PaymentMethod:   request.PaymentMethod,
			DurationMinutes: int(time.Since(vehicle.CheckInTime).Minutes()),
			CreatedAt:       time.Now(),
		})
	})
	if err != nil {
		return err
	}

	s.invalidateQueue(ctx)
	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateHookStats(ctx)
	}

	return nil
}

// Cancel aborts a request that has not yet reached ready. The driver is
// freed and the vehicle returns to parked; the hook and card stay put
// because the car is still on the lot.
func (s *RetrievalService) Cancel(ctx context.Context, requestID, reason string) error {
	if requestID == "" {
		return ErrInvalidRequestID
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.Status == domain.RequestStatusReady {
		return ErrCannotCancelReadyRequest
	}
	if request.Status.IsTerminal() {
		return ErrRequestNotActive
	}

	err = s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		cancelled, err := r.Requests.CancelFrom(ctx, requestID, request.Status, reason, time.Now())
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrStatusMismatch
		}

		vehicle, err := r.Vehicles.GetByID(ctx, request.VehicleID)
		if err != nil {
			return err
		}

		if vehicle.Status != domain.VehicleStatusParked {
			moved, err := r.Vehicles.UpdateStatusFrom(ctx, vehicle.ID, vehicle.Status, domain.VehicleStatusParked)
			if err != nil {
				return err
			}
			if !moved {
				return ErrInvalidTransition
			}
		}

		if request.AssignedDriverID != "" {
			if _, err := r.Drivers.ReleaseRequest(ctx, request.AssignedDriverID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateQueue(ctx)

	return nil
}

// QueueEntry is one row of the dispatch queue snapshot, a request joined
// with the vehicle details the dispatcher needs to read out.
type QueueEntry struct {
	Request *domain.RetrievalRequest
	Vehicle *domain.Vehicle
}

// QueueRow is a flattened queue entry, the shape clients poll for.
type QueueRow struct {
	RequestID      string
	VehicleID      string
	CardID         string
	HookNumber     int
	LicensePlate   string
	SequenceNumber int64
	IsPriority     bool
	Status         domain.RequestStatus
	DriverID       string
	Amount         float64
	RequestedAt    time.Time
}

// QueueSnapshot is a consistent view of the pending and active requests.
type QueueSnapshot struct {
	Total    int
	Priority []QueueRow
	Standard []QueueRow
}

// Queue returns the dispatch queue split into priority and standard
// lanes, each in assignment order. Clients poll this constantly, so the
// flattened rows are served from a short-TTL cache when warm.
func (s *RetrievalService) Queue(ctx context.Context) (*QueueSnapshot, error) {
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetQueue(ctx)
		if err == nil && cached != nil {
			return snapshotFromCache(cached), nil
		}
	}

	requests, err := s.requestRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]QueueRow, 0, len(requests))
	for _, request := range requests {
		vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, QueueRow{
			RequestID:      request.ID,
			VehicleID:      vehicle.ID,
			CardID:         request.CardID,
			HookNumber:     vehicle.HookNumber,
			LicensePlate:   vehicle.LicensePlate,
			SequenceNumber: vehicle.SequenceNumber,
			IsPriority:     request.IsPriority,
			Status:         request.Status,
			DriverID:       request.AssignedDriverID,
			Amount:         request.Amount,
			RequestedAt:    request.RequestedAt,
		})
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetQueue(ctx, cacheFromRows(rows))
	}

	return buildSnapshot(rows), nil
}

func buildSnapshot(rows []QueueRow) *QueueSnapshot {
	snapshot := &QueueSnapshot{Total: len(rows)}
	for _, row := range rows {
		if row.IsPriority {
			snapshot.Priority = append(snapshot.Priority, row)
		} else {
			snapshot.Standard = append(snapshot.Standard, row)
		}
	}
	return snapshot
}

func cacheFromRows(rows []QueueRow) []internalRedis.CachedQueueEntry {
	entries := make([]internalRedis.CachedQueueEntry, len(rows))
	for i, row := range rows {
		entries[i] = internalRedis.CachedQueueEntry{
			RequestID:      row.RequestID,
			VehicleID:      row.VehicleID,
			CardID:         row.CardID,
			HookNumber:     row.HookNumber,
			LicensePlate:   row.LicensePlate,
			SequenceNumber: row.SequenceNumber,
			IsPriority:     row.IsPriority,
			Status:         string(row.Status),
			DriverID:       row.DriverID,
			Amount:         row.Amount,
			RequestedAt:    row.RequestedAt.Format(time.RFC3339Nano),
		}
	}
	return entries
}

func snapshotFromCache(entries []internalRedis.CachedQueueEntry) *QueueSnapshot {
	rows := make([]QueueRow, len(entries))
	for i, entry := range entries {
		requestedAt, _ := time.Parse(time.RFC3339Nano, entry.RequestedAt)
		rows[i] = QueueRow{
			RequestID:      entry.RequestID,
			VehicleID:      entry.VehicleID,
			CardID:         entry.CardID,
			HookNumber:     entry.HookNumber,
			LicensePlate:   entry.LicensePlate,
			SequenceNumber: entry.SequenceNumber,
			IsPriority:     entry.IsPriority,
			Status:         domain.RequestStatus(entry.Status),
			DriverID:       entry.DriverID,
			Amount:         entry.Amount,
			RequestedAt:    requestedAt,
		}
	}
	return buildSnapshot(rows)
}

// PendingHandovers returns requests whose car is at the stand waiting for
// payment and card verification.
func (s *RetrievalService) PendingHandovers(ctx context.Context) ([]QueueEntry, error) {
	requests, err := s.requestRepo.ListByStatus(ctx, domain.RequestStatusReady)
	if err != nil {
		return nil, err
	}

	entries := make([]QueueEntry, 0, len(requests))
	for _, request := range requests {
		vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, QueueEntry{Request: request, Vehicle: vehicle})
	}

	return entries, nil
}

// GetRequest retrieves a request by ID.
func (s *RetrievalService) GetRequest(ctx context.Context, requestID string) (*domain.RetrievalRequest, error) {
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	return s.requestRepo.GetByID(ctx, requestID)
}

func (s *RetrievalService) invalidateQueue(ctx context.Context) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateQueue(ctx)
}
