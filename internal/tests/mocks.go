package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"valet/internal/domain"
	"valet/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK HOOK REPOSITORY
// ──────────────────────────────────────────────

// MockHookRepository is a mock implementation of HookRepository.
type MockHookRepository struct {
	mu    sync.RWMutex
	hooks map[int]*domain.Hook
	seq   int64

	// Counters for verification
	AllocateCallCount int32
	ReleaseCallCount  int32

	// Error injection
	AllocateError error
	ReleaseError  error
}

// NewMockHookRepository creates a new mock hook repository.
func NewMockHookRepository() *MockHookRepository {
	return &MockHookRepository{
		hooks: make(map[int]*domain.Hook),
	}
}

func (m *MockHookRepository) Seed(ctx context.Context, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for n := 1; n <= total; n++ {
		if _, ok := m.hooks[n]; !ok {
			m.hooks[n] = &domain.Hook{Number: n, Status: domain.HookStatusAvailable}
		}
	}
	return nil
}

func (m *MockHookRepository) Allocate(ctx context.Context, vehicleID string) (int, error) {
	atomic.AddInt32(&m.AllocateCallCount, 1)
	if m.AllocateError != nil {
		return 0, m.AllocateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	numbers := make([]int, 0, len(m.hooks))
	for n := range m.hooks {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		if m.hooks[n].Status == domain.HookStatusAvailable {
			m.hooks[n].Status = domain.HookStatusOccupied
			m.hooks[n].BoundVehicleID = vehicleID
			return n, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (m *MockHookRepository) Release(ctx context.Context, hookNumber int) (bool, error) {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	if m.ReleaseError != nil {
		return false, m.ReleaseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	hook, ok := m.hooks[hookNumber]
	if !ok || hook.Status != domain.HookStatusOccupied {
		return false, nil
	}
	hook.Status = domain.HookStatusAvailable
	hook.BoundVehicleID = ""
	return true, nil
}

func (m *MockHookRepository) GetByNumber(ctx context.Context, hookNumber int) (*domain.Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hook, ok := m.hooks[hookNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *hook
	return &copy, nil
}

func (m *MockHookRepository) GetAll(ctx context.Context) ([]*domain.Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	numbers := make([]int, 0, len(m.hooks))
	for n := range m.hooks {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	result := make([]*domain.Hook, 0, len(numbers))
	for _, n := range numbers {
		copy := *m.hooks[n]
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockHookRepository) Stats(ctx context.Context) (*domain.HookStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &domain.HookStats{Total: len(m.hooks)}
	for _, hook := range m.hooks {
		if hook.Status == domain.HookStatusAvailable {
			stats.Available++
		} else {
			stats.Occupied++
		}
	}
	return stats, nil
}

func (m *MockHookRepository) NextSequence(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&m.seq, 1), nil
}

// HookStatus returns a hook's status for test assertions.
func (m *MockHookRepository) HookStatus(hookNumber int) domain.HookStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hook, ok := m.hooks[hookNumber]
	if !ok {
		return ""
	}
	return hook.Status
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Counters for verification
	CreateCallCount           int32
	UpdateStatusFromCallCount int32

	// Error injection
	CreateError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetActiveByCardID(ctx context.Context, cardID string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.CardID == cardID && v.Status != domain.VehicleStatusRetrieved {
			copy := *v
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockVehicleRepository) GetActiveByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.LicensePlate == plate && v.Status != domain.VehicleStatusRetrieved {
			copy := *v
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockVehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0)
	for _, v := range m.vehicles {
		if v.Status == status {
			copy := *v
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockVehicleRepository) ListActive(ctx context.Context) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0)
	for _, v := range m.vehicles {
		if v.Status != domain.VehicleStatusRetrieved {
			copy := *v
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SequenceNumber < result[j].SequenceNumber
	})
	return result, nil
}

func (m *MockVehicleRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.VehicleStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusFromCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok || vehicle.Status != from {
		return false, nil
	}
	vehicle.Status = to
	if to == domain.VehicleStatusRetrieved {
		vehicle.CheckOutTime = time.Now()
	}
	return true, nil
}

// GetVehicle returns the stored vehicle for test assertions.
func (m *MockVehicleRepository) GetVehicle(id string) *domain.Vehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vehicles[id]
}

// ──────────────────────────────────────────────
// MOCK CARD REPOSITORY
// ──────────────────────────────────────────────

// MockCardRepository is a mock implementation of CardRepository. The safety
// predicate consults the vehicle repository the same way the SQL NOT EXISTS
// guard consults the vehicles table.
type MockCardRepository struct {
	mu       sync.RWMutex
	cards    map[string]*domain.Card
	vehicles *MockVehicleRepository

	// Counters for verification
	BindCallCount          int32
	ReleaseIfSafeCallCount int32

	// Error injection
	CreateError         error
	BindError           error
	ReleaseIfSafeError  error
	CanSafelyClearError error
}

// NewMockCardRepository creates a new mock card repository backed by the
// given vehicle repository for safety checks.
func NewMockCardRepository(vehicles *MockVehicleRepository) *MockCardRepository {
	return &MockCardRepository{
		cards:    make(map[string]*domain.Card),
		vehicles: vehicles,
	}
}

// AddCard adds a card to the mock repository.
func (m *MockCardRepository) AddCard(card *domain.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.CardID] = card
}

func (m *MockCardRepository) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *card
	m.cards[card.CardID] = &copy
	return nil
}

func (m *MockCardRepository) GetByCardID(ctx context.Context, cardID string) (*domain.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	card, ok := m.cards[cardID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *card
	return &copy, nil
}

func (m *MockCardRepository) Bind(ctx context.Context, cardID, vehicleID string) (bool, error) {
	atomic.AddInt32(&m.BindCallCount, 1)
	if m.BindError != nil {
		return false, m.BindError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[cardID]
	if !ok || card.Status != domain.CardStatusUnbound {
		return false, nil
	}
	card.Status = domain.CardStatusBound
	card.BoundVehicleID = vehicleID
	card.LastUsedAt = time.Now()
	return true, nil
}

func (m *MockCardRepository) ReleaseIfSafe(ctx context.Context, cardID string) (bool, error) {
	atomic.AddInt32(&m.ReleaseIfSafeCallCount, 1)
	if m.ReleaseIfSafeError != nil {
		return false, m.ReleaseIfSafeError
	}
	if !m.vehicleFree(cardID) {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[cardID]
	if !ok || !card.IsBound() {
		return false, nil
	}
	card.Status = domain.CardStatusUnbound
	card.BoundVehicleID = ""
	card.TotalUses++
	card.LastUsedAt = time.Now()
	return true, nil
}

func (m *MockCardRepository) CanSafelyClear(ctx context.Context, cardID string) (bool, error) {
	if m.CanSafelyClearError != nil {
		return false, m.CanSafelyClearError
	}
	return m.vehicleFree(cardID), nil
}

func (m *MockCardRepository) SetStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[cardID]
	if !ok || card.Status != from {
		return false, nil
	}
	card.Status = to
	return true, nil
}

// vehicleFree reports whether no vehicle bound to the card is in custody.
func (m *MockCardRepository) vehicleFree(cardID string) bool {
	if m.vehicles == nil {
		return true
	}
	_, err := m.vehicles.GetActiveByCardID(context.Background(), cardID)
	return errors.Is(err, repository.ErrNotFound)
}

// GetCard returns the stored card for test assertions.
func (m *MockCardRepository) GetCard(cardID string) *domain.Card {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cards[cardID]
}

// ──────────────────────────────────────────────
// MOCK REQUEST REPOSITORY
// ──────────────────────────────────────────────

// MockRequestRepository is a mock implementation of RequestRepository.
type MockRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.RetrievalRequest

	// Counters for verification
	CreateCallCount      int32
	AssignFromCallCount  int32
	AdvanceFromCallCount int32

	// Error injection
	CreateError  error
	AdvanceError error
}

// NewMockRequestRepository creates a new mock request repository.
func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{
		requests: make(map[string]*domain.RetrievalRequest),
	}
}

// AddRequest adds a request to the mock repository.
func (m *MockRequestRepository) AddRequest(request *domain.RetrievalRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[request.ID] = request
}

func (m *MockRequestRepository) Create(ctx context.Context, request *domain.RetrievalRequest) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *request
	m.requests[request.ID] = &copy
	return nil
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*domain.RetrievalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	request, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *request
	return &copy, nil
}

func (m *MockRequestRepository) GetActiveByVehicleID(ctx context.Context, vehicleID string) (*domain.RetrievalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.VehicleID == vehicleID && r.Status.IsActive() {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRequestRepository) NextPending(ctx context.Context) (*domain.RetrievalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pending := m.inDispatchOrder(func(r *domain.RetrievalRequest) bool {
		return r.Status == domain.RequestStatusPending
	})
	if len(pending) == 0 {
		return nil, repository.ErrNotFound
	}
	copy := *pending[0]
	return &copy, nil
}

func (m *MockRequestRepository) ListActive(ctx context.Context) ([]*domain.RetrievalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active := m.inDispatchOrder(func(r *domain.RetrievalRequest) bool {
		return r.Status.IsActive()
	})
	result := make([]*domain.RetrievalRequest, 0, len(active))
	for _, r := range active {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.RetrievalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RetrievalRequest, 0)
	for _, r := range m.requests {
		if r.Status == status {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestedAt.Before(result[j].RequestedAt)
	})
	return result, nil
}

// inDispatchOrder filters requests and orders them the way the DB does:
// priority first, FIFO by requested time within each class.
func (m *MockRequestRepository) inDispatchOrder(keep func(*domain.RetrievalRequest) bool) []*domain.RetrievalRequest {
	result := make([]*domain.RetrievalRequest, 0)
	for _, r := range m.requests {
		if keep(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IsPriority != result[j].IsPriority {
			return result[i].IsPriority
		}
		return result[i].RequestedAt.Before(result[j].RequestedAt)
	})
	return result
}

func (m *MockRequestRepository) AssignFrom(ctx context.Context, id, driverID string, at time.Time) (bool, error) {
	atomic.AddInt32(&m.AssignFromCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != domain.RequestStatusPending {
		return false, nil
	}
	request.Status = domain.RequestStatusAssigned
	request.AssignedDriverID = driverID
	request.AssignedAt = at
	return true, nil
}

func (m *MockRequestRepository) AdvanceFrom(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error) {
	atomic.AddInt32(&m.AdvanceFromCallCount, 1)
	if m.AdvanceError != nil {
		return false, m.AdvanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != from {
		return false, nil
	}
	request.Status = to
	if to == domain.RequestStatusReady {
		request.ReadyAt = time.Now()
	}
	return true, nil
}

func (m *MockRequestRepository) CompleteFrom(ctx context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != domain.RequestStatusReady {
		return false, nil
	}
	request.Status = domain.RequestStatusCompleted
	request.CompletedAt = at
	return true, nil
}

func (m *MockRequestRepository) CancelFrom(ctx context.Context, id string, from domain.RequestStatus, reason string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != from {
		return false, nil
	}
	request.Status = domain.RequestStatusCancelled
	request.CancelReason = reason
	request.CancelledAt = at
	return true, nil
}

func (m *MockRequestRepository) SetPaymentConfirmed(ctx context.Context, id string, tipAmount float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status.IsTerminal() {
		return false, nil
	}
	request.PaymentConfirmed = true
	request.TipAmount = tipAmount
	return true, nil
}

func (m *MockRequestRepository) SetCardVerified(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status.IsTerminal() {
		return false, nil
	}
	request.CardVerified = true
	return true, nil
}

// GetRequest returns the stored request for test assertions.
func (m *MockRequestRepository) GetRequest(id string) *domain.RetrievalRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[id]
}

// CountActive returns the number of non-terminal requests.
func (m *MockRequestRepository) CountActive() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.requests {
		if r.Status.IsActive() {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	ClaimRequestCallCount   int32
	ReleaseRequestCallCount int32

	// Error injection
	CreateError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) ClaimRequest(ctx context.Context, driverID, requestID string) (bool, error) {
	atomic.AddInt32(&m.ClaimRequestCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok || driver.Status != domain.DriverStatusAvailable || driver.ActiveRequestID != "" {
		return false, nil
	}
	driver.Status = domain.DriverStatusBusy
	driver.ActiveRequestID = requestID
	return true, nil
}

func (m *MockDriverRepository) ReleaseRequest(ctx context.Context, driverID string) (bool, error) {
	atomic.AddInt32(&m.ReleaseRequestCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok || driver.ActiveRequestID == "" {
		return false, nil
	}
	driver.Status = domain.DriverStatusAvailable
	driver.ActiveRequestID = ""
	return true, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.PaymentRecord

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		records: make(map[string]*domain.PaymentRecord),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, record *domain.PaymentRecord) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *record
	m.records[record.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByRequestID(ctx context.Context, requestID string) (*domain.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.RequestID == requestID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// RecordForRequest returns the payment record for a request, or nil.
func (m *MockPaymentRepository) RecordForRequest(requestID string) *domain.PaymentRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.RequestID == requestID {
			return r
		}
	}
	return nil
}

// CountRecords returns the number of payment records.
func (m *MockPaymentRepository) CountRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireRequestLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	return m.acquire("lock:request:"+requestID, ttl)
}

func (m *MockLockStore) ReleaseRequestLock(ctx context.Context, requestID string) error {
	return m.release("lock:request:" + requestID)
}

func (m *MockLockStore) AcquireCardLock(ctx context.Context, cardID string, ttl time.Duration) (bool, error) {
	return m.acquire("lock:card:"+cardID, ttl)
}

func (m *MockLockStore) ReleaseCardLock(ctx context.Context, cardID string) error {
	return m.release("lock:card:" + cardID)
}

func (m *MockLockStore) acquire(key string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if expiry, exists := m.locks[key]; exists && time.Now().Before(expiry) {
		return false, nil
	}
	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) release(key string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

// IsLocked checks whether a key is held (for test assertions).
func (m *MockLockStore) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[key]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION MANAGER
// ──────────────────────────────────────────────

// MockTxManager runs the transactional closure directly against the mock
// repositories. There is no rollback: a failing closure may leave partial
// mock state behind, so tests asserting on state after a failed transaction
// must account for that.
type MockTxManager struct {
	repos repository.Repos

	// Counters for verification
	WithinTxCallCount int32

	// Error injection
	BeginError error
}

// NewMockTxManager creates a transaction manager over the given repos.
func NewMockTxManager(repos repository.Repos) *MockTxManager {
	return &MockTxManager{repos: repos}
}

var _ repository.TxManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	atomic.AddInt32(&m.WithinTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.repos)
}

// ──────────────────────────────────────────────
// TEST FIXTURE
// ──────────────────────────────────────────────

// MockRepos bundles one of every mock repository wired together the way
// the real stores are: the card repository's safety predicate reads the
// vehicle repository.
type MockRepos struct {
	Hooks    *MockHookRepository
	Cards    *MockCardRepository
	Vehicles *MockVehicleRepository
	Requests *MockRequestRepository
	Drivers  *MockDriverRepository
	Payments *MockPaymentRepository
}

// NewMockRepos creates a fully wired mock repository set.
func NewMockRepos() *MockRepos {
	vehicles := NewMockVehicleRepository()
	return &MockRepos{
		Hooks:    NewMockHookRepository(),
		Cards:    NewMockCardRepository(vehicles),
		Vehicles: vehicles,
		Requests: NewMockRequestRepository(),
		Drivers:  NewMockDriverRepository(),
		Payments: NewMockPaymentRepository(),
	}
}

// Repos returns the set as the repository bundle services expect.
func (m *MockRepos) Repos() repository.Repos {
	return repository.Repos{
		Hooks:    m.Hooks,
		Cards:    m.Cards,
		Vehicles: m.Vehicles,
		Requests: m.Requests,
		Drivers:  m.Drivers,
		Payments: m.Payments,
	}
}

// TxManager returns a transaction manager over this set.
func (m *MockRepos) TxManager() *MockTxManager {
	return NewMockTxManager(m.Repos())
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
