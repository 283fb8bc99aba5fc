package tests

import (
	"context"
	"errors"
	"testing"

	"valet/internal/domain"
	"valet/internal/service"
)

func TestEnqueueMovesVehicleToRequested(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)

	if request.Status != domain.RequestStatusPending {
		t.Errorf("request status = %s, want PENDING", request.Status)
	}
	vehicle := s.repos.Vehicles.GetVehicle(resp.Vehicle.ID)
	if vehicle.Status != domain.VehicleStatusRetrievalRequested {
		t.Errorf("vehicle status = %s, want RETRIEVAL_REQUESTED", vehicle.Status)
	}
}

func TestEnqueueRejectsDuplicateActiveRequest(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	s.enqueue(t, "CARD-001", false)

	_, err := s.retrieval.Enqueue(context.Background(), service.EnqueueRequest{
		CardID:        "CARD-001",
		PaymentMethod: domain.PaymentMethodCash,
	})
	if !errors.Is(err, service.ErrDuplicateActiveRequest) {
		t.Errorf("second enqueue: err = %v, want ErrDuplicateActiveRequest", err)
	}
	if got := s.repos.Requests.CountActive(); got != 1 {
		t.Errorf("active requests = %d, want 1", got)
	}
}

func TestEnqueuePriorityAddsSurcharge(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", true)

	// Within the base window: base fee 15 plus priority 10.
	if request.Amount != 25 {
		t.Errorf("priority amount = %v, want 25", request.Amount)
	}
}

func TestEnqueueOnlinePaymentArrivesConfirmed(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")

	request, err := s.retrieval.Enqueue(context.Background(), service.EnqueueRequest{
		CardID:        "CARD-001",
		PaymentMethod: domain.PaymentMethodOnline,
		PaidOnline:    true,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !request.PaymentConfirmed {
		t.Error("online request should start payment-confirmed")
	}
}

func TestAssignClaimsDriverAndVehicle(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")

	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	stored := s.repos.Requests.GetRequest(request.ID)
	if stored.Status != domain.RequestStatusAssigned {
		t.Errorf("request status = %s, want ASSIGNED", stored.Status)
	}
	if stored.AssignedDriverID != "drv-1" {
		t.Errorf("assigned driver = %q, want drv-1", stored.AssignedDriverID)
	}

	driver := s.repos.Drivers.GetDriver("drv-1")
	if driver.Status != domain.DriverStatusBusy || driver.ActiveRequestID != request.ID {
		t.Errorf("driver = %s/%s, want BUSY holding %s", driver.Status, driver.ActiveRequestID, request.ID)
	}

	vehicle := s.repos.Vehicles.GetVehicle(resp.Vehicle.ID)
	if vehicle.Status != domain.VehicleStatusRetrieving {
		t.Errorf("vehicle status = %s, want RETRIEVING", vehicle.Status)
	}
}

func TestAssignSameRequestTwiceFails(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	s.addDriver("drv-2", "Alex")

	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	err := s.retrieval.Assign(context.Background(), request.ID, "drv-2")
	if !errors.Is(err, service.ErrRequestNotPending) {
		t.Errorf("second assign: err = %v, want ErrRequestNotPending", err)
	}

	// The losing driver must stay available.
	if driver := s.repos.Drivers.GetDriver("drv-2"); driver.Status != domain.DriverStatusAvailable {
		t.Errorf("losing driver status = %s, want AVAILABLE", driver.Status)
	}
}

func TestAssignBusyDriverFails(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "AAA-111", "CARD-001")
	s.checkIn(t, "BBB-222", "CARD-002")
	first := s.enqueue(t, "CARD-001", false)
	second := s.enqueue(t, "CARD-002", false)
	s.addDriver("drv-1", "Sam")

	if err := s.retrieval.Assign(context.Background(), first.ID, "drv-1"); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	err := s.retrieval.Assign(context.Background(), second.ID, "drv-1")
	if !errors.Is(err, service.ErrDriverBusy) {
		t.Errorf("busy driver assign: err = %v, want ErrDriverBusy", err)
	}
}

func TestAssignRespectsRequestLock(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")

	s.locks.ForceAcquireFailure = true
	err := s.retrieval.Assign(context.Background(), request.ID, "drv-1")
	if !errors.Is(err, service.ErrRequestNotPending) {
		t.Errorf("locked request assign: err = %v, want ErrRequestNotPending", err)
	}
}

func TestAdvanceWalksExecutionPath(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	want := []domain.RequestStatus{
		domain.RequestStatusKeysPicked,
		domain.RequestStatusWalking,
		domain.RequestStatusDriving,
		domain.RequestStatusReady,
	}
	from := domain.RequestStatusAssigned
	for _, expected := range want {
		next, err := s.retrieval.Advance(context.Background(), request.ID, from)
		if err != nil {
			t.Fatalf("advance from %s: %v", from, err)
		}
		if next != expected {
			t.Fatalf("advance from %s = %s, want %s", from, next, expected)
		}
		from = next
	}

	if stored := s.repos.Requests.GetRequest(request.ID); stored.ReadyAt.IsZero() {
		t.Error("ready timestamp not stamped")
	}
}

func TestAdvanceRepeatRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := s.retrieval.Advance(context.Background(), request.ID, domain.RequestStatusAssigned); err != nil {
		t.Fatalf("first advance: %v", err)
	}

	// Replaying the same step must be rejected and leave state untouched.
	_, err := s.retrieval.Advance(context.Background(), request.ID, domain.RequestStatusAssigned)
	if !errors.Is(err, service.ErrStatusMismatch) {
		t.Errorf("replayed advance: err = %v, want ErrStatusMismatch", err)
	}
	if stored := s.repos.Requests.GetRequest(request.ID); stored.Status != domain.RequestStatusKeysPicked {
		t.Errorf("status after replay = %s, want KEYS_PICKED", stored.Status)
	}
}

func TestAdvanceFromReadyRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	s.advanceToReady(t, request.ID)

	// READY is not advanceable; completion takes the handover path.
	_, err := s.retrieval.Advance(context.Background(), request.ID, domain.RequestStatusReady)
	if !errors.Is(err, service.ErrInvalidStatus) {
		t.Errorf("advance from READY: err = %v, want ErrInvalidStatus", err)
	}
}

func TestVerifyCardMismatchRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "AAA-111", "CARD-001")
	s.checkIn(t, "BBB-222", "CARD-002")
	request := s.enqueue(t, "CARD-001", false)

	err := s.retrieval.VerifyCard(context.Background(), request.ID, "CARD-002")
	if !errors.Is(err, service.ErrCardMismatch) {
		t.Errorf("wrong card scan: err = %v, want ErrCardMismatch", err)
	}

	if err := s.retrieval.VerifyCard(context.Background(), request.ID, "CARD-001"); err != nil {
		t.Errorf("matching card scan: %v", err)
	}
	if stored := s.repos.Requests.GetRequest(request.ID); !stored.CardVerified {
		t.Error("card not marked verified after matching scan")
	}
}

func TestCompleteRequiresReadyPaymentAndCard(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	ctx := context.Background()

	// Not yet ready.
	if err := s.retrieval.Complete(ctx, request.ID); !errors.Is(err, service.ErrRequestNotReady) {
		t.Errorf("complete before ready: err = %v, want ErrRequestNotReady", err)
	}

	if err := s.retrieval.Assign(ctx, request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	s.advanceToReady(t, request.ID)

	// Ready, but cash not collected.
	if err := s.retrieval.Complete(ctx, request.ID); !errors.Is(err, service.ErrPaymentNotConfirmed) {
		t.Errorf("complete before payment: err = %v, want ErrPaymentNotConfirmed", err)
	}

	if err := s.retrieval.ConfirmPayment(ctx, request.ID, 0); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	// Paid, but the card was never scanned.
	if err := s.retrieval.Complete(ctx, request.ID); !errors.Is(err, service.ErrCardNotVerified) {
		t.Errorf("complete before card scan: err = %v, want ErrCardNotVerified", err)
	}

	if err := s.retrieval.VerifyCard(ctx, request.ID, "CARD-001"); err != nil {
		t.Fatalf("verify card: %v", err)
	}
	if err := s.retrieval.Complete(ctx, request.ID); err != nil {
		t.Errorf("complete with all guards satisfied: %v", err)
	}
}

func TestCompleteReleasesEverything(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	ctx := context.Background()

	if err := s.retrieval.Assign(ctx, request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	s.advanceToReady(t, request.ID)
	if err := s.retrieval.ConfirmPayment(ctx, request.ID, 5); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if err := s.retrieval.VerifyCard(ctx, request.ID, "CARD-001"); err != nil {
		t.Fatalf("verify card: %v", err)
	}
	if err := s.retrieval.Complete(ctx, request.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if vehicle := s.repos.Vehicles.GetVehicle(resp.Vehicle.ID); vehicle.Status != domain.VehicleStatusRetrieved {
		t.Errorf("vehicle status = %s, want RETRIEVED", vehicle.Status)
	}
	if card := s.repos.Cards.GetCard("CARD-001"); card.Status != domain.CardStatusUnbound {
		t.Errorf("card status = %s, want UNBOUND", card.Status)
	}
	if status := s.repos.Hooks.HookStatus(resp.HookNumber); status != domain.HookStatusAvailable {
		t.Errorf("hook %d status = %s, want AVAILABLE", resp.HookNumber, status)
	}
	if driver := s.repos.Drivers.GetDriver("drv-1"); driver.Status != domain.DriverStatusAvailable {
		t.Errorf("driver status = %s, want AVAILABLE", driver.Status)
	}

	record := s.repos.Payments.RecordForRequest(request.ID)
	if record == nil {
		t.Fatal("no payment record written")
	}
	if record.TipAmount != 5 {
		t.Errorf("tip = %v, want 5", record.TipAmount)
	}
	if record.Amount != request.Amount {
		t.Errorf("amount = %v, want %v", record.Amount, request.Amount)
	}
}

func TestCancelPendingRevertsVehicle(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)

	if err := s.retrieval.Cancel(context.Background(), request.ID, "customer changed mind"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stored := s.repos.Requests.GetRequest(request.ID)
	if stored.Status != domain.RequestStatusCancelled {
		t.Errorf("request status = %s, want CANCELLED", stored.Status)
	}
	if stored.CancelReason != "customer changed mind" {
		t.Errorf("cancel reason = %q", stored.CancelReason)
	}
	if vehicle := s.repos.Vehicles.GetVehicle(resp.Vehicle.ID); vehicle.Status != domain.VehicleStatusParked {
		t.Errorf("vehicle status = %s, want PARKED", vehicle.Status)
	}

	// A fresh retrieval for the same vehicle must now be accepted.
	s.enqueue(t, "CARD-001", false)
}

func TestCancelAssignedFreesDriver(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := s.retrieval.Cancel(context.Background(), request.ID, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if driver := s.repos.Drivers.GetDriver("drv-1"); driver.Status != domain.DriverStatusAvailable {
		t.Errorf("driver status after cancel = %s, want AVAILABLE", driver.Status)
	}
}

func TestCancelReadyRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)
	s.addDriver("drv-1", "Sam")
	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	s.advanceToReady(t, request.ID)

	err := s.retrieval.Cancel(context.Background(), request.ID, "")
	if !errors.Is(err, service.ErrCannotCancelReadyRequest) {
		t.Errorf("cancel ready request: err = %v, want ErrCannotCancelReadyRequest", err)
	}
}

func TestCancelCompletedRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	request := s.enqueue(t, "CARD-001", false)

	if err := s.retrieval.Cancel(context.Background(), request.ID, ""); err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	err := s.retrieval.Cancel(context.Background(), request.ID, "")
	if !errors.Is(err, service.ErrRequestNotActive) {
		t.Errorf("cancel terminal request: err = %v, want ErrRequestNotActive", err)
	}
}
