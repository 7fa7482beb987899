package stock

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestValidator(fx *fixture, opts Options) *Validator {
	return NewValidator(
		&mockMovements{fx: fx},
		&mockLots{fx: fx},
		&mockItems{fx: fx},
		&mockWards{fx: fx},
		&mockMovTypes{fx: fx},
		opts,
	)
}

func messagesOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	return verr.Messages
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateCollectsAllFailures(t *testing.T) {
	fx := newFixture()
	v := newTestValidator(fx, Options{})

	req := &MovementRequest{
		MovTypeCode: "NOPE",
		Date:        time.Now().Add(24 * time.Hour),
		Quantity:    0,
	}
	_, err := v.Validate(context.Background(), req, true)
	msgs := messagesOf(t, err)

	for _, want := range []string{
		"date is in the future",
		"reference number is required",
		"movement type",
		"quantity must be positive",
		"an item is required",
	} {
		if !hasMessage(msgs, want) {
			t.Errorf("expected a message containing %q, got %v", want, msgs)
		}
	}
}

func TestValidateRejectsBackdatedMovement(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{AutomaticLotIn: true})

	d := daysAgo(1)
	fx.movements = append(fx.movements, &Movement{ItemCode: "PARA500", LotCode: "B0", MovTypeCode: "CHG", Date: d, Quantity: 1})

	req := charge("R1", "PARA500", 5, daysAgo(3), LotInput{PreparationDate: daysAgo(10), DueDate: daysAgo(-10)})
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "earlier than the last recorded movement") {
		t.Errorf("expected the backdating failure, got %v", err)
	}
}

func TestValidateChargeRequiresSupplier(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{AutomaticLotIn: true})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{PreparationDate: daysAgo(10), DueDate: daysAgo(-10)})
	req.SupplierCode = nil
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "supplier is required") {
		t.Errorf("expected the supplier failure, got %v", err)
	}
}

func TestValidateDischargeRequiresKnownWard(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{AutomaticLotOut: true})

	req := discharge("R1", "PARA500", 5, daysAgo(1), "")
	req.WardCode = nil
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "ward is required") {
		t.Errorf("expected the missing ward failure, got %v", err)
	}

	req = discharge("R1", "PARA500", 5, daysAgo(1), "")
	req.WardCode = strptr("W9")
	_, err = v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), `ward "W9" not found`) {
		t.Errorf("expected the unknown ward failure, got %v", err)
	}
}

func TestValidateManualChargeRequiresLotCode(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{PreparationDate: daysAgo(10), DueDate: daysAgo(-10)})
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "no lot chosen") {
		t.Errorf("expected the missing lot failure, got %v", err)
	}
}

func TestValidateNewLotDates(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{
		Code:            "B1",
		PreparationDate: daysAgo(-10),
		DueDate:         daysAgo(10),
	})
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "preparation date is after its due date") {
		t.Errorf("expected the date order failure, got %v", err)
	}

	req.Lot = LotInput{Code: "B1"}
	_, err = v.Validate(context.Background(), req, true)
	msgs := messagesOf(t, err)
	if !hasMessage(msgs, "preparation date is required") || !hasMessage(msgs, "due date is required") {
		t.Errorf("expected both date failures, got %v", msgs)
	}
}

func TestValidateLotCostRequiredWhenConfigured(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{LotWithCost: true})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{
		Code:            "B1",
		PreparationDate: daysAgo(10),
		DueDate:         daysAgo(-10),
	})
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "cost must be set and positive") {
		t.Errorf("expected the cost failure, got %v", err)
	}
}

func TestValidateLotLinkedToDifferentItem(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	seedItem(fx, "AMOX250", "Amoxicillin 250mg", 0)
	fx.lots["B1"] = &Lot{Code: "B1", ItemCode: "AMOX250", PreparationDate: daysAgo(10), DueDate: daysAgo(-10)}
	v := newTestValidator(fx, Options{})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{
		Code:            "B1",
		PreparationDate: daysAgo(10),
		DueDate:         daysAgo(-10),
	})
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "belongs to a different item") {
		t.Errorf("expected the ownership failure, got %v", err)
	}
}

func TestValidateLotCodeLength(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{
		Code:            strings.Repeat("X", maxLotCodeLen+1),
		PreparationDate: daysAgo(10),
		DueDate:         daysAgo(-10),
	})
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "lot code exceeds") {
		t.Errorf("expected the code length failure, got %v", err)
	}
}

func TestValidateRefNoAlreadyInUse(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	fx.lots["B0"] = &Lot{Code: "B0", ItemCode: "PARA500"}
	fx.movements = append(fx.movements, &Movement{ItemCode: "PARA500", LotCode: "B0", MovTypeCode: "CHG", Date: daysAgo(5), Quantity: 1, RefNo: "R1"})
	v := newTestValidator(fx, Options{AutomaticLotIn: true})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{PreparationDate: daysAgo(10), DueDate: daysAgo(-10)})
	_, err := v.Validate(context.Background(), req, true)
	if !hasMessage(messagesOf(t, err), "already in use") {
		t.Errorf("expected the reference number failure, got %v", err)
	}
}

func TestValidatePassesResolvesCollaborators(t *testing.T) {
	fx := newFixture()
	seedItem(fx, "PARA500", "Paracetamol 500mg", 0)
	v := newTestValidator(fx, Options{AutomaticLotIn: true})

	req := charge("R1", "PARA500", 5, daysAgo(1), LotInput{PreparationDate: daysAgo(10), DueDate: daysAgo(-10)})
	res, err := v.Validate(context.Background(), req, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.movType == nil || !res.movType.IsCharge() {
		t.Error("expected the movement type resolved")
	}
	if res.item == nil || res.item.Code != "PARA500" {
		t.Error("expected the item resolved")
	}
}
