package stock

import (
	"context"
	"errors"
	"testing"
)

func seedLotWithStock(fx *fixture, code, itemCode string, qty, dueInDays int) {
	fx.lots[code] = &Lot{Code: code, ItemCode: itemCode, PreparationDate: daysAgo(90), DueDate: daysAgo(-dueInDays)}
	if qty > 0 {
		fx.movements = append(fx.movements, &Movement{
			ItemCode: itemCode, LotCode: code, MovTypeCode: "CHG", Date: daysAgo(10), Quantity: qty,
		})
	}
}

func TestAllocateConsumesByExpiry(t *testing.T) {
	fx := newFixture()
	seedLotWithStock(fx, "LATE", "PARA500", 20, 180)
	seedLotWithStock(fx, "EARLY", "PARA500", 10, 30)
	a := NewAllocator(&mockLots{fx: fx})

	plan, err := a.Allocate(context.Background(), "PARA500", 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(plan))
	}
	if plan[0].Lot.Code != "EARLY" || plan[0].Quantity != 10 {
		t.Errorf("expected (EARLY, 10) first, got (%s, %d)", plan[0].Lot.Code, plan[0].Quantity)
	}
	if plan[1].Lot.Code != "LATE" || plan[1].Quantity != 5 {
		t.Errorf("expected (LATE, 5) second, got (%s, %d)", plan[1].Lot.Code, plan[1].Quantity)
	}
}

func TestAllocateSkipsEmptyLots(t *testing.T) {
	fx := newFixture()
	seedLotWithStock(fx, "EMPTY", "PARA500", 0, 10)
	seedLotWithStock(fx, "FULL", "PARA500", 8, 60)
	a := NewAllocator(&mockLots{fx: fx})

	plan, err := a.Allocate(context.Background(), "PARA500", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 1 || plan[0].Lot.Code != "FULL" {
		t.Fatalf("expected the empty lot skipped, got %+v", plan)
	}
}

func TestAllocateSingleLotExactFit(t *testing.T) {
	fx := newFixture()
	seedLotWithStock(fx, "B1", "PARA500", 10, 30)
	a := NewAllocator(&mockLots{fx: fx})

	plan, err := a.Allocate(context.Background(), "PARA500", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 1 || plan[0].Quantity != 10 {
		t.Fatalf("expected one slice of 10, got %+v", plan)
	}
}

func TestAllocateInsufficientStock(t *testing.T) {
	fx := newFixture()
	seedLotWithStock(fx, "B1", "PARA500", 10, 30)
	seedLotWithStock(fx, "B2", "PARA500", 5, 60)
	a := NewAllocator(&mockLots{fx: fx})

	_, err := a.Allocate(context.Background(), "PARA500", 16)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestAllocateIgnoresOtherItems(t *testing.T) {
	fx := newFixture()
	seedLotWithStock(fx, "B1", "PARA500", 10, 30)
	seedLotWithStock(fx, "OTHER", "AMOX250", 50, 5)
	a := NewAllocator(&mockLots{fx: fx})

	plan, err := a.Allocate(context.Background(), "PARA500", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 1 || plan[0].Lot.Code != "B1" {
		t.Fatalf("expected only PARA500 lots considered, got %+v", plan)
	}
}
