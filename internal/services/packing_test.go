package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"order-fulfillment-service/internal/domain"
)

func TestCreateBoxUnknownOrder(t *testing.T) {
	e := newEngine()

	_, err := e.packing.CreateBox(context.Background(), "OC:9:999")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestCreateBoxRefreshesOnMiss(t *testing.T) {
	e := newEngine()

	// warm the cache, then add a new order in the ERP behind its back
	if _, err := e.content.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.erp.Headers = append(e.erp.Headers, e.erp.Headers[0])
	e.erp.Headers[1].Number = 101

	boxID, err := e.packing.CreateBox(context.Background(), "OC:1:101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if boxID != 1 {
		t.Fatalf("box id = %d, want 1", boxID)
	}
}

func TestAddUnitRejectsForeignArticle(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	boxID, err := e.packing.CreateBox(ctx, testOrderKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = e.packing.AddUnit(ctx, testOrderKey, boxID, "Z999")
	if !errors.Is(err, domain.ErrArticleNotInOrder) {
		t.Fatalf("err = %v, want ErrArticleNotInOrder", err)
	}

	// the failed add left no trace
	state, err := e.states.Get(ctx, testOrderKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.PickedSummary) != 0 {
		t.Fatalf("summary = %v, want empty", state.PickedSummary)
	}
}

func TestAddUnitUnknownBox(t *testing.T) {
	e := newEngine()

	_, err := e.packing.AddUnit(context.Background(), testOrderKey, 42, "A100")
	if !errors.Is(err, domain.ErrBoxNotFound) {
		t.Fatalf("err = %v, want ErrBoxNotFound", err)
	}
}

func TestAddUnitSignals(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	boxID, err := e.packing.CreateBox(ctx, testOrderKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// B200 has target 2: progressing, completed, then overpick
	want := []domain.PickSignal{domain.SignalProgressing, domain.SignalCompleted, domain.SignalOverpick}
	for i, w := range want {
		res, err := e.packing.AddUnit(ctx, testOrderKey, boxID, "B200")
		if err != nil {
			t.Fatalf("add %d: unexpected error: %v", i+1, err)
		}
		if res.Picked != i+1 || res.Target != 2 {
			t.Fatalf("add %d: picked=%d target=%d, want picked=%d target=2", i+1, res.Picked, res.Target, i+1)
		}
		if res.Signal != w {
			t.Fatalf("add %d: signal = %q, want %q", i+1, res.Signal, w)
		}
	}
}

func TestRemoveUnitIsIdempotent(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	boxID, _ := e.packing.CreateBox(ctx, testOrderKey)
	if _, err := e.packing.AddUnit(ctx, testOrderKey, boxID, "A100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := e.packing.RemoveUnit(ctx, testOrderKey, boxID, "A100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Picked != 0 {
		t.Fatalf("picked = %d, want 0", res.Picked)
	}

	res, err = e.packing.RemoveUnit(ctx, testOrderKey, boxID, "A100")
	if err != nil {
		t.Fatalf("second remove: unexpected error: %v", err)
	}
	if res.Picked != 0 {
		t.Fatalf("second remove: picked = %d, want 0", res.Picked)
	}
}

func TestFailedSaveDiscardsMutation(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	boxID, _ := e.packing.CreateBox(ctx, testOrderKey)

	e.store.FailSaves = true
	_, err := e.packing.AddUnit(ctx, testOrderKey, boxID, "A100")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	e.store.FailSaves = false

	state, err := e.states.Get(ctx, testOrderKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := state.Picked("A100"); got != 0 {
		t.Fatalf("picked = %d after failed save, want 0", got)
	}
}

func TestConcurrentAddUnits(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	boxID, err := e.packing.CreateBox(ctx, testOrderKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.packing.AddUnit(ctx, testOrderKey, boxID, "A100"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent add failed: %v", err)
	}

	state, err := e.states.Get(ctx, testOrderKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := state.Picked("A100"); got != n {
		t.Fatalf("picked = %d after %d concurrent adds, want %d", got, n, n)
	}
}
