package cartintent

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/db/models"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
)

type addCall struct {
	productID uuid.UUID
	quantity  int
	override  bool
}

type stubAdder struct {
	calls []addCall
	err   error
	res   *cart.AddResult
}

func (s *stubAdder) Add(ctx context.Context, state *visitor.State, productID uuid.UUID, quantity int, override bool) (*cart.AddResult, error) {
	s.calls = append(s.calls, addCall{productID: productID, quantity: quantity, override: override})
	if s.err != nil {
		return nil, s.err
	}
	state.SetQuantity(productID, quantity)
	if s.res != nil {
		return s.res, nil
	}
	return &cart.AddResult{ProductID: productID, ProductName: "Phone", Quantity: quantity, Available: 10}, nil
}

type recordingStore struct {
	saved    []visitor.State
	failAt   int
	failOnly int
	attempts int
	saveErr  error
}

func (s *recordingStore) Load(ctx context.Context, id string) (*visitor.State, error) {
	return visitor.NewState(id), nil
}

func (s *recordingStore) Save(ctx context.Context, state *visitor.State) error {
	s.attempts++
	if s.saveErr != nil && s.failOnly > 0 {
		if s.attempts == s.failOnly {
			return s.saveErr
		}
	} else if s.saveErr != nil && len(s.saved)+1 >= s.failAt {
		return s.saveErr
	}
	snapshot := *state
	snapshot.Cart = append([]visitor.CartEntry(nil), state.Cart...)
	if state.Pending != nil {
		pending := *state.Pending
		snapshot.Pending = &pending
	}
	s.saved = append(s.saved, snapshot)
	return nil
}

func (s *recordingStore) Delete(ctx context.Context, id string) error { return nil }

func newTestRelay(t *testing.T, adder *stubAdder, store *recordingStore) *Relay {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	relay, err := NewRelay(adder, store, logg)
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}
	return relay
}

func TestRedirectLocation(t *testing.T) {
	t.Parallel()
	u, err := url.Parse(RedirectLocation())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Path != LoginPath || u.Query().Get("next") != CompletePath {
		t.Fatalf("unexpected redirect %s", RedirectLocation())
	}
}

func TestParkStoresIntent(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	relay := newTestRelay(t, &stubAdder{}, store)
	state := visitor.NewState("s")
	productID := uuid.New()

	if err := relay.Park(context.Background(), state, visitor.PendingIntent{ProductID: productID, Quantity: 3}); err != nil {
		t.Fatalf("park: %v", err)
	}
	if state.PendingState != enums.PendingIntentStateParked || state.Pending == nil || state.Pending.Quantity != 3 {
		t.Fatalf("unexpected state %+v", state)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(store.saved))
	}
	if len(state.Cart) != 0 {
		t.Fatal("parking must not touch the cart")
	}
}

func TestParkValidation(t *testing.T) {
	t.Parallel()

	relay := newTestRelay(t, &stubAdder{}, &recordingStore{})
	state := visitor.NewState("s")
	if err := relay.Park(context.Background(), state, visitor.PendingIntent{Quantity: 1}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation for missing product, got %v", err)
	}
	if err := relay.Park(context.Background(), state, visitor.PendingIntent{ProductID: uuid.New()}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation for zero quantity, got %v", err)
	}
}

func TestReplayConsumesIntentExactlyOnce(t *testing.T) {
	t.Parallel()

	adder := &stubAdder{}
	store := &recordingStore{}
	relay := newTestRelay(t, adder, store)
	ctx := context.Background()
	state := visitor.NewState("s")
	productID := uuid.New()

	if err := relay.Park(ctx, state, visitor.PendingIntent{ProductID: productID, Quantity: 3, Override: true}); err != nil {
		t.Fatalf("park: %v", err)
	}

	res, err := relay.Replay(ctx, state)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.Replayed || res.Added == nil || res.Added.Quantity != 3 {
		t.Fatalf("unexpected replay result %+v", res)
	}
	if len(adder.calls) != 1 || adder.calls[0] != (addCall{productID: productID, quantity: 3, override: true}) {
		t.Fatalf("unexpected add calls %+v", adder.calls)
	}
	if state.Pending != nil || state.PendingState != enums.PendingIntentStateConsumed {
		t.Fatalf("intent should be consumed, state=%+v", state)
	}
	// the deletion is persisted before the cart is touched
	if store.saved[1].Pending != nil || len(store.saved[1].Cart) != 0 {
		t.Fatalf("expected intent deletion saved ahead of add, got %+v", store.saved[1])
	}
	if flashes := state.DrainFlashes(); len(flashes) != 1 || flashes[0].Level != visitor.FlashSuccess {
		t.Fatalf("expected one success flash, got %v", flashes)
	}

	again, err := relay.Replay(ctx, state)
	if err != nil {
		t.Fatalf("second replay: %v", err)
	}
	if again.Replayed || len(adder.calls) != 1 {
		t.Fatalf("second replay must be a no-op, calls=%d", len(adder.calls))
	}
}

func TestReplayFailureStillDeletesIntent(t *testing.T) {
	t.Parallel()

	adder := &stubAdder{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "Phone is out of stock.")}
	store := &recordingStore{}
	relay := newTestRelay(t, adder, store)
	ctx := context.Background()
	state := visitor.NewState("s")

	if err := relay.Park(ctx, state, visitor.PendingIntent{ProductID: uuid.New(), Quantity: 1}); err != nil {
		t.Fatalf("park: %v", err)
	}
	res, err := relay.Replay(ctx, state)
	if err != nil {
		t.Fatalf("replay should swallow cart errors, got %v", err)
	}
	if !res.Replayed || res.Failure == nil || res.Failure.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected result %+v", res)
	}
	if state.Pending != nil {
		t.Fatal("intent must be deleted regardless of outcome")
	}
	last := store.saved[len(store.saved)-1]
	if last.Pending != nil || len(last.Flashes) != 1 || last.Flashes[0].Message != "Phone is out of stock." {
		t.Fatalf("expected failure flash persisted, got %+v", last)
	}
}

func TestReplayClampedAddUsesInfoFlash(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	adder := &stubAdder{res: &cart.AddResult{ProductID: productID, ProductName: "Phone", Quantity: 2, Available: 2, Clamped: true}}
	relay := newTestRelay(t, adder, &recordingStore{})
	state := visitor.NewState("s")
	state.Pending = &visitor.PendingIntent{ProductID: productID, Quantity: 5}
	state.PendingState = enums.PendingIntentStateParked

	if _, err := relay.Replay(context.Background(), state); err != nil {
		t.Fatalf("replay: %v", err)
	}
	flashes := state.DrainFlashes()
	if len(flashes) != 1 || flashes[0].Level != visitor.FlashInfo {
		t.Fatalf("expected info flash for clamp, got %v", flashes)
	}
}

func TestReplayWithoutIntent(t *testing.T) {
	t.Parallel()

	adder := &stubAdder{}
	store := &recordingStore{}
	relay := newTestRelay(t, adder, store)

	res, err := relay.Replay(context.Background(), visitor.NewState("s"))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Replayed || len(adder.calls) != 0 || len(store.saved) != 0 {
		t.Fatalf("expected no-op, got %+v calls=%d saves=%d", res, len(adder.calls), len(store.saved))
	}
}

func TestReplayPersistFailureSkipsAdd(t *testing.T) {
	t.Parallel()

	adder := &stubAdder{}
	store := &recordingStore{saveErr: errors.New("redis down"), failAt: 1}
	relay := newTestRelay(t, adder, store)
	state := visitor.NewState("s")
	state.Pending = &visitor.PendingIntent{ProductID: uuid.New(), Quantity: 1}

	if _, err := relay.Replay(context.Background(), state); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(adder.calls) != 0 {
		t.Fatal("cart must not be touched when the intent deletion cannot be saved")
	}
}

type singleProductCatalog struct {
	product models.Product
}

func (c singleProductCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p := c.product
	return &p, nil
}

func (c singleProductCatalog) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return []models.Product{c.product}, nil
}

func TestReplayCartSaveFailureDoesNotPersistAddition(t *testing.T) {
	t.Parallel()

	phone := models.Product{ID: uuid.New(), Name: "Phone", Price: decimal.NewFromInt(100), Stock: 5, Available: true}
	// park, consume, then the cart save fails; the notice save succeeds
	store := &recordingStore{saveErr: errors.New("redis blip"), failOnly: 3}
	cartSvc, err := cart.NewService(singleProductCatalog{product: phone}, store)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	relay, err := NewRelay(cartSvc, store, logg)
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}
	ctx := context.Background()
	state := visitor.NewState("s")

	if err := relay.Park(ctx, state, visitor.PendingIntent{ProductID: phone.ID, Quantity: 3}); err != nil {
		t.Fatalf("park: %v", err)
	}
	res, err := relay.Replay(ctx, state)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Failure == nil || res.Failure.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency failure, got %+v", res)
	}
	if len(state.Cart) != 0 {
		t.Fatalf("in-memory cart must be rolled back, got %+v", state.Cart)
	}
	last := store.saved[len(store.saved)-1]
	if len(last.Cart) != 0 {
		t.Fatalf("failed addition was persisted: %+v", last.Cart)
	}
	if len(last.Flashes) != 1 || last.Flashes[0].Level != visitor.FlashError {
		t.Fatalf("expected one error flash persisted, got %+v", last.Flashes)
	}
}
