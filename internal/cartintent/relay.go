// Package cartintent parks an add-to-cart made before login and replays it
// exactly once after the visitor authenticates.
package cartintent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/phoneshop-backend/internal/cart"
	"github.com/angelmondragon/phoneshop-backend/internal/visitor"
	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/phoneshop-backend/pkg/errors"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
)

const (
	// LoginPath is where anonymous visitors are sent after parking an intent.
	LoginPath = "/api/v1/auth/login"
	// CompletePath replays the parked intent once the visitor holds a token.
	CompletePath = "/api/v1/cart/pending/complete"
)

// RedirectLocation is the login URL carrying the replay endpoint as next.
func RedirectLocation() string {
	return LoginPath + "?next=" + CompletePath
}

type adder interface {
	Add(ctx context.Context, state *visitor.State, productID uuid.UUID, quantity int, override bool) (*cart.AddResult, error)
}

// Relay moves a session through idle, intent_parked and intent_consumed.
type Relay struct {
	cart  adder
	store visitor.Store
	logg  *logger.Logger
}

// ReplayResult reports what a replay did.
type ReplayResult struct {
	Replayed bool             `json:"replayed"`
	Added    *cart.AddResult  `json:"added,omitempty"`
	Notice   string           `json:"notice,omitempty"`
	Failure  *pkgerrors.Error `json:"-"`
}

func NewRelay(cartSvc adder, store visitor.Store, logg *logger.Logger) (*Relay, error) {
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if store == nil {
		return nil, fmt.Errorf("visitor store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Relay{cart: cartSvc, store: store, logg: logg}, nil
}

// Park stores intent on the session. A newer intent replaces an older one.
func (r *Relay) Park(ctx context.Context, state *visitor.State, intent visitor.PendingIntent) error {
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}
	if intent.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if intent.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	parked := intent
	state.Pending = &parked
	state.PendingState = enums.PendingIntentStateParked
	if err := r.store.Save(ctx, state); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "park cart intent")
	}
	r.logg.Info(r.logg.WithField(ctx, "product_id", intent.ProductID.String()), "cart intent parked")
	return nil
}

// Replay consumes the parked intent. The intent is removed and persisted
// before the cart is touched, so a second call never adds again. Cart
// failures become flash notices; only session persistence errors are
// returned.
func (r *Relay) Replay(ctx context.Context, state *visitor.State) (*ReplayResult, error) {
	if state == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session state required")
	}
	if state.Pending == nil {
		return &ReplayResult{Replayed: false}, nil
	}

	intent := *state.Pending
	state.Pending = nil
	state.PendingState = enums.PendingIntentStateConsumed
	if err := r.store.Save(ctx, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume cart intent")
	}

	ctx = r.logg.WithField(ctx, "product_id", intent.ProductID.String())
	result := &ReplayResult{Replayed: true}

	added, err := r.cart.Add(ctx, state, intent.ProductID, intent.Quantity, intent.Override)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil {
			typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replay cart intent")
		}
		result.Failure = typed
		result.Notice = failureNotice(typed)
		state.PushFlash(visitor.FlashError, result.Notice)
		r.logg.Warn(ctx, "cart intent replay failed: "+typed.Error())
	} else {
		result.Added = added
		result.Notice = added.Notice()
		level := visitor.FlashSuccess
		if added.Clamped {
			level = visitor.FlashInfo
		}
		state.PushFlash(level, result.Notice)
		r.logg.Info(ctx, "cart intent replayed")
	}

	if err := r.store.Save(ctx, state); err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save replay notice")
	}
	return result, nil
}

func failureNotice(err *pkgerrors.Error) string {
	switch err.Code() {
	case pkgerrors.CodeInsufficientStock:
		return err.Message()
	case pkgerrors.CodeNotFound:
		return "The product you tried to add is no longer available."
	default:
		return "We could not add the product to your cart. Please try again."
	}
}
