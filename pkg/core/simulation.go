package core

import (
	"context"
	"fmt"
	"time"

	"github.com/enersim/intrasim/pkg/messaging"
	"github.com/google/uuid"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of a simulation run
type State int

// Simulation states
const (
	StateNotStarted State = iota
	StateRunning
	StateFinished
)

// String returns state as string
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateRunning:
		return "RUNNING"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// SimulationConfig holds the construction parameters for a run
type SimulationConfig struct {
	Start      time.Time
	End        time.Time
	Step       time.Duration
	Strategies []Strategy
	Clearing   ClearingMechanism
	Backend    BookBackend

	// Sender receives every history event as it is appended. Optional.
	Sender messaging.EventSender
	// Logger overrides the global logger. Optional.
	Logger *zerolog.Logger
}

// Simulation drives the tick loop: it owns the clock, the active-order
// book, and the order history. One instance runs once and is not shared.
type Simulation struct {
	runID      string
	clock      *Clock
	strategies []Strategy
	clearing   ClearingMechanism
	book       *Book
	history    []Event
	sender     messaging.EventSender
	logger     zerolog.Logger
	state      State
}

// NewSimulation validates the configuration and builds a simulation
func NewSimulation(cfg SimulationConfig) (*Simulation, error) {
	clock, err := NewClock(cfg.Start, cfg.End, cfg.Step)
	if err != nil {
		return nil, err
	}

	if cfg.Clearing == nil {
		return nil, fmt.Errorf("%w: clearing mechanism is required", ErrInvalidArgument)
	}

	if cfg.Backend == nil {
		return nil, fmt.Errorf("%w: book backend is required", ErrInvalidArgument)
	}

	seen := make(map[string]bool, len(cfg.Strategies))
	for _, strat := range cfg.Strategies {
		if seen[strat.ID()] {
			return nil, fmt.Errorf("%w: duplicate strategy id %q", ErrInvalidArgument, strat.ID())
		}
		seen[strat.ID()] = true
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	runID := uuid.NewString()

	return &Simulation{
		runID:      runID,
		clock:      clock,
		strategies: append([]Strategy(nil), cfg.Strategies...),
		clearing:   cfg.Clearing,
		book:       NewBook(cfg.Backend),
		history:    make([]Event, 0),
		sender:     cfg.Sender,
		logger:     logger.With().Str("run_id", runID).Logger(),
		state:      StateNotStarted,
	}, nil
}

// RunID returns the generated identifier of this run
func (s *Simulation) RunID() string {
	return s.runID
}

// State returns the current lifecycle state
func (s *Simulation) State() State {
	return s.state
}

// Book returns the active-order set
func (s *Simulation) Book() *Book {
	return s.book
}

// Run executes all ticks from start to end inclusive and returns the full
// order history. Strategy and clearing errors propagate to the caller and
// abort the run; there are no retries.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if s.state != StateNotStarted {
		return nil, ErrAlreadyRun
	}

	s.logger.Info().
		Time("start", s.clock.Start()).
		Time("end", s.clock.End()).
		Dur("step", s.clock.Step()).
		Int("strategies", len(s.strategies)).
		Str("clearing", s.clearing.Name()).
		Msg("Starting simulation")

	for _, strat := range s.strategies {
		strat.Initialize(s.clock.Start(), s.clock.End())
	}

	s.state = StateRunning

	for !s.clock.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.step(); err != nil {
			s.logger.Error().Err(err).Time("tick", s.clock.Now()).Msg("Simulation aborted")
			return nil, err
		}

		s.clock.Advance()
	}

	s.state = StateFinished
	s.logger.Info().Int("events", len(s.history)).Msg("Simulation complete")

	return &Result{
		RunID:   s.runID,
		Start:   s.clock.Start(),
		End:     s.clock.End(),
		Step:    s.clock.Step(),
		History: append([]Event(nil), s.history...),
	}, nil
}

// step executes one tick: expiry, strategy updates, clearing, fills,
// bookkeeping, strategy feedback.
func (s *Simulation) step() error {
	now := s.clock.Now()
	s.logger.Debug().Time("tick", now).Int("active", s.book.Len()).Msg("Tick")

	expired := s.expireContracts(now)

	for _, strat := range s.strategies {
		batch, err := strat.UpdateOrders(now)
		if err != nil {
			return fmt.Errorf("strategy %s: %w", strat.ID(), err)
		}

		if err := s.applyBatch(now, strat.ID(), batch); err != nil {
			return err
		}
	}

	fills, err := s.clearing.Clear(now, s.book)
	if err != nil {
		return fmt.Errorf("clearing %s: %w", s.clearing.Name(), err)
	}

	if err := s.applyFills(now, fills); err != nil {
		return err
	}

	s.dispatchFeedback(expired, fills)

	return nil
}

// expireContracts removes orders whose delivery window has started.
func (s *Simulation) expireContracts(now time.Time) []Order {
	expired := make([]Order, 0)

	for _, order := range s.book.Orders() {
		if !order.Delivery().Before(now) {
			continue
		}

		order.markExpired()
		s.book.remove(order.ID())
		snapshot := order.Snapshot()
		expired = append(expired, snapshot)
		s.record(Event{Type: EventExpired, Time: now, Order: snapshot})
	}

	return expired
}

// applyBatch applies one strategy's instructions: cancels and updates
// first, then new orders, so clearing sees post-strategy state.
func (s *Simulation) applyBatch(now time.Time, strategyID string, batch OrderBatch) error {
	for _, orderID := range batch.Cancels {
		order := s.book.Get(orderID)
		if order == nil {
			// The order may have filled or expired earlier in this
			// tick; a stale cancel is not an integrity violation.
			s.logger.Debug().Str("order_id", orderID).Msg("Cancel for unknown order ignored")
			continue
		}

		order.markCanceled()
		s.book.remove(orderID)
		s.record(Event{Type: EventCanceled, Time: now, Order: order.Snapshot()})
	}

	for _, update := range batch.Updates {
		order := s.book.Get(update.OrderID)
		if order == nil {
			return fmt.Errorf("update %s: %w", update.OrderID, ErrNonexistentOrder)
		}

		if err := order.applyUpdate(update.Price, update.Quantity); err != nil {
			return fmt.Errorf("update %s: %w", update.OrderID, err)
		}

		if err := s.book.update(order); err != nil {
			return fmt.Errorf("update %s: %w", update.OrderID, err)
		}

		s.record(Event{Type: EventUpdated, Time: now, Order: order.Snapshot()})
	}

	for _, order := range batch.New {
		if order.Quantity().LessThanOrEqual(fpdecimal.Zero) {
			return fmt.Errorf("order %s: %w", order.ID(), ErrInvalidQuantity)
		}

		if order.StrategyID() != strategyID {
			return fmt.Errorf("order %s: %w: owner %q", order.ID(), ErrInvalidArgument, order.StrategyID())
		}

		order.markSubmitted(now)
		if err := s.book.store(order); err != nil {
			return fmt.Errorf("order %s: %w", order.ID(), err)
		}

		s.record(Event{Type: EventSubmitted, Time: now, Order: order.Snapshot()})
	}

	return nil
}

// applyFills reduces remaining quantities and removes fully filled orders.
// A fill referencing an unknown order or exceeding remaining quantity is a
// data-integrity error and aborts the run.
func (s *Simulation) applyFills(now time.Time, fills []Fill) error {
	for i := range fills {
		fill := fills[i]

		order := s.book.Get(fill.OrderID)
		if order == nil {
			return fmt.Errorf("fill %s: %w", fill.OrderID, ErrNonexistentOrder)
		}

		if err := order.applyFill(fill.Quantity); err != nil {
			return fmt.Errorf("fill %s: %w", fill.OrderID, err)
		}

		if fill.Time.IsZero() {
			fill.Time = now
		}

		if order.Status() == StatusFilled {
			s.book.remove(order.ID())
		} else if err := s.book.update(order); err != nil {
			return fmt.Errorf("fill %s: %w", fill.OrderID, err)
		}

		s.record(Event{Type: EventFilled, Time: now, Order: order.Snapshot(), Fill: &fill})
	}

	return nil
}

// dispatchFeedback hands each strategy its own fills, expiries, and active
// orders for the tick just completed.
func (s *Simulation) dispatchFeedback(expired []Order, fills []Fill) {
	if len(s.strategies) == 0 {
		return
	}

	expiredBy := make(map[string][]Order)
	for _, order := range expired {
		expiredBy[order.StrategyID()] = append(expiredBy[order.StrategyID()], order)
	}

	filledBy := make(map[string][]Fill)
	for _, fill := range fills {
		owner := s.ownerOf(fill.OrderID)
		filledBy[owner] = append(filledBy[owner], fill)
	}

	activeBy := make(map[string][]Order)
	for _, order := range s.book.Orders() {
		activeBy[order.StrategyID()] = append(activeBy[order.StrategyID()], order.Snapshot())
	}

	for _, strat := range s.strategies {
		strat.ProcessResults(Feedback{
			Filled:  filledBy[strat.ID()],
			Expired: expiredBy[strat.ID()],
			Active:  activeBy[strat.ID()],
		})
	}
}

// ownerOf resolves a fill's strategy from the history, since fully filled
// orders are already out of the book when feedback is built.
func (s *Simulation) ownerOf(orderID string) string {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Order.ID() == orderID {
			return s.history[i].Order.StrategyID()
		}
	}
	return ""
}

// record appends an event to the history and publishes it
func (s *Simulation) record(event Event) {
	s.history = append(s.history, event)

	if s.sender != nil {
		if err := s.sender.SendEvent(event.ToMessagingEvent(s.runID)); err != nil {
			s.logger.Warn().Err(err).Str("order_id", event.Order.ID()).Msg("Failed to publish event")
		}
	}
}
