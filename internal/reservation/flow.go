// Package reservation implements the table booking flow: pick a dining
// area, pick a slot, check availability, confirm.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/availability"
	"github.com/bocattovalley/bocatto-server/internal/model"
)

// Duration is the default length of a booking.
const Duration = 2 * time.Hour

var (
	ErrUnknownEnvironment = errors.New("dining area not found")
	ErrNoEnvironment      = errors.New("select a dining area first")
	ErrMissingDetails     = errors.New("please complete all required fields")
	ErrSlotUnavailable    = errors.New("this table is already reserved for the selected date and time")
	ErrInvalidTime        = errors.New("time must use the HH:MM format")
)

// CapacityError rejects a party size outside the selected area's bounds.
type CapacityError struct {
	Min, Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("This area only allows between %d and %d guests.", e.Min, e.Max)
}

// State is the position of a Flow in the booking sequence.
type State int

const (
	StateIdle State = iota
	StateEnvironmentSelected
	StateSlotChosen
	StateAvailable
	StateUnavailable
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnvironmentSelected:
		return "environment_selected"
	case StateSlotChosen:
		return "slot_chosen"
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Availability is the outcome of CheckAvailability.
type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// CanConfirm reports whether confirmation is enabled for the outcome. An
// unknown outcome (no date or time yet) leaves it enabled.
func (a Availability) CanConfirm() bool { return a != AvailabilityUnavailable }

// Bounds are the party sizes a dining area accepts.
type Bounds struct {
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Options []int  `json:"options"`
	Hint    string `json:"hint"`
}

// Owner reports the signed-in user, if any.
type Owner interface {
	CurrentUser() (model.SafeUser, bool)
}

// Publisher announces confirmed reservations.
type Publisher interface {
	PublishConfirmed(ctx context.Context, r model.Reservation) error
}

// Details completes a booking once a slot is chosen.
type Details struct {
	PartySize int
	Occasion  string
	Notes     string
}

// Options wires a Flow. Catalog, Index and Store are required.
type Options struct {
	Catalog   *Catalog
	Index     availability.Index
	Store     *Store
	Owner     Owner
	Publisher Publisher
	NewID     func() int64
	Now       func() time.Time
	Logger    *zap.Logger
}

// Flow is one booking attempt. It is not safe for concurrent use.
type Flow struct {
	catalog   *Catalog
	index     availability.Index
	store     *Store
	owner     Owner
	publisher Publisher
	newID     func() int64
	now       func() time.Time
	logger    *zap.Logger

	state State
	env   *model.Environment
	date  string
	slot  string
}

// NewFlow returns an idle Flow.
func NewFlow(opts Options) *Flow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() int64 { return opts.Now().UnixMilli() }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Flow{
		catalog:   opts.Catalog,
		index:     opts.Index,
		store:     opts.Store,
		owner:     opts.Owner,
		publisher: opts.Publisher,
		newID:     opts.NewID,
		now:       opts.Now,
		logger:    opts.Logger.With(zap.String("component", "reservation_flow")),
	}
}

// State returns the current state.
func (f *Flow) State() State { return f.state }

// SelectEnvironment loads the bounds of a dining area and clears any slot
// chosen before.
func (f *Flow) SelectEnvironment(id string) (Bounds, error) {
	e, ok := f.catalog.Get(id)
	if !ok {
		return Bounds{}, ErrUnknownEnvironment
	}
	f.env = &e
	f.date, f.slot = "", ""
	f.state = StateEnvironmentSelected
	return BoundsFor(e), nil
}

// BoundsFor returns the selectable party sizes of e.
func BoundsFor(e model.Environment) Bounds {
	opts := make([]int, 0, e.MaxPartySize-e.MinPartySize+1)
	for n := e.MinPartySize; n <= e.MaxPartySize; n++ {
		opts = append(opts, n)
	}
	return Bounds{
		Min:     e.MinPartySize,
		Max:     e.MaxPartySize,
		Options: opts,
		Hint:    fmt.Sprintf("This area allows between %d and %d guests", e.MinPartySize, e.MaxPartySize),
	}
}

// ChooseSlot records the date (YYYY-MM-DD) and time (HH:MM) of the booking.
func (f *Flow) ChooseSlot(date, slot string) error {
	if f.env == nil {
		return ErrNoEnvironment
	}
	f.date, f.slot = strings.TrimSpace(date), strings.TrimSpace(slot)
	f.state = StateSlotChosen
	return nil
}

// CheckAvailability looks the chosen slot up in the index.
func (f *Flow) CheckAvailability(ctx context.Context) (Availability, error) {
	if f.env == nil {
		return AvailabilityUnknown, ErrNoEnvironment
	}
	if f.date == "" || f.slot == "" {
		return AvailabilityUnknown, nil
	}
	booked, err := f.index.IsBooked(ctx, f.date, f.slot, f.env.ID)
	if err != nil {
		return AvailabilityUnknown, err
	}
	if booked {
		f.state = StateUnavailable
		return AvailabilityUnavailable, nil
	}
	f.state = StateAvailable
	return AvailabilityAvailable, nil
}

// Confirm books the chosen slot. On any validation failure nothing is
// stored and the index is left untouched.
func (f *Flow) Confirm(ctx context.Context, d Details) (model.Reservation, error) {
	log := f.logger.With(zap.String("operation", "confirm"))
	if f.env == nil {
		return model.Reservation{}, ErrNoEnvironment
	}
	if f.date == "" || f.slot == "" || d.PartySize == 0 {
		return model.Reservation{}, ErrMissingDetails
	}
	if !f.env.Accepts(d.PartySize) {
		return model.Reservation{}, &CapacityError{Min: f.env.MinPartySize, Max: f.env.MaxPartySize}
	}
	end, err := EndTime(f.slot)
	if err != nil {
		return model.Reservation{}, err
	}
	start, err := time.ParseInLocation(availability.DateLayout+" 15:04", f.date+" "+f.slot, time.UTC)
	if err != nil {
		return model.Reservation{}, ErrMissingDetails
	}
	avail, err := f.CheckAvailability(ctx)
	if err != nil {
		return model.Reservation{}, err
	}
	if !avail.CanConfirm() {
		return model.Reservation{}, ErrSlotUnavailable
	}

	id := f.newID()
	r := model.Reservation{
		ID:              id,
		Number:          DisplayNumber(id),
		EnvironmentID:   f.env.ID,
		EnvironmentName: f.env.Name,
		Date:            f.date,
		StartTime:       f.slot,
		EndTime:         end,
		ReservationDate: start,
		PartySize:       d.PartySize,
		Status:          model.StatusConfirmed,
		Notes:           strings.TrimSpace(d.Notes),
		Occasion:        strings.TrimSpace(d.Occasion),
		IsPaid:          false,
		CreatedAt:       f.now().UTC(),
	}
	if f.owner != nil {
		if u, ok := f.owner.CurrentUser(); ok {
			clientID := u.ID
			r.ClientID = &clientID
		}
	}

	if err := f.store.Append(ctx, r); err != nil {
		log.Error("save reservation failed", zap.String("number", r.Number), zap.Error(err))
	}
	if err := f.index.Book(ctx, f.date, f.slot, f.env.ID); err != nil {
		log.Error("update availability failed", zap.String("number", r.Number), zap.Error(err))
	}
	if f.publisher != nil {
		if err := f.publisher.PublishConfirmed(ctx, r); err != nil {
			log.Warn("publish reservation failed", zap.String("number", r.Number), zap.Error(err))
		}
	}
	f.state = StateConfirmed
	log.Info("reservation confirmed",
		zap.String("number", r.Number),
		zap.String("environment", r.EnvironmentID),
		zap.String("date", r.Date),
		zap.String("time", r.StartTime),
		zap.Int("party_size", r.PartySize),
	)
	return r, nil
}

// Cancel drops the selected area, slot and outcome.
func (f *Flow) Cancel() {
	f.env = nil
	f.date, f.slot = "", ""
	f.state = StateIdle
}

// EndTime adds Duration to an HH:MM start time, keeping the minutes and
// wrapping past midnight.
func EndTime(start string) (string, error) {
	h, m, ok := strings.Cut(start, ":")
	if !ok {
		return "", ErrInvalidTime
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return "", ErrInvalidTime
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return "", ErrInvalidTime
	}
	hour = (hour + int(Duration/time.Hour)) % 24
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// DisplayNumber is the guest-facing number of a reservation: RES- followed
// by the last six digits of its id.
func DisplayNumber(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	return "RES-" + s
}
