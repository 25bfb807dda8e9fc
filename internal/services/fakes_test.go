package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventseating/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID     map[string]*domain.Event
	nextID   int
	err      error // if set, Create returns this error
	summary  *domain.OrganizerSummary
	counts   []domain.EventRSVPCount
	platform *domain.PlatformStatistics

	guests     *fakeGuestRepo // receives credential expiry rewrites
	updates    int
	lastExpiry *time.Time
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string, page domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	items, total := pageOf(out, page)
	return items, total, nil
}

func (f *fakeEventRepo) ListAll(ctx context.Context, page domain.PaginationParams) ([]*domain.Event, int, error) {
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	items, total := pageOf(out, page)
	return items, total, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event, credentialExpiry *time.Time) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.updates++
	f.lastExpiry = credentialExpiry
	cp := *e
	f.byID[e.ID] = &cp
	if credentialExpiry != nil && f.guests != nil {
		f.guests.mu.Lock()
		for _, g := range f.guests.byID {
			if g.EventID == e.ID {
				g.CredentialExpiresAt = *credentialExpiry
			}
		}
		f.guests.mu.Unlock()
	}
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) SummarizeByOwner(ctx context.Context, ownerID string, today time.Time) (*domain.OrganizerSummary, error) {
	if f.summary == nil {
		return &domain.OrganizerSummary{}, nil
	}
	cp := *f.summary
	return &cp, nil
}

func (f *fakeEventRepo) RSVPCountsByOwner(ctx context.Context, ownerID string) ([]domain.EventRSVPCount, error) {
	var out []domain.EventRSVPCount
	for _, c := range f.counts {
		if e, ok := f.byID[c.EventID]; ok && e.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) RSVPCounts(ctx context.Context) ([]domain.EventRSVPCount, error) {
	return f.counts, nil
}

func (f *fakeEventRepo) SummarizePlatform(ctx context.Context) (*domain.PlatformStatistics, error) {
	if f.platform == nil {
		return &domain.PlatformStatistics{}, nil
	}
	cp := *f.platform
	return &cp, nil
}

// pageOf slices one page out of items and reports the full count.
func pageOf[T any](items []T, page domain.PaginationParams) ([]T, int) {
	total := len(items)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	return items[start:end], total
}

// fakeInviteeRepo is an in-memory InviteeRepository keyed by event id and email.
type fakeInviteeRepo struct {
	byKey  map[string]*domain.Invitee
	nextID int
}

func newFakeInviteeRepo(invs ...*domain.Invitee) *fakeInviteeRepo {
	f := &fakeInviteeRepo{byKey: make(map[string]*domain.Invitee), nextID: 1}
	for _, inv := range invs {
		f.byKey[inv.EventID+"|"+inv.Email] = inv
	}
	return f
}

func (f *fakeInviteeRepo) Create(ctx context.Context, inv *domain.Invitee) error {
	key := inv.EventID + "|" + inv.Email
	if _, ok := f.byKey[key]; ok {
		return domain.ErrInviteeExists
	}
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.nextID++
	f.byKey[key] = inv
	return nil
}

func (f *fakeInviteeRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Invitee, error) {
	if inv, ok := f.byKey[eventID+"|"+email]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInviteeRepo) ListByEventID(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.Invitee, int, error) {
	var out []*domain.Invitee
	for _, inv := range f.byKey {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	items, total := pageOf(out, page)
	return items, total, nil
}

func (f *fakeInviteeRepo) Delete(ctx context.Context, eventID, email string) error {
	key := eventID + "|" + email
	if _, ok := f.byKey[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byKey, key)
	return nil
}

// fakeGuestRepo is an in-memory GuestRepository. It needs an event lookup for
// GetWithEventByAccessCode.
type fakeGuestRepo struct {
	mu        sync.Mutex
	events    *fakeEventRepo
	byID      map[string]*domain.Guest
	nextID    int
	createErr error
}

func newFakeGuestRepo(events *fakeEventRepo) *fakeGuestRepo {
	f := &fakeGuestRepo{events: events, byID: make(map[string]*domain.Guest), nextID: 1}
	events.guests = f
	return f
}

func (f *fakeGuestRepo) add(g *domain.Guest) *domain.Guest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.ID == "" {
		g.ID = fmt.Sprintf("g-%d", f.nextID)
		f.nextID++
	}
	f.byID[g.ID] = g
	return g
}

func (f *fakeGuestRepo) Create(ctx context.Context, g *domain.Guest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	for _, existing := range f.byID {
		if existing.EventID == g.EventID && existing.Email == g.Email {
			f.mu.Unlock()
			return domain.ErrAlreadyResponded
		}
	}
	f.mu.Unlock()
	f.add(g)
	return nil
}

func (f *fakeGuestRepo) GetWithEventByAccessCode(ctx context.Context, code string) (*domain.GuestWithEvent, error) {
	f.mu.Lock()
	var found *domain.Guest
	for _, g := range f.byID {
		if g.AccessCode == code {
			cp := *g
			found = &cp
		}
	}
	f.mu.Unlock()
	if found == nil {
		return nil, domain.ErrNotFound
	}
	event, err := f.events.GetByID(ctx, found.EventID)
	if err != nil {
		return nil, err
	}
	return &domain.GuestWithEvent{Guest: found, Event: event}, nil
}

func (f *fakeGuestRepo) ExistsForEventAndEmail(ctx context.Context, eventID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.byID {
		if g.EventID == eventID && g.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGuestRepo) ListByEventID(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Guest
	for _, g := range f.byID {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	items, total := pageOf(out, page)
	return items, total, nil
}

func (f *fakeGuestRepo) Cancel(ctx context.Context, guestID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.byID[guestID]
	if !ok || g.CancelledAt != nil {
		return false, nil
	}
	g.RSVPStatus = domain.RSVPDeclined
	g.CancelledAt = &at
	g.SeatLabel = nil
	return true, nil
}

func (f *fakeGuestRepo) MarkCheckedIn(ctx context.Context, guestID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.byID[guestID]
	if !ok || g.CheckedIn {
		return false, nil
	}
	g.CheckedIn = true
	return true, nil
}

// fakeSeatingRepo keeps configurations and guest seats in memory. WithinEventLock
// serializes callbacks and restores the previous state when the callback fails.
type fakeSeatingRepo struct {
	mu      sync.Mutex
	configs map[string]*domain.SeatingConfiguration
	guests  map[string][]*domain.GuestSeat
	setErr  error
	locks   int
}

func newFakeSeatingRepo() *fakeSeatingRepo {
	return &fakeSeatingRepo{
		configs: make(map[string]*domain.SeatingConfiguration),
		guests:  make(map[string][]*domain.GuestSeat),
	}
}

func (f *fakeSeatingRepo) addGuest(eventID string, g *domain.GuestSeat) {
	f.guests[eventID] = append(f.guests[eventID], g)
}

func (f *fakeSeatingRepo) seatOf(eventID, guestID string) *string {
	for _, g := range f.guests[eventID] {
		if g.GuestID == guestID {
			return g.SeatLabel
		}
	}
	return nil
}

func (f *fakeSeatingRepo) CreateConfig(ctx context.Context, cfg *domain.SeatingConfiguration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.configs[cfg.EventID]; ok {
		return domain.ErrConfigExists
	}
	cp := *cfg
	f.configs[cfg.EventID] = &cp
	return nil
}

func (f *fakeSeatingRepo) GetConfig(ctx context.Context, eventID string) (*domain.SeatingConfiguration, error) {
	if cfg, ok := f.configs[eventID]; ok {
		cp := *cfg
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSeatingRepo) ListGuestSeats(ctx context.Context, eventID string) ([]*domain.GuestSeat, error) {
	out := make([]*domain.GuestSeat, 0, len(f.guests[eventID]))
	for _, g := range f.guests[eventID] {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSeatingRepo) WithinEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, tx domain.SeatingTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks++

	savedCfg := f.configs[eventID]
	var savedSeats []*string
	for _, g := range f.guests[eventID] {
		savedSeats = append(savedSeats, g.SeatLabel)
	}
	if err := fn(ctx, f); err != nil {
		if savedCfg != nil {
			f.configs[eventID] = savedCfg
		}
		for i, g := range f.guests[eventID] {
			g.SeatLabel = savedSeats[i]
		}
		return err
	}
	return nil
}

func (f *fakeSeatingRepo) UpdateConfig(ctx context.Context, cfg *domain.SeatingConfiguration) error {
	if _, ok := f.configs[cfg.EventID]; !ok {
		return domain.ErrNotFound
	}
	cp := *cfg
	f.configs[cfg.EventID] = &cp
	return nil
}

func (f *fakeSeatingRepo) SetSeat(ctx context.Context, eventID, guestID string, label *string) error {
	if f.setErr != nil {
		return f.setErr
	}
	var target *domain.GuestSeat
	for _, g := range f.guests[eventID] {
		if label != nil && g.SeatLabel != nil && *g.SeatLabel == *label && g.GuestID != guestID {
			return domain.ErrSeatTaken
		}
		if g.GuestID == guestID {
			target = g
		}
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if label != nil {
		l := *label
		label = &l
	}
	target.SeatLabel = label
	return nil
}

func (f *fakeSeatingRepo) SetSeats(ctx context.Context, eventID string, pairings []domain.SeatPairing) error {
	for _, p := range pairings {
		label := p.SeatLabel
		if err := f.SetSeat(ctx, eventID, p.GuestID, &label); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSeatingRepo) ClearSeatsExcept(ctx context.Context, eventID string, keep []string) (int64, error) {
	valid := make(map[string]bool, len(keep))
	for _, k := range keep {
		valid[k] = true
	}
	var n int64
	for _, g := range f.guests[eventID] {
		if g.SeatLabel != nil && !valid[*g.SeatLabel] {
			g.SeatLabel = nil
			n++
		}
	}
	return n, nil
}

// fakeRenderer is a CredentialRenderer returning a fixed image, an error, or blocking.
type fakeRenderer struct {
	image []byte
	err   error
	block bool
	codes []string
}

func (f *fakeRenderer) Render(ctx context.Context, code string) ([]byte, error) {
	f.codes = append(f.codes, code)
	if f.block {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return []byte("late"), nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

// fakeEmailService records sends. It is called from dispatcher goroutines.
type fakeEmailService struct {
	mu            sync.Mutex
	err           error
	confirmations []*domain.RSVPEmailData
	cancellations []*domain.RSVPEmailData
	invitations   []*domain.InvitationEmailData
}

func (f *fakeEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, data)
	return f.err
}

func (f *fakeEmailService) SendRSVPCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancellations = append(f.cancellations, data)
	return f.err
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitations = append(f.invitations, data)
	return f.err
}

func (f *fakeEmailService) counts() (confirmations, cancellations, invitations int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmations), len(f.cancellations), len(f.invitations)
}

func mustDate(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }
