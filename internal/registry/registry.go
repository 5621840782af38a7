// Package registry tracks the sessions currently occupying a worker slot,
// adapted from the teacher's lobby.RoomStore (room-code bookkeeping
// generalized to client-id/points bookkeeping) and grounded in
// original_source/server/src/game.c's g_active_games array.
package registry

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// PointsSource is implemented by a game.World (kept narrow so registry
// never imports game, avoiding a dependency cycle with session).
type PointsSource interface {
	Points() int
}

// entry is one registry slot; active marks it occupied.
type entry struct {
	clientID int
	active   bool
	world    PointsSource
}

// Registry is a fixed-size array of session slots, sized to max_games,
// guarded by a single mutex — the same shape as g_games_registry_mutex
// protecting g_active_games.
type Registry struct {
	mu      sync.Mutex
	entries []entry
}

// New creates a Registry with capacity slots (max_games).
func New(capacity int) *Registry {
	return &Registry{entries: make([]entry, capacity)}
}

// Slot is a handle a session holds for the duration of one level; Release
// must be called exactly once when the level ends.
type Slot struct {
	r   *Registry
	idx int
}

// Acquire claims the first free slot and associates it with clientID and
// world. It never blocks — the caller (the worker pool) is already
// capacity-limited by the admission queue's slots semaphore, so a free
// registry slot is guaranteed to exist.
func (r *Registry) Acquire(clientID int, world PointsSource) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if !r.entries[i].active {
			r.entries[i] = entry{clientID: clientID, active: true, world: world}
			return &Slot{r: r, idx: i}, nil
		}
	}
	return nil, fmt.Errorf("registry: no free slot for client %d", clientID)
}

// Release frees the slot. Safe to call once; a second call is a no-op.
func (s *Slot) Release() {
	r := s.r
	if r == nil {
		return
	}
	s.r = nil
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.idx] = entry{}
}

// ranked is a snapshot of one active entry's score, used for the top5
// report.
type ranked struct {
	clientID int
	points   int
}

// WriteTop5Report writes the top five active sessions by points (ties
// broken by ascending slot index, i.e. FCFS admission order) to w, in the
// format generate_top5_log produces, translated to English.
func (r *Registry) WriteTop5Report(w io.Writer) error {
	// Copy out the active (clientID, world) pairs under r.mu only, the way
	// generate_top5_log copies board_ref pointers into temp_list under the
	// registry mutex: a world's own rwlock must never be acquired while
	// holding the registry mutex, so Points() is called only after r.mu is
	// released below.
	type active struct {
		clientID int
		world    PointsSource
	}
	r.mu.Lock()
	var actives []active
	for _, e := range r.entries {
		if e.active && e.world != nil {
			actives = append(actives, active{clientID: e.clientID, world: e.world})
		}
	}
	r.mu.Unlock()

	list := make([]ranked, len(actives))
	for i, a := range actives {
		list[i] = ranked{clientID: a.clientID, points: a.world.Points()}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].points > list[j].points
	})

	if _, err := fmt.Fprintln(w, "--- TOP 5 PLAYERS ---"); err != nil {
		return err
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No active games at the moment.")
		return err
	}
	limit := len(list)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		if _, err := fmt.Fprintf(w, "Rank %d: Client ID %d - Points: %d\n", i+1, list[i].clientID, list[i].points); err != nil {
			return err
		}
	}
	return nil
}
