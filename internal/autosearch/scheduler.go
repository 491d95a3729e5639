package autosearch

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hubshare/adccore/internal/searchtype"
)

// Cursor is the scheduler's persisted round-robin state (§3 "Scheduler
// Cursor"). Only Pos is persisted; EndReached/RecheckCount are runtime-only
// and reset to their zero values on load.
type Cursor struct {
	Pos          int
	EndReached   bool
	RecheckCount int
}

// Settings are the process-wide tunables the scheduler needs. The caller
// fills them in; this package has no loader for them (DefaultSettings
// supplies stock values).
type Settings struct {
	AutoSearchEvery int // minutes between search attempts
	RecheckInterval int // minutes to wait once the list is exhausted
}

// DefaultSettings mirrors the original client's stock configuration.
func DefaultSettings() Settings {
	return Settings{AutoSearchEvery: 5, RecheckInterval: 60}
}

const manualSearchToken = "as"

// Scheduler drives the tick-based round-robin search loop (§4.E).
type Scheduler struct {
	Manager  *Manager
	Registry searchtype.Registry
	Search   SearchService
	Hubs     ClientManager
	Settings Settings
	Logger   *log.Logger

	cursor         Cursor
	lastSearchAgeM int

	cron *cron.Cron
}

// NewScheduler wires a Scheduler over an existing Manager.
func NewScheduler(mgr *Manager, registry searchtype.Registry, search SearchService, hubs ClientManager, settings Settings) *Scheduler {
	return &Scheduler{
		Manager:  mgr,
		Registry: registry,
		Search:   search,
		Hubs:     hubs,
		Settings: settings,
	}
}

// Cursor returns a copy of the current cursor, for persistence.
func (s *Scheduler) Cursor() Cursor { return s.cursor }

// RestoreCursor clamps and installs a persisted cursor (§4.G load rule,
// §9 "cursor persistence").
func (s *Scheduler) RestoreCursor(pos int) {
	n := s.Manager.Len()
	if n == 0 {
		pos = 0
	} else if pos < 0 || pos >= n {
		pos = 0
	}
	s.cursor = Cursor{Pos: pos}
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// Run starts the coarse/medium ticking loop and blocks until ctx is
// cancelled. The two tick inputs are driven by cron @every schedules,
// matching the teacher's use of robfig/cron for its GeoIP update
// schedule (internal/geoip); Tick1s/Tick1m remain exported so tests can
// drive the algorithm deterministically without waiting on wall-clock
// ticks.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron = cron.New(cron.WithSeconds())
	s.cron.AddFunc("@every 1s", func() { s.Tick1s(time.Now()) })
	s.cron.AddFunc("@every 1m", func() { s.Tick1m(time.Now()) })
	s.cron.Start()
	defer s.cron.Stop()

	<-ctx.Done()
}

// Tick1s is the coarse clock event. The scheduler itself has no
// per-second work; persistence's FlushWorker owns the 20s save cadence
// (§5, §4.G). It is kept as a distinct entry point to mirror the two
// tick inputs named in §4.E.
func (s *Scheduler) Tick1s(now time.Time) {}

// Tick1m runs the per-minute algorithm (§4.E steps 1-8).
func (s *Scheduler) Tick1m(now time.Time) {
	s.lastSearchAgeM++

	if s.cursor.EndReached {
		s.cursor.RecheckCount++
		if s.cursor.RecheckCount >= s.Settings.RecheckInterval {
			s.cursor.EndReached = false
			s.cursor.Pos = 0
		} else {
			return
		}
	}

	if s.lastSearchAgeM < s.Settings.AutoSearchEvery {
		return
	}

	s.removeExpired(now)

	if s.Manager.Len() == 0 {
		s.cursor.Pos = 0
		return
	}

	if len(s.Hubs.OnlineHubs()) == 0 {
		return
	}

	selected, ok := s.selectNext(now)
	if !ok {
		s.cursor.EndReached = true
		s.cursor.RecheckCount = 0
		s.cursor.Pos = 0
		s.logf("Autosearch: End of list reached. Recheck Items, next search after %d minutes", s.Settings.RecheckInterval)
		return
	}

	s.runSearch(selected, CategoryAuto, manualSearchToken)
}

// removeExpired collects and removes items whose expire_time has passed,
// logging each removal, outside the read lock (§4.E step 4).
func (s *Scheduler) removeExpired(now time.Time) {
	nowSec := now.Unix()
	for _, it := range s.Manager.Snapshot() {
		if it.ExpireTime > 0 && it.ExpireTime < nowSec {
			if idx, ok := s.Manager.Remove(it.Token); ok {
				s.AdjustCursorForRemoval(idx)
			}
			s.logf("An expired autosearch has been removed: %s", it.SearchString)
		}
	}
}

// AdjustCursorForRemoval keeps the round-robin cursor pointed at the same
// logical item after a removal elsewhere in the item list shifts every
// later index down by one. Callers that remove an item outside the
// scheduler (the router's Report/bundle-completion paths) must call this
// with the index Manager.Remove reported, or the cursor silently skips
// the item that slid into the removed slot (§4.E, §5 "no double-skip").
func (s *Scheduler) AdjustCursorForRemoval(removedIndex int) {
	if removedIndex < s.cursor.Pos {
		s.cursor.Pos--
	}
}

// selectNext advances the cursor through the item list looking for one
// eligible item, updating its LastSearch under the Manager's write lock
// and returning it (§4.E step 6).
func (s *Scheduler) selectNext(now time.Time) (Item, bool) {
	n := s.Manager.Len()
	for s.cursor.Pos < n {
		items := s.Manager.Snapshot()
		if s.cursor.Pos >= len(items) {
			break
		}
		candidate := items[s.cursor.Pos]
		s.cursor.Pos++
		n = len(items)

		if !eligibleNow(&candidate, now) {
			continue
		}

		updated, err := s.Manager.Update(candidate.Token, func(it *Item) {
			it.LastSearch = now.Unix()
		})
		if err != nil {
			// item vanished between snapshot and update; keep scanning.
			continue
		}
		s.lastSearchAgeM = 0
		return updated, true
	}
	return Item{}, false
}

// eligibleNow implements the window/enable gating rules (§4.E step 6).
func eligibleNow(it *Item, now time.Time) bool {
	if !it.AllowNewItems() {
		return false
	}
	if !it.SearchDays.Has(int(now.Weekday())) {
		return false
	}
	hour, minute := uint8(now.Hour()), uint8(now.Minute())
	if hour < it.StartTime.Hour || hour > it.EndTime.Hour {
		return false
	}
	if hour == it.StartTime.Hour && minute < it.StartTime.Minute {
		return false
	}
	if hour == it.EndTime.Hour && minute > it.EndTime.Minute {
		return false
	}
	return true
}

// ManualSearch bypasses the window/enable checks, marks the item as
// expecting the next matching result even if it would otherwise reject
// new ones, and always emits a search (§4.E "Manual search").
func (s *Scheduler) ManualSearch(tok Token) error {
	updated, err := s.Manager.Update(tok, func(it *Item) {
		it.ManualSearchPending = true
		it.LastSearch = time.Now().Unix()
	})
	if err != nil {
		return err
	}
	s.logf("Autosearch: manual search issued for %q", updated.SearchString)
	s.runSearch(updated, CategoryManual, manualSearchToken)
	return nil
}

// runSearch resolves the item's file type and invokes the Search
// collaborator, falling back to the generic "any" type on
// searchtype.ErrUnknownType and retrying once in the same tick (§4.E
// step 8, §7 "SearchTypeUnknown").
func (s *Scheduler) runSearch(it Item, category SearchCategory, token string) {
	mode, extensions, err := s.resolveType(it.FileType)
	if err != nil {
		_, uerr := s.Manager.Update(it.Token, func(upd *Item) {
			upd.FileType = FileTypeAny
		})
		if uerr == nil {
			it.FileType = FileTypeAny
		}
		mode, extensions, _ = s.resolveType(FileTypeAny)
	}

	delayMs, err := s.Search.Search(context.Background(), s.Hubs.OnlineHubs(), it.SearchString, 0, mode, SizeNone, token, extensions, category)
	if err != nil {
		s.logf("Autosearch: search for %q failed: %v", it.SearchString, err)
		return
	}
	s.logf("Autosearch: searched for %q, next search allowed in %dms", it.SearchString, delayMs)
}

// resolveType resolves fileType through the registry, treating the three
// special tags as built-ins that never need registry resolution.
func (s *Scheduler) resolveType(fileType string) (mode int, extensions []string, err error) {
	switch fileType {
	case FileTypeAny:
		return searchtype.ModeAny, nil, nil
	case FileTypeDirectory:
		return searchtype.ModeDirectory, nil, nil
	case FileTypeTTH:
		return searchtype.ModeTTH, nil, nil
	}
	return s.Registry.Resolve(fileType)
}
