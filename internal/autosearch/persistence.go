package autosearch

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/renameio/v2"
)

// xmlUTF8Header matches the UTF-8-with-BOM-style declaration the
// original persisted file opens with (§4.G, §6).
const xmlUTF8Header = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>` + "\n"

type xmlRoot struct {
	XMLName      xml.Name    `xml:"Autosearch"`
	LastPosition int         `xml:"LastPosition,attr"`
	Items        xmlItemList `xml:"Autosearch"`
}

type xmlItemList struct {
	Items []xmlItem `xml:"Autosearch"`
}

type xmlItem struct {
	Enabled            bool   `xml:"Enabled,attr"`
	SearchString       string `xml:"SearchString,attr"`
	FileType           string `xml:"FileType,attr"`
	Action             int    `xml:"Action,attr"`
	Remove             bool   `xml:"Remove,attr"`
	Target             string `xml:"Target,attr"`
	TargetType         int    `xml:"TargetType,attr"`
	MatcherType        int    `xml:"MatcherType,attr"`
	MatcherString      string `xml:"MatcherString,attr"`
	SearchInterval     int    `xml:"SearchInterval,attr"`
	UserMatch          string `xml:"UserMatch,attr"`
	ExpireTime         int64  `xml:"ExpireTime,attr"`
	CheckAlreadyQueued bool   `xml:"CheckAlreadyQueued,attr"`
	CheckAlreadyShared bool   `xml:"CheckAlreadyShared,attr"`
	SearchDays         string `xml:"SearchDays,attr"`
	StartTime          string `xml:"StartTime,attr"`
	EndTime            string `xml:"EndTime,attr"`
	LastSearchTime     int64  `xml:"LastSearchTime,attr"`
	Token              uint32 `xml:"Token,attr"`
}

func clockTimeString(t ClockTime) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func parseClockTime(s string) ClockTime {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return ClockTime{0, 0}
	}
	return ClockTime{uint8(h), uint8(m)}
}

func itemToXML(it Item) xmlItem {
	return xmlItem{
		Enabled:            it.Enabled,
		SearchString:       it.SearchString,
		FileType:           it.FileType,
		Action:             int(it.Action),
		Remove:             it.RemoveAfterCompletion,
		Target:             it.Target,
		TargetType:         int(it.TargetKind),
		MatcherType:        int(it.Matcher.Method),
		MatcherString:      it.Matcher.Pattern,
		SearchInterval:     it.SearchInterval,
		UserMatch:          it.UserMatcher.Pattern,
		ExpireTime:         it.ExpireTime,
		CheckAlreadyQueued: it.CheckAlreadyQueued,
		CheckAlreadyShared: it.CheckAlreadyShared,
		SearchDays:         it.SearchDays.String(),
		StartTime:          clockTimeString(it.StartTime),
		EndTime:            clockTimeString(it.EndTime),
		LastSearchTime:     it.LastSearch,
		Token:              uint32(it.Token),
	}
}

func xmlToItem(x xmlItem) Item {
	it := NewItem(x.SearchString)
	it.Enabled = x.Enabled
	it.FileType = x.FileType
	it.Action = Action(x.Action)
	it.RemoveAfterCompletion = x.Remove
	it.Target = x.Target
	it.TargetKind = TargetKind(x.TargetType)
	matcher, err := NewMatcher(MatchMethod(x.MatcherType), x.MatcherString, x.SearchString)
	if err == nil {
		it.Matcher = matcher
	}
	if x.UserMatch != "" {
		um, err := NewMatcher(MatchWildcard, x.UserMatch, "")
		if err == nil {
			it.UserMatcher = um
		}
	}
	it.SearchInterval = x.SearchInterval
	it.ExpireTime = x.ExpireTime
	it.CheckAlreadyQueued = x.CheckAlreadyQueued
	it.CheckAlreadyShared = x.CheckAlreadyShared
	if x.SearchDays != "" {
		it.SearchDays = ParseDayMask(x.SearchDays)
	}
	if x.StartTime != "" {
		it.StartTime = parseClockTime(x.StartTime)
	}
	if x.EndTime != "" {
		it.EndTime = parseClockTime(x.EndTime)
	}
	it.LastSearch = x.LastSearchTime
	it.Token = Token(x.Token)
	return it
}

// Store persists the full item set and scheduler cursor to a single XML
// file (§4.G, §6).
type Store struct {
	Path string
}

// Save atomically replaces Path with the current item set and cursor
// position, via renameio (fsync + atomic rename), matching the
// write-tmp/close/delete/rename recipe in §4.G.
func (s *Store) Save(items []Item, cursorPos int) error {
	root := xmlRoot{LastPosition: cursorPos}
	root.Items.Items = make([]xmlItem, len(items))
	for i, it := range items {
		root.Items.Items[i] = itemToXML(it)
	}

	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("autosearch: marshal xml: %w", err)
	}

	pf, err := renameio.NewPendingFile(s.Path)
	if err != nil {
		return fmt.Errorf("autosearch: create pending file: %w", err)
	}
	defer pf.Cleanup()

	if _, err := io.WriteString(pf, xmlUTF8Header); err != nil {
		return fmt.Errorf("autosearch: write header: %w", err)
	}
	if _, err := pf.Write(body); err != nil {
		return fmt.Errorf("autosearch: write body: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("autosearch: atomic replace: %w", err)
	}
	return nil
}

// Load reads the persisted item set and cursor position. Items whose
// SearchString duplicates one already accepted are dropped without being
// logged; the cursor is clamped to [0, len(items)) (§4.G).
func (s *Store) Load() (items []Item, cursorPos int, err error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("autosearch: read %s: %w", s.Path, err)
	}

	var root xmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, 0, fmt.Errorf("autosearch: unmarshal xml: %w", err)
	}

	seen := make(map[string]struct{}, len(root.Items.Items))
	items = make([]Item, 0, len(root.Items.Items))
	for _, x := range root.Items.Items {
		if _, dup := seen[x.SearchString]; dup {
			continue
		}
		seen[x.SearchString] = struct{}{}
		items = append(items, xmlToItem(x))
	}

	cursorPos = root.LastPosition
	if cursorPos < 0 || cursorPos >= len(items) {
		cursorPos = 0
	}
	return items, cursorPos, nil
}

// minFlushInterval is the "no more than once per 20s" cadence named in §4.G.
const minFlushInterval = 20 * time.Second

// flushCheckTick controls how often FlushWorker evaluates its dirty flag,
// matching the teacher's CacheFlushWorker check-tick pattern
// (internal/state/flush.go).
const flushCheckTick = 5 * time.Second

// FlushWorker debounces Manager/Scheduler state to a Store on a
// dirty-flag/interval cadence, modeled on the teacher's
// state.CacheFlushWorker (§4.G, §5).
type FlushWorker struct {
	Store     *Store
	Manager   *Manager
	Scheduler *Scheduler
	Logger    *log.Logger

	dirty atomic.Bool

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewFlushWorker wires a FlushWorker over an existing Store/Manager/Scheduler.
func NewFlushWorker(store *Store, mgr *Manager, sched *Scheduler) *FlushWorker {
	return &FlushWorker{Store: store, Manager: mgr, Scheduler: sched, stopCh: make(chan struct{})}
}

// MarkDirty records that in-memory state has changed since the last flush.
// Callers wire this to Manager.Events (AddItem/UpdateItem/RemoveItem).
func (w *FlushWorker) MarkDirty(Event) {
	w.dirty.Store(true)
}

// Start launches the background flush goroutine.
func (w *FlushWorker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop signals the worker to stop and performs a final flush if dirty.
// Blocks until the goroutine exits.
func (w *FlushWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

func (w *FlushWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(flushCheckTick)
	defer ticker.Stop()

	lastFlush := time.Now().Add(-minFlushInterval)

	for {
		select {
		case <-w.stopCh:
			if w.dirty.Load() {
				w.doFlush()
			}
			return
		case <-ticker.C:
			if !w.dirty.Load() {
				continue
			}
			if time.Since(lastFlush) < minFlushInterval {
				continue
			}
			w.doFlush()
			lastFlush = time.Now()
		}
	}
}

// doFlush clears the dirty flag before writing so a mutation racing the
// write is not lost, then restores it on failure so a later tick retries
// once minFlushInterval has passed again (§9 Open Question 1, matching
// DirtySet.Merge's re-merge-on-failure discipline).
func (w *FlushWorker) doFlush() {
	w.dirty.Store(false)
	items := w.Manager.Snapshot()
	pos := w.Scheduler.Cursor().Pos
	if err := w.Store.Save(items, pos); err != nil {
		w.dirty.Store(true)
		if w.Logger != nil {
			w.Logger.Printf("autosearch: flush failed, will retry: %v", err)
		}
	}
}
