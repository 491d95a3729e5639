package autosearch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/maypok86/otter"
)

// reservedBundleSelfSearchToken is the token bundle self-searches carry;
// results tagged with it are never routed back through item matching
// (§4.F step 1).
const reservedBundleSelfSearchToken = "qa"

const nickCacheTTL = 30 * time.Second

// Router matches inbound search results against items and drives the
// Download/Queue/Report actions (§4.F).
type Router struct {
	Manager *Manager

	Share   ShareManager
	Queue   QueueManager
	Dirs    DirectoryListingManager
	Target  TargetResolver
	Clients ClientManager

	Logger *log.Logger

	// Scheduler, if set, has its round-robin cursor kept in sync with
	// removals the router performs (§4.E, §5 "no double-skip").
	Scheduler *Scheduler

	nickCache otter.Cache[string, []string]
}

// NewRouter wires a Router over an existing Manager.
func NewRouter(mgr *Manager, share ShareManager, queue QueueManager, dirs DirectoryListingManager, target TargetResolver, clients ClientManager) (*Router, error) {
	cache, err := otter.MustBuilder[string, []string](1024).
		Cost(func(_ string, _ []string) uint32 { return 1 }).
		WithTTL(nickCacheTTL).
		Build()
	if err != nil {
		return nil, fmt.Errorf("autosearch: build nick cache: %w", err)
	}
	return &Router{
		Manager:   mgr,
		Share:     share,
		Queue:     queue,
		Dirs:      dirs,
		Target:    target,
		Clients:   clients,
		nickCache: cache,
	}, nil
}

func (r *Router) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// removeItem removes tok and, if a Scheduler is wired, keeps its
// round-robin cursor from skipping the item that slides into the
// removed slot.
func (r *Router) removeItem(tok Token) {
	idx, ok := r.Manager.Remove(tok)
	if ok && r.Scheduler != nil {
		r.Scheduler.AdjustCursorForRemoval(idx)
	}
}

// HandleResult matches result against the current item set and applies
// each matched item's action independently (§4.F).
func (r *Router) HandleResult(ctx context.Context, result SearchResult) {
	if result.Token == reservedBundleSelfSearchToken {
		return
	}

	for _, it := range r.Manager.Snapshot() {
		if !r.admitsResult(it, result) {
			continue
		}
		r.applyAction(ctx, it, result)
	}
}

// admitsResult applies the allow/manual-pending, content-match, and
// nick-match rules for one item against one result (§4.F step 2). The
// item's day/time search window is not consulted here.
func (r *Router) admitsResult(it Item, result SearchResult) bool {
	allowed := it.AllowNewItems() || it.ManualSearchPending
	if it.ManualSearchPending {
		r.Manager.Update(it.Token, func(upd *Item) {
			upd.ManualSearchPending = false
		})
	}
	if !allowed {
		return false
	}

	switch it.FileType {
	case FileTypeTTH:
		if !it.Match(result.TTH) {
			return false
		}
	case FileTypeDirectory:
		if result.Kind != ResultDirectory {
			return false
		}
		if !it.Match(lastPathSegment(result.FullPath)) {
			return false
		}
	default:
		candidate := result.FileName
		if result.Kind == ResultDirectory {
			candidate = lastPathSegment(result.FullPath)
		}
		if !it.Match(candidate) {
			return false
		}
	}

	if !it.UserMatcher.IsEmpty() {
		if !r.anyNickMatches(it, result) {
			return false
		}
	}

	return true
}

// anyNickMatches reports whether any known nick alias of the result's
// user on the result's hub matches the item's user matcher, going
// through a short-TTL cache in front of ClientManager.NicksFor to absorb
// bursts of results for the same user (§4.F expansion).
func (r *Router) anyNickMatches(it Item, result SearchResult) bool {
	key := result.User.CID + "|" + result.HubURL
	nicks, ok := r.nickCache.Get(key)
	if !ok {
		nicks = r.Clients.NicksFor(result.User.CID, result.HubURL)
		r.nickCache.Set(key, nicks)
	}
	for _, nick := range nicks {
		if it.MatchNick(nick) {
			return true
		}
	}
	return false
}

// applyAction dispatches to the item's configured action. Queue failures
// are swallowed so other matched items still run (§4.F step 3, §7
// "QueueFailure").
func (r *Router) applyAction(ctx context.Context, it Item, result SearchResult) {
	switch it.Action {
	case ActionDownload, ActionQueue:
		r.applyDownloadOrQueue(it, result)
	case ActionReport:
		r.applyReport(it, result)
	}
}

func (r *Router) applyDownloadOrQueue(it Item, result SearchResult) {
	priority := PriorityDefault
	if it.Action == ActionQueue {
		priority = PriorityPaused
	}

	if it.FileType == FileTypeDirectory || result.Kind == ResultDirectory {
		dir := lastPathSegment(result.FullPath)
		if it.CheckAlreadyShared && r.Share.IsDirShared(dir) {
			return
		}
		if it.CheckAlreadyQueued && r.Queue.IsDirQueued(dir) {
			return
		}
		if err := r.Dirs.AddDirectoryDownload(result.HubURL, result.User, result.FullPath, it.Target, it.TargetKind, priority); err != nil {
			r.logf("autosearch: directory enqueue failed for %q: %v", it.SearchString, err)
			return
		}
		if it.Status != StatusList {
			r.Manager.Update(it.Token, func(upd *Item) { upd.Status = StatusList })
		}
		return
	}

	info, hasSpace, err := r.Target.GetVirtualTarget(it.Target, it.TargetKind, result.Size)
	if err != nil {
		r.logf("autosearch: resolving target for %q failed: %v", it.SearchString, err)
		return
	}
	if !hasSpace {
		r.logf("autosearch: insufficient disk space for %q at %s", it.SearchString, info.Path)
	}
	if _, err := r.Queue.AddFile(info.Path, result.Size, result.TTH, priority); err != nil {
		r.logf("autosearch: file enqueue failed for %q: %v", it.SearchString, err)
		return
	}
	r.Manager.Update(it.Token, func(upd *Item) { upd.Status = StatusQueued })
}

func (r *Router) applyReport(it Item, result SearchResult) {
	user, ok := r.Clients.FindOnlineUser(result.User.CID, result.HubURL)
	if !ok || !r.Clients.IsUserConnected(user) {
		return
	}
	text := fmt.Sprintf("%s: %s", user.Nick, result.FullPath)
	if err := r.Clients.SendMessage(user, text); err != nil {
		r.logf("autosearch: report message to %q failed: %v", user.Nick, err)
	}
	if it.RemoveAfterCompletion {
		r.removeItem(it.Token)
	}
}

// BundleFinished removes the bundle token from every item that holds it,
// deleting an item outright once its last bundle clears and
// remove_after_completion is set (§3 lifecycle, §4.D).
func (r *Router) BundleFinished(bundleToken string) {
	for _, it := range r.Manager.Snapshot() {
		if _, has := it.BundleTokens[bundleToken]; !has {
			continue
		}
		updated, err := r.Manager.Update(it.Token, func(upd *Item) {
			upd.RemoveBundle(bundleToken)
		})
		if err != nil {
			continue
		}
		if !updated.HasBundles() && updated.RemoveAfterCompletion {
			r.removeItem(updated.Token)
		}
	}
}

func lastPathSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
