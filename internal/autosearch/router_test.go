package autosearch

import (
	"context"
	"testing"
	"time"
)

type fakeShareManager struct{ shared map[string]bool }

func (f *fakeShareManager) IsDirShared(name string) bool { return f.shared[name] }

type fakeQueueManager struct {
	queued  map[string]bool
	added   []string
	failErr error
}

func (f *fakeQueueManager) IsDirQueued(name string) bool { return f.queued[name] }
func (f *fakeQueueManager) AddFile(target string, size int64, tth string, priority Priority) (string, error) {
	if f.failErr != nil {
		return "", f.failErr
	}
	f.added = append(f.added, target)
	return "bundle-1", nil
}
func (f *fakeQueueManager) BundleName(token string) string { return "bundle" }

type fakeDirListingManager struct{ added []string }

func (f *fakeDirListingManager) AddDirectoryDownload(hubURL string, user User, remotePath, target string, kind TargetKind, priority Priority) error {
	f.added = append(f.added, remotePath)
	return nil
}

type fakeTargetResolver struct{}

func (fakeTargetResolver) GetVirtualTarget(target string, kind TargetKind, size int64) (TargetInfo, bool, error) {
	return TargetInfo{Path: target}, true, nil
}

type fakeRouterClientManager struct{ nicks map[string][]string }

func (f *fakeRouterClientManager) OnlineHubs() []string { return nil }
func (f *fakeRouterClientManager) NicksFor(cid, hubURL string) []string {
	return f.nicks[cid+"|"+hubURL]
}
func (f *fakeRouterClientManager) FindOnlineUser(cid, hubURL string) (User, bool) {
	return User{CID: cid, Nick: "resolved-nick"}, true
}
func (f *fakeRouterClientManager) IsUserConnected(u User) bool { return true }
func (f *fakeRouterClientManager) SendMessage(u User, text string) error { return nil }

func newTestRouter(t *testing.T, mgr *Manager, share ShareManager, queue QueueManager, dirs DirectoryListingManager, target TargetResolver, clients ClientManager) *Router {
	t.Helper()
	r, err := NewRouter(mgr, share, queue, dirs, target, clients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestRouter_IgnoresSelfSearchToken(t *testing.T) {
	mgr := NewManager()
	it := NewItem("dupe")
	it.Enabled = true
	mgr.Add(it)

	queue := &fakeQueueManager{queued: map[string]bool{}}
	r := newTestRouter(t, mgr, &fakeShareManager{}, queue, &fakeDirListingManager{}, fakeTargetResolver{}, &fakeRouterClientManager{})

	r.HandleResult(context.Background(), SearchResult{FileName: "dupe", Token: reservedBundleSelfSearchToken})
	if len(queue.added) != 0 {
		t.Fatal("expected reserved self-search token to be ignored")
	}
}

func TestRouter_DownloadActionEnqueuesFile(t *testing.T) {
	mgr := NewManager()
	it := NewItem("linux iso")
	it.Enabled = true
	it.Action = ActionDownload
	tok, _ := mgr.Add(it)

	queue := &fakeQueueManager{queued: map[string]bool{}}
	r := newTestRouter(t, mgr, &fakeShareManager{}, queue, &fakeDirListingManager{}, fakeTargetResolver{}, &fakeRouterClientManager{})

	r.HandleResult(context.Background(), SearchResult{
		FileName: "linux iso image.iso",
		FullPath: "/share/linux iso image.iso",
		Size:     1024,
	})

	if len(queue.added) != 1 {
		t.Fatalf("expected one file enqueued, got %d", len(queue.added))
	}
	got, _ := mgr.Get(tok)
	if got.Status != StatusQueued {
		t.Fatalf("expected status Queued, got %v", got.Status)
	}
}

func TestRouter_CheckAlreadySharedSkipsDirectory(t *testing.T) {
	mgr := NewManager()
	it := NewItem("season pack")
	it.Enabled = true
	it.FileType = FileTypeDirectory
	it.CheckAlreadyShared = true
	mgr.Add(it)

	share := &fakeShareManager{shared: map[string]bool{"season pack s01": true}}
	dirs := &fakeDirListingManager{}
	r := newTestRouter(t, mgr, share, &fakeQueueManager{queued: map[string]bool{}}, dirs, fakeTargetResolver{}, &fakeRouterClientManager{})

	r.HandleResult(context.Background(), SearchResult{
		Kind:     ResultDirectory,
		FullPath: "/share/season pack s01",
	})

	if len(dirs.added) != 0 {
		t.Fatal("expected already-shared directory to be skipped")
	}
}

func TestRouter_UserMatcherFiltersByNick(t *testing.T) {
	mgr := NewManager()
	it := NewItem("rare file")
	it.Enabled = true
	m, err := NewMatcher(MatchExact, "trusted-uploader", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	it.UserMatcher = m
	mgr.Add(it)

	clients := &fakeRouterClientManager{nicks: map[string][]string{
		"cid1|hub1": {"some-other-nick"},
		"cid2|hub1": {"trusted-uploader"},
	}}
	queue := &fakeQueueManager{queued: map[string]bool{}}
	r := newTestRouter(t, mgr, &fakeShareManager{}, queue, &fakeDirListingManager{}, fakeTargetResolver{}, clients)

	r.HandleResult(context.Background(), SearchResult{
		FileName: "rare file.bin",
		User:     User{CID: "cid1"},
		HubURL:   "hub1",
	})
	if len(queue.added) != 0 {
		t.Fatal("expected no match for an untrusted nick")
	}

	r.HandleResult(context.Background(), SearchResult{
		FileName: "rare file.bin",
		User:     User{CID: "cid2"},
		HubURL:   "hub1",
	})
	if len(queue.added) != 1 {
		t.Fatal("expected match once the trusted nick is present")
	}
}

func TestRouter_BundleFinishedRemovesCompletedItem(t *testing.T) {
	mgr := NewManager()
	it := NewItem("one shot")
	it.Enabled = true
	it.RemoveAfterCompletion = true
	it.AddBundle("bundle-1")
	tok, _ := mgr.Add(it)

	r := newTestRouter(t, mgr, &fakeShareManager{}, &fakeQueueManager{queued: map[string]bool{}}, &fakeDirListingManager{}, fakeTargetResolver{}, &fakeRouterClientManager{})

	r.BundleFinished("bundle-1")

	if _, ok := mgr.Get(tok); ok {
		t.Fatal("expected item removed once its last bundle completed")
	}
}

func TestRouter_BundleFinishedAdjustsWiredSchedulerCursor(t *testing.T) {
	mgr := NewManager()
	enabledItem(t, mgr, "a")
	enabledItem(t, mgr, "b")
	enabledItem(t, mgr, "c")

	hubs := &fakeClientManager{online: []string{"hub1"}}
	search := &fakeSearchService{}
	sched := NewScheduler(mgr, nil, search, hubs, DefaultSettings())
	sched.Settings.AutoSearchEvery = 1

	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	sched.Tick1m(now) // searches "a", cursor.Pos == 1

	r := newTestRouter(t, mgr, &fakeShareManager{}, &fakeQueueManager{queued: map[string]bool{}}, &fakeDirListingManager{}, fakeTargetResolver{}, &fakeRouterClientManager{})
	r.Scheduler = sched

	if _, err := mgr.Update(mgr.Snapshot()[0].Token, func(it *Item) {
		it.RemoveAfterCompletion = true
		it.AddBundle("bundle-1")
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.BundleFinished("bundle-1") // removes "a" at index 0, below cursor.Pos == 1

	sched.Tick1m(now) // must search "b" next, not skip it
	if len(search.calls) != 2 || search.calls[1] != "b" {
		t.Fatalf("expected router removal to shift the cursor so \"b\" searches next, got %v", search.calls)
	}
}

func TestRouter_BundleFinishedKeepsItemWithoutRemoveFlag(t *testing.T) {
	mgr := NewManager()
	it := NewItem("keep-me")
	it.Enabled = true
	it.RemoveAfterCompletion = false
	it.AddBundle("bundle-1")
	tok, _ := mgr.Add(it)

	r := newTestRouter(t, mgr, &fakeShareManager{}, &fakeQueueManager{queued: map[string]bool{}}, &fakeDirListingManager{}, fakeTargetResolver{}, &fakeRouterClientManager{})

	r.BundleFinished("bundle-1")

	got, ok := mgr.Get(tok)
	if !ok {
		t.Fatal("expected item to remain")
	}
	if got.HasBundles() {
		t.Fatal("expected bundle token cleared")
	}
}
