package autosearch

import "context"

// SearchCategory distinguishes a scheduler-driven search from a
// user-triggered one (§4.E).
type SearchCategory int

const (
	CategoryAuto SearchCategory = iota
	CategoryManual
)

// SizePolicy mirrors the ADC search size-constraint modes ("at least",
// "at most", "exact"); the scheduler always issues SizeNone since item
// searches carry no size constraint.
type SizePolicy int

const SizeNone SizePolicy = 0

// SearchService issues a search over the online hubs and reports the
// minimum delay, in milliseconds, before the next search is allowed
// (§6: "Search.search").
type SearchService interface {
	Search(ctx context.Context, hubs []string, query string, size int64, mode int, sizePolicy SizePolicy, token string, extensions []string, category SearchCategory) (nextAllowedDelayMs int64, err error)
}

// ResultKind distinguishes a file result from a directory result.
type ResultKind int

const (
	ResultFile ResultKind = iota
	ResultDirectory
)

// User identifies a hub participant by content ID.
type User struct {
	CID string
	Nick string
}

// SearchResult is a decoded inbound search response (§4.F).
type SearchResult struct {
	User     User
	HubURL   string
	FileName string
	FullPath string
	Size     int64
	TTH      string // 39-character base32 content hash, empty for directories without one
	Kind     ResultKind
	Token    string
}

// ClientManager resolves hub users and nick aliases (§6).
type ClientManager interface {
	OnlineHubs() []string
	NicksFor(cid, hubURL string) []string
	FindOnlineUser(cid, hubURL string) (User, bool)
	// IsUserConnected reports whether the given user currently has a live
	// client connection capable of receiving a direct message.
	IsUserConnected(u User) bool
	// SendMessage delivers an informational message to a connected user
	// (used by the Report action).
	SendMessage(u User, text string) error
}

// ShareManager answers whether a directory name is already locally
// shared (§6).
type ShareManager interface {
	IsDirShared(name string) bool
}

// QueueManager answers queue-dedup questions and performs file enqueues
// (§6).
type QueueManager interface {
	IsDirQueued(name string) bool
	AddFile(target string, size int64, tth string, priority Priority) (bundleToken string, err error)
	BundleName(token string) string
}

// DirectoryListingManager enqueues a directory-listing download (§6).
type DirectoryListingManager interface {
	AddDirectoryDownload(hubURL string, user User, remotePath, target string, kind TargetKind, priority Priority) error
}

// TargetInfo describes a resolved virtual download target.
type TargetInfo struct {
	Path string
}

// TargetResolver resolves an item's abstract target descriptor into a
// concrete filesystem path, also reporting whether enough disk space is
// available (§6: "TargetUtil.get_virtual_target").
type TargetResolver interface {
	GetVirtualTarget(target string, kind TargetKind, size int64) (info TargetInfo, hasSpace bool, err error)
}

// Priority mirrors the queue priority levels the router assigns based on
// the item's action (§4.F).
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityPaused
)
