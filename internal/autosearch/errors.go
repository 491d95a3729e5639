package autosearch

import "errors"

// ErrDuplicateSearchString is returned by Manager.Add/Update when the
// search string collides with an existing item (§3, §7).
var ErrDuplicateSearchString = errors.New("autosearch: search string already exists")

// ErrNotFound is returned when an operation references a token that is
// not present in the manager.
var ErrNotFound = errors.New("autosearch: item not found")
