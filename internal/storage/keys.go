package storage

// Key-value store keys, one per persisted concern.
const (
	// KeyPlaylists holds the full playlist snapshot (fallback path only).
	KeyPlaylists = "yto.playlists"
	// KeySortMode holds the sort mode preference ("custom", "alphabetical", "recent").
	KeySortMode = "yto.sortMode"
	// KeyCustomOrder holds the drag-established playlist id sequence. Legacy
	// deployments stored []{id, sortId} objects; sorting migrates those on read.
	KeyCustomOrder = "yto.customOrder"
	// KeyAuthToken holds the session-scoped {accessToken, expiresAt} cache.
	// Never evicted.
	KeyAuthToken = "yto.authToken"
	// KeyPageToken holds the opaque continuation token of the last playlist fetch.
	KeyPageToken = "yto.pageToken"
	// KeyDarkMode holds the "true"/"false" dark-mode preference.
	KeyDarkMode = "yto.darkMode"
)

// evictionOrder lists the keys eligible for quota eviction in ascending
// priority: cheap-to-lose keys first, the full snapshot last. The auth token
// and the key currently being written are never evicted.
var evictionOrder = []string{KeyPageToken, KeySortMode, KeyCustomOrder, KeyPlaylists}
