package retrieval

// Mode selects where ranking scores come from. It is decided once at
// startup and never changes while the process runs.
type Mode string

const (
	// ModeStore ranks with nearest-neighbor queries against the vector store.
	ModeStore Mode = "store"
	// ModeFallback fetches the page and scores its chunks locally.
	ModeFallback Mode = "fallback"
)

func (m Mode) String() string {
	return string(m)
}
