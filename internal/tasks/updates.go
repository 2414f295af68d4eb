package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchGenres Phase = iota
	WarmFeed
	WarmComplete
)

func (p Phase) String() string {
	switch p {
	case FetchGenres:
		return "fetch_genres"
	case WarmFeed:
		return "warm_feed"
	case WarmComplete:
		return "warm_complete"
	default:
		return ""
	}
}

func fetchingGenresUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchGenres,
		Step:    1,
		Total:   1,
		Message: "Fetching genre catalog...",
	}
}

func warmingFeedUpdate(step, total int, feed string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmFeed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Caching feed %s (%d/%d)...", feed, step, total),
		Data:    feed,
	}
}

func warmCompleteUpdate(movies, feeds int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmComplete,
		Step:    feeds,
		Total:   feeds,
		Message: fmt.Sprintf("Cached %d movies across %d feeds", movies, feeds),
	}
}
