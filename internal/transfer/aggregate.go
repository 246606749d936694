package transfer

import "sync"

// Aggregator folds two progress feeds into one by summing the latest
// (transferred, total) of each side on every update.
type Aggregator struct {
	mu          sync.Mutex
	transferred [2]int64
	total       [2]int64
	onProgress  ProgressFunc
}

func NewAggregator(onProgress ProgressFunc) *Aggregator {
	return &Aggregator{onProgress: onProgress}
}

// Side returns the feed for side i (0 or 1).
func (a *Aggregator) Side(i int) ProgressFunc {
	return func(transferred, total int64) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.transferred[i] = transferred
		if total > a.total[i] {
			a.total[i] = total
		}
		if a.onProgress != nil {
			a.onProgress(a.transferred[0]+a.transferred[1], a.total[0]+a.total[1])
		}
	}
}
