package history

import (
	"sync"

	"github.com/bcdannyboy/stocvar/models"
)

// Source resolves a price data reference to its history.
type Source interface {
	History(ref string) (QuoteHistory, error)
}

// Returns loads ref from src and derives its log returns.
func Returns(src Source, ref string) ([]float64, error) {
	q, err := src.History(ref)
	if err != nil {
		return nil, err
	}
	return q.Returns()
}

// Loader reads price files from disk and memoizes them for the lifetime of
// the Loader. Build one per computation.
type Loader struct {
	mu    sync.Mutex
	cache map[string]QuoteHistory
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string]QuoteHistory)}
}

func (l *Loader) History(path string) (QuoteHistory, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if q, ok := l.cache[path]; ok {
		return q, nil
	}
	q, err := Load(path)
	if err != nil {
		return QuoteHistory{}, err
	}
	l.cache[path] = q
	return q, nil
}

// Cached reports how many distinct files have been read.
func (l *Loader) Cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

// MemorySource serves closing prices held in memory, keyed by reference.
type MemorySource map[string][]float64

func (m MemorySource) History(ref string) (QuoteHistory, error) {
	closes, ok := m[ref]
	if !ok {
		return QuoteHistory{}, models.Errorf(models.KindDataIO, ref, "no price data")
	}
	q := QuoteHistory{Path: ref, Days: make([]Day, len(closes))}
	for i, c := range closes {
		q.Days[i] = Day{Open: c, High: c, Low: c, Close: c}
	}
	return q, nil
}
