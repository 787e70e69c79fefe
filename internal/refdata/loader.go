package refdata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/domain"
	"golang.org/x/sync/singleflight"
)

// File names looked up in the data directory.
const (
	RatesFile     = "rates.csv"
	MortalityFile = "mortality.csv"
	MarketFile    = "market.csv"
)

// ErrTableNotFound is returned when a reference table file does not exist.
var ErrTableNotFound = errors.New("reference table not found")

// LoadObserver is notified after every table read from disk (cache hits are not reported).
type LoadObserver func(file string, elapsed time.Duration, err error)

// Loader reads reference tables from a data directory. Parsed tables are cached per file and
// concurrent loads of the same file share one read.
type Loader struct {
	dir      string
	logger   calculation.Logger
	observer LoadObserver

	mu    sync.RWMutex
	cache map[string]any
	gen   uint64 // bumped by Reload; reads started under an older gen are not cached
	group singleflight.Group
}

// NewLoader creates a loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:    dir,
		logger: calculation.NopLogger{},
		cache:  make(map[string]any),
	}
}

// Dir returns the data directory.
func (l *Loader) Dir() string { return l.dir }

// SetLogger sets the logger. If nil is provided, a no-op logger is used.
func (l *Loader) SetLogger(logger calculation.Logger) {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	l.logger = logger
}

// SetObserver registers a callback for disk reads.
func (l *Loader) SetObserver(o LoadObserver) { l.observer = o }

func (l *Loader) cached(file string) (any, bool, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.cache[file]
	return v, ok, l.gen
}

func (l *Loader) load(file string, parse func(io.Reader) (any, error)) (any, error) {
	if v, ok, _ := l.cached(file); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(file, func() (any, error) {
		v, ok, gen := l.cached(file)
		if ok {
			return v, nil
		}

		start := time.Now()
		v, err := l.readFile(file, parse)
		if l.observer != nil {
			l.observer(file, time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		stale := gen != l.gen
		if !stale {
			l.cache[file] = v
		}
		l.mu.Unlock()
		if stale {
			l.logger.Debugf("not caching %s: read started before reload", file)
			return v, nil
		}
		l.logger.Infof("loaded %s in %s", file, time.Since(start))
		return v, nil
	})
	return v, err
}

func (l *Loader) readFile(file string, parse func(io.Reader) (any, error)) (any, error) {
	path := filepath.Join(l.dir, file)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}

// LoadRates returns the rate table.
func (l *Loader) LoadRates() (domain.RateTable, error) {
	v, err := l.load(RatesFile, func(r io.Reader) (any, error) { return ParseRates(r) })
	if err != nil {
		return nil, err
	}
	return v.(domain.RateTable), nil
}

// LoadMortality returns the mortality table.
func (l *Loader) LoadMortality() (domain.MortalityTable, error) {
	v, err := l.load(MortalityFile, func(r io.Reader) (any, error) { return ParseMortality(r) })
	if err != nil {
		return nil, err
	}
	return v.(domain.MortalityTable), nil
}

// LoadMarketHistory returns the market history.
func (l *Loader) LoadMarketHistory() (domain.MarketHistory, error) {
	v, err := l.load(MarketFile, func(r io.Reader) (any, error) { return ParseMarketHistory(r) })
	if err != nil {
		return nil, err
	}
	return v.(domain.MarketHistory), nil
}

// Load returns all three tables. A missing file only leaves its table empty and is logged; a
// malformed file is an error, as is a directory holding none of the tables.
func (l *Loader) Load() (*domain.ReferenceData, error) {
	ref := &domain.ReferenceData{}
	missing := 0

	skip := func(file string, err error) error {
		if errors.Is(err, ErrTableNotFound) {
			missing++
			l.logger.Warnf("%s not found in %s; dependent fields will be unknown", file, l.dir)
			return nil
		}
		return err
	}

	var err error
	if ref.Rates, err = l.LoadRates(); err != nil {
		if err = skip(RatesFile, err); err != nil {
			return nil, err
		}
	}
	if ref.Mortality, err = l.LoadMortality(); err != nil {
		if err = skip(MortalityFile, err); err != nil {
			return nil, err
		}
	}
	if ref.MarketHistory, err = l.LoadMarketHistory(); err != nil {
		if err = skip(MarketFile, err); err != nil {
			return nil, err
		}
	}

	if missing == 3 {
		return nil, fmt.Errorf("%w: no tables in %s", ErrTableNotFound, l.dir)
	}
	return ref, nil
}

// Reload drops the cache and reads every table again. A read already in flight still answers
// its own callers but is neither cached nor shared with loads that start after Reload.
func (l *Loader) Reload() (*domain.ReferenceData, error) {
	l.mu.Lock()
	l.cache = make(map[string]any)
	l.gen++
	l.mu.Unlock()
	for _, file := range []string{RatesFile, MortalityFile, MarketFile} {
		l.group.Forget(file)
	}
	return l.Load()
}
