package refdata

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTables(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func allTables() map[string]string {
	return map[string]string{
		RatesFile:     ratesCSV,
		MortalityFile: mortalityCSV,
		MarketFile:    marketCSV,
	}
}

func TestLoader_Load(t *testing.T) {
	l := NewLoader(writeTables(t, allTables()))
	ref, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, ref.Rates, 2)
	assert.Len(t, ref.MarketHistory, 3)
	_, ok := ref.Mortality.Probability(domain.SexFemale, 40, 1)
	assert.True(t, ok)
}

func TestLoader_MissingTableLeavesFieldEmpty(t *testing.T) {
	l := NewLoader(writeTables(t, map[string]string{RatesFile: ratesCSV}))
	ref, err := l.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, ref.Rates)
	assert.Nil(t, ref.Mortality)
	assert.Nil(t, ref.MarketHistory)

	_, err = l.LoadMortality()
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestLoader_EmptyDirectory(t *testing.T) {
	_, err := NewLoader(t.TempDir()).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestLoader_MalformedTable(t *testing.T) {
	files := allTables()
	files[MortalityFile] = "bogus\n"
	_, err := NewLoader(writeTables(t, files)).Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTableNotFound))
	assert.Contains(t, err.Error(), MortalityFile)
}

func TestLoader_ConcurrentLoadsReadOnce(t *testing.T) {
	l := NewLoader(writeTables(t, allTables()))
	var reads atomic.Int32
	l.SetObserver(func(file string, _ time.Duration, err error) {
		assert.Equal(t, RatesFile, file)
		assert.NoError(t, err)
		reads.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := l.LoadRates()
			assert.NoError(t, err)
			assert.Len(t, table, 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), reads.Load())
}

func TestLoader_ReloadRereads(t *testing.T) {
	dir := writeTables(t, allTables())
	l := NewLoader(dir)
	_, err := l.Load()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, RatesFile), []byte("41,1.2\n"), 0o644))
	ref, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, ref.Rates, 2, "cached until reload")

	ref, err = l.Reload()
	require.NoError(t, err)
	assert.Len(t, ref.Rates, 1)
	assert.Contains(t, ref.Rates, 41)
}

func TestLoader_ReloadDuringReadKeepsNewTables(t *testing.T) {
	dir := writeTables(t, allTables())
	l := NewLoader(dir)

	// The first read of the rates file triggers a reload after the file has changed on disk,
	// so that read finishes with data older than the reload.
	var reloaded bool
	l.SetObserver(func(file string, _ time.Duration, err error) {
		if file != RatesFile || reloaded {
			return
		}
		reloaded = true
		require.NoError(t, os.WriteFile(filepath.Join(dir, RatesFile), []byte("41,1.2\n"), 0o644))
		ref, err := l.Reload()
		require.NoError(t, err)
		assert.Len(t, ref.Rates, 1)
	})

	old, err := l.LoadRates()
	require.NoError(t, err)
	assert.Len(t, old, 2, "the interrupted read still answers its caller")

	current, err := l.LoadRates()
	require.NoError(t, err)
	assert.Len(t, current, 1)
	assert.Contains(t, current, 41)
}

func TestStore(t *testing.T) {
	dir := writeTables(t, allTables())
	s := NewStore(NewLoader(dir))

	assert.False(t, s.Ready())
	assert.NotNil(t, s.Current())
	assert.True(t, s.LoadedAt().IsZero())

	require.NoError(t, s.Refresh())
	assert.True(t, s.Ready())
	assert.Len(t, s.Current().Rates, 2)
	first := s.Current()

	// A failed refresh keeps the previous snapshot.
	require.NoError(t, os.WriteFile(filepath.Join(dir, RatesFile), []byte("40,oops\n"), 0o644))
	assert.Error(t, s.Refresh())
	assert.Same(t, first, s.Current())

	s.Set(&domain.ReferenceData{})
	assert.Empty(t, s.Current().Rates)
}
