package data

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"
)

func lzmaCompress(t *testing.T, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestTickURLUsesZeroBasedMonth(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 5, 13, 0, 0, 0, time.UTC)
	url := TickURL("https://feed.example.com/datafeed", "XAUUSD", at)
	assert.Equal(t, "https://feed.example.com/datafeed/XAUUSD/2024/00/05/13h_ticks.bi5", url)

	dec := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Contains(t, TickURL("x", "XAUUSD", dec), "/2024/11/31/00h_ticks.bi5")
}

func TestHourPathLayout(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	path := HourPath("cache", "XAUUSD", at)
	assert.Equal(t, filepath.Join("cache", "XAUUSD", "2024", "03", "01", "09h_ticks.bi5"), path)
}

func TestDecompressBI5RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := tickRecord(0, 2300450, 2300150, 1.5, 2.0)

	src := filepath.Join(dir, "09h_ticks.bi5")
	require.NoError(t, os.WriteFile(src, lzmaCompress(t, payload), 0o644))

	dst := filepath.Join(dir, "09h_ticks.bin")
	require.NoError(t, DecompressBI5(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFetchHours(t *testing.T) {
	t.Parallel()

	payload := tickRecord(500, 2300450, 2300150, 1.0, 1.0)
	compressed := lzmaCompress(t, payload)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Serve hour 09, pretend hour 10 never traded.
		if strings.Contains(r.URL.Path, "/10h_ticks.bi5") {
			http.NotFound(w, r)
			return
		}
		w.Write(compressed)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL)
	f.Sleep = 0
	f.Workers = 2

	outDir := t.TempDir()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	stats, err := f.FetchHours(context.Background(), "xauusd", start, start.Add(2*time.Hour), outDir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OK)
	assert.Equal(t, 1, stats.Missing)
	assert.Equal(t, 0, stats.Failed)

	bin := filepath.Join(outDir, "XAUUSD", "2024", "03", "01", "09h_ticks.bin")
	got, err := os.ReadFile(bin)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFetchHoursValidatesInput(t *testing.T) {
	t.Parallel()

	f := NewFetcher("http://unused.example.com")
	now := time.Now()

	_, err := f.FetchHours(context.Background(), "", now, now.Add(time.Hour), t.TempDir())
	assert.Error(t, err)

	_, err = f.FetchHours(context.Background(), "XAUUSD", now, now, t.TempDir())
	assert.Error(t, err)
}
