// Package data downloads raw tick history from the Dukascopy datafeed and
// turns it into bar series. Hour files arrive LZMA-compressed (.bi5); the
// decompressed form is cached next to them as .bin.
package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ulikunitz/xz/lzma"
)

const DefaultBase = "https://datafeed.dukascopy.com/datafeed"

// Fetcher downloads hour files concurrently. The zero value is not usable;
// call NewFetcher.
type Fetcher struct {
	Base    string
	Client  *http.Client
	Workers int
	Sleep   time.Duration // polite delay per request
}

func NewFetcher(base string) *Fetcher {
	if base == "" {
		base = DefaultBase
	}
	return &Fetcher{
		Base:    base,
		Client:  &http.Client{Timeout: 45 * time.Second},
		Workers: 4,
		Sleep:   50 * time.Millisecond,
	}
}

// Stats counts the outcome of a fetch. Missing hours (weekends, holidays)
// are normal for this feed and are not errors.
type Stats struct {
	OK      int
	Missing int
	Failed  int
}

type fetchJob struct {
	url string
	bi5 string
	bin string
}

// TickURL builds the datafeed URL for one hour of ticks. The feed uses
// zero-based months in its paths: Jan=00 .. Dec=11.
func TickURL(base, symbol string, t time.Time) string {
	return fmt.Sprintf("%s/%s/%04d/%02d/%02d/%02dh_ticks.bi5",
		strings.TrimRight(base, "/"),
		symbol,
		t.Year(), int(t.Month())-1, t.Day(), t.Hour())
}

// HourPath is the local cache location of one hour's .bi5 file.
func HourPath(outDir, symbol string, t time.Time) string {
	return filepath.Join(outDir, symbol,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
		fmt.Sprintf("%02dh_ticks.bi5", t.Hour()))
}

// FetchHours downloads and decompresses every hour in [start, end) for the
// symbol into outDir. Hours already cached on disk are skipped. Individual
// hour failures are counted, not fatal; the context cancels the whole run.
func (f *Fetcher) FetchHours(ctx context.Context, symbol string, start, end time.Time, outDir string) (Stats, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Stats{}, fmt.Errorf("symbol required")
	}
	if !end.After(start) {
		return Stats{}, fmt.Errorf("end %s not after start %s", end, start)
	}

	var jobs []fetchJob
	for t := start.UTC().Truncate(time.Hour); t.Before(end); t = t.Add(time.Hour) {
		bi5 := HourPath(outDir, symbol, t)
		jobs = append(jobs, fetchJob{
			url: TickURL(f.Base, symbol, t),
			bi5: bi5,
			bin: strings.TrimSuffix(bi5, ".bi5") + ".bin",
		})
	}

	workers := f.Workers
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan fetchJob)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var stats Stats

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				outcome := f.fetchOne(ctx, j)
				mu.Lock()
				switch outcome {
				case fetchOK:
					stats.OK++
				case fetchMissing:
					stats.Missing++
				default:
					stats.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-ctx.Done():
			close(jobCh)
			wg.Wait()
			return stats, ctx.Err()
		}
	}
	close(jobCh)
	wg.Wait()

	return stats, nil
}

type fetchOutcome int

const (
	fetchOK fetchOutcome = iota
	fetchMissing
	fetchFailed
)

func (f *Fetcher) fetchOne(ctx context.Context, j fetchJob) fetchOutcome {
	if f.Sleep > 0 {
		time.Sleep(f.Sleep)
	}

	downloaded, status, err := f.download(ctx, j.url, j.bi5)
	if err != nil {
		return fetchFailed
	}
	if status == http.StatusNotFound {
		return fetchMissing
	}

	// Decompressed copy already cached and the source didn't change.
	if _, err := os.Stat(j.bin); err == nil && !downloaded {
		return fetchOK
	}
	if err := DecompressBI5(j.bi5, j.bin); err != nil {
		return fetchFailed
	}
	return fetchOK
}

// download gets url into dst unless a non-empty dst already exists. Writes
// go through a .part file so partial downloads never look complete.
func (f *Fetcher) download(ctx context.Context, url, dst string) (downloaded bool, status int, err error) {
	if st, err := os.Stat(dst); err == nil && st.Size() > 0 {
		return false, http.StatusOK, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, 0, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, http.StatusNotFound, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, resp.StatusCode, fmt.Errorf("http status %d", resp.StatusCode)
	}

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return false, resp.StatusCode, err
	}
	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tmp)
		return false, resp.StatusCode, copyErr
	}
	if closeErr != nil {
		os.Remove(tmp)
		return false, resp.StatusCode, closeErr
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return false, resp.StatusCode, err
	}
	return true, resp.StatusCode, nil
}

// DecompressBI5 expands an LZMA .bi5 file into its raw .bin tick records.
func DecompressBI5(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	r, err := lzma.NewReader(in)
	if err != nil {
		return fmt.Errorf("lzma %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tmp)
		return copyErr
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}
	return os.Rename(tmp, dst)
}
