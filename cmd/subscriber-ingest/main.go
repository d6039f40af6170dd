// Command subscriber-ingest imports newsletter subscribers from gzipped
// mailing-list exports. An address only counts as confirmed when it appears
// in at least two of the given exports, which filters out addresses that
// signed up but never confirmed.
//
// The exports can be large, so the tool streams them in two concurrent
// passes: pass 1 builds a bloom filter per file, pass 2 re-streams each file
// and keeps addresses that another file's filter also claims to contain.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/freshbasket/orderd/internal/domain/newsletter"
	"github.com/freshbasket/orderd/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	maxEmailLen   = 254
)

// fileResult holds candidate addresses found in a single file during pass 2.
type fileResult struct {
	candidates map[string]uint
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	files := flag.Args()
	if len(files) < 2 {
		slog.Error("at least two gzipped export files are required")
		os.Exit(1)
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, databaseURL); err != nil {
		slog.Error("subscriber ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("subscriber ingest completed successfully")
}

func run(ctx context.Context, files []string, databaseURL string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: build bloom filters concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: find addresses appearing in 2+ files.
	slog.Info("pass 2: finding confirmed addresses")

	confirmed, err := findConfirmed(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed addresses")
	}

	slog.Info("confirmed addresses found", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("nothing to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return writeSubscribers(ctx, repository.NewNewsletterRepository(pool), confirmed)
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(email string) {
			filter.AddString(email)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("addresses", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_addresses", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmed re-streams each file and checks addresses against the OTHER
// files' bloom filters. An address is confirmed if it appears in 2+ files.
func findConfirmed(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all files.
	merged := make(map[string]uint)
	for _, r := range results {
		for email, mask := range r.candidates {
			merged[email] |= mask
		}
	}

	var confirmed []string
	for email, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			confirmed = append(confirmed, email)
		}
	}

	return confirmed, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		candidates := make(map[string]uint)
		fileBit := uint(1) << uint(idx)

		if err := streamGzFile(ctx, path, func(email string) {
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(email) {
					candidates[email] |= fileBit
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Int("candidates", len(candidates)),
		)

		results[idx] = fileResult{candidates: candidates}
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line that
// looks like an email address. Lines are lowercased and trimmed first.
func streamGzFile(ctx context.Context, path string, fn func(email string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var line uint64
	for scanner.Scan() {
		line++
		if line%progressEvery == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		email := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if validEmail(email) {
			fn(email)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// validEmail does a cheap shape check, not RFC validation.
func validEmail(email string) bool {
	if len(email) < 3 || len(email) > maxEmailLen {
		return false
	}
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

// writeSubscribers inserts confirmed addresses, skipping ones that are
// already subscribed.
func writeSubscribers(ctx context.Context, repo *repository.NewsletterRepository, emails []string) error {
	slog.Info("writing subscribers to database", slog.Int("count", len(emails)))

	var written, skipped int
	for i, email := range emails {
		err := repo.Subscribe(ctx, email)
		switch {
		case errors.Is(err, newsletter.ErrAlreadySubscribed):
			skipped++
		case err != nil:
			return errors.Wrapf(err, "subscribe %s", email)
		default:
			written++
		}

		if (i+1)%100 == 0 || i+1 == len(emails) {
			slog.Info("write progress", slog.Int("processed", i+1), slog.Int("total", len(emails)))
		}
	}

	slog.Info("write complete", slog.Int("written", written), slog.Int("skipped", skipped))
	return nil
}
