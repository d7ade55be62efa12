package main

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	goToken "github.com/MrEthical07/goToken"
)

type phaseStats struct {
	Ops       int     `json:"ops"`
	Failures  int64   `json:"failures"`
	Total     string  `json:"total"`
	OpsPerSec float64 `json:"ops_per_sec"`
	P50       string  `json:"p50"`
	P95       string  `json:"p95"`
	P99       string  `json:"p99"`
}

type benchOutput struct {
	Pairs       int        `json:"pairs"`
	Concurrency int        `json:"concurrency"`
	Verify      phaseStats `json:"verify"`
	Rotate      phaseStats `json:"rotate"`
}

func runBench(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("bench", stderr)
	configPath := fs.StringP("config", "c", "", "settings file (.yaml, .yml, .json, .jsonc)")
	pairs := fs.Int("pairs", 1000, "number of token pairs to mint before measuring")
	ops := fs.Int("ops", 100000, "operations per phase (verify, rotate)")
	concurrency := fs.Int("concurrency", 64, "number of concurrent workers")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *pairs <= 0 || *ops <= 0 || *concurrency <= 0 {
		return usageError("--pairs, --ops and --concurrency must be > 0")
	}

	engine, logger, err := openEngine(*configPath, stderr)
	if err != nil {
		return err
	}
	defer closeEngine(engine, logger)

	seedStart := time.Now()
	seeded := make([]goToken.TokenPair, *pairs)
	for i := range seeded {
		p, err := engine.MintPair(fmt.Sprintf("bench-%d", i))
		if err != nil {
			return err
		}
		seeded[i] = p
	}
	logger.Info("seeded token pairs",
		zap.Int("pairs", *pairs),
		zap.Duration("elapsed", time.Since(seedStart)),
	)

	verify := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) error {
		_, err := engine.VerifyAccess(seeded[r.Intn(len(seeded))].AccessToken)
		return err
	})
	rotate := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) error {
		_, _, err := engine.Rotate(seeded[r.Intn(len(seeded))].RefreshToken)
		return err
	})

	return writeJSON(stdout, benchOutput{
		Pairs:       *pairs,
		Concurrency: *concurrency,
		Verify:      verify,
		Rotate:      rotate,
	})
}

// runPhase calls op ops times across concurrency workers, each with its own
// seeded source, and summarises the latencies.
func runPhase(ops, concurrency int, seedStep int64, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seedStep))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{Total: total.String()}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		Ops:       len(samples),
		Failures:  failures,
		Total:     total.Round(time.Millisecond).String(),
		OpsPerSec: float64(len(samples)) / total.Seconds(),
		P50:       percentile(samples, 50).Round(time.Microsecond).String(),
		P95:       percentile(samples, 95).Round(time.Microsecond).String(),
		P99:       percentile(samples, 99).Round(time.Microsecond).String(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}
