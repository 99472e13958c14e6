package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ranker/internal/domain/model"
	"github.com/okian/ranker/pkg/logger"
)

// Run executes the complete load test and returns its statistics. It fails
// with ErrMismatch when any served ranking disagrees with the local engine.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("loadtest")

	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("topics", cfg.Topics),
		logger.Int("attributesPerTopic", cfg.AttributesPerTopic),
		logger.Int("subjectsPerTopic", cfg.SubjectsPerTopic),
		logger.Int("workers", cfg.Workers),
		logger.Bool("replay", cfg.Replay))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if _, err := client.do(ctx, http.MethodGet, "/healthz", "", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Build and verify topics concurrently
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := runTopic(ctx, client, cfg, i, stats); err != nil {
					atomic.AddInt64(&stats.Failed, 1)
					log.Warn(ctx, "topic failed", logger.Int("topic", i), logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Topics; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("load test interrupted: %w", err)
	}
	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d of %d topics", ErrMismatch, stats.Mismatches, cfg.Topics)
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d of %d topics failed", stats.Failed, cfg.Topics)
	}
	return stats, nil
}

// runTopic creates one topic with its subjects, then checks its ranking.
func runTopic(ctx context.Context, client *HTTPClient, cfg Config, index int, stats *Stats) error {
	d := generateDecision(index, cfg)

	var topic model.Topic
	dup, err := client.post(ctx, "/topics", topicRequest{Name: d.Name, Attributes: d.Attributes}, &topic, cfg.Replay)
	if err != nil {
		return err
	}
	atomic.AddInt64(&stats.TopicsCreated, 1)
	countDuplicate(stats, dup)

	base := "/topics/" + topic.ID
	if cfg.Cleanup {
		defer func() {
			_, _ = client.do(context.WithoutCancel(ctx), http.MethodDelete, base, "", nil, nil)
		}()
	}

	for _, s := range d.Subjects {
		req := subjectRequest{Name: s.Name, Scores: scoresByID(s, topic.Attributes)}
		dup, err := client.post(ctx, base+"/subjects", req, nil, cfg.Replay)
		if err != nil {
			return err
		}
		atomic.AddInt64(&stats.SubjectsSubmitted, 1)
		countDuplicate(stats, dup)
	}

	// Read back the stored topic so the check uses server-assigned ids.
	if _, err := client.do(ctx, http.MethodGet, base, "", nil, &topic); err != nil {
		return err
	}
	var served resultsResponse
	if _, err := client.do(ctx, http.MethodGet, base+"/results", "", nil, &served); err != nil {
		return err
	}

	if err := verifyRanking(topic, served, cfg.WinnerMinSubjects); err != nil {
		atomic.AddInt64(&stats.Mismatches, 1)
		return err
	}
	atomic.AddInt64(&stats.Verified, 1)
	if cfg.Verbose {
		logger.Get().Info(ctx, "topic verified",
			logger.String("topic_id", topic.ID),
			logger.String("winner_id", served.WinnerID))
	}
	return nil
}

func countDuplicate(stats *Stats, dup bool) {
	if dup {
		atomic.AddInt64(&stats.Duplicates, 1)
	}
}

// logFinalStats logs the final run statistics.
func logFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var requestsPerSecond float64
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.TopicsCreated+stats.SubjectsSubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("topicsCreated", int(stats.TopicsCreated)),
		logger.Int("subjectsSubmitted", int(stats.SubjectsSubmitted)),
		logger.Int("duplicates", int(stats.Duplicates)),
		logger.Int("verified", int(stats.Verified)),
		logger.Int("mismatches", int(stats.Mismatches)),
		logger.Int("failed", int(stats.Failed)),
		logger.String("duration", stats.Duration.String()),
		logger.Any("mutationsPerSecond", requestsPerSecond))
}
