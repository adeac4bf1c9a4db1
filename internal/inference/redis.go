package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agenthands/imgclass/internal/config"
	"github.com/agenthands/imgclass/internal/core/model"
)

const redisProvider = "redis"

// RedisJob is what the model worker pops from the queue. The worker answers
// by setting key ID to a JSON {"prediction", "score"} object.
type RedisJob struct {
	ID        string `json:"id"`
	ImageName string `json:"image_name"`
}

type RedisClient struct {
	rdb          *redis.Client
	queue        string
	pollInterval time.Duration
	logger       *zap.Logger

	NewJobID func() string
}

func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisClientWith(rdb, cfg.Queue, cfg.PollIntervalDuration(), logger)
}

func NewRedisClientWith(rdb *redis.Client, queue string, pollInterval time.Duration, logger *zap.Logger) *RedisClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = 50 * time.Millisecond
	}
	return &RedisClient{
		rdb:          rdb,
		queue:        queue,
		pollInterval: pollInterval,
		logger:       logger,
		NewJobID:     func() string { return uuid.New().String() },
	}
}

func (c *RedisClient) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	job := RedisJob{ID: c.NewJobID(), ImageName: file.Key.String()}
	payload, err := json.Marshal(job)
	if err != nil {
		return model.PredictionResult{}, newError(redisProvider, file.Key, err)
	}

	if err := c.rdb.LPush(ctx, c.queue, payload).Err(); err != nil {
		return model.PredictionResult{}, newError(redisProvider, file.Key, fmt.Errorf("failed to enqueue job: %w", err))
	}
	c.logger.Debug("Queued prediction job",
		zap.String("job_id", job.ID),
		zap.String("image_name", job.ImageName),
		zap.String("queue", c.queue))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		raw, err := c.rdb.Get(ctx, job.ID).Bytes()
		switch {
		case err == nil:
			return c.consume(ctx, file.Key, job.ID, raw)
		case errors.Is(err, redis.Nil):
			// not ready yet
		case ctx.Err() != nil:
			return model.PredictionResult{}, newError(redisProvider, file.Key, ctx.Err())
		default:
			return model.PredictionResult{}, newError(redisProvider, file.Key, fmt.Errorf("failed to read job result: %w", err))
		}

		select {
		case <-ctx.Done():
			return model.PredictionResult{}, newError(redisProvider, file.Key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *RedisClient) consume(ctx context.Context, key model.ContentKey, jobID string, raw []byte) (model.PredictionResult, error) {
	if err := c.rdb.Del(context.WithoutCancel(ctx), jobID).Err(); err != nil {
		c.logger.Warn("Failed to delete job result", zap.String("job_id", jobID), zap.Error(err))
	}

	var wp wirePrediction
	if err := json.Unmarshal(raw, &wp); err != nil {
		return model.PredictionResult{}, newError(redisProvider, key, fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	res, err := wp.result()
	if err != nil {
		return model.PredictionResult{}, newError(redisProvider, key, err)
	}
	return res, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
