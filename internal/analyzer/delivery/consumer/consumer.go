package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/internal/analyzer/service"
	"golang-stock-news-analyzer/internal/entity"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// StreamClient is the subset of *redis.Client the consumer uses.
type StreamClient interface {
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisConsumer runs queued analysis requests one at a time.
type RedisConsumer struct {
	cfg         *config.Config
	redisClient StreamClient
	pipeline    service.PipelineService
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func NewRedisConsumer(cfg *config.Config, redisClient StreamClient, pipeline service.PipelineService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:         cfg,
		redisClient: redisClient,
		pipeline:    pipeline,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the consumer's processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started", logger.StringField("stream", common.RedisStreamAnalysisRequest))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				c.ProcessNext(ctx)
			}
		}
	})
}

// ProcessNext reads at most one request, runs it and publishes the result.
func (c *RedisConsumer) ProcessNext(ctx context.Context) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamAnalysisRequest, ">"},
		Count:    1,
		Block:    c.blockTimeout(),
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Error("Failed to read from stream", logger.ErrorField(err))
		// keep a broken connection from spinning the loop
		c.sleep(ctx, time.Second)
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}
	c.handle(ctx, streams[0].Messages[0])
}

func (c *RedisConsumer) handle(ctx context.Context, message redis.XMessage) {
	// ack and publish must reach Redis even when shutdown cancels ctx mid-run
	settleCtx := context.WithoutCancel(ctx)
	defer c.ack(settleCtx, message.ID)

	payload, ok := message.Values["payload"].(string)
	if !ok {
		c.logger.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		return
	}

	var req dto.StreamAnalysisRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		c.logger.Error("Failed to unmarshal analysis request", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}
	if req.RequestID == "" {
		req.RequestID = message.ID
	}

	c.logger.Info("Processing analysis request", logger.StringField("company", req.CompanyName), logger.StringField("request_id", req.RequestID))

	runCtx, cancel := context.WithTimeout(ctx, c.runTimeout())
	run, err := c.pipeline.Run(runCtx, req.CompanyName)
	cancel()

	c.publish(settleCtx, buildResult(req, run, err))
}

func buildResult(req dto.StreamAnalysisRequest, run *entity.PipelineRun, err error) dto.StreamAnalysisResult {
	result := dto.StreamAnalysisResult{
		RequestID:   req.RequestID,
		CompanyName: req.CompanyName,
	}
	if run == nil {
		result.Status = string(entity.PipelineStatusError)
		if err != nil {
			result.Error = err.Error()
		}
		return result
	}

	result.Status = string(run.Status)
	result.FailureStage = string(run.FailureStage)
	result.Ticker = run.Ticker
	result.Analysis = run.Analysis
	result.Error = run.Error
	result.DurationSec = run.Elapsed().Seconds()
	return result
}

func (c *RedisConsumer) publish(ctx context.Context, result dto.StreamAnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("Failed to marshal analysis result", logger.ErrorField(err), logger.StringField("request_id", result.RequestID))
		return
	}

	if err := c.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamAnalysisResult,
		Values: map[string]interface{}{"payload": string(data)},
		MaxLen: c.cfg.Redis.StreamMaxLen,
		Approx: true,
	}).Err(); err != nil {
		c.logger.Error("Failed to publish analysis result", logger.ErrorField(err), logger.StringField("request_id", result.RequestID))
		return
	}

	c.logger.Info("Analysis result published",
		logger.StringField("request_id", result.RequestID),
		logger.StringField("company", result.CompanyName),
		logger.StringField("status", result.Status),
	)
}

func (c *RedisConsumer) ack(ctx context.Context, id string) {
	if err := c.redisClient.XAck(ctx, common.RedisStreamAnalysisRequest, common.RedisStreamGroup, id).Err(); err != nil {
		c.logger.Error("Failed to acknowledge message", logger.ErrorField(err), logger.Field("message_id", id))
	}
}

func (c *RedisConsumer) blockTimeout() time.Duration {
	if c.cfg.Worker.BlockTimeout <= 0 {
		return 2 * time.Second
	}
	return c.cfg.Worker.BlockTimeout
}

func (c *RedisConsumer) runTimeout() time.Duration {
	if c.cfg.Worker.RunTimeout <= 0 {
		return 3 * time.Minute
	}
	return c.cfg.Worker.RunTimeout
}

func (c *RedisConsumer) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-c.stopChan:
	case <-time.After(d):
	}
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
