package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/pkg/metrics"
)

// 默认参数
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// ExhaustedError 重试耗尽
// Unwrap 返回最后一次尝试的错误
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("操作在 %d 次尝试后失败: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Backoff 构建退避策略
// 第 n 次失败后等待 baseDelay * 2^(n-1)，最多尝试 maxAttempts 次
func Backoff(maxAttempts int, baseDelay time.Duration) goretry.Backoff {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return goretry.WithMaxRetries(uint64(maxAttempts-1), goretry.NewExponential(baseDelay))
}

// WithRetry 带指数退避的重试
// op 失败时记录日志并等待后重试；耗尽后返回 *ExhaustedError，errors.Is 可匹配最后一次的错误
func WithRetry[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	log := zap.L().Named("Retry")

	var (
		result  T
		lastErr error
		attempt int
	)

	err := goretry.Do(ctx, Backoff(maxAttempts, baseDelay), func(ctx context.Context) error {
		attempt++
		v, err := op(ctx)
		if err != nil {
			lastErr = err
			metrics.RetryAttempts.WithLabelValues("failed_attempt").Inc()
			log.Warn("操作失败",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err),
			)
			return goretry.RetryableError(err)
		}
		result = v
		return nil
	})

	if err == nil {
		if attempt > 1 {
			metrics.RetryAttempts.WithLabelValues("recovered").Inc()
			log.Info("重试后成功", zap.Int("attempt", attempt))
		}
		return result, nil
	}

	var zero T
	if lastErr == nil {
		return zero, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return zero, fmt.Errorf("重试被中断 (已尝试 %d 次): %w", attempt, errors.Join(ctxErr, lastErr))
	}

	metrics.RetryAttempts.WithLabelValues("exhausted").Inc()
	log.Error("重试耗尽", zap.Int("attempts", attempt), zap.Error(lastErr))
	return zero, &ExhaustedError{Attempts: attempt, Err: lastErr}
}

// Do 无返回值版本
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(ctx context.Context) error) error {
	_, err := WithRetry(ctx, maxAttempts, baseDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
