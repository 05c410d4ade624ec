package retry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shopping-assistant/internal/core/ai/openrouter"
	"shopping-assistant/internal/infrastructure/config"
	"shopping-assistant/internal/pkg/common"
)

// Class 錯誤分類
type Class int

const (
	// ClassTransient 其他暫時性錯誤（逾時、格式錯誤）
	ClassTransient Class = iota
	// ClassRateLimited HTTP 429
	ClassRateLimited
	// ClassUnauthorized HTTP 401
	ClassUnauthorized
)

func (c Class) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassUnauthorized:
		return "unauthorized"
	default:
		return "transient"
	}
}

// Backoff 等待時間的計算方式
type Backoff int

const (
	// BackoffFlat 固定等待 baseDelay
	BackoffFlat Backoff = iota
	// BackoffExponential 等待 baseDelay * 2^(attempt-1)
	BackoffExponential
	// BackoffStop 不再重試
	BackoffStop
)

// Policy 重試策略表
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Rules       map[Class]Backoff
}

// DefaultPolicy 3 次嘗試，429 指數退避，401 立即停止
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Rules: map[Class]Backoff{
			ClassTransient:    BackoffFlat,
			ClassRateLimited:  BackoffExponential,
			ClassUnauthorized: BackoffStop,
		},
	}
}

// FromConfig 以設定覆寫預設策略的次數與延遲
func FromConfig(cfg config.RetryConfig) Policy {
	p := DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseDelay >= 0 {
		p.BaseDelay = cfg.BaseDelay
	}
	return p
}

// Classify 依錯誤內容分類
func Classify(err error) Class {
	var statusErr *openrouter.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return ClassRateLimited
		case http.StatusUnauthorized:
			return ClassUnauthorized
		}
	}
	return ClassTransient
}

// Delay 第 attempt 次（從 1 起算）失敗後的等待時間，ok 為 false 表示停止
func (p Policy) Delay(class Class, attempt int) (time.Duration, bool) {
	if attempt >= p.MaxAttempts {
		return 0, false
	}
	switch p.Rules[class] {
	case BackoffStop:
		return 0, false
	case BackoffExponential:
		return p.BaseDelay * time.Duration(1<<uint(attempt-1)), true
	default:
		return p.BaseDelay, true
	}
}

// Executor 通用重試執行器
type Executor struct {
	Policy Policy
	// Sleep 可替換，測試時不需真的等待
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor 創建執行器
func NewExecutor(policy Policy) *Executor {
	return &Executor{Policy: policy, Sleep: sleepContext}
}

// Do 依策略重複呼叫 fn，回傳最後一次的錯誤
func Do[T any](ctx context.Context, e *Executor, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= e.Policy.MaxAttempts; attempt++ {
		result, err := fn(ctx, attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		delay, ok := e.Policy.Delay(Classify(err), attempt)
		if !ok {
			break
		}
		if err := e.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	if lastErr == nil {
		lastErr = common.ErrGeneration
	}
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
