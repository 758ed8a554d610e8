package services

import (
	"context"
	"time"

	"dining-staff-dashboard/pkg/dashboard"
	"dining-staff-dashboard/pkg/models"
	"dining-staff-dashboard/pkg/widget"

	"github.com/patrickmn/go-cache"
)

// Backend は UI が利用するバックエンドAPIの全体です。
type Backend interface {
	widget.Assistant
	dashboard.PredictionService
}

const (
	keyChatStatus    = "chat-status"
	keyEventOptions  = "event-options"
	keyWeatherOpts   = "weather-options"
	keyTodaySummary  = "today-summary"
	keyTomorrowSumry = "tomorrow-summary"
)

// CachingBackend はセッション間で共有できる読み取り系のレスポンスを短時間キャッシュします。
// チャット送信・予測リクエストは常にバックエンドへ転送します。エラーはキャッシュしません。
type CachingBackend struct {
	Backend
	cache *cache.Cache
}

// NewCachingBackend は ttl の間レスポンスを保持する CachingBackend を生成します。
func NewCachingBackend(b Backend, ttl time.Duration) *CachingBackend {
	return &CachingBackend{
		Backend: b,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Invalidate はキャッシュを全て破棄します。
func (b *CachingBackend) Invalidate() {
	b.cache.Flush()
}

func (b *CachingBackend) ChatStatus(ctx context.Context) (*models.ChatStatus, error) {
	if v, found := b.cache.Get(keyChatStatus); found {
		s := v.(models.ChatStatus)
		return &s, nil
	}
	s, err := b.Backend.ChatStatus(ctx)
	if err != nil {
		return nil, err
	}
	b.cache.SetDefault(keyChatStatus, *s)
	return s, nil
}

func (b *CachingBackend) EventOptions(ctx context.Context) ([]string, error) {
	return b.options(keyEventOptions, func() ([]string, error) { return b.Backend.EventOptions(ctx) })
}

func (b *CachingBackend) WeatherOptions(ctx context.Context) ([]string, error) {
	return b.options(keyWeatherOpts, func() ([]string, error) { return b.Backend.WeatherOptions(ctx) })
}

func (b *CachingBackend) options(key string, fetch func() ([]string, error)) ([]string, error) {
	if v, found := b.cache.Get(key); found {
		return append([]string(nil), v.([]string)...), nil
	}
	opts, err := fetch()
	if err != nil {
		return nil, err
	}
	b.cache.SetDefault(key, append([]string(nil), opts...))
	return opts, nil
}

func (b *CachingBackend) TodaySummary(ctx context.Context) (*models.Summary, error) {
	return b.summary(keyTodaySummary, func() (*models.Summary, error) { return b.Backend.TodaySummary(ctx) })
}

func (b *CachingBackend) TomorrowSummary(ctx context.Context) (*models.Summary, error) {
	return b.summary(keyTomorrowSumry, func() (*models.Summary, error) { return b.Backend.TomorrowSummary(ctx) })
}

func (b *CachingBackend) summary(key string, fetch func() (*models.Summary, error)) (*models.Summary, error) {
	if v, found := b.cache.Get(key); found {
		s := v.(models.Summary)
		return &s, nil
	}
	s, err := fetch()
	if err != nil {
		return nil, err
	}
	b.cache.SetDefault(key, *s)
	return s, nil
}
