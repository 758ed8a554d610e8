package services

import (
	"context"
	"log"
	"sync"
	"time"

	config "dining-staff-dashboard/configs"
	"dining-staff-dashboard/pkg/charts"
	"dining-staff-dashboard/pkg/dashboard"
	"dining-staff-dashboard/pkg/widget"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Session は1つのブラウザタブに対応するUI状態です。
// チャットウィジェットとダッシュボードのコントローラーを1つずつ所有します。
type Session struct {
	ID        string
	CreatedAt time.Time

	Widget    *widget.Controller
	Dashboard *dashboard.Controller
	Charts    *charts.ChartJS

	inbox *inbox
}

// Notices returns and clears the notifications raised since the last call.
func (s *Session) Notices() []string {
	return s.inbox.drainNotices()
}

// FocusRequest returns a pending request to focus the chat input.
func (s *Session) FocusRequest() (time.Duration, bool) {
	return s.inbox.takeFocus()
}

// Revision increases every time either controller renders.
func (s *Session) Revision() uint64 {
	return s.inbox.revisionValue()
}

// inbox は両コントローラーの Surface 呼び出しを、次のレスポンスで返せるよう溜めておきます。
type inbox struct {
	mu       sync.Mutex
	notices  []string
	focus    *time.Duration
	revision uint64
}

func (b *inbox) drainNotices() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.notices
	b.notices = nil
	return n
}

func (b *inbox) takeFocus() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.focus == nil {
		return 0, false
	}
	d := *b.focus
	b.focus = nil
	return d, true
}

func (b *inbox) revisionValue() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revision
}

func (b *inbox) bump() {
	b.mu.Lock()
	b.revision++
	b.mu.Unlock()
}

type widgetSurface struct{ *inbox }

func (s widgetSurface) Render(widget.View) { s.bump() }

func (s widgetSurface) FocusInput(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = &delay
}

type dashboardSurface struct{ *inbox }

func (s dashboardSurface) Render(dashboard.View) { s.bump() }

// ローディング表示は View.Loading で返すため記録しない
func (s dashboardSurface) SetLoading(bool) {}

func (s dashboardSurface) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, message)
}

// SessionOptions はセッション生成時の設定です。
type SessionOptions struct {
	TTL      time.Duration
	Variant  dashboard.Variant
	Copy     widget.Copy
	Defaults dashboard.Defaults
}

// NewSessionOptions は環境変数の設定とUI文言ファイルからセッション設定を組み立てます。
func NewSessionOptions(cfg *config.Config, text *config.UICopyConfig) SessionOptions {
	if text == nil {
		text = config.DefaultUICopy()
	}
	return SessionOptions{
		TTL:     cfg.SessionTTL,
		Variant: dashboard.ParseVariant(cfg.DashboardVariant),
		Copy: widget.Copy{
			Greeting:          text.Widget.Greeting,
			StatusAvailable:   text.Widget.StatusAvailable,
			StatusUnavailable: text.Widget.StatusUnavailable,
			ConnectionFailure: text.Widget.ConnectionFailure,
			FallbackNotice:    text.Widget.FallbackNotice,
		},
		Defaults: dashboard.Defaults{
			Event:     text.Dashboard.DefaultEvent,
			Weather:   text.Dashboard.DefaultWeather,
			RangeDays: text.Dashboard.RangeDays,
		},
	}
}

// SessionService はセッションを go-cache に保持し、アイドル状態が TTL を超えたものを破棄します。
type SessionService struct {
	backend Backend
	opts    SessionOptions
	store   *cache.Cache
}

// NewSessionService は新しいSessionServiceを生成します。
func NewSessionService(backend Backend, opts SessionOptions) *SessionService {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	store := cache.New(opts.TTL, opts.TTL/2)
	store.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Dashboard.CloseDetail()
		}
		log.Printf("🗑️ [session] セッションを破棄しました: %s", id)
	})
	return &SessionService{backend: backend, opts: opts, store: store}
}

// Create はコントローラーを組み立て、ステータス確認とダッシュボード初期化を行ってから登録します。
func (s *SessionService) Create(ctx context.Context) *Session {
	box := &inbox{}
	registry := charts.NewChartJS()
	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Charts:    registry,
		inbox:     box,
	}
	session.Widget = widget.NewController(ctx, s.backend, widgetSurface{box}, s.opts.Copy)
	session.Dashboard = dashboard.NewController(s.backend, registry, dashboardSurface{box}, s.opts.Variant,
		dashboard.WithDefaults(s.opts.Defaults))
	session.Dashboard.Init(ctx)

	s.store.SetDefault(session.ID, session)
	log.Printf("✅ [session] セッションを作成しました: %s (variant=%s)", session.ID, s.opts.Variant)
	return session
}

// Get はセッションを返し、有効期限を延長します。
func (s *SessionService) Get(id string) (*Session, bool) {
	v, found := s.store.Get(id)
	if !found {
		return nil, false
	}
	session := v.(*Session)
	s.store.SetDefault(id, session)
	return session, true
}

// Delete はセッションを破棄します。
func (s *SessionService) Delete(id string) {
	s.store.Delete(id)
}

// Count は有効なセッション数を返します。
func (s *SessionService) Count() int {
	return s.store.ItemCount()
}

// Variant はこのサーバーが提供するダッシュボードの種類です。
func (s *SessionService) Variant() dashboard.Variant {
	return s.opts.Variant
}
