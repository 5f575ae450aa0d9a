// Package calendar はカレンダープロバイダーからの予定取得と、
// ダッシュボード向けの絞り込み・並べ替えを提供する。
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/calendarai/calendarai/internal/metrics"
)

// PrimaryCalendarID はサインインユーザーの既定カレンダー。
const PrimaryCalendarID = "primary"

// EventLister はユーザーの予定一覧を取得するインターフェース。
type EventLister interface {
	ListEvents(ctx context.Context, accessToken string) ([]*calendar.Event, error)
}

// GoogleClientConfig はGoogleClientの設定。
type GoogleClientConfig struct {
	// テスト用にオーバーライド可能なエンドポイント
	Endpoint   string
	HTTPClient *http.Client
}

// GoogleClient はGoogle Calendar APIから予定を取得する。
// 呼び出しごとにセッションのアクセストークンで認証し、リフレッシュは行わない。
type GoogleClient struct {
	endpoint   string
	httpClient *http.Client
	recorder   metrics.UpstreamRecorder
}

// NewGoogleClient はGoogleClientを生成する。
func NewGoogleClient(config GoogleClientConfig, recorder metrics.UpstreamRecorder) *GoogleClient {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &GoogleClient{
		endpoint:   config.Endpoint,
		httpClient: config.HTTPClient,
		recorder:   recorder,
	}
}

// ListEvents はprimaryカレンダーの予定を開始時刻順で1ページ分取得する。
// 繰り返し予定は個別の予定に展開される。予定がない場合は空スライスを返す。
func (c *GoogleClient) ListEvents(ctx context.Context, accessToken string) ([]*calendar.Event, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	events, err := svc.Events.List(PrimaryCalendarID).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	c.recorder.RecordUpstream(metrics.ProviderGoogleCalendar, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if events.Items == nil {
		return []*calendar.Event{}, nil
	}
	return events.Items, nil
}

func (c *GoogleClient) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	baseCtx := ctx
	if c.httpClient != nil {
		baseCtx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	client := oauth2.NewClient(baseCtx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// compile-time interface check
var _ EventLister = (*GoogleClient)(nil)
