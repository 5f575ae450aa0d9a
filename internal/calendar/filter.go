package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// DateLayout は絞り込み条件の日付書式。
const DateLayout = "2006-01-02"

// SortOrder は開始時刻による並び順。
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortOrder は並び順を解釈する。空文字は降順として扱う。
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(s) {
	case "", string(SortDesc):
		return SortDesc, nil
	case string(SortAsc):
		return SortAsc, nil
	default:
		return "", fmt.Errorf("invalid sort order %q", s)
	}
}

// Criteria は予定の絞り込み条件。ゼロ値の項目は条件にしない。
type Criteria struct {
	// Search はタイトルに対する大文字小文字を区別しない部分一致。
	Search string
	// From は開始日の下限（その日の0時を含む）。
	From time.Time
	// To は開始日の上限（その日の終わりまでを含む）。
	To time.Time
}

// ParseDate はYYYY-MM-DD形式の日付をUTCの0時として解釈する。
// 空文字はゼロ値を返す。
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// StartTime は予定の開始時刻を返す。
// 時刻付き予定はdateTime、終日予定はdateを使い、どちらも解釈できない場合はfalseを返す。
func StartTime(e *calendar.Event) (time.Time, bool) {
	if e == nil || e.Start == nil {
		return time.Time{}, false
	}
	if e.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, e.Start.DateTime); err == nil {
			return t, true
		}
	}
	if e.Start.Date != "" {
		if t, err := time.Parse(DateLayout, e.Start.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Filter は条件をすべて満たす予定だけを元の順序のまま返す。
// 開始時刻を解釈できない予定は日付条件では除外しない。
func Filter(events []*calendar.Event, c Criteria) []*calendar.Event {
	search := strings.ToLower(c.Search)
	var toExclusive time.Time
	if !c.To.IsZero() {
		toExclusive = c.To.AddDate(0, 0, 1)
	}

	out := make([]*calendar.Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Summary), search) {
			continue
		}
		if start, ok := StartTime(e); ok {
			if !c.From.IsZero() && start.Before(c.From) {
				continue
			}
			if !toExclusive.IsZero() && !start.Before(toExclusive) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Sort は開始時刻で並べ替えた新しいスライスを返す。
// 開始時刻を解釈できない予定はUnixエポックとして扱う。同時刻の予定は元の順序を保つ。
func Sort(events []*calendar.Event, order SortOrder) []*calendar.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b *calendar.Event) int {
		ta, tb := sortKey(a), sortKey(b)
		if order == SortAsc {
			return ta.Compare(tb)
		}
		return tb.Compare(ta)
	})
	return out
}

func sortKey(e *calendar.Event) time.Time {
	if t, ok := StartTime(e); ok {
		return t
	}
	return time.Unix(0, 0)
}
