package reservation

import "time"

// Filter は予約一覧の検索条件を表す
// FromTime/ToTime は ExpectedArrivalTime に対する閉区間で、どちらも省略できる
type Filter struct {
	FromTime *time.Time
	ToTime   *time.Time
	Status   *Status
	UserID   string
	Offset   int
	Limit    int
}

// Page はページングの既定値と上限
type Page struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPage は既定のページング設定
var DefaultPage = Page{DefaultLimit: 10, MaxLimit: 100}

// Normalize はページングを丸めた検索条件を返す
// limit は未指定なら既定値、上限超過なら上限に切り詰める（エラーにはしない）
// ステータスは正規の小文字表記に揃える
func (f Filter) Normalize(p Page) (Filter, error) {
	if f.Offset < 0 {
		return f, ErrInvalidOffset
	}
	if f.FromTime != nil && f.ToTime != nil && f.FromTime.After(*f.ToTime) {
		return f, ErrInvalidTimeRange
	}
	if f.Status != nil {
		st, err := ParseStatus(string(*f.Status))
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = DefaultPage.DefaultLimit
	}
	if p.MaxLimit <= 0 {
		p.MaxLimit = DefaultPage.MaxLimit
	}
	if f.Limit <= 0 {
		f.Limit = p.DefaultLimit
	}
	if f.Limit > p.MaxLimit {
		f.Limit = p.MaxLimit
	}
	return f, nil
}

// Matches は予約が検索条件（ページング以外）に一致するかを返す
func (f Filter) Matches(r *Reservation) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.FromTime != nil && r.ExpectedArrivalTime.Before(*f.FromTime) {
		return false
	}
	if f.ToTime != nil && r.ExpectedArrivalTime.After(*f.ToTime) {
		return false
	}
	return true
}
