// Package clock 为依赖“今天”的业务规则提供可注入的时钟。
package clock

import "time"

// DateLayout 日期的对外文本格式
const DateLayout = "2006-01-02"

// Clock 提供当前时间
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// New 创建读取系统时间的 Clock，loc 为 nil 时使用 UTC
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed 固定时间的 Clock，用于测试
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today 返回时钟所在时区的日历日期（UTC 零点表示）
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf 截取 t 在其自身时区下的年月日，统一以 UTC 零点表示，
// 与 PostgreSQL DATE 列读出的值保持一致
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
