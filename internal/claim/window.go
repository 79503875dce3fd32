package claim

import (
	"fmt"
	"time"
)

// Within 判断 now 是否仍在上次事件的资格窗口内（半开区间 [last, last+d)）。
// now 恰好等于 last+d 时窗口已过，用户重新获得资格。
func Within(last, now time.Time, d time.Duration) bool {
	if last.IsZero() {
		return false
	}
	return !now.Before(last) && now.Before(last.Add(d))
}

// Remaining 计算窗口剩余时长，窗口已过返回 0
func Remaining(last, now time.Time, d time.Duration) time.Duration {
	if !Within(last, now, d) {
		return 0
	}
	return last.Add(d).Sub(now)
}

// FormatRemaining 把剩余时长格式化为 "23h 0m" 这种提示用户的形式，不足一分钟按一分钟算
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0h 0m"
	}
	minutes := int((d + time.Minute - 1) / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
