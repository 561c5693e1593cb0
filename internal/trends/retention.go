// Path: internal/trends/retention.go
package trends

import "time"

// Cutoff returns the oldest snapshot date still retained given the retention
// horizon. Rows dated exactly today-retentionDays survive; anything strictly
// before the cutoff is eligible for deletion.
func Cutoff(today time.Time, retentionDays int) string {
	return today.UTC().AddDate(0, 0, -retentionDays).Format("2006-01-02")
}
