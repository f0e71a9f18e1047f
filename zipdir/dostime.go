package zipdir

import "time"

// msDosToTime converts an MS-DOS date and time to a time.Time in UTC. The
// resolution is 2s. Out-of-range months and days are clamped to 1.
func msDosToTime(dosDate, dosTime uint16) time.Time {
	day := dosDate & 0x1f
	month := (dosDate >> 5) & 0x0f
	year := int((dosDate>>9)&0x7f) + 1980
	second := (dosTime & 0x1f) * 2
	minute := (dosTime >> 5) & 0x3f
	hour := (dosTime >> 11) & 0x1f

	if month < 1 || month > 12 {
		month = 1
	}
	if day < 1 || day > 31 {
		day = 1
	}
	return time.Date(year, time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.UTC)
}
