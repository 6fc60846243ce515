package mediatypes

import (
	"fmt"
	"time"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with two decimals in 1024-based units, up to TB.
func FormatSize(bytes int64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

// FormatTime renders a modification time as local "YYYY/MM/DD HH:MM".
func FormatTime(t time.Time) string {
	return t.Local().Format("2006/01/02 15:04")
}
