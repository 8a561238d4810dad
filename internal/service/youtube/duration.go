package youtube

import (
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

var durationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts an ISO 8601 video duration ("PT1H30M", "PT45S")
// into total seconds. A string that does not match the PT#H#M#S shape
// yields 0 seconds and a warning, never an error. Live and premiere
// placeholders report "P0D", which is simply zero.
func ParseDuration(duration string) int64 {
	if duration == "" || duration == "P0D" {
		return 0
	}

	m := durationRegex.FindStringSubmatch(duration)
	if m == nil {
		logger.Log.Warn("unparseable video duration, treating as zero",
			zap.String("duration", duration),
		)
		return 0
	}

	var total int64
	if m[1] != "" {
		h, _ := strconv.ParseInt(m[1], 10, 64)
		total += h * 3600
	}
	if m[2] != "" {
		min, _ := strconv.ParseInt(m[2], 10, 64)
		total += min * 60
	}
	if m[3] != "" {
		s, _ := strconv.ParseInt(m[3], 10, 64)
		total += s
	}
	return total
}

// FormatDuration renders seconds as "H:MM:SS", or "M:SS" under an hour.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
