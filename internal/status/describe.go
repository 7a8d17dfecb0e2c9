package status

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
)

var descriptionTimestampFormat = strftime.MustNew("%Y-%m-%d %H:%M:%S UTC")

// DescribeWithTimestamp appends a strftime-formatted UTC timestamp to
// a device's configured free-text description, the way the status
// frame's DESCRIPTION field carries a human-readable "as of" marker
// (§4.7).
func DescribeWithTimestamp(base string, ts time.Time) string {
	return fmt.Sprintf("%s (%s)", base, descriptionTimestampFormat.FormatString(ts.UTC()))
}
