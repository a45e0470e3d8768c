package httputil

import (
	"strconv"
	"strings"
	"time"
)

// CacheBust appends a "_t=<unix ms>" query token to ref, using "&" when ref
// already has a query string.
func CacheBust(ref string, now time.Time) string {
	sep := "?"
	if strings.Contains(ref, "?") {
		sep = "&"
	}
	return ref + sep + "_t=" + strconv.FormatInt(now.UnixMilli(), 10)
}
