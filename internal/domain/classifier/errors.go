package classifier

import "errors"

// ErrUnavailable indicates every configured model variant failed; the caller
// must engage the deterministic fallback analyzer.
var ErrUnavailable = errors.New("classifier unavailable")

// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("classifier quota exceeded")
