package daraja

import (
	"encoding/base64"
	"time"
)

// Timestamp renders the instant in the provider's 14-digit wall-clock
// format (YYYYMMDDHHMMSS)
func Timestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// GeneratePassword encodes the provider credential for a request: the
// base64 of shortcode + passkey + timestamp. A malformed timestamp is a
// caller bug and is not handled defensively here.
func GeneratePassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}
