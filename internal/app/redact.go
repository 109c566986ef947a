package app

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[redacted]"

var inlinePassword = regexp.MustCompile(`(?i)(password=)[^\s&]+`)

// RedactURL masks the password of a connection URL. Strings that do not
// parse are hidden entirely.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	return u.Redacted()
}

// SanitizeError renders err for logging with every secret masked, plus any
// key=value password a driver echoed back.
func SanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}
	pairs := make([]string, 0, 2*len(secrets))
	for _, s := range secrets {
		if s != "" {
			pairs = append(pairs, s, RedactURL(s))
		}
	}
	msg := strings.NewReplacer(pairs...).Replace(err.Error())
	return inlinePassword.ReplaceAllString(msg, "${1}xxxxx")
}
