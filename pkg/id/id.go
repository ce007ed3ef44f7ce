package id

import (
	"crypto/md5"
	"io"
	"strings"

	"github.com/gofrs/uuid"
)

// GenTraceID new normal traceID
func GenTraceID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// TraceIDFrom new deterministic traceID from text
func TraceIDFrom(parts ...string) string {
	h := md5.New()
	_, _ = io.WriteString(h, strings.Join(parts, ":"))
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}

// IsTraceID reports whether s is a canonical uuid
func IsTraceID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
