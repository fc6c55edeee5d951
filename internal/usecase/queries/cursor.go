package queries

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	MaxListLimit    = 100
	CursorVersionV1 = "v1"
)

var ErrInvalidCursor = errs.Wrap(errs.ErrInvalidArgument, "invalid cursor")

// Uses microsecond precision to align with PostgreSQL timestamp precision
func EncodeAfterCursor(t time.Time, id uuid.UUID) string {
	raw := CursorVersionV1 + ":" + strconv.FormatInt(t.UnixMicro(), 10) + "-" + id.String()
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func DecodeAfterCursor(cursor string) (time.Time, uuid.UUID, error) {
	if cursor == "" {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "cursor cannot be empty")
	}
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "not base64url")
	}

	payload, ok := strings.CutPrefix(string(decoded), CursorVersionV1+":")
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "unknown cursor version")
	}
	micros, rawID, ok := strings.Cut(payload, "-")
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(ErrInvalidCursor, "expected '<micros>-<uuid>'")
	}

	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Wrapf(ErrInvalidCursor, "timestamp %q", micros)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Wrapf(ErrInvalidCursor, "id %q", rawID)
	}
	return time.UnixMicro(ts).UTC(), id, nil
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default limit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
