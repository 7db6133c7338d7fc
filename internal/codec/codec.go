// Package codec implements the wire format of a single log line: five
// tab-separated fields in the fixed order date, time, level, trace id,
// content. Content is the only field that may contain newlines or
// backslashes, so it is the only field that gets escaped. Raw tab
// characters inside any field are not supported; lines containing them
// will not round-trip.
package codec

import (
	"strings"

	"github.com/logtide/logtide/internal/model"
)

const fieldCount = 5

// Encode renders a log line from its parts. Content is escaped by doubling
// backslashes first and then replacing newlines with the two-character
// sequence backslash-n; an absent trace id is encoded as an empty field.
func Encode(date, timeOfDay, level, traceID, content string) string {
	escaped := strings.ReplaceAll(content, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return strings.Join([]string{date, timeOfDay, level, traceID, escaped}, "\t")
}

// EncodeRecord is Encode over a LogRecord. The source is not part of the
// line; it travels in the batch envelope.
func EncodeRecord(r model.LogRecord) string {
	return Encode(r.Date, r.Time, r.Level, r.TraceID, r.Content)
}

// Decode parses a wire line back into a LogRecord, attaching the given
// source. The split is limited to five parts so tabs inside the content
// stay part of the content. Fewer than five fields is ErrMalformedRecord.
func Decode(line, source string) (model.LogRecord, error) {
	parts := strings.SplitN(line, "\t", fieldCount)
	if len(parts) < fieldCount {
		return model.LogRecord{}, model.ErrMalformedRecord
	}

	return model.LogRecord{
		Source:  source,
		Date:    parts[0],
		Time:    parts[1],
		Level:   parts[2],
		TraceID: parts[3],
		Content: unescape(parts[4]),
	}, nil
}

// unescape reverses Encode's escaping in a single left-to-right pass.
// A sequential ReplaceAll would corrupt content that contained a literal
// backslash followed by an n: its encoded form `\\n` must come back as
// backslash-n, not as a newline.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
