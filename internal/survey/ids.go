package survey

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLen = 9

// NewSurveyID returns "survey_{unixMillis}_{9 base36 chars}".
func NewSurveyID(now time.Time) string { return newID("survey", now) }

// NewResultID returns "result_{unixMillis}_{9 base36 chars}".
func NewResultID(now time.Time) string { return newID("result", now) }

func newID(prefix string, now time.Time) string {
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomSuffix()
}

func randomSuffix() string {
	u := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(u[8:]), 36)
	if len(s) >= idSuffixLen {
		return s[len(s)-idSuffixLen:]
	}
	return strings.Repeat("0", idSuffixLen-len(s)) + s
}
