package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the human date format used on the site, in mails and in
// chat messages.
const DateTimeLayout = "02/01/2006 15:04:05"

var sizeUnits = []string{"", "K", "M", "G", "T", "P", "E", "Z"}

// FormatSize returns a human formatted file size using French octet units
// ("o", "Ko", "Mo", ...).
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range sizeUnits {
		if math.Abs(value) < 1024 {
			return fmt.Sprintf("%3.1f %so", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f Yo", value)
}

// FormatDatetime returns t in loc formatted with DateTimeLayout, or "-" when
// t is the zero time.
func FormatDatetime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateTimeLayout)
}

// FormatNumber groups the digits of n by three with a space: 1234567 -> "1 234 567".
func FormatNumber(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	return b.String()
}
