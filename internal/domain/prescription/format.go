package prescription

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout renders examination dates in the journal.
const DateLayout = "Mon Jan 02 15:04:05 MST 2006"

// Line renders the prescription journal entry, without the trailing newline.
func Line(p *Prescription) string {
	var b strings.Builder
	b.WriteString(p.firstName)
	b.WriteByte(' ')
	b.WriteString(p.lastName)
	b.WriteString(", ")
	b.WriteString(p.address)
	b.WriteString(", Sphere: ")
	b.WriteString(FormatDecimal(p.sphere))
	b.WriteString(", Cylinder: ")
	b.WriteString(FormatDecimal(p.cylinder))
	b.WriteString(", Axis: ")
	b.WriteString(FormatDecimal(p.axis))
	b.WriteString(", Date: ")
	b.WriteString(FormatDate(p.examinationDate))
	b.WriteString(", Optometrist: ")
	b.WriteString(p.optometrist)
	return b.String()
}

// RemarkLine renders the remark journal entry, without the trailing newline.
func RemarkLine(category, text string) string {
	return category + ": " + text
}

// FormatDecimal prints v in its shortest form, keeping at least one
// fractional digit: -5 becomes "-5.0", 2.25 stays "2.25".
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatDate renders t with DateLayout. The zero time renders as "null".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "null"
	}
	return t.Format(DateLayout)
}
