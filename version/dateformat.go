package version

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type fieldKind int

const (
	fieldLiteral fieldKind = iota
	fieldYear
	fieldMonth
	fieldDay
	fieldHour24
	fieldHour12
	fieldMinute
	fieldSecond
	fieldMillis
	fieldAmPm
	fieldWeekday
	fieldZoneRFC822
	fieldZoneISO
)

type field struct {
	kind  fieldKind
	count int
	lit   string
}

// numeric reports whether the field is read as a run of digits.
func (f field) numeric() bool {
	switch f.kind {
	case fieldYear, fieldDay, fieldHour24, fieldHour12, fieldMinute, fieldSecond, fieldMillis:
		return true
	case fieldMonth:
		return f.count <= 2
	}
	return false
}

// DateFormat is a compiled Java-style date pattern such as "yyyyMMdd" or
// "yyyy-MM-dd'T'HH:mm". It is immutable and safe for concurrent use.
type DateFormat struct {
	pattern string
	fields  []field
}

// CompileDateFormat compiles pattern. Pattern letters follow the conventions of
// Android build configuration:
//
//	y  year (yy = two-digit year)    M  month (MMM/MMMM = name)
//	d  day of month                  E  day name
//	H  hour 0-23                     h  hour 1-12
//	m  minute                        s  second
//	S  millisecond                   a  AM/PM marker
//	Z  zone as -0800                 X  zone as Z, -08, -0800 or -08:00
//
// Text in single quotes is literal and '' is a single quote. Any other ASCII
// letter makes the pattern invalid.
func CompileDateFormat(pattern string) (*DateFormat, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidDateFormat)
	}

	var fields []field
	addLiteral := func(s string) {
		if n := len(fields); n > 0 && fields[n-1].kind == fieldLiteral {
			fields[n-1].lit += s
			return
		}
		fields = append(fields, field{kind: fieldLiteral, lit: s})
	}

	hasValue := false
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '\'':
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				addLiteral("'")
				i += 2
				continue
			}
			var lit strings.Builder
			j := i + 1
			closed := false
			for j < len(pattern) {
				if pattern[j] == '\'' {
					if j+1 < len(pattern) && pattern[j+1] == '\'' {
						lit.WriteByte('\'')
						j += 2
						continue
					}
					closed = true
					break
				}
				lit.WriteByte(pattern[j])
				j++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated quote in %q", ErrInvalidDateFormat, pattern)
			}
			if lit.Len() > 0 {
				addLiteral(lit.String())
			}
			i = j + 1

		case isASCIILetter(c):
			j := i
			for j < len(pattern) && pattern[j] == c {
				j++
			}
			f, err := letterField(c, j-i)
			if err != nil {
				return nil, fmt.Errorf("%w: %v in %q", ErrInvalidDateFormat, err, pattern)
			}
			fields = append(fields, f)
			hasValue = true
			i = j

		default:
			_, size := utf8.DecodeRuneInString(pattern[i:])
			addLiteral(pattern[i : i+size])
			i += size
		}
	}

	if !hasValue {
		return nil, fmt.Errorf("%w: no date fields in %q", ErrInvalidDateFormat, pattern)
	}
	return &DateFormat{pattern: pattern, fields: fields}, nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func letterField(c byte, count int) (field, error) {
	f := field{count: count}
	switch c {
	case 'y':
		f.kind = fieldYear
	case 'M':
		f.kind = fieldMonth
	case 'd':
		f.kind = fieldDay
	case 'H':
		f.kind = fieldHour24
	case 'h':
		f.kind = fieldHour12
	case 'm':
		f.kind = fieldMinute
	case 's':
		f.kind = fieldSecond
	case 'S':
		f.kind = fieldMillis
	case 'a':
		f.kind = fieldAmPm
	case 'E':
		f.kind = fieldWeekday
	case 'Z':
		f.kind = fieldZoneRFC822
	case 'X':
		if count > 3 {
			return field{}, fmt.Errorf("too many pattern letters %q", string(c))
		}
		f.kind = fieldZoneISO
	default:
		return field{}, fmt.Errorf("unsupported pattern letter %q", string(c))
	}

	switch f.kind {
	case fieldDay, fieldHour24, fieldHour12, fieldMinute, fieldSecond:
		if count > 2 {
			return field{}, fmt.Errorf("too many pattern letters %q", string(c))
		}
	}
	return f, nil
}

// Pattern returns the pattern the format was compiled from.
func (f *DateFormat) Pattern() string {
	return f.pattern
}

// Parse reads value according to the format. The whole value must be consumed
// and every field must be in range; there is no lenient rollover. Values
// without a zone field are interpreted as UTC. Errors wrap ErrUnparsableToken.
func (f *DateFormat) Parse(value string) (time.Time, error) {
	p := parser{value: value}
	year, month, day := 1970, 1, 1
	hour, minute, second, millis := 0, 0, 0, 0
	hour12, pm := false, false
	loc := time.UTC

	for i, fl := range f.fields {
		if fl.kind == fieldLiteral {
			if !strings.HasPrefix(p.rest(), fl.lit) {
				return time.Time{}, f.parseError(value, "expected %q at offset %d", fl.lit, p.pos)
			}
			p.pos += len(fl.lit)
			continue
		}

		if fl.numeric() {
			width := 0
			if i+1 < len(f.fields) && f.fields[i+1].numeric() {
				width = fl.count
				if fl.kind == fieldYear && fl.count != 2 {
					width = max(fl.count, 4)
				}
			}
			start := p.pos
			n, ok := p.number(width)
			if !ok {
				return time.Time{}, f.parseError(value, "expected digits at offset %d", start)
			}
			switch fl.kind {
			case fieldYear:
				year = n
				if fl.count == 2 && p.pos-start == 2 {
					year = twoDigitYear(n)
				}
			case fieldMonth:
				month = n
			case fieldDay:
				day = n
			case fieldHour24:
				hour = n
			case fieldHour12:
				hour, hour12 = n, true
			case fieldMinute:
				minute = n
			case fieldSecond:
				second = n
			case fieldMillis:
				millis = n
			}
			continue
		}

		switch fl.kind {
		case fieldMonth:
			idx, ok := p.name(monthNames[:], shortMonthNames[:])
			if !ok {
				return time.Time{}, f.parseError(value, "expected month name at offset %d", p.pos)
			}
			month = idx + 1
		case fieldWeekday:
			if _, ok := p.name(dayNames[:], shortDayNames[:]); !ok {
				return time.Time{}, f.parseError(value, "expected day name at offset %d", p.pos)
			}
		case fieldAmPm:
			idx, ok := p.name([]string{"AM", "PM"}, nil)
			if !ok {
				return time.Time{}, f.parseError(value, "expected AM/PM at offset %d", p.pos)
			}
			pm = idx == 1
		case fieldZoneRFC822, fieldZoneISO:
			z, ok := p.zone(fl.kind == fieldZoneISO)
			if !ok {
				return time.Time{}, f.parseError(value, "expected zone offset at offset %d", p.pos)
			}
			loc = z
		}
	}

	if p.pos != len(value) {
		return time.Time{}, f.parseError(value, "unexpected trailing text %q", p.rest())
	}

	if hour12 {
		if hour < 1 || hour > 12 {
			return time.Time{}, f.parseError(value, "hour %d out of range", hour)
		}
		hour %= 12
		if pm {
			hour += 12
		}
	}

	switch {
	case month < 1 || month > 12:
		return time.Time{}, f.parseError(value, "month %d out of range", month)
	case day < 1 || day > daysIn(time.Month(month), year):
		return time.Time{}, f.parseError(value, "day %d out of range", day)
	case hour > 23:
		return time.Time{}, f.parseError(value, "hour %d out of range", hour)
	case minute > 59:
		return time.Time{}, f.parseError(value, "minute %d out of range", minute)
	case second > 59:
		return time.Time{}, f.parseError(value, "second %d out of range", second)
	case millis > 999:
		return time.Time{}, f.parseError(value, "millisecond %d out of range", millis)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, millis*int(time.Millisecond), loc), nil
}

func (f *DateFormat) parseError(value, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %q does not match %q: %s", ErrUnparsableToken, value, f.pattern, fmt.Sprintf(format, args...))
}

// twoDigitYear maps yy onto 1969-2068, the same window the time package uses.
func twoDigitYear(n int) int {
	if n >= 69 {
		return 1900 + n
	}
	return 2000 + n
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var (
	monthNames = [...]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	shortMonthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	dayNames      = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	shortDayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

type parser struct {
	value string
	pos   int
}

func (p *parser) rest() string {
	return p.value[p.pos:]
}

// number reads exactly width digits, or as many as present (up to 9) when
// width is zero.
func (p *parser) number(width int) (int, bool) {
	limit := width
	if limit == 0 {
		limit = 9
	}
	n, read := 0, 0
	for read < limit && p.pos < len(p.value) {
		c := p.value[p.pos]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		p.pos++
		read++
	}
	if read == 0 || (width > 0 && read != width) {
		return 0, false
	}
	return n, true
}

// name matches one of the long names, then one of the short names,
// ignoring case. It returns the matched index.
func (p *parser) name(long, short []string) (int, bool) {
	for _, set := range [][]string{long, short} {
		for i, candidate := range set {
			if len(p.rest()) >= len(candidate) && strings.EqualFold(p.rest()[:len(candidate)], candidate) {
				p.pos += len(candidate)
				return i, true
			}
		}
	}
	return 0, false
}

// zone reads +hh, +hhmm or +hh:mm. ISO zones also accept a literal Z for UTC.
func (p *parser) zone(iso bool) (*time.Location, bool) {
	rest := p.rest()
	if iso && strings.HasPrefix(rest, "Z") {
		p.pos++
		return time.UTC, true
	}
	if rest == "" || (rest[0] != '+' && rest[0] != '-') {
		return nil, false
	}
	sign := 1
	if rest[0] == '-' {
		sign = -1
	}
	p.pos++

	hh, ok := p.number(2)
	if !ok || hh > 23 {
		return nil, false
	}
	mm := 0
	if strings.HasPrefix(p.rest(), ":") {
		p.pos++
		if mm, ok = p.number(2); !ok {
			return nil, false
		}
	} else if len(p.rest()) >= 2 && isDigit(p.rest()[0]) && isDigit(p.rest()[1]) {
		mm, _ = p.number(2)
	}
	if mm > 59 {
		return nil, false
	}
	offset := sign * (hh*3600 + mm*60)
	if offset == 0 {
		return time.UTC, true
	}
	return time.FixedZone("", offset), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
