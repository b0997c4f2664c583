package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateOrder holds the position (0, 1 or 2) of each field inside an
// unlabeled numeric date such as "3/4/25".
type DateOrder struct {
	Day   int
	Month int
	Year  int
}

func (o DateOrder) String() string {
	var fields [3]string
	fields[o.Day] = "D"
	fields[o.Month] = "M"
	fields[o.Year] = "Y"
	return strings.Join(fields[:], "/")
}

// Parse builds a UTC timestamp from a raw date ("17/10/2024") and a clock
// string ("3:37 p. m.").
func (o DateOrder) Parse(date, clock string) (time.Time, error) {
	parts, ok := dateParts(date)
	if !ok {
		return time.Time{}, fmt.Errorf("malformed date %q", date)
	}

	year := parts[o.Year]
	if year < 100 {
		year += 2000
	}
	month, day := parts[o.Month], parts[o.Day]
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month out of range in %q", date)
	}
	if day < 1 || day > daysIn(year, month) {
		return time.Time{}, fmt.Errorf("day out of range in %q", date)
	}

	hour, minute, second, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateResolver infers the field order of an export's dates from statistics
// gathered over every dated line, in file order. It assumes the log is
// chronological: days change most often, then months, then years.
type DateResolver struct {
	seen      bool
	last      [3]int
	changes   [3]int
	max       [3]int
	decreased [3]bool
}

// Observe feeds one raw date. Dates that are not three numeric fields are
// ignored.
func (r *DateResolver) Observe(date string) {
	parts, ok := dateParts(date)
	if !ok {
		return
	}
	if !r.seen {
		r.seen = true
		r.last = parts
		r.max = parts
		return
	}
	for i := 0; i < 3; i++ {
		if parts[i] != r.last[i] {
			r.changes[i]++
		}
		if parts[i] > r.max[i] {
			r.max[i] = parts[i]
		}
		if parts[i] < r.last[i] {
			r.decreased[i] = true
		}
	}
	r.last = parts
}

// Order classifies the observed statistics by how many positions changed.
func (r *DateResolver) Order() DateOrder {
	var changed []int
	for i, c := range r.changes {
		if c > 0 {
			changed = append(changed, i)
		}
	}

	switch len(changed) {
	case 0:
		return singleDateOrder(r.last)
	case 1:
		return dayOnlyOrder(r.last, changed[0])
	case 2:
		return dayMonthOrder(r.changes, r.max)
	default:
		return fullOrder(r.changes, r.max, r.decreased)
	}
}

// InferDateOrder runs a DateResolver over dates.
func InferDateOrder(dates []string) DateOrder {
	var r DateResolver
	for _, d := range dates {
		r.Observe(d)
	}
	return r.Order()
}

// singleDateOrder handles exports where one date was seen throughout.
func singleDateOrder(p [3]int) DateOrder {
	switch {
	case p[0] > 31:
		return DateOrder{Year: 0, Month: 1, Day: 2}
	case p[0] <= 12:
		return DateOrder{Month: 0, Day: 1, Year: 2}
	case p[1] <= 12:
		return DateOrder{Month: 1, Day: 0, Year: 2}
	default:
		return DateOrder{Month: 2, Year: 0, Day: 1}
	}
}

// dayOnlyOrder: only the day changed. Of the other two, the smaller value is
// the month.
func dayOnlyOrder(last [3]int, day int) DateOrder {
	o1, o2 := (day+1)%3, (day+2)%3
	if last[o1] < last[o2] {
		return DateOrder{Day: day, Month: o1, Year: o2}
	}
	return DateOrder{Day: day, Month: o2, Year: o1}
}

// dayMonthOrder: the year never changed. The day changed more often; on a
// tie it reached the larger value.
func dayMonthOrder(changes, max [3]int) DateOrder {
	year := 0
	for i, c := range changes {
		if c == 0 {
			year = i
			break
		}
	}
	o1, o2 := (year+1)%3, (year+2)%3

	day, month := o2, o1
	switch {
	case changes[o1] > changes[o2]:
		day, month = o1, o2
	case changes[o1] == changes[o2] && max[o1] > max[o2]:
		day, month = o1, o2
	}
	return DateOrder{Day: day, Month: month, Year: year}
}

// fullOrder: every position changed. The year is the one that never went
// down. This misreads exports with out-of-order corrected timestamps.
func fullOrder(changes, max [3]int, decreased [3]bool) DateOrder {
	year := -1
	for i, d := range decreased {
		if !d {
			year = i
			break
		}
	}
	if year < 0 {
		year = 0
		for i := 1; i < 3; i++ {
			if max[i] > max[year] {
				year = i
			}
		}
	}
	o1, o2 := (year+1)%3, (year+2)%3

	var day, month int
	switch {
	case max[o1] <= 12 && max[o2] <= 12:
		if changes[o1] > changes[o2] {
			day, month = o1, o2
		} else {
			day, month = o2, o1
		}
	case max[o1] <= 12:
		month, day = o1, o2
	default:
		month, day = o2, o1
	}
	return DateOrder{Day: day, Month: month, Year: year}
}

func dateParts(date string) ([3]int, bool) {
	var parts [3]int
	fields := strings.FieldsFunc(strings.TrimSpace(date), func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
	if len(fields) != 3 {
		return parts, false
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return parts, false
		}
		parts[i] = n
	}
	return parts, true
}

// splitHeader separates "17/10/2024, 3:37 p. m." into its date and clock.
func splitHeader(header string) (date, clock string) {
	header = strings.TrimSpace(header)
	i := strings.IndexAny(header, ", ")
	if i < 0 {
		return header, ""
	}
	return header[:i], strings.TrimLeft(header[i:], ", ")
}

var clockRe = regexp.MustCompile(`^(\d{1,2})[:.](\d{1,2})(?:[:.](\d{1,2}))?(?:\s*([aApP])\.?\s*[mM]\.?)?`)

func parseClock(clock string) (hour, minute, second int, err error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(clock))
	if m == nil {
		return 0, 0, 0, fmt.Errorf("malformed time %q", clock)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}

	switch strings.ToLower(m[4]) {
	case "p":
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0, fmt.Errorf("time out of range %q", clock)
	}
	return hour, minute, second, nil
}
