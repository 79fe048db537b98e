package version

import (
	"errors"
	"testing"
	"time"
)

func TestCompileDateFormat_Invalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"yyyyQQdd",
		"yyyy'MM",
		"---",
		"'literal only'",
		"ddd",
		"XXXX",
	}

	for _, pattern := range tests {
		_, err := CompileDateFormat(pattern)
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("CompileDateFormat(%q) error = %v, want ErrInvalidDateFormat", pattern, err)
		}
	}
}

func TestDateFormat_Parse(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    time.Time
	}{
		{"yyyyMMdd", "20230215", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"yyyyMMddHHmm", "202302151342", time.Date(2023, 2, 15, 13, 42, 0, 0, time.UTC)},
		{"yyyyMMdd-HHmm", "20230215-0905", time.Date(2023, 2, 15, 9, 5, 0, 0, time.UTC)},
		{"yyyy-MM-dd", "2023-2-5", time.Date(2023, 2, 5, 0, 0, 0, 0, time.UTC)},
		{"yyyy.MM.dd", "2015.05.01", time.Date(2015, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"yyMMdd", "150501", time.Date(2015, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"yyMMdd", "990501", time.Date(1999, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"dd MMM yyyy", "01 May 2015", time.Date(2015, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"dd MMMM yyyy", "01 september 2015", time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"EEE, dd MMM yyyy", "Fri, 01 May 2015", time.Date(2015, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"yyyy-MM-dd'T'HH:mm:ss", "2015-05-01T23:59:58", time.Date(2015, 5, 1, 23, 59, 58, 0, time.UTC)},
		{"yyyy-MM-dd hh:mm a", "2015-05-01 12:30 AM", time.Date(2015, 5, 1, 0, 30, 0, 0, time.UTC)},
		{"yyyy-MM-dd hh:mm a", "2015-05-01 01:30 PM", time.Date(2015, 5, 1, 13, 30, 0, 0, time.UTC)},
		{"yyyyMMdd.HHmmss.SSS", "20150501.101010.250", time.Date(2015, 5, 1, 10, 10, 10, 250*int(time.Millisecond), time.UTC)},
		{"yyyyMMdd''HH", "20150501'10", time.Date(2015, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"yyyyMMddHHmmZ", "201505011000+0200", time.Date(2015, 5, 1, 8, 0, 0, 0, time.UTC)},
		{"yyyy-MM-dd'T'HH:mmXXX", "2015-05-01T10:00Z", time.Date(2015, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"yyyy-MM-dd'T'HH:mmXXX", "2015-05-01T10:00-05:00", time.Date(2015, 5, 1, 15, 0, 0, 0, time.UTC)},
		{"yyyy年MM月dd日", "2023年02月15日", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"dd·MM·yyyy", "15·02·2023", time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"yyyy'年'MM", "2023年02", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			f, err := CompileDateFormat(tt.pattern)
			if err != nil {
				t.Fatalf("CompileDateFormat(%q): %v", tt.pattern, err)
			}
			got, err := f.Parse(tt.value)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestDateFormat_ParseRejects(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
	}{
		{"yyyyMMdd", "2023AB01"},
		{"yyyyMMdd", "20231301"},
		{"yyyyMMdd", "20230230"},
		{"yyyyMMdd", "2023010"},
		{"yyyyMMdd", "20230101extra"},
		{"yyyyMMdd", ""},
		{"yyyy-MM-dd", "2023/01/01"},
		{"yyyyMMddHHmm", "202301012460"},
		{"yyyyMMddHHmm", "202301011260"},
		{"hh:mm a", "13:00 PM"},
		{"dd MMM yyyy", "01 Foo 2015"},
		{"yyyyMMddZ", "20150501+2500"},
		{"yyyyMMdd.SSSS", "20150501.1000"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			f, err := CompileDateFormat(tt.pattern)
			if err != nil {
				t.Fatalf("CompileDateFormat(%q): %v", tt.pattern, err)
			}
			if _, err := f.Parse(tt.value); !errors.Is(err, ErrUnparsableToken) {
				t.Errorf("Parse(%q) error = %v, want ErrUnparsableToken", tt.value, err)
			}
		})
	}
}

func TestDateFormat_Pattern(t *testing.T) {
	f, err := CompileDateFormat("yyyyMMdd")
	if err != nil {
		t.Fatal(err)
	}
	if f.Pattern() != "yyyyMMdd" {
		t.Errorf("Pattern() = %q", f.Pattern())
	}
}
