package props

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

const sampleBuildProp = `# begin build properties
# autogenerated by buildinfo.sh
ro.build.id=KTU84P
ro.build.display.id=Slim-hammerhead-4.4.4.build.8.0-UNOFFICIAL-20150420-1200
ro.build.fingerprint=google/hammerhead/hammerhead:4.4.4/KTU84P/1227136:user/release-keys
ro.product.device=hammerhead
ro.slim.description=nightly # not a comment
import /vendor/build.prop
`

func TestBuildProp_Lookup(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/system/build.prop", []byte(sampleBuildProp), 0644)

	bp := NewBuildProp(fs, "")

	tests := []struct {
		name string
		want string
	}{
		{"ro.product.device", "hammerhead"},
		{"ro.build.display.id", "Slim-hammerhead-4.4.4.build.8.0-UNOFFICIAL-20150420-1200"},
		{"ro.build.fingerprint", "google/hammerhead/hammerhead:4.4.4/KTU84P/1227136:user/release-keys"},
		{"ro.slim.description", "nightly # not a comment"},
		{"ro.missing", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := bp.Lookup(tt.name); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBuildProp_MissingFile(t *testing.T) {
	bp := NewBuildProp(afero.NewMemMapFs(), "/nope/build.prop")
	if got := bp.Lookup("ro.product.device"); got != "" {
		t.Errorf("expected empty value for missing file, got %q", got)
	}
}

func TestGetprop_Lookup(t *testing.T) {
	var gotArgs []string
	g := &Getprop{
		Binary: "/system/bin/getprop",
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			gotArgs = append([]string{name}, args...)
			return []byte("hammerhead  \nignored\n"), nil
		},
	}

	if got := g.Lookup("ro.product.device"); got != "hammerhead" {
		t.Errorf("Lookup = %q, want hammerhead", got)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "/system/bin/getprop" || gotArgs[1] != "ro.product.device" {
		t.Errorf("unexpected command: %v", gotArgs)
	}
}

func TestGetprop_Failure(t *testing.T) {
	g := &Getprop{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, errors.New("exec: not found")
		},
	}
	if got := g.Lookup("ro.product.device"); got != "" {
		t.Errorf("expected empty value on failure, got %q", got)
	}
	if got := g.Lookup(""); got != "" {
		t.Errorf("expected empty value for empty name, got %q", got)
	}
}

func TestGetprop_EmptyOutput(t *testing.T) {
	g := &Getprop{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, nil
		},
	}
	if got := g.Lookup("ro.product.device"); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestChain(t *testing.T) {
	c := Chain{nil, Static{"a": ""}, Static{"a": "first", "b": "only"}, Static{"a": "second"}}
	if got := c.Lookup("a"); got != "first" {
		t.Errorf("Lookup(a) = %q, want first", got)
	}
	if got := c.Lookup("b"); got != "only" {
		t.Errorf("Lookup(b) = %q, want only", got)
	}
	if got := c.Lookup("c"); got != "" {
		t.Errorf("Lookup(c) = %q, want empty", got)
	}
}

func TestCache_ResolvesOnce(t *testing.T) {
	calls := 0
	c := NewCache(SourceFunc(func(name string) string {
		calls++
		return "value-" + name
	}))

	for i := 0; i < 3; i++ {
		if got := c.Lookup("x"); got != "value-x" {
			t.Fatalf("Lookup = %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("source called %d times, want 1", calls)
	}
	if v, ok := c.Resolved("x"); !ok || v != "value-x" {
		t.Errorf("Resolved = %q, %v", v, ok)
	}
}

func TestCache_RetriesEmpty(t *testing.T) {
	answers := []string{"", "", "ready"}
	calls := 0
	c := NewCache(SourceFunc(func(name string) string {
		v := answers[calls]
		calls++
		return v
	}))

	if got := c.Lookup("x"); got != "" {
		t.Fatalf("first Lookup = %q", got)
	}
	if _, ok := c.Resolved("x"); ok {
		t.Fatal("empty answer must leave property unresolved")
	}
	c.Lookup("x")
	if got := c.Lookup("x"); got != "ready" {
		t.Fatalf("third Lookup = %q", got)
	}
	c.Lookup("x")
	if calls != 3 {
		t.Errorf("source called %d times, want 3", calls)
	}
}

func TestCache_Reset(t *testing.T) {
	n := 0
	c := NewCache(SourceFunc(func(string) string {
		n++
		return "v"
	}))
	c.Lookup("x")
	c.Reset()
	c.Lookup("x")
	if n != 2 {
		t.Errorf("expected lookup after Reset, source called %d times", n)
	}
}

func TestCache_Concurrent(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	c := NewCache(SourceFunc(func(string) string {
		mu.Lock()
		calls++
		mu.Unlock()
		return "v"
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Lookup("x")
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("source called %d times, want 1", calls)
	}
}

func TestDevice(t *testing.T) {
	d := NewDevice(Static{
		"ro.build.display.id": "Slim-hammerhead-20150420",
		"ro.product.device":   "hammerhead",
	}, "ro.build.display.id", "ro.product.device")

	if got := d.CurrentBuild(); got != "Slim-hammerhead-20150420" {
		t.Errorf("CurrentBuild = %q", got)
	}
	if got := d.Name(); got != "hammerhead" {
		t.Errorf("Name = %q", got)
	}
}
