package props

import (
	"sync"

	"ota-checker-go/internal"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// DefaultBuildPropPath is where Android keeps the system build properties.
const DefaultBuildPropPath = "/system/build.prop"

// BuildProp reads properties from a build.prop style file of key=value lines.
// The file is parsed once, on first lookup.
type BuildProp struct {
	Fs   afero.Fs
	Path string

	once    sync.Once
	section *ini.Section
}

// NewBuildProp returns a BuildProp reading path from fs. A nil fs means the OS
// filesystem and an empty path means DefaultBuildPropPath.
func NewBuildProp(fs afero.Fs, path string) *BuildProp {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if path == "" {
		path = DefaultBuildPropPath
	}
	return &BuildProp{Fs: fs, Path: path}
}

func (b *BuildProp) load() {
	data, err := afero.ReadFile(b.Fs, b.Path)
	if err != nil {
		internal.DebugPrint("Error reading %s: %v", b.Path, err)
		return
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
		PreserveSurroundedQuote: true,
	}, data)
	if err != nil {
		internal.DebugPrint("Error parsing %s: %v", b.Path, err)
		return
	}
	b.section = cfg.Section(ini.DefaultSection)
}

func (b *BuildProp) Lookup(name string) string {
	b.once.Do(b.load)
	if b.section == nil || name == "" || !b.section.HasKey(name) {
		return ""
	}
	return b.section.Key(name).String()
}
