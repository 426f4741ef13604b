package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// ManifestName is the file looked up by FindManifest.
const ManifestName = "wlbind.toml"

// Manifest is a parsed wlbind.toml.
type Manifest struct {
	// Path is the manifest file; Dir is its directory.
	Path string `toml:"-"`
	Dir  string `toml:"-"`

	Corpus CorpusConfig `toml:"corpus"`
	Naming NamingConfig `toml:"naming"`
	Output OutputConfig `toml:"output"`
	Build  BuildConfig  `toml:"build"`
}

type CorpusConfig struct {
	// Root is the corpus directory, relative to the manifest.
	Root string `toml:"root"`
	// Include are slash glob patterns matched against document identities.
	Include []string `toml:"include"`
}

type NamingConfig struct {
	RootPrefix   string `toml:"root_prefix"`
	RootAlias    string `toml:"root_alias"`
	RootProtocol string `toml:"root_protocol"`
}

type OutputConfig struct {
	ImportBase string `toml:"import_base"`
	Format     string `toml:"format"`
}

type BuildConfig struct {
	Jobs  int  `toml:"jobs"`
	Cache bool `toml:"cache"`
}

var (
	// ErrCorpusRootMissing indicates that [corpus].root is missing.
	ErrCorpusRootMissing = errors.New("missing [corpus].root")
	// ErrUnknownFormat indicates an unsupported [output].format.
	ErrUnknownFormat = errors.New("unknown output format")
)

// DefaultManifest returns the settings used without a wlbind.toml.
func DefaultManifest() Manifest {
	return Manifest{
		Corpus: CorpusConfig{Root: "."},
		Naming: NamingConfig{RootPrefix: "wl_", RootAlias: "wl", RootProtocol: "wayland"},
		Output: OutputConfig{ImportBase: "wlbind/protocols", Format: "json"},
		Build:  BuildConfig{Cache: true},
	}
}

// FindManifest walks up from startDir to locate wlbind.toml.
func FindManifest(fsys afero.Fs, startDir string) (path string, ok bool, err error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := fsys.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses path on top of DefaultManifest. Keys absent from the
// file keep their defaults.
func LoadManifest(fsys afero.Fs, path string) (Manifest, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	m := DefaultManifest()
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("corpus") && !meta.IsDefined("corpus", "root") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrCorpusRootMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Manifest{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	switch m.Output.Format {
	case "json", "yaml", "msgpack":
	default:
		return Manifest{}, fmt.Errorf("%s: %w %q", path, ErrUnknownFormat, m.Output.Format)
	}
	m.Path = path
	m.Dir = filepath.Dir(path)
	return m, nil
}

// LoadNearestManifest finds and loads the manifest above startDir. ok is
// false when there is none.
func LoadNearestManifest(fsys afero.Fs, startDir string) (Manifest, bool, error) {
	path, ok, err := FindManifest(fsys, startDir)
	if err != nil || !ok {
		return DefaultManifest(), ok, err
	}
	m, err := LoadManifest(fsys, path)
	if err != nil {
		return Manifest{}, true, err
	}
	return m, true, nil
}

// CorpusRoot resolves [corpus].root against the manifest directory.
func (m Manifest) CorpusRoot() (string, error) {
	root := strings.TrimSpace(m.Corpus.Root)
	if root == "" {
		return "", ErrCorpusRootMissing
	}
	if filepath.IsAbs(root) {
		return "", fmt.Errorf("invalid [corpus].root %q: must be relative", root)
	}
	clean := filepath.Clean(filepath.FromSlash(root))
	rootPath := filepath.Join(m.Dir, clean)
	if !pathWithin(m.Dir, rootPath) {
		return "", fmt.Errorf("invalid [corpus].root %q: escapes manifest directory", root)
	}
	return rootPath, nil
}

func pathWithin(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
