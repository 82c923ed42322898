package flags

import (
	"errors"
	"os"
	"path"
)

// ErrHomeNotSet is returned by MakeProviderFromEnv when $HOME is absent from the environment.
// It's not handled anywhere on purpose: without a home directory there is no usable
// include path to hand out, so the host is the one to surface the problem.
var ErrHomeNotSet = errors.New("environment variable HOME is not set")

// homeIncludeSubdir is appended to the home directory to form the user include path.
const homeIncludeSubdir = "include"

// Options is what an editor host may pass along with a file path.
// No options are recognized yet; the struct exists so that the entry point
// keeps its shape when some appear.
type Options struct {
}

// Settings is the configuration record handed back to the host plugin.
type Settings struct {
	Flags []string
}

// Provider computes compiler flags for files of a C codebase.
// The home directory is injected at construction instead of being read inside
// SettingsForFile, which keeps the method pure.
//
// Historically there were two flavors of this provider, differing only in whether
// they pinned the C dialect with -std. Both are kept: MakeProvider builds the plain
// one, MakeProviderWithStd the pinning one.
type Provider struct {
	homeDir          string
	std              string   // dialect like "gnu99"; empty means no -std token
	extraIncludeDirs []string // project-level -I additions, appended after the fixed ones
}

func MakeProvider(homeDir string) *Provider {
	return &Provider{homeDir: homeDir}
}

func MakeProviderWithStd(homeDir string, std string) *Provider {
	return &Provider{homeDir: homeDir, std: std}
}

// MakeProviderFromEnv builds the plain-variant provider from the current process environment.
func MakeProviderFromEnv() (*Provider, error) {
	homeDir, exists := os.LookupEnv("HOME")
	if !exists {
		return nil, ErrHomeNotSet
	}
	return MakeProvider(homeDir), nil
}

// WithProjectConfig derives a provider with per-project overrides applied.
// The receiver is not modified.
func (p *Provider) WithProjectConfig(projectConfig *ProjectConfig) *Provider {
	derived := &Provider{
		homeDir:          p.homeDir,
		std:              p.std,
		extraIncludeDirs: p.extraIncludeDirs,
	}
	if projectConfig.Std != "" {
		derived.std = projectConfig.Std
	}
	if len(projectConfig.IncludeDirs) > 0 {
		derived.extraIncludeDirs = make([]string, 0, len(p.extraIncludeDirs)+len(projectConfig.IncludeDirs))
		derived.extraIncludeDirs = append(derived.extraIncludeDirs, p.extraIncludeDirs...)
		derived.extraIncludeDirs = append(derived.extraIncludeDirs, projectConfig.IncludeDirs...)
	}
	return derived
}

// SettingsForFile returns compiler flags for filePath.
// The flags don't depend on filePath or opts: every file of the codebase is parsed
// with the same command line. Both arguments are part of the host calling convention.
func (p *Provider) SettingsForFile(filePath string, opts Options) Settings {
	_ = filePath
	_ = opts

	fs := MakeFlagSet()
	fs.langArgs = append(fs.langArgs, "-x", "c")
	fs.warningArgs = append(fs.warningArgs, "-Wall", "-Wpointer-arith")
	if p.std != "" {
		fs.stdArg = "-std=" + p.std
	}
	fs.codegenArgs = append(fs.codegenArgs, "-fPIC")
	fs.defineArgs = append(fs.defineArgs, "-D_GNU_SOURCE")
	fs.AddIncludeDir(".")
	fs.AddIncludeDir(path.Join(p.homeDir, homeIncludeSubdir))
	for _, dir := range p.extraIncludeDirs {
		fs.AddIncludeDir(dir)
	}

	return Settings{Flags: fs.AsCompilerArgs()}
}
