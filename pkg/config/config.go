// pkg/config/config.go - declarative tool configuration for hostprep.
//
// A configuration file carries a master `tools` table plus named
// `categories` that select which tools one provisioning run processes:
//
//	tools:
//	  - name: BuildAgent
//	    filename: buildagent.exe
//	    display_name: Build Agent
//	    version: "2.1.0"
//	    url: https://downloads.example.com/buildagent.exe
//	    arguments: ["/quiet", "/norestart"]
//	    restart_required: true
//	categories:
//	  default: [BuildAgent]

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no configuration file is given on the command line.
const DefaultPath = "tools.yaml"

// Tool describes one provisionable prerequisite. Instances are immutable
// once loaded; one per configured tool.
type Tool struct {
	// Name uniquely identifies the tool within the configuration.
	Name string `yaml:"name"`

	// FileName is the artifact downloaded into the scratch directory.
	// Artifacts ending in .iso are mounted before installation.
	FileName string `yaml:"filename"`

	// DisplayName is matched against the installed-applications registry.
	DisplayName string `yaml:"display_name"`

	// Version is the expected version of the tool.
	Version string `yaml:"version"`

	// URL is where the artifact is downloaded from.
	URL string `yaml:"url"`

	// Arguments are passed verbatim to the installer process.
	Arguments []string `yaml:"arguments"`

	// InstallerFileName names the real installer inside a mounted image.
	// Ignored for non-image artifacts.
	InstallerFileName string `yaml:"installer_filename"`

	// RestartRequired marks the host for a restart after a successful install.
	RestartRequired bool `yaml:"restart_required"`

	// BackwardCompatible accepts any installed version >= Version.
	// When false only an exact version match satisfies the check.
	BackwardCompatible bool `yaml:"backward_compatible"`

	// BlockingProcesses lists process names that must not be running
	// while this tool's installer executes.
	BlockingProcesses []string `yaml:"blocking_processes"`
}

// UnmarshalYAML applies per-tool defaults before decoding.
func (t *Tool) UnmarshalYAML(value *yaml.Node) error {
	type rawTool Tool
	raw := rawTool{BackwardCompatible: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*t = Tool(raw)
	return nil
}

// IsImage reports whether the tool's artifact is a disc image that has to
// be mounted before its installer can run.
func (t Tool) IsImage() bool {
	return strings.EqualFold(filepath.Ext(t.FileName), ".iso")
}

// File is a parsed configuration document.
type File struct {
	Tools      []Tool              `yaml:"tools"`
	Categories map[string][]string `yaml:"categories"`

	byName map[string]Tool
}

// CategoryError reports an invalid or unknown category selection.
type CategoryError struct {
	Category string
	Reason   string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("category %q: %s", e.Category, e.Reason)
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing configuration %s: %w", path, err)
	}

	f.byName = make(map[string]Tool, len(f.Tools))
	for _, t := range f.Tools {
		if t.Name == "" {
			return nil, fmt.Errorf("configuration %s: tool with empty name", path)
		}
		if _, dup := f.byName[t.Name]; dup {
			return nil, fmt.Errorf("configuration %s: duplicate tool name %q", path, t.Name)
		}
		f.byName[t.Name] = t
	}

	return &f, nil
}

// Category resolves a named category into its ordered tool list.
// The order of the category's entries is preserved.
func (f *File) Category(name string) ([]Tool, error) {
	names, ok := f.Categories[name]
	if !ok {
		return nil, &CategoryError{Category: name, Reason: "not defined in configuration"}
	}

	tools := make([]Tool, 0, len(names))
	for _, n := range names {
		t, ok := f.byName[n]
		if !ok {
			return nil, &CategoryError{
				Category: name,
				Reason:   fmt.Sprintf("references unknown tool %q", n),
			}
		}
		tools = append(tools, t)
	}
	return tools, nil
}
