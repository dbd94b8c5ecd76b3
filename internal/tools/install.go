// Package tools builds the command-line binaries into a bin directory.
package tools

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Tool is one binary produced by Install.
type Tool struct {
	Name    string
	Package string
}

// Tools lists what Install builds, in build order.
var Tools = []Tool{
	{Name: "basic", Package: "./cmd/basic"},
	{Name: "basic-lsp", Package: "./cmd/basic-lsp"},
}

type InstallOptions struct {
	BinDir string
	// Build compiles pkg into out. Nil means `go build`.
	Build func(pkg, out string) error
}

// Install builds every entry of Tools into BinDir (default "bin") and
// returns the paths it wrote. It stops at the first failed build.
func Install(opts InstallOptions) ([]string, error) {
	dir := opts.BinDir
	if dir == "" {
		dir = "bin"
	}
	build := opts.Build
	if build == nil {
		build = goBuild
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var installed []string
	for _, t := range Tools {
		out := filepath.Join(dir, t.Name)
		if err := build(t.Package, out); err != nil {
			return installed, fmt.Errorf("build %s: %w", t.Name, err)
		}
		installed = append(installed, out)
	}
	return installed, nil
}

func goBuild(pkg, out string) error {
	cmd := exec.Command("go", "build", "-o", out, pkg)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Run()
}
