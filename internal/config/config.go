package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ManifestName is the project file `basic run <dir>` looks for.
const ManifestName = "basic.toml"

type Manifest struct {
	Name     string
	Entry    string
	MaxSteps int64
}

func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := &Manifest{}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		parts := strings.SplitN(s, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s:%d: invalid line", path, lineNo)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
			return nil, fmt.Errorf("%s:%d: value must be a quoted string", path, lineNo)
		}
		val = val[1 : len(val)-1]

		switch key {
		case "name":
			m.Name = val
		case "entry":
			m.Entry = val
		case "max_steps":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%s:%d: max_steps must be a non-negative integer", path, lineNo)
			}
			m.MaxSteps = n
		default:
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// ResolveEntry turns a file or project directory argument into the program
// file to load, along with the manifest when there is one.
func ResolveEntry(arg string) (string, *Manifest, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return "", nil, err
	}
	if !info.IsDir() {
		return arg, nil, nil
	}
	m, err := LoadManifest(filepath.Join(arg, ManifestName))
	if err != nil {
		return "", nil, err
	}
	if m.Entry == "" {
		return "", nil, fmt.Errorf("%s: entry is not set", filepath.Join(arg, ManifestName))
	}
	return filepath.Join(arg, m.Entry), m, nil
}

// Init writes a manifest and a starter program into dir. Existing files are
// left alone.
func Init(dir, name string) ([]string, error) {
	files := []struct {
		name, body string
	}{
		{ManifestName, fmt.Sprintf("name = %q\nentry = \"main.bas\"\n", name)},
		{"main.bas", "10 REM count to three\n20 LET I = 1\n30 PRINT I\n40 LET I = I + 1\n50 IF 4 > I THEN 30\n60 END\n"},
	}
	var created []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(f.body), 0o644); err != nil {
			return created, err
		}
		created = append(created, path)
	}
	return created, nil
}
