package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"linebasic/internal/fault"
	"linebasic/internal/numlit"
	"linebasic/internal/runtimeio"
	"linebasic/internal/session"
	"linebasic/internal/spectest"
)

// testMaxSteps stops a test program that never ends.
const testMaxSteps = 1000000

type expectMode int

const (
	expectOK expectMode = iota
	expectError
	expectErrorContains
)

// expectation is read from the REM lines at the top of a test program:
//
//	10 REM expect: error contains "DIVIDE"
//	20 REM expect: stdout "1\n2\n"
//	30 REM expect: input "42"
type expectation struct {
	mode        expectMode
	substring   string
	hasExplicit bool
	stdout      spectest.StdoutExpectation
	hasStdout   bool
	input       []string
}

func runTest(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("test", stderr)
	interp := fs.Bool("interp", false, "run tests with the line interpreter")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, "usage: basic test [-interp] [path|dir]...")
		return 2
	}

	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	files, err := collectTestFiles(targets)
	if err != nil {
		fmt.Fprintln(stderr, "test error:", err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintln(stdout, "no tests found")
		return 0
	}
	sort.Strings(files)

	passed := 0
	failed := 0
	for _, path := range files {
		ok, reason := runTestFile(path, *interp)
		if ok {
			passed++
			continue
		}
		failed++
		fmt.Fprintf(stdout, "FAIL %s: %s\n", path, reason)
	}
	fmt.Fprintf(stdout, "passed %d, failed %d\n", passed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func runTestFile(path string, interp bool) (bool, string) {
	exp, err := parseExpectation(path)
	if err != nil {
		return false, err.Error()
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err.Error()
	}
	defer f.Close()

	sess := session.New()
	lineErrs, err := sess.Load(f)
	if err != nil {
		return false, err.Error()
	}

	var gotErr string
	script := runtimeio.NewScript(exp.input...)
	if len(lineErrs) > 0 {
		gotErr = lineErrs[0].Error()
	} else {
		if interp {
			err = sess.Interpret(script, testMaxSteps)
		} else {
			sess.SetMaxSteps(testMaxSteps)
			err = sess.Run(script)
		}
		gotErr = fault.Label(err)
	}

	switch exp.mode {
	case expectOK:
		if gotErr != "" {
			return false, "expected ok, got error: " + gotErr
		}
	case expectError:
		if gotErr == "" {
			return false, "expected error, got ok"
		}
	case expectErrorContains:
		if gotErr == "" {
			return false, "expected error, got ok"
		}
		if !strings.Contains(gotErr, exp.substring) {
			return false, fmt.Sprintf("error mismatch: expected to contain %q, got %q", exp.substring, gotErr)
		}
	default:
		return false, "unknown expectation"
	}

	if exp.stdout.Mode != spectest.StdoutNone {
		ok, reason, err := spectest.MatchStdout(script.Text(), exp.stdout, filepath.Dir(path))
		if err != nil {
			return false, err.Error()
		}
		if !ok {
			return false, reason
		}
	}
	return true, ""
}

func parseExpectation(path string) (*expectation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	exp := &expectation{
		mode:   expectOK,
		stdout: spectest.StdoutExpectation{Mode: spectest.StdoutNone},
	}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		_, stmt, ok, err := numlit.ParseLineNumber(line)
		if !ok || err != nil {
			break
		}
		stmt = strings.TrimSpace(stmt)
		if !strings.HasPrefix(stmt, "REM") {
			break
		}
		comment := strings.TrimSpace(strings.TrimPrefix(stmt, "REM"))
		if !strings.HasPrefix(strings.ToLower(comment), "expect:") {
			continue
		}
		body := strings.TrimSpace(comment[len("expect:"):])
		bodyLower := strings.ToLower(body)

		outcome := func(mode expectMode) error {
			if exp.hasExplicit {
				return fmt.Errorf("%s:%d: multiple outcome expect directives", path, lineNo)
			}
			exp.hasExplicit = true
			exp.mode = mode
			return nil
		}
		quoted := func(prefix, what string) (string, error) {
			rest := strings.TrimSpace(body[len(prefix):])
			if rest == "" {
				return "", fmt.Errorf("%s:%d: missing %s", path, lineNo, what)
			}
			v, err := parseQuoted(rest)
			if err != nil {
				return "", fmt.Errorf("%s:%d: %v", path, lineNo, err)
			}
			return v, nil
		}
		stdoutOnce := func() error {
			if exp.hasStdout {
				return fmt.Errorf("%s:%d: multiple stdout expect directives", path, lineNo)
			}
			exp.hasStdout = true
			return nil
		}

		switch {
		case bodyLower == "ok":
			if err := outcome(expectOK); err != nil {
				return nil, err
			}
		case bodyLower == "error":
			if err := outcome(expectError); err != nil {
				return nil, err
			}
		case strings.HasPrefix(bodyLower, "error contains"):
			if err := outcome(expectErrorContains); err != nil {
				return nil, err
			}
			sub, err := quoted("error contains", "error substring")
			if err != nil {
				return nil, err
			}
			exp.substring = sub
		case strings.HasPrefix(bodyLower, "input"):
			v, err := quoted("input", "input line")
			if err != nil {
				return nil, err
			}
			exp.input = append(exp.input, v)
		case strings.HasPrefix(bodyLower, "stdout file"):
			if err := stdoutOnce(); err != nil {
				return nil, err
			}
			v, err := quoted("stdout file", "stdout file path")
			if err != nil {
				return nil, err
			}
			exp.stdout = spectest.StdoutExpectation{Mode: spectest.StdoutFile, Value: v}
		case strings.HasPrefix(bodyLower, "stdout contains"):
			if err := stdoutOnce(); err != nil {
				return nil, err
			}
			v, err := quoted("stdout contains", "stdout substring")
			if err != nil {
				return nil, err
			}
			exp.stdout = spectest.StdoutExpectation{Mode: spectest.StdoutContains, Value: v}
		case strings.HasPrefix(bodyLower, "stdout"):
			if err := stdoutOnce(); err != nil {
				return nil, err
			}
			v, err := quoted("stdout", "stdout string")
			if err != nil {
				return nil, err
			}
			exp.stdout = spectest.StdoutExpectation{Mode: spectest.StdoutExact, Value: v}
		default:
			return nil, fmt.Errorf("%s:%d: invalid expect directive", path, lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return exp, nil
}

func parseQuoted(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '"' {
		return "", fmt.Errorf("expected quoted string")
	}
	return strconv.Unquote(raw)
}

func collectTestFiles(targets []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
		return nil
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if isTestFile(target) {
				if err := add(target); err != nil {
					return nil, err
				}
			}
			continue
		}

		err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if base := filepath.Base(path); base == ".git" || base == "fixtures" {
					return filepath.SkipDir
				}
				return nil
			}
			if isTestFile(path) {
				return add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isTestFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".test.bas")
}
