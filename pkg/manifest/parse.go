package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Option is a pip option line (e.g. --index-url, --no-binary) or a
// per-requirement global flag. Options are captured verbatim but not
// interpreted.
type Option struct {
	Name  string
	Value string
	Line  int
}

// Include is an unresolved -r or -c directive.
type Include struct {
	Target     string // path as written, relative to the including file
	Constraint bool   // true for -c
	Line       int
}

// Problem is a defect found while reading a manifest: an unparseable
// line, a missing include, or an include cycle. Problems are reported as
// lint findings rather than aborting the parse.
type Problem struct {
	File    string
	Line    int
	Code    string // "syntax", "include-missing", "include-cycle"
	Message string
}

// File is a single parsed requirement file.
type File struct {
	Path         string
	Requirements []*Requirement
	Includes     []Include
	Options      []Option
	Problems     []Problem
}

// ParseFile reads and parses the requirement file at path. I/O failure is
// the only error; malformed lines are recorded as Problems.
func ParseFile(path string) (*File, error) {
	if filepath.Base(path) == "pyproject.toml" {
		return ParsePyProject(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(path, f)
}

// ParseReader parses requirement lines from r, attributing positions to
// the given path.
func ParseReader(path string, r io.Reader) (*File, error) {
	file := &File{Path: path}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineno++
		startLine := lineno

		// Backslash continuation joins physical lines before any other
		// processing, mirroring pip's reader.
		for strings.HasSuffix(line, `\`) && scanner.Scan() {
			line = line[:len(line)-1] + scanner.Text()
			lineno++
		}

		line = stripComment(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-") {
			file.parseDirective(line, startLine)
			continue
		}

		text, hashes := splitHashes(line)
		req, err := ParseRequirement(text)
		if err != nil {
			file.addProblem(startLine, "syntax", err.Error())
			continue
		}
		req.Hashes = hashes
		req.File = path
		req.Line = startLine
		file.Requirements = append(file.Requirements, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return file, nil
}

func (f *File) addProblem(line int, code, message string) {
	f.Problems = append(f.Problems, Problem{File: f.Path, Line: line, Code: code, Message: message})
}

// parseDirective handles option lines: includes, editables, and global
// pip options.
func (f *File) parseDirective(line string, lineno int) {
	name, value := splitOption(line)

	switch name {
	case "-r", "--requirement":
		if value == "" {
			f.addProblem(lineno, "syntax", fmt.Sprintf("%s needs a file argument", name))
			return
		}
		f.Includes = append(f.Includes, Include{Target: value, Line: lineno})
	case "-c", "--constraint":
		if value == "" {
			f.addProblem(lineno, "syntax", fmt.Sprintf("%s needs a file argument", name))
			return
		}
		f.Includes = append(f.Includes, Include{Target: value, Constraint: true, Line: lineno})
	case "-e", "--editable":
		if value == "" {
			f.addProblem(lineno, "syntax", fmt.Sprintf("%s needs a path or URL", name))
			return
		}
		req := &Requirement{Kind: KindEditable, URL: value, File: f.Path, Line: lineno, Raw: line}
		if isVCSURL(value) {
			// Reuse VCS parsing so egg fragments still name the package.
			parsed, err := parseVCSURL(&Requirement{Raw: line}, value)
			if err == nil {
				req.Name, req.RawName = parsed.Name, parsed.RawName
				req.VCS, req.Ref = parsed.VCS, parsed.Ref
			}
		}
		f.Requirements = append(f.Requirements, req)
	default:
		f.Options = append(f.Options, Option{Name: name, Value: value, Line: lineno})
	}
}

// splitOption splits "-r file", "--opt=value", or "--opt value".
func splitOption(line string) (name, value string) {
	if i := strings.IndexByte(line, '='); i >= 0 && strings.HasPrefix(line, "--") {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		return line[:i], strings.TrimSpace(line[i:])
	}
	return line, ""
}

// stripComment removes a trailing comment. A # only starts a comment at
// the beginning of the line or after whitespace, so URL fragments like
// #egg=name survive.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t') {
			return line[:i]
		}
	}
	return line
}

// splitHashes peels --hash=algo:digest options off the end of a
// requirement line.
func splitHashes(line string) (rest string, hashes []string) {
	fields := strings.Fields(line)
	cut := len(fields)
	for cut > 0 && strings.HasPrefix(fields[cut-1], "--hash=") {
		cut--
		hashes = append([]string{strings.TrimPrefix(fields[cut], "--hash=")}, hashes...)
	}
	if cut == len(fields) {
		return line, nil
	}
	return strings.Join(fields[:cut], " "), hashes
}
