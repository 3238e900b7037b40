package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/thoreinstein/settler/internal/errors"
)

const (
	// secureFilePerm is what --fix applies to the settings file.
	secureFilePerm os.FileMode = 0o600
	// secureDirPerm is what --fix applies to the settings directory.
	secureDirPerm os.FileMode = 0o700
	// maxSecureFilePerm is the most permissive mode reported as fine.
	maxSecureFilePerm os.FileMode = 0o644
)

// PathPermissionCheck validates the settings directory and file: both must
// be reachable, the directory writable, and neither world-writable.
type PathPermissionCheck struct {
	PermissionFixer

	fs   afero.Fs
	path string
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck checks the settings file at path. A nil fsys uses
// the OS filesystem.
func NewPathPermissionCheck(fsys afero.Fs, path string) *PathPermissionCheck {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &PathPermissionCheck{
		PermissionFixer: PermissionFixer{fs: fsys},
		fs:              fsys,
		path:            path,
	}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string {
	return "path-permissions"
}

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string {
	return "filesystem"
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run(_ context.Context) *CheckResult {
	var issues []pathIssue
	dir := filepath.Dir(c.path)

	dirIssues, dirExists := c.checkDirectory(dir)
	issues = append(issues, dirIssues...)
	if dirExists {
		issues = append(issues, c.checkFile(c.path)...)
	}
	c.setIssues(issues)

	return c.buildResult(issues, dirExists)
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string
	Fixable     bool
	FixHint     string
}

func (c *PathPermissionCheck) checkFile(path string) []pathIssue {
	info, err := c.fs.Stat(path)
	if os.IsNotExist(err) {
		// init creates it
		return nil
	}
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Type:     "file",
			Problem:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		}}
	}
	if info.IsDir() {
		return []pathIssue{{
			Path:     path,
			Type:     "file",
			Problem:  "expected a file but found a directory",
			Severity: SeverityError,
		}}
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return []pathIssue{{
			Path:        path,
			Type:        "file",
			Problem:     "file is not readable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 600 " + path,
		}}
	}
	f.Close()

	if runtime.GOOS == "windows" {
		return nil
	}

	perm := info.Mode().Perm()
	switch {
	case perm&0o002 != 0:
		return []pathIssue{{
			Path:        path,
			Type:        "file",
			Problem:     "file is world-writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 600 " + path,
		}}
	case perm > maxSecureFilePerm:
		return []pathIssue{{
			Path:        path,
			Type:        "file",
			Problem:     fmt.Sprintf("file mode %s is more permissive than %s", formatPermissions(info.Mode()), formatPermissions(maxSecureFilePerm)),
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 600 " + path,
		}}
	}
	return nil
}

// checkDirectory reports problems with dir and whether it exists.
func (c *PathPermissionCheck) checkDirectory(dir string) ([]pathIssue, bool) {
	info, err := c.fs.Stat(dir)
	if os.IsNotExist(err) {
		return nil, false
	}
	if err != nil {
		return []pathIssue{{
			Path:     dir,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		}}, false
	}
	if !info.IsDir() {
		return []pathIssue{{
			Path:     dir,
			Type:     "directory",
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		}}, false
	}

	var issues []pathIssue
	if !c.isDirectoryWritable(dir) {
		issues = append(issues, pathIssue{
			Path:        dir,
			Type:        "directory",
			Problem:     "directory is not writable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + dir,
		})
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path:        dir,
			Type:        "directory",
			Problem:     "directory is world-writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 700 " + dir,
		})
	}
	return issues, true
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func (c *PathPermissionCheck) isDirectoryWritable(dir string) bool {
	f, err := afero.TempFile(c.fs, dir, ".settler-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	_ = c.fs.Remove(name)
	return true
}

func (c *PathPermissionCheck) buildResult(issues []pathIssue, dirExists bool) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	if len(issues) == 0 {
		result.Status = SeverityPass
		result.Message = "settings path is accessible"
		if !dirExists {
			result.Status = SeverityInfo
			result.Message = "settings directory does not exist yet; init creates it"
		}
		return result
	}

	result.Status = SeverityInfo
	problems := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity > result.Status {
			result.Status = issue.Severity
		}
		if issue.Fixable {
			result.Fixable = true
		}
		p := map[string]any{
			"path":    issue.Path,
			"type":    issue.Type,
			"problem": issue.Problem,
		}
		if issue.Permissions != "" {
			p["permissions"] = issue.Permissions
		}
		problems = append(problems, p)
	}
	result.Details["issues"] = problems

	if len(issues) == 1 {
		result.Message = fmt.Sprintf("%s: %s", issues[0].Path, issues[0].Problem)
		result.FixHint = issues[0].FixHint
	} else {
		result.Message = fmt.Sprintf("%d path problems", len(issues))
		if result.Fixable {
			result.FixHint = "run settler doctor --fix"
		}
	}
	return result
}

// formatPermissions returns the octal representation of a mode's
// permission bits.
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// PermissionFixer tightens the modes found by PathPermissionCheck.
type PermissionFixer struct {
	fs     afero.Fs
	issues []pathIssue
}

// CanFix returns true if there are any fixable permission issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	count := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			count++
		}
	}
	return count
}

// Fix attempts to fix all fixable permission issues.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if !issue.Fixable {
			continue
		}
		results = append(results, f.fixIssue(issue))
	}
	return results
}

func (f *PermissionFixer) fixIssue(issue pathIssue) FixResult {
	result := FixResult{Path: issue.Path}

	var target os.FileMode
	switch issue.Type {
	case "file":
		target = secureFilePerm
	case "directory":
		target = secureDirPerm
	default:
		result.Description = "unknown type: " + issue.Type
		result.Error = errors.Newf("cannot fix unknown type: %s", issue.Type)
		return result
	}

	if err := f.fs.Chmod(issue.Path, target); err != nil {
		result.Description = fmt.Sprintf("failed to chmod %04o: %v", target, err)
		result.Error = errors.Wrapf(err, "chmod %04o %s", target, issue.Path)
		return result
	}

	result.Fixed = true
	result.Description = fmt.Sprintf("chmod %04o", target)
	return result
}

func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}
