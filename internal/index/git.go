package index

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// isGitRepo reports whether dir is inside a git work tree.
func isGitRepo(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// ModifiedFiles returns project-relative paths touched in the working
// tree plus the last n commits, deduplicated and sorted. Used to scope
// searches to recently changed code.
func ModifiedFiles(ctx context.Context, projectPath string, commits int) ([]string, error) {
	if !isGitRepo(projectPath) {
		return nil, fmt.Errorf("%s is not a git repository", projectPath)
	}

	seen := make(map[string]bool)

	// Uncommitted changes, staged and unstaged.
	statusCmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	statusCmd.Dir = projectPath
	statusOut, err := statusCmd.Output()
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(string(statusOut), "\n") {
		if len(line) < 4 {
			continue
		}
		path := strings.TrimSpace(line[3:])
		// Renames are shown as "old -> new"; the new path is the live one.
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		path = strings.Trim(path, `"`)
		if path != "" {
			seen[path] = true
		}
	}

	if commits > 0 {
		logCmd := exec.CommandContext(ctx, "git", "log", "--name-only", "--pretty=format:",
			"-n", strconv.Itoa(commits))
		logCmd.Dir = projectPath
		logOut, err := logCmd.Output()
		if err == nil {
			for _, line := range strings.Split(string(logOut), "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					seen[line] = true
				}
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, filepath.ToSlash(p))
	}
	sort.Strings(paths)
	return paths, nil
}
