// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude matches the test sources of a search directory.
const DefaultInclude = "*.java"

// typecheckExcluded are sources that are only meaningful with inference.
var typecheckExcluded = []string{"Basic.java", "Simple.java"}

// DefaultSearchDirs returns the checker framework's all-systems tests followed
// by the example directories of the inference checkout. Empty roots are skipped.
func DefaultSearchDirs(checkersTests, inferenceHome string) []string {
	var dirs []string
	if checkersTests != "" {
		dirs = append(dirs, filepath.Join(checkersTests, "tests", "all-systems"))
	}
	if inferenceHome != "" {
		examples := filepath.Join(inferenceHome, "testing", "examples")
		dirs = append(dirs, examples, filepath.Join(examples, "refmerge"), filepath.Join(examples, "generics"))
	}
	return dirs
}

// DefaultGoldDir returns the golden file directory of the inference checkout.
func DefaultGoldDir(inferenceHome string) string {
	if inferenceHome == "" {
		return ""
	}
	return filepath.Join(inferenceHome, "testing", "common_gold")
}

// Discover lists the test files of dirs in directory order. Each directory
// contributes the regular files matching any include glob whose base name
// matches pattern (nil matches everything). Missing directories are logged
// and skipped.
func Discover(dirs, include []string, pattern *regexp.Regexp, mode Mode, logger *slog.Logger) ([]string, error) {
	if len(include) == 0 {
		include = []string{DefaultInclude}
	}
	if logger == nil {
		logger = slog.Default()
	}

	var files []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logger.Warn("skipping missing search directory", "dir", dir)
			continue
		}

		var matches []string
		fsys := os.DirFS(dir)
		for _, glob := range include {
			found, err := doublestar.Glob(fsys, glob)
			if err != nil {
				return nil, fmt.Errorf("include pattern %q: %w", glob, err)
			}
			matches = append(matches, found...)
		}
		slices.Sort(matches)
		matches = slices.Compact(matches)

		for _, rel := range matches {
			path := filepath.Join(dir, filepath.FromSlash(rel))
			base := filepath.Base(path)
			if pattern != nil && !pattern.MatchString(base) {
				continue
			}
			if mode == ModeTypecheck && slices.Contains(typecheckExcluded, base) {
				continue
			}
			if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
				continue
			}
			files = append(files, path)
		}
	}
	return files, nil
}
