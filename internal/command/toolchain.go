// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// InsertAnnotationsScript is the annotation file utilities entry point.
	InsertAnnotationsScript = "insert-annotations-to-source"
	// CheckerJar is the checker framework javac wrapper inside the distribution.
	CheckerJar = "checker.jar"
)

var (
	// ErrDistributionNotFound is returned when <inference home>/dist is missing.
	ErrDistributionNotFound = errors.New("inference dist directory not found")
	// ErrJavaHomeNotSet is returned when a JVM step runs without a JDK location.
	ErrJavaHomeNotSet = errors.New("JAVA_HOME is not set")
)

// Toolchain locates the external tools. It is usually filled from
// CHECKER_INFERENCE, JAVA_HOME, AFU_HOME and CLASSPATH.
type Toolchain struct {
	InferenceHome string
	JavaHome      string
	// AFUHome is optional; without it the insertion script is looked up on PATH.
	AFUHome string
	// ClassPath is the inherited CLASSPATH, extended for annotation insertion.
	ClassPath string
}

// DistDir is the directory holding the distribution jars.
func (t Toolchain) DistDir() string {
	return filepath.Join(t.InferenceHome, "dist")
}

// SourceRoot is where relative checker stub paths are resolved.
func (t Toolchain) SourceRoot() string {
	if t.InferenceHome == "" {
		return ""
	}
	return filepath.Join(t.InferenceHome, "src")
}

// Java returns $JAVA_HOME/bin/java.
func (t Toolchain) Java() (string, error) {
	if strings.TrimSpace(t.JavaHome) == "" {
		return "", ErrJavaHomeNotSet
	}
	return filepath.Join(t.JavaHome, "bin", "java"), nil
}

// InsertAnnotations returns the insertion script path.
func (t Toolchain) InsertAnnotations() string {
	if t.AFUHome == "" {
		return InsertAnnotationsScript
	}
	return filepath.Join(t.AFUHome, "annotation-file-utilities", "scripts", InsertAnnotationsScript)
}

// Classpath joins the regular .jar files of dir, in reverse directory order,
// with the OS path-list separator. Symlinks count when their target is a
// regular file.
func Classpath(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDistributionNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}

	jars := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".jar") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		jars = append(jars, path)
	}
	slices.Reverse(jars)

	return strings.Join(jars, string(os.PathListSeparator)), nil
}

func joinPathList(parts ...string) string {
	nonEmpty := slices.DeleteFunc(slices.Clone(parts), func(s string) bool { return s == "" })
	return strings.Join(nonEmpty, string(os.PathListSeparator))
}
