// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// FakeJaif is the content the fake java writes for a constraint generation run.
const FakeJaif = "package:\nclass Fake:\n"

// fakeJava records its argv, writes default.jaif into the working directory
// when it is asked to generate constraints, and exits with the code stored
// in the exit file (0 when absent).
const fakeJava = `#!/bin/sh
echo "java $*" >> "@LOG@"
for a in "$@"; do
	if [ "$a" = "checkers.inference.InferenceCli" ]; then
		printf '%s' "@JAIF@" > default.jaif
	fi
done
if [ -f "@EXIT@" ]; then
	exit "$(cat "@EXIT@")"
fi
exit 0
`

// fakeAFU records argv and CLASSPATH, then copies every source file into
// the -d directory, mimicking annotation insertion into a fresh tree.
const fakeAFU = `#!/bin/sh
echo "afu $*" >> "@LOG@"
echo "CLASSPATH=$CLASSPATH" >> "@LOG@"
out=""
while [ $# -gt 0 ]; do
	case "$1" in
		-v|-i) shift ;;
		-d) out="$2"; shift 2 ;;
		*.jaif) shift ;;
		*)
			if [ -n "$out" ]; then
				mkdir -p "$out"
				cp "$1" "$out/"
			fi
			shift ;;
	esac
done
exit 0
`

// FakeToolchain is an on-disk stand-in for CHECKER_INFERENCE, JAVA_HOME and
// AFU_HOME made of POSIX shell scripts.
type FakeToolchain struct {
	Root          string
	InferenceHome string
	JavaHome      string
	AFUHome       string
	// Jars lists the jar files created in the distribution directory, in
	// lexical order.
	Jars    []string
	logPath string
	exit    string
}

// NewFakeToolchain creates a fake toolchain under a fresh temporary directory.
// The test is skipped on Windows.
func NewFakeToolchain(t testing.TB) *FakeToolchain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain uses POSIX shell scripts")
	}

	root := t.TempDir()
	ft := &FakeToolchain{
		Root:          root,
		InferenceHome: filepath.Join(root, "inference"),
		JavaHome:      filepath.Join(root, "jdk"),
		AFUHome:       filepath.Join(root, "afu"),
		logPath:       filepath.Join(root, "calls.log"),
		exit:          filepath.Join(root, "java.exit"),
	}

	dist := filepath.Join(ft.InferenceHome, "dist")
	for _, jar := range []string{"checker.jar", "inference.jar", "plume.jar"} {
		MustWriteFile(t, filepath.Join(dist, jar), "", 0o644)
		ft.Jars = append(ft.Jars, filepath.Join(dist, jar))
	}
	MustWriteFile(t, filepath.Join(dist, "README.txt"), "not a jar", 0o644)

	replacer := strings.NewReplacer("@LOG@", ft.logPath, "@EXIT@", ft.exit, "@JAIF@", FakeJaif)
	MustWriteFile(t, filepath.Join(ft.JavaHome, "bin", "java"), replacer.Replace(fakeJava), 0o755)
	MustWriteFile(t, filepath.Join(ft.AFUHome, "annotation-file-utilities", "scripts", "insert-annotations-to-source"),
		replacer.Replace(fakeAFU), 0o755)

	return ft
}

// FailJava makes subsequent java invocations exit with code.
func (ft *FakeToolchain) FailJava(t testing.TB, code int) {
	t.Helper()
	MustWriteFile(t, ft.exit, strconv.Itoa(code), 0o644)
}

// Calls returns one line per recorded invocation (and CLASSPATH line for AFU).
func (ft *FakeToolchain) Calls(t testing.TB) []string {
	t.Helper()
	data, err := os.ReadFile(ft.logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("failed to read call log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// WriteSources creates the named Java files under dir and returns their paths.
func WriteSources(t testing.TB, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		class := strings.TrimSuffix(filepath.Base(name), ".java")
		MustWriteFile(t, p, "class "+class+" {}\n", 0o644)
		paths = append(paths, p)
	}
	return paths
}
