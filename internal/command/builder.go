// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/cfinfer/cfinfer/pkg/checker"
	"github.com/cfinfer/cfinfer/pkg/inference"

	"mvdan.cc/sh/v3/shell"
)

const (
	// InferenceMain is the entry point of constraint generation.
	InferenceMain = "checkers.inference.InferenceCli"
	// PropagationSolver is forced by the floodsolve step.
	PropagationSolver = "checkers.inference.floodsolver.PropagationSolver"
	// DebugAgent suspends the JVM until a debugger attaches on port 5005.
	DebugAgent = "-agentlib:jdwp=transport=dt_socket,server=y,suspend=y,address=5005"
	// JaifName is the solution artifact written by constraint generation.
	JaifName = "default.jaif"

	initialHeap = "-Xms512m"
)

// ErrNotPrepared is returned by Build for a JVM step before Prepare assembled
// the classpath.
var ErrNotPrepared = errors.New("builder not prepared for JVM steps")

type (
	// Request describes one step to build.
	Request struct {
		Step    inference.Step
		Config  inference.RunConfig
		Checker checker.Descriptor
		// Files is the current working file list of the pipeline.
		Files []string
	}

	// Builder renders step invocations for one run.
	Builder struct {
		toolchain Toolchain
		workDir   string
		classpath string
		prepared  bool
	}
)

// NewBuilder creates a Builder. Invocations run in workDir, which is also
// where constraint generation leaves its solution file.
func NewBuilder(tc Toolchain, workDir string) *Builder {
	return &Builder{toolchain: tc, workDir: workDir}
}

// Prepare assembles the distribution classpath once when any of steps runs
// on the JVM. It is a no-op for pipelines that only insert annotations.
func (b *Builder) Prepare(steps []inference.Step) error {
	if !slices.ContainsFunc(steps, inference.Step.RunsJava) {
		return nil
	}
	if _, err := b.toolchain.Java(); err != nil {
		return err
	}
	cp, err := Classpath(b.toolchain.DistDir())
	if err != nil {
		return err
	}
	b.classpath = cp
	b.prepared = true
	return nil
}

// Classpath returns the classpath assembled by Prepare.
func (b *Builder) Classpath() string {
	return b.classpath
}

// Build renders the invocation for req.
func (b *Builder) Build(req Request) (Invocation, error) {
	if err := req.Step.Validate(); err != nil {
		return Invocation{}, err
	}
	if req.Step.RunsJava() && !b.prepared {
		return Invocation{}, ErrNotPrepared
	}

	switch req.Step {
	case inference.StepGenerate:
		return b.generate(req, false)
	case inference.StepFloodSolve:
		return b.generate(req, true)
	case inference.StepTypecheck:
		return b.typecheck(req)
	case inference.StepInsertJaif:
		return b.insertJaif(req)
	}
	return Invocation{}, &inference.InvalidStepError{Value: req.Step}
}

func (b *Builder) generate(req Request, flood bool) (Invocation, error) {
	cfg := req.Config
	java, err := b.toolchain.Java()
	if err != nil {
		return Invocation{}, err
	}
	javaArgs, progArgs, err := splitArgs(cfg)
	if err != nil {
		return Invocation{}, err
	}

	args := slices.Clone(javaArgs)
	args = append(args, initialHeap, "-Xmx"+cfg.Xmx, "-Xbootclasspath/p:"+b.classpath)
	if cfg.ExtraClasspath != "" {
		args = append(args, "-cp", cfg.ExtraClasspath)
	}
	args = append(args, "-ea")
	if cfg.Debug {
		args = append(args, DebugAgent)
	}
	if cfg.NotStrict {
		args = append(args, "-DSTRICT=false")
	}
	if cfg.PrintWorld {
		args = append(args, "-DPRINT_WORLD=true")
	}

	args = append(args, InferenceMain, "--checker", req.Checker.Checker)
	solver := firstNonEmpty(cfg.Solver, req.Checker.Solver)
	if flood {
		solver = PropagationSolver
	}
	if solver != "" {
		args = append(args, "--solver", solver)
	}
	if flood && req.Checker.HasQualifierPair() {
		args = append(args, "--solver-args",
			fmt.Sprintf("subtype=%s,supertype=%s", req.Checker.Subtype, req.Checker.Supertype))
	}
	if stubs := b.stubs(cfg, req.Checker); stubs != "" {
		args = append(args, "--stubs", stubs)
	}
	if cfg.LogLevel != "" {
		args = append(args, "--log-level", cfg.LogLevel.String())
	}
	args = append(args, progArgs...)
	args = append(args, req.Files...)

	return Invocation{Path: java, Args: args, Dir: b.workDir}, nil
}

func (b *Builder) typecheck(req Request) (Invocation, error) {
	cfg := req.Config
	java, err := b.toolchain.Java()
	if err != nil {
		return Invocation{}, err
	}
	javaArgs, progArgs, err := splitArgs(cfg)
	if err != nil {
		return Invocation{}, err
	}

	args := slices.Clone(javaArgs)
	args = append(args,
		initialHeap, "-Xmx"+cfg.Xmx,
		"-jar", filepath.Join(b.toolchain.DistDir(), CheckerJar),
		"-cp", joinPathList(b.classpath, cfg.ExtraClasspath),
	)
	if cfg.Debug {
		args = append(args, "-J"+DebugAgent)
	}
	if cfg.NotStrict {
		args = append(args, "-DSTRICT=false")
	}
	args = append(args, "-processor", req.Checker.Checker)
	args = append(args, progArgs...)
	if stubs := b.stubs(cfg, req.Checker); stubs != "" {
		args = append(args, "-Astubs="+stubs)
	}
	if cfg.LogLevel != "" {
		args = append(args, "-AlogLevel="+cfg.LogLevel.String())
	}
	args = append(args, req.Files...)

	return Invocation{Path: java, Args: args, Dir: b.workDir}, nil
}

func (b *Builder) insertJaif(req Request) (Invocation, error) {
	cfg := req.Config
	args := []string{"-v"}
	if cfg.InPlace {
		args = append(args, "-i")
	} else {
		args = append(args, "-d", cfg.OutputDir)
	}
	args = append(args, filepath.Join(cfg.OutputDir, JaifName))
	for _, f := range req.Files {
		abs, err := b.abs(f)
		if err != nil {
			return Invocation{}, fmt.Errorf("resolve %s: %w", f, err)
		}
		args = append(args, abs)
	}

	inv := Invocation{Path: b.toolchain.InsertAnnotations(), Args: args, Dir: b.workDir}
	if cfg.ExtraClasspath != "" {
		inv.Env = []string{"CLASSPATH=" + joinPathList(b.toolchain.ClassPath, cfg.ExtraClasspath)}
	}
	return inv, nil
}

// abs resolves f against the working directory of the invocations.
func (b *Builder) abs(f string) (string, error) {
	if filepath.IsAbs(f) || b.workDir == "" {
		return filepath.Abs(f)
	}
	return filepath.Join(b.workDir, f), nil
}

// stubs prefers the command line over the descriptor default.
func (b *Builder) stubs(cfg inference.RunConfig, d checker.Descriptor) string {
	if cfg.Stubs != "" {
		return cfg.Stubs
	}
	return d.StubPath(b.toolchain.SourceRoot())
}

func splitArgs(cfg inference.RunConfig) (javaArgs, progArgs []string, err error) {
	if javaArgs, err = shell.Fields(cfg.JavaArgs, nil); err != nil {
		return nil, nil, fmt.Errorf("java-args: %w", err)
	}
	if progArgs, err = shell.Fields(cfg.ProgArgs, nil); err != nil {
		return nil, nil, fmt.Errorf("prog-args: %w", err)
	}
	return javaArgs, progArgs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
