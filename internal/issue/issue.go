// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	InvalidRunConfigId
	UnknownStepId
	DistributionNotFoundId
	JavaHomeNotSetId
	StepFailedId
	ToolNotFoundId
	SolutionArtifactMissingId
	SourceFileMissingId
	HarnessFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	checkerFrameworkLink = HttpLink("https://checkerframework.org/manual/")
	afuLink              = HttpLink("https://checkerframework.org/annotation-file-utilities/")

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the file cfinfer is reading:
~~~
$ cfinfer config path
~~~
- Print the effective configuration:
~~~
$ cfinfer config show
~~~
- Every section is optional; remove unknown fields such as typos in section names`,
	}

	invalidRunConfigIssue = &Issue{
		id: InvalidRunConfigId,
		mdMsg: `
# Invalid run options!

Nothing was executed because the options do not describe a valid run.

## Accepted values:
- **--mode**: infer, typecheck, roundtrip, roundtrip-typecheck
- **--log-level**: OFF, ERROR, WARN, INFO, DEBUG, TRACE, ALL
- **--solver** cannot be combined with ` + "`--mode typecheck`" + `
- At least one source file is required`,
	}

	unknownStepIssue = &Issue{
		id: UnknownStepId,
		mdMsg: `
# Unknown pipeline step!

**--steps** takes a comma-separated list drawn from:
- generate
- typecheck
- insert-jaif
- floodsolve

Empty items and surrounding spaces are ignored.`,
	}

	distributionNotFoundIssue = &Issue{
		id: DistributionNotFoundId,
		mdMsg: `
# Inference distribution not found!

The classpath is assembled from the jar files in ` + "`$CHECKER_INFERENCE/dist`" + `.

## Things you can try:
- Point CHECKER_INFERENCE at your checker-framework-inference checkout
- Build the distribution so that the dist directory contains the jars
- Or set ` + "`toolchain.inference_home`" + ` in config.cue`,
		docLinks: []HttpLink{checkerFrameworkLink},
	}

	javaHomeNotSetIssue = &Issue{
		id: JavaHomeNotSetId,
		mdMsg: `
# JAVA_HOME is not set!

Constraint generation and type checking run ` + "`$JAVA_HOME/bin/java`" + `.

## Things you can try:
- Export JAVA_HOME for the JDK the checker framework was built with
- Or set ` + "`toolchain.java_home`" + ` in config.cue`,
	}

	stepFailedIssue = &Issue{
		id: StepFailedId,
		mdMsg: `
# A pipeline step failed!

The external tool exited with a non-zero status and the remaining steps were skipped.
Files already produced in the output directory are left in place.

## Things you can try:
- Re-run with ` + "`--print-only`" + ` to see the exact command lines
- Re-run with ` + "`--not-strict`" + ` to continue past failing steps
- Attach a debugger with ` + "`--debug`" + ` (port 5005)`,
		docLinks: []HttpLink{checkerFrameworkLink},
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Tool could not be started!

The executable for this step does not exist or is not executable.

## Things you can try:
- Check that ` + "`$JAVA_HOME/bin/java`" + ` exists
- For insert-jaif, set AFU_HOME or put insert-annotations-to-source on your PATH`,
		extLinks: []HttpLink{afuLink},
	}

	solutionArtifactMissingIssue = &Issue{
		id: SolutionArtifactMissingId,
		mdMsg: `
# Solution file missing!

Constraint generation finished but did not leave a ` + "`default.jaif`" + ` in the working directory.

## Things you can try:
- Check the checker and solver names
- Run ` + "`cfinfer run --mode infer --log-level DEBUG ...`" + ` and inspect the output`,
	}

	sourceFileMissingIssue = &Issue{
		id: SourceFileMissingId,
		mdMsg: `
# Source file missing!

A step was about to read a source file that no longer exists.
After insert-jaif the pipeline continues on the copies in the output directory.

## Things you can try:
- Make sure nothing else writes to the output directory during a run
- Use ` + "`--in-place`" + ` to annotate the original files instead`,
	}

	harnessFailedIssue = &Issue{
		id: HarnessFailedId,
		mdMsg: `
# Some tests did not pass!

Failed and mismatched files are listed above.

## Things you can try:
- Re-run a single test with output: ` + "`cfinfer test -d -t Name`" + `
- Accept new output as the reference: ` + "`cfinfer test --mode gold-update -t Name`",
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		invalidRunConfigIssue.Id():        invalidRunConfigIssue,
		unknownStepIssue.Id():             unknownStepIssue,
		distributionNotFoundIssue.Id():    distributionNotFoundIssue,
		javaHomeNotSetIssue.Id():          javaHomeNotSetIssue,
		stepFailedIssue.Id():              stepFailedIssue,
		toolNotFoundIssue.Id():            toolNotFoundIssue,
		solutionArtifactMissingIssue.Id(): solutionArtifactMissingIssue,
		sourceFileMissingIssue.Id():       sourceFileMissingIssue,
		harnessFailedIssue.Id():           harnessFailedIssue,
	}
)

// Values returns every catalogued issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
