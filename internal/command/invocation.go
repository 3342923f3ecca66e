// SPDX-License-Identifier: MPL-2.0

package command

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Invocation is a fully resolved child process: what to run, with which
// arguments, extra environment and working directory.
type Invocation struct {
	// Path is the executable, absolute or looked up on PATH.
	Path string
	// Args excludes Path.
	Args []string
	// Env holds KEY=VALUE entries that override the inherited environment.
	Env []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Argv returns Path followed by Args.
func (i Invocation) Argv() []string {
	return append([]string{i.Path}, i.Args...)
}

// String renders the invocation as a single shell line that can be pasted
// into bash, with the environment overrides as a prefix.
func (i Invocation) String() string {
	words := make([]string, 0, len(i.Env)+len(i.Args)+1)
	for _, kv := range i.Env {
		key, value, _ := strings.Cut(kv, "=")
		words = append(words, key+"="+quote(value))
	}
	for _, arg := range i.Argv() {
		words = append(words, quote(arg))
	}
	return strings.Join(words, " ")
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only strings bash cannot represent at all (e.g. NUL bytes) end up here.
		return strconv.Quote(s)
	}
	return q
}
