// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

var allIds = []Id{
	ConfigLoadFailedId,
	InvalidRunConfigId,
	UnknownStepId,
	DistributionNotFoundId,
	JavaHomeNotSetId,
	StepFailedId,
	ToolNotFoundId,
	SolutionArtifactMissingId,
	SourceFileMissingId,
	HarnessFailedId,
}

func TestIssuesMapCompleteness(t *testing.T) {
	t.Parallel()

	for i, id := range allIds {
		if id != Id(i+1) {
			t.Errorf("id %d at position %d, want sequential ids from 1", id, i)
		}
		issue := Get(id)
		if issue == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if issue.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, issue.Id())
		}
	}
	if got := len(Values()); got != len(allIds) {
		t.Errorf("len(Values()) = %d, want %d", got, len(allIds))
	}
	if Get(Id(999)) != nil {
		t.Error("Get() of an unknown id should be nil")
	}
}

func TestValuesOrderedById(t *testing.T) {
	t.Parallel()

	values := Values()
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Fatalf("Values() not ordered: %d before %d", values[i-1].Id(), values[i].Id())
		}
	}
}

func TestIssue_Links(t *testing.T) {
	t.Parallel()

	issue := Get(DistributionNotFoundId)
	links := issue.DocLinks()
	if len(links) == 0 {
		t.Fatal("DistributionNotFound should link the checker framework manual")
	}
	links[0] = "mutated"
	if issue.DocLinks()[0] == "mutated" {
		t.Error("DocLinks() should return a copy")
	}
	if len(Get(ToolNotFoundId).ExtLinks()) == 0 {
		t.Error("ToolNotFound should link the annotation file utilities")
	}
}

// Not parallel: replaces the package-level renderer.
func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	for _, issue := range Values() {
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", issue.Id())
		}
		rendered, err := issue.Render("dark")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
		if !strings.HasPrefix(strings.TrimSpace(rendered), "#") {
			t.Errorf("issue %d should start with a heading", issue.Id())
		}
		if len(issue.DocLinks())+len(issue.ExtLinks()) > 0 && !strings.Contains(rendered, "See also") {
			t.Errorf("issue %d has links but no See also section", issue.Id())
		}
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
}
