package sanitize

import (
	"strings"
	"testing"
)

const cleanBody = "The community garden project has transformed an abandoned lot into a thriving green space.\n\nVolunteers planted over two hundred native species last spring, and the results speak for themselves."

func TestCleanStripsReaderPreamble(t *testing.T) {
	raw := "Title: Some Article\nURL Source: https://example.com\nMarkdown Content:\n" + cleanBody

	got := Clean(raw)
	if strings.Contains(got, "URL Source") {
		t.Error("expected preamble before marker to be removed")
	}
	if !strings.Contains(got, "community garden project") {
		t.Error("expected body to survive")
	}
}

func TestCleanRemovesBoilerplateLines(t *testing.T) {
	raw := strings.Join([]string{
		"Skip to main content",
		"Menu",
		"Sign in to continue reading",
		"Subscribe to our daily newsletter",
		cleanBody,
		"Image 3: A volunteer watering plants",
		"[Read more](https://example.com/more)",
		"- [Related story](https://example.com/related)",
	}, "\n")

	got := Clean(raw)

	for _, banned := range []string{
		"Skip to", "Sign in", "Subscribe", "Image 3", "Read more", "Related story",
	} {
		if strings.Contains(got, banned) {
			t.Errorf("expected %q to be removed, got:\n%s", banned, got)
		}
	}
	if !strings.Contains(got, "native species") {
		t.Error("expected article text to survive")
	}
}

func TestCleanRemovesLiteralBoilerplate(t *testing.T) {
	raw := cleanBody + "\n\nSupport the Guardian\nThe Guardian - Back to home"

	got := Clean(raw)
	if strings.Contains(got, "Support the Guardian") || strings.Contains(got, "Back to home") {
		t.Errorf("expected Guardian chrome removed, got:\n%s", got)
	}
}

func TestCleanCollapsesBlankLines(t *testing.T) {
	raw := cleanBody + "\n\n\n\n\nAnd the neighbors agree the change has been remarkable for everyone involved."

	got := Clean(raw)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("expected blank-line runs collapsed, got:\n%q", got)
	}
	if !strings.Contains(got, "\n\n") {
		t.Error("expected a single blank line to remain")
	}
}

func TestCleanRelocatesStart(t *testing.T) {
	raw := strings.Join([]string{
		"News",
		"Home",
		"World in brief",
		"Scientists announced a breakthrough in battery recycling that could cut lithium waste in half.",
		"The process was developed over three years of trials.",
	}, "\n")

	got := Clean(raw)
	if strings.Contains(got, "World in brief") || strings.Contains(got, "Home") {
		t.Errorf("expected short nav lines before the body to be dropped, got:\n%s", got)
	}
	if !strings.HasPrefix(got, "Scientists announced") {
		t.Errorf("expected body to start at first substantial line, got:\n%s", got)
	}
}

func TestCleanSkipsNavLabelLinesWhenRelocating(t *testing.T) {
	navLong := "Sport News Opinion Culture Lifestyle and much more from our network of sites"
	body := "Researchers restored the wetland over a decade of patient and sustained work on site."
	raw := navLong + "\n" + body

	got := Clean(raw)
	if strings.HasPrefix(got, "Sport") {
		t.Errorf("expected relocation to skip nav-label line, got:\n%s", got)
	}
	if !strings.Contains(got, "Researchers restored") {
		t.Error("expected body to survive")
	}
}

func TestCleanIdempotentOnCleanText(t *testing.T) {
	once := Clean(cleanBody)
	twice := Clean(once)
	if once != twice {
		t.Errorf("Clean is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
	if once != cleanBody {
		t.Errorf("expected clean text unchanged, got:\n%q", once)
	}
}

func TestCleanEmptyAndUnmatchedInput(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("expected empty output for empty input, got %q", got)
	}

	noise := "short line\nanother short line"
	if got := Clean(noise); got != noise {
		t.Errorf("expected unmatched text unchanged, got %q", got)
	}
}
