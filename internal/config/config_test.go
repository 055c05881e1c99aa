package config

import (
	"testing"
	"time"
)

func TestParseRequiresExactlyOnePositional(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for zero positional arguments")
	}
	if _, err := Parse([]string{"a.dex", "b.dex"}); err == nil {
		t.Fatal("expected error for two positional arguments")
	}
}

func TestParseDefaultsOutToInput(t *testing.T) {
	opts, err := Parse([]string{"a.dex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Out != "a.dex" {
		t.Fatalf("expected Out to default to Input, got %q", opts.Out)
	}
}

func TestParseAcceptsSpaceAndEqualsForms(t *testing.T) {
	opts, err := Parse([]string{"--out", "out.dex", "--max-call-depth=7", "a.dex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Out != "out.dex" {
		t.Fatalf("expected --out value space-form, got %q", opts.Out)
	}
	if opts.Bounds.MaxCallDepth != 7 {
		t.Fatalf("expected --max-call-depth=7 equals-form, got %d", opts.Bounds.MaxCallDepth)
	}
}

func TestParseVerboseBareVersusExplicit(t *testing.T) {
	opts, err := Parse([]string{"--verbose", "a.dex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Verbose != 1 {
		t.Fatalf("expected bare --verbose to mean level 1, got %d", opts.Verbose)
	}

	opts, err = Parse([]string{"--verbose=3", "a.dex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Verbose != 3 {
		t.Fatalf("expected --verbose=3, got %d", opts.Verbose)
	}
}

func TestParseRejectsVerboseOutOfRange(t *testing.T) {
	if _, err := Parse([]string{"--verbose=4", "a.dex"}); err == nil {
		t.Fatal("expected error for --verbose=4")
	}
	if _, err := Parse([]string{"--verbose=0", "a.dex"}); err == nil {
		t.Fatal("expected error for --verbose=0")
	}
}

func TestParseMissingValueErrors(t *testing.T) {
	if _, err := Parse([]string{"a.dex", "--out"}); err == nil {
		t.Fatal("expected error when --out has no following value")
	}
}

func TestParseRejectsInvalidRegexFilters(t *testing.T) {
	if _, err := Parse([]string{"--include-filter=(unterminated", "a.dex"}); err == nil {
		t.Fatal("expected error for an invalid --include-filter regexp")
	}
	if _, err := Parse([]string{"--exclude-filter=(unterminated", "a.dex"}); err == nil {
		t.Fatal("expected error for an invalid --exclude-filter regexp")
	}
}

func TestParseRejectsNonIntegerBound(t *testing.T) {
	if _, err := Parse([]string{"--max-address-visits=nope", "a.dex"}); err == nil {
		t.Fatal("expected error for a non-integer bound value")
	}
}

func TestParseMaxExecutionTimeIsSeconds(t *testing.T) {
	opts, err := Parse([]string{"--max-execution-time=5", "a.dex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Bounds.MaxExecutionTime != 5*time.Second {
		t.Fatalf("expected 5s, got %v", opts.Bounds.MaxExecutionTime)
	}
}

func TestParseRejectsUnrecognizedOption(t *testing.T) {
	if _, err := Parse([]string{"--not-a-real-flag", "a.dex"}); err == nil {
		t.Fatal("expected error for an unrecognized option")
	}
}

func TestParseHelpSkipsPositionalRequirement(t *testing.T) {
	opts, err := Parse([]string{"--help"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.Help {
		t.Fatal("expected Help to be set")
	}
}

func TestPolicyIsSafeMethodDelegatesToEngineRegistry(t *testing.T) {
	p := NewPolicy(DefaultOptions(), nil)
	if !p.IsSafeMethod("Ljava/lang/Math;->abs(I)I") {
		t.Fatal("expected a known safelib signature to be reported safe")
	}
	if p.IsSafeMethod("Lcom/app/A;->mystery()V") {
		t.Fatal("expected an unregistered signature to be reported unsafe")
	}
}

func TestPolicyIsFrameworkClassPrefixMatching(t *testing.T) {
	p := NewPolicy(DefaultOptions(), nil)
	for _, name := range []string{"Ljava/util/List;", "Landroid/app/Activity;", "Ldalvik/system/VMStack;"} {
		if !p.IsFrameworkClass(name) {
			t.Fatalf("expected %s to be reported framework", name)
		}
	}
	if p.IsFrameworkClass("Lcom/app/A;") {
		t.Fatal("expected an application class not to be reported framework")
	}
}

func TestPolicySupportLibraryGateDefaultsToSkipped(t *testing.T) {
	p := NewPolicy(DefaultOptions(), nil)
	if !p.IsFrameworkClass("Landroid/support/v4/app/Fragment;") {
		t.Fatal("expected android.support classes to be treated as framework by default")
	}

	opts := DefaultOptions()
	opts.IncludeSupportLibrary = true
	p2 := NewPolicy(opts, nil)
	if p2.IsFrameworkClass("Landroid/support/v4/app/Fragment;") {
		t.Fatal("expected --include-support-library to stop treating it as framework")
	}
}

func TestPolicyIsLocalClassMapLookup(t *testing.T) {
	p := NewPolicy(DefaultOptions(), map[string]bool{"Lcom/app/A;": true})
	if !p.IsLocalClass("Lcom/app/A;") {
		t.Fatal("expected Lcom/app/A; to be local")
	}
	if p.IsLocalClass("Lcom/app/B;") {
		t.Fatal("expected Lcom/app/B; to not be local")
	}
}
