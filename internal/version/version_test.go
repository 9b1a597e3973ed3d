package version

import "testing"

func TestStringUsesLdflags(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	Version, Commit = "v1.2.0", "0123456789abcdef0123"
	if got := String(); got != "v1.2.0 (0123456789ab)" {
		t.Fatalf("unexpected version string %q", got)
	}
	Commit = "abc"
	if got := String(); got != "v1.2.0 (abc)" {
		t.Fatalf("unexpected version string %q", got)
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	oldV := Version
	t.Cleanup(func() { Version = oldV })
	Version = ""
	if Resolve().Version == "" {
		t.Fatal("expected a fallback version")
	}
}
