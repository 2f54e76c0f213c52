package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observe.yaml")
	if err := os.WriteFile(path, []byte("strict: true\nmaxEffectRunCount: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := run(&buf, path); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"strict: true\n",
		"maxEffectRunCount: 5\n",
		"converters: currency, json, lower, number, percent, upper\n",
		"behaviors: oneTime, signal, throttle\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	if err := run(&buf, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("want an error for a missing config")
	}
}
