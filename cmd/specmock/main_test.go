package main

import (
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain installs the CLI as the "specmock" command for scripts.
func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"specmock": main,
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:                 "testdata/script",
		RequireExplicitExec: true,
	})
}
