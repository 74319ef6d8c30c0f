// Package tests drives the built telepathy CLI end to end via testscript,
// one .txt script per named scenario under testdata/.
package tests

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"telepathy/internal/climain"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"telepathy": func() int { return climain.Main(os.Args[1:]) },
	}))
}

func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
	})
}
