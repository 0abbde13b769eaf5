//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary   = "efs"
	mainPkg  = "./cmd/efs"
	coverOut = "coverage.out"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the efs binary into the repository root
func Build() error {
	fmt.Println("Building", binary+"...")
	return sh.RunV("go", "build", "-o", binary, mainPkg)
}

// Install puts efs on GOBIN
func Install() error {
	return sh.RunV("go", "install", mainPkg)
}

// Test runs the unit tests with the race detector and writes a coverage profile
func Test() error {
	return sh.RunV("go", "test", "-race", "-shuffle=on", "-coverprofile="+coverOut, "./...")
}

// Integration runs the tests that work against the local disk
func Integration() error {
	return sh.RunV("go", "test", "-tags=integration", "-race", "./tests/integration/...")
}

// Cover renders the coverage profile from Test as coverage.html
func Cover() error {
	mg.Deps(Test)
	return sh.RunV("go", "tool", "cover", "-html="+coverOut, "-o", "coverage.html")
}

// Lint runs golangci-lint over every package
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt rewrites the sources with gofmt -s
func Fmt() error {
	return sh.RunV("gofmt", "-s", "-w", ".")
}

// Check formats, lints and tests, stopping at the first failure
func Check() {
	mg.SerialDeps(Fmt, Lint, Test, Integration)
}

// Clean removes the binary and coverage artifacts
func Clean() error {
	for _, artifact := range []string{binary, coverOut, "coverage.html"} {
		if err := sh.Rm(artifact); err != nil {
			return err
		}
	}

	return nil
}
