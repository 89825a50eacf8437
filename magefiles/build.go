//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the matconv binary into ./bin.
func (Build) Cli() error {
	if err := os.MkdirAll("bin", 0755); err != nil {
		return err
	}
	output := filepath.Join("bin", "matconv"+exeSuffix())
	if _, err := executeCmd("go", withArgs("build", "-o", output, "./cmd/matconv"), withStream()); err != nil {
		return err
	}
	return nil
}

// Downloads modules and runs go mod tidy.
func (Build) Deps() error {
	if _, err := executeCmd("go", withArgs("mod", "download")); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}
