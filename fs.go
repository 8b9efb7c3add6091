package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// RingFS is an Afero FS that can also resolve paths the way the OS
// would, so config and storage tests can run on memory.
type RingFS interface {
	afero.Fs
	Abs(string) (string, error)
	HomeDir() (string, error)
}

type ringOSFS struct {
	afero.Fs
}

func NewRingOSFS() RingFS {
	return &ringOSFS{
		afero.NewOsFs(),
	}
}

func (g *ringOSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (g *ringOSFS) HomeDir() (string, error) {
	return os.UserHomeDir()
}

type ringMemFS struct {
	afero.Fs
}

func NewRingMemFS() RingFS {
	return &ringMemFS{
		afero.NewMemMapFs(),
	}
}

// Abs treats "/" as the working directory.
func (g *ringMemFS) Abs(path string) (string, error) {
	return filepath.Join("/", path), nil
}

func (g *ringMemFS) HomeDir() (string, error) {
	return "/home", nil
}
