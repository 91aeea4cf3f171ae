// Package lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains shared formatting utilities used by the CLI.
package lib
