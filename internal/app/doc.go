// Package app wires the stores and managers the CLI needs.
package app
