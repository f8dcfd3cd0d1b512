// Package sourcetree locates files and build outputs within a source checkout.
package sourcetree
