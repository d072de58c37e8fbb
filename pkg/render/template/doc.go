// Package template defines the engine contract used to execute artifact
// templates. The gotemplate subpackage implements it on top of pongo2.
package template
