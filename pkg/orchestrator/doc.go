// Package orchestrator drives one generation pass: it builds the template
// views from a validated application, computes the artifact plan, and renders,
// formats and writes every artifact in plan order before recording the IR
// snapshot next to the tree.
package orchestrator
