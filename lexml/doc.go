// Package lexml implements the generic element tree that sits under the
// TouchOSC layout format.
//
// A layout file is a compressed markup document whose root element is
// <lexml>. This package knows nothing about controls or properties: it
// only turns bytes into an ordered tree of Nodes and back.
//
// # Parsing
//
//	root, err := lexml.Parse(data)
//	node := root.Child("node")
//
// # Emitting
//
// Emit produces compact, deterministic markup: attributes keep their
// stored order, no indentation is inserted and leaf text is written
// verbatim with minimal escaping. EmitIndent is for humans.
package lexml
