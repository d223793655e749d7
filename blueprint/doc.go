// Package blueprint compiles declarative layout descriptions into tosc
// documents.
//
// A blueprint is written in YAML or in JSON with comments and trailing
// commas (JSONC). Both forms decode to the same Blueprint value:
//
//	version: "3"
//	root:
//	  type: GROUP
//	  frame: [0, 0, 400, 200]
//	  children:
//	    - type: FADER
//	      name: volume
//	      color: [1, 0, 0, 1]
//	      osc:
//	        - path: ["/", "@name"]
//	          arguments: ["$x"]
//	  grid: {rows: 1, columns: 4, width: 100, height: 200}
//
// # Partials
//
// OSC paths, arguments, MIDI values and local sources accept a string
// shorthand. "$x" reads the value x, "@name" reads the property name,
// "#" reads the control's index (optionally "#2" for an offset) and any
// other string is a constant. A leading backslash escapes the marker, so
// "\$x" is the literal "$x". The mapping form {type, conversion, value,
// min, max} gives full control. In YAML, "#" and "@" must be quoted.
//
// Compilation only goes through the exported tosc builder operations, so
// every capability rule of the schema applies to blueprints too.
package blueprint
