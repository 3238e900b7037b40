// Package schema validates settings documents against a declared shape.
//
// Shapes are built from nodes:
//
//	imageSchema := schema.Object(
//		schema.F("disableResize", schema.Bool()),
//		schema.F("resolution", schema.Object(
//			schema.F("width", schema.Integer().Min(1)),
//			schema.F("height", schema.Integer().Min(1)),
//		)),
//	)
//	s := schema.New[ImageSettings](imageSchema)
//	typed, err := s.Parse(doc)
//
// Objects drop keys they do not declare unless a catch-all is set. The
// loose [Versioned] schema only requires a string "version" and accepts any
// JSON for the rest; the store applies it to everything it reads or writes
// and applies the application's strict schema on top.
package schema
