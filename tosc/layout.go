package tosc

import "fmt"

// ArrangeChildren overwrites the frame of every child of parent with a
// cell of a rows x columns grid, filled row-major:
//
//	x = i%columns * (width+gapX)
//	y = i/columns * (height+gapY)
//
// Prior frames are never read. It fails without changing anything when
// the children do not fit a positive grid or a computed frame is not
// finite.
func ArrangeChildren(parent *Control, rows, columns int, width, height, gapX, gapY float64) error {
	if rows <= 0 || columns <= 0 {
		return fmt.Errorf("tosc: grid %dx%d must have positive rows and columns", rows, columns)
	}
	if n := len(parent.children); n > rows*columns {
		return fmt.Errorf("tosc: %d children do not fit a %dx%d grid", n, rows, columns)
	}
	for _, c := range parent.children {
		if err := c.mutable("arrange"); err != nil {
			return err
		}
	}
	frames := make([]Datum, len(parent.children))
	for i, c := range parent.children {
		x := float64(i%columns) * (width + gapX)
		y := float64(i/columns) * (height + gapY)
		frames[i] = Rect(x, y, width, height)
		if err := frames[i].check(); err != nil {
			return &SchemaError{Kind: KindInvalidPropertyValue, Path: c.Path(), Detail: `property "frame"`, Err: err}
		}
	}
	for i, c := range parent.children {
		if err := c.SetProperty("frame", frames[i]); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// Generated Layouts
// ============================================================

// Gradient returns n colours interpolated linearly from one colour to
// another, both ends included.
func Gradient(from, to Color, n int) []Color {
	if n <= 0 {
		return nil
	}
	out := make([]Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = Color{
			R: from.R + (to.R-from.R)*t,
			G: from.G + (to.G-from.G)*t,
			B: from.B + (to.B-from.B)*t,
			A: from.A + (to.A-from.A)*t,
		}
	}
	return out
}

// cell is a generated child's frame and colour.
type cell struct {
	Frame Frame
	Color Color
}

// LayoutRow fills parent with len(ratios) new controls of type t placed
// side by side. Widths follow the ratios and heights match the parent.
// Colours run from one end of the gradient to the other.
func LayoutRow(parent *Control, t ControlType, ratios []float64, from, to Color) ([]*Control, error) {
	pf, err := layoutFrame(parent, ratios)
	if err != nil {
		return nil, err
	}
	widths := split(pf.W, ratios)
	colors := Gradient(from, to, len(ratios))
	cells := make([]cell, len(ratios))
	x := 0.0
	for i, w := range widths {
		cells[i] = cell{Frame: Frame{X: x, Y: 0, W: w, H: pf.H}, Color: colors[i]}
		x += w
	}
	return fill(parent, t, cells)
}

// LayoutColumn is LayoutRow stacked vertically.
func LayoutColumn(parent *Control, t ControlType, ratios []float64, from, to Color) ([]*Control, error) {
	pf, err := layoutFrame(parent, ratios)
	if err != nil {
		return nil, err
	}
	heights := split(pf.H, ratios)
	colors := Gradient(from, to, len(ratios))
	cells := make([]cell, len(ratios))
	y := 0.0
	for i, h := range heights {
		cells[i] = cell{Frame: Frame{X: 0, Y: y, W: pf.W, H: h}, Color: colors[i]}
		y += h
	}
	return fill(parent, t, cells)
}

// LayoutGrid fills parent with columns x rows new controls of equal size,
// row-major, coloured along one sequential gradient.
func LayoutGrid(parent *Control, t ControlType, columns, rows int, from, to Color) ([]*Control, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("tosc: grid %dx%d must have positive rows and columns", columns, rows)
	}
	pf, ok := parent.Frame()
	if !ok {
		return nil, schemaErr(KindMissingCapability, parent.Path(), "layout parent has no frame")
	}
	w, h := pf.W/float64(columns), pf.H/float64(rows)
	colors := Gradient(from, to, columns*rows)
	cells := make([]cell, 0, columns*rows)
	for i := range columns * rows {
		cells = append(cells, cell{
			Frame: Frame{X: float64(i%columns) * w, Y: float64(i/columns) * h, W: w, H: h},
			Color: colors[i],
		})
	}
	return fill(parent, t, cells)
}

func layoutFrame(parent *Control, ratios []float64) (Frame, error) {
	if len(ratios) == 0 {
		return Frame{}, fmt.Errorf("tosc: layout needs at least one ratio")
	}
	for _, r := range ratios {
		if r <= 0 {
			return Frame{}, fmt.Errorf("tosc: layout ratio %v must be positive", r)
		}
	}
	pf, ok := parent.Frame()
	if !ok {
		return Frame{}, schemaErr(KindMissingCapability, parent.Path(), "layout parent has no frame")
	}
	return pf, nil
}

func split(length float64, ratios []float64) []float64 {
	total := 0.0
	for _, r := range ratios {
		total += r
	}
	out := make([]float64, len(ratios))
	for i, r := range ratios {
		out[i] = length * r / total
	}
	return out
}

// fill creates one child per cell. The parent is checked up front, so a
// failure leaves it untouched.
func fill(parent *Control, t ControlType, cells []cell) ([]*Control, error) {
	if err := parent.mutable("layout"); err != nil {
		return nil, err
	}
	if !parent.typ.Container() {
		return nil, &CapabilityError{Type: parent.typ, Op: "layout", Path: parent.Path()}
	}
	for _, cell := range cells {
		if !cell.Color.Valid() {
			return nil, schemaErr(KindInvalidPropertyValue, parent.Path(), "layout colour %v outside [0,1]", cell.Color)
		}
	}
	built := make([]*Control, 0, len(cells))
	for _, cell := range cells {
		c, err := NewControl(t)
		if err != nil {
			return nil, err
		}
		c.properties[c.propertyIndex("frame")].Value = FrameValue(cell.Frame)
		c.properties[c.propertyIndex("color")].Value = ColorValue(cell.Color)
		built = append(built, c)
	}
	for _, c := range built {
		c.parent = parent
		parent.children = append(parent.children, c)
	}
	return built, nil
}
