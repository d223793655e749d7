package tosc

import "slices"

// ============================================================
// Capability Table
// ============================================================

// capability describes what a control type may hold.
type capability struct {
	values     []ValueKey
	properties []Property
	container  bool
	index      map[string]int
}

var (
	capabilities map[ControlType]*capability
	// knownKeys holds every property key some type declares. Keys outside
	// this set are custom properties and are allowed on any control.
	knownKeys map[string]bool
)

func common() []Property {
	return []Property{
		{"name", Str("")},
		{"tag", Str("")},
		{"script", Str("")},
		{"frame", Rect(0, 0, 100, 100)},
		{"color", RGBA(0.25, 0.25, 0.25, 1)},
		{"locked", Bool(false)},
		{"visible", Bool(true)},
		{"interactive", Bool(true)},
		{"background", Bool(true)},
		{"outline", Bool(true)},
		{"outlineStyle", Int(1)},
		{"grabFocus", Bool(true)},
		{"pointerPriority", Int(0)},
		{"cornerRadius", Float(0)},
		{"orientation", Int(0)},
	}
}

func shapeProps() []Property {
	return []Property{{"shape", Int(0)}}
}

func responseProps() []Property {
	return []Property{{"response", Int(0)}, {"responseFactor", Int(100)}}
}

func gridProps() []Property {
	return []Property{{"grid", Bool(true)}, {"gridSteps", Int(10)}}
}

func cursorProps() []Property {
	return []Property{{"cursor", Bool(true)}, {"cursorDisplay", Int(0)}}
}

func lineProps() []Property {
	return []Property{{"lines", Bool(true)}, {"linesDisplay", Int(0)}}
}

func xyProps() []Property {
	return []Property{
		{"lockX", Bool(false)}, {"lockY", Bool(false)},
		{"gridX", Bool(true)}, {"gridY", Bool(true)},
		{"gridStepsX", Int(10)}, {"gridStepsY", Int(10)},
	}
}

func textProps() []Property {
	return []Property{
		{"font", Int(0)},
		{"textSize", Int(14)},
		{"textColor", RGBA(1, 1, 1, 1)},
		{"textAlignH", Int(2)},
	}
}

// define merges property groups onto the common set. A later group
// overrides the default of a key declared earlier.
func define(values []ValueKey, container bool, groups ...[]Property) *capability {
	c := &capability{values: values, container: container, index: map[string]int{}}
	for _, g := range append([][]Property{common()}, groups...) {
		for _, p := range g {
			if i, ok := c.index[p.Key]; ok {
				c.properties[i] = p
				continue
			}
			c.index[p.Key] = len(c.properties)
			c.properties = append(c.properties, p)
		}
	}
	return c
}

func init() {
	xt := []ValueKey{ValueX, ValueTouch}
	xyt := []ValueKey{ValueX, ValueY, ValueTouch}
	tt := []ValueKey{ValueText, ValueTouch}
	touch := []ValueKey{ValueTouch}
	noOutline := []Property{{"outlineStyle", Int(0)}}
	noFocus := []Property{{"grabFocus", Bool(false)}}

	capabilities = map[ControlType]*capability{
		TypeBox: define(touch, false, shapeProps()),
		TypeButton: define(xt, false, shapeProps(), []Property{
			{"buttonType", Int(0)}, {"press", Bool(true)}, {"release", Bool(true)}, {"valuePosition", Bool(false)},
		}),
		TypeLabel: define(tt, false, textProps(), []Property{
			{"textLength", Int(0)}, {"textClip", Bool(true)},
		}),
		TypeText:    define(tt, false, textProps()),
		TypeFader:   define(xt, false, responseProps(), gridProps(), cursorProps(), []Property{{"bar", Bool(true)}, {"barDisplay", Int(0)}}),
		TypeXY:      define(xyt, false, responseProps(), cursorProps(), xyProps()),
		TypeRadial:  define(xt, false, responseProps(), gridProps(), cursorProps(), noOutline, []Property{{"inverted", Bool(false)}, {"centered", Bool(false)}}),
		TypeEncoder: define(xt, false, responseProps(), gridProps(), noOutline),
		TypeRadar:   define(xyt, false, cursorProps(), lineProps(), xyProps()),
		TypeRadio:   define(xt, false, []Property{{"steps", Int(5)}, {"radioType", Int(0)}}),
		TypeGroup:   define(touch, true, noOutline, noFocus),
		TypePager: define([]ValueKey{ValuePage, ValueTouch}, true, noOutline, noFocus, []Property{
			{"tabLabels", Bool(true)}, {"tabbar", Bool(true)}, {"tabbarDoubleTap", Bool(false)},
			{"tabbarSize", Int(40)}, {"textSizeOff", Int(14)}, {"textSizeOn", Int(14)},
		}),
		TypePage: define(touch, true, []Property{
			{"tabColorOff", RGBA(0.25, 0.25, 0.25, 1)}, {"tabColorOn", RGBA(0, 0, 0, 0)},
			{"tabLabel", Str("1")},
			{"textColorOff", RGBA(1, 1, 1, 1)}, {"textColorOn", RGBA(1, 1, 1, 1)},
		}),
		TypeGrid: define(touch, true, noFocus, []Property{
			{"exclusive", Bool(false)}, {"gridNaming", Int(0)}, {"gridOrder", Int(0)},
			{"gridStart", Int(0)}, {"gridType", Int(4)}, {"gridX", Int(2)}, {"gridY", Int(2)},
		}),
	}

	knownKeys = map[string]bool{}
	for _, c := range capabilities {
		for _, p := range c.properties {
			knownKeys[p.Key] = true
		}
	}
}

// ============================================================
// Queries
// ============================================================

// Container reports whether controls of type t may have children.
func (t ControlType) Container() bool {
	c, ok := capabilities[t]
	return ok && c.container
}

// PermitsValue reports whether t supports the value key k.
func (t ControlType) PermitsValue(k ValueKey) bool {
	c, ok := capabilities[t]
	return ok && slices.Contains(c.values, k)
}

// PermitsProperty reports whether a property key may be set on t. Keys
// that no type declares are custom properties and always permitted on
// known types.
func (t ControlType) PermitsProperty(key string) bool {
	c, ok := capabilities[t]
	if !ok {
		return false
	}
	if _, ok := c.index[key]; ok {
		return true
	}
	return !knownKeys[key]
}

// PropertyType returns the declared type of key on t. The boolean is
// false for custom keys and unknown types.
func (t ControlType) PropertyType(key string) (PropertyType, bool) {
	c, ok := capabilities[t]
	if !ok {
		return "", false
	}
	i, ok := c.index[key]
	if !ok {
		return "", false
	}
	return c.properties[i].Value.Type(), true
}

// ValueKeys returns the value keys t supports, in default order.
func (t ControlType) ValueKeys() []ValueKey {
	c, ok := capabilities[t]
	if !ok {
		return nil
	}
	return slices.Clone(c.values)
}

// DefaultProperties returns a fresh copy of the default property set.
func (t ControlType) DefaultProperties() []Property {
	c, ok := capabilities[t]
	if !ok {
		return nil
	}
	return slices.Clone(c.properties)
}

// DefaultValue returns the default of property key on t.
func (t ControlType) DefaultValue(key string) (Datum, bool) {
	c, ok := capabilities[t]
	if !ok {
		return Datum{}, false
	}
	i, ok := c.index[key]
	if !ok {
		return Datum{}, false
	}
	return c.properties[i].Value, true
}
