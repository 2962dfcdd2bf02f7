// Package measure provides font-size-aware measurement of entity labels and
// column lists for the layout engine.
package measure

import "github.com/rivo/uniseg"

// Column is the minimal (name, type) pair the metrics need to size a row.
type Column struct {
	Name string
	Type string
}

// TextMetrics is a configured text-measurement oracle. The zero value is not
// usable; construct with DefaultMetrics.
type TextMetrics struct {
	CharWidth     float64
	LineHeight    float64
	PaddingX      float64
	PaddingY      float64
	HeaderPadding float64
	MinNodeWidth  float64
	MinNodeHeight float64
}

// DefaultMetrics returns the engine's reference measurement configuration.
func DefaultMetrics() TextMetrics {
	return TextMetrics{
		CharWidth:     8.0,
		LineHeight:    20.0,
		PaddingX:      12.0,
		PaddingY:      8.0,
		HeaderPadding: 4.0,
		MinNodeWidth:  100.0,
		MinNodeHeight: 60.0,
	}
}

// TextWidth measures s in pixels, treating East-Asian full-width and wide
// characters as occupying two character cells.
func (m TextMetrics) TextWidth(s string) float64 {
	return float64(uniseg.StringWidth(s)) * m.CharWidth
}

// NodeSize returns the content width/height of an entity box given its label
// and column rows, before any anchor-width inflation (see pkg/layout).
func (m TextMetrics) NodeSize(label string, columns []Column) (width, height float64) {
	headerWidth := m.TextWidth(label)

	maxColWidth := 0.0
	for _, c := range columns {
		w := m.TextWidth(c.Name) + m.TextWidth(c.Type) + m.CharWidth*2.0
		if w > maxColWidth {
			maxColWidth = w
		}
	}

	contentWidth := headerWidth
	if maxColWidth > contentWidth {
		contentWidth = maxColWidth
	}
	contentWidth += m.PaddingX * 2.0

	width = contentWidth
	if width < m.MinNodeWidth {
		width = m.MinNodeWidth
	}

	headerHeight := m.LineHeight + m.HeaderPadding*2.0
	bodyHeight := 0.0
	if len(columns) > 0 {
		bodyHeight = float64(len(columns))*m.LineHeight + m.PaddingY*2.0
	}

	height = headerHeight + bodyHeight
	if height < m.MinNodeHeight {
		height = m.MinNodeHeight
	}

	return width, height
}
