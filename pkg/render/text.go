package render

import (
	"bytes"
	"encoding/xml"
)

const (
	fontSize      = 14.0
	smallFontSize = 11.0
	charWidth     = 0.55
	rowHeight     = 18.0
	padding       = 10.0
)

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// truncate shortens s so it fits width pixels at size.
func truncate(s string, width, size float64) string {
	maxChars := max(3, int(width/(size*charWidth)))
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars-2]) + ".."
}
