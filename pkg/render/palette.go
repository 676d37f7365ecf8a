package render

import "strings"

var palette = map[string]string{
	"yellow": "bg-yellow-400",
	"red":    "bg-red-500",
	"green":  "bg-green-500",
	"blue":   "bg-blue-500",
	"orange": "bg-orange-500",
	"purple": "bg-purple-500",
	"pink":   "bg-pink-500",
	"brown":  "bg-amber-700",
}

// FallbackClass is used for colors outside the palette.
const FallbackClass = "bg-gray-500"

// ColorClass maps a card color to its CSS background class.
func ColorClass(color string) string {
	if class, ok := palette[strings.ToLower(strings.TrimSpace(color))]; ok {
		return class
	}
	return FallbackClass
}
