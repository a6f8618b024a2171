// Package conv provides bounds-checked integer conversions for values read
// from or written to persisted snapshot headers.
package conv
