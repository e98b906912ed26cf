// Package sniff classifies file content as text or binary from a bounded
// prefix, to pick the matching FTP transfer type.
package sniff

import (
	"github.com/gabriel-vasile/mimetype"
)

// PrefixLen is how many leading bytes Classify needs at most.
const PrefixLen = 3072

// Kind is the detected content class.
type Kind int

const (
	Binary Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "binary"
}

// Classify inspects a prefix of a file's bytes. Pure function: same prefix,
// same answer. Anything that is not detected as a text type is binary.
func Classify(prefix []byte) Kind {
	for m := mimetype.Detect(prefix); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return Text
		}
	}
	return Binary
}
