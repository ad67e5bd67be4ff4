package projects

import (
	"fmt"
	"strings"
)

// Compression selects how a document is stored on disk.
type Compression int

const (
	// Compressed stores the document as a zip archive holding the primary
	// member and any attachments.
	Compressed Compression = iota
	// Uncompressed writes the encoded document straight to its path.
	Uncompressed
)

// Valid reports whether c is one of the defined modes.
func (c Compression) Valid() bool {
	return c == Compressed || c == Uncompressed
}

func (c Compression) String() string {
	switch c {
	case Compressed:
		return "compressed"
	case Uncompressed:
		return "uncompressed"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// Description returns the label shown to users.
func (c Compression) Description() string {
	switch c {
	case Compressed:
		return "Compressed"
	case Uncompressed:
		return "Not Compressed"
	default:
		return c.String()
	}
}

// ParseCompression parses the names produced by String, case-insensitively.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compressed":
		return Compressed, nil
	case "uncompressed", "not compressed":
		return Uncompressed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCompression, s)
	}
}

// CreationMethod records how a document came into existence.
type CreationMethod int

const (
	// Instantiated documents were created in memory with New.
	Instantiated CreationMethod = iota
	// Deserialized documents were read from disk with Open.
	Deserialized
)

func (m CreationMethod) String() string {
	switch m {
	case Instantiated:
		return "instantiated"
	case Deserialized:
		return "deserialized"
	default:
		return fmt.Sprintf("CreationMethod(%d)", int(m))
	}
}
