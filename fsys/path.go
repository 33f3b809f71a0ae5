package fsys

import (
	"strings"

	fserrors "github.com/PatSmuk/cheekyfs/errors"
)

// splitPath tokenizes an absolute path into validated components (spec.md
// §4.1). The rules, applied in order:
//
//   - "" is ErrInvalidPath.
//   - A path not starting with '/' is ErrInvalidPath.
//   - "/" alone yields an empty component slice (it names the root).
//   - A trailing '/' on any other path is ErrInvalidPath.
//   - Any component — including an empty one produced by "//" — longer than
//     MaxPathComponentLength is ErrInvalidName; a zero-length one is
//     ErrInvalidPath (spec.md §9, "Tokenizer corner cases": the reference
//     implementation leaves "//" undefined, cheekyfs rejects it).
//   - "." and ".." are ordinary names with no special meaning.
func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fserrors.ErrInvalidPath.WithMessage("path is empty")
	}
	if path[0] != '/' {
		return nil, fserrors.ErrInvalidPath.WithMessage("path must start with '/'")
	}
	if path == "/" {
		return []string{}, nil
	}
	if strings.HasSuffix(path, "/") {
		return nil, fserrors.ErrInvalidPath.WithMessage("path must not end with '/'")
	}

	components := strings.Split(path[1:], "/")
	for _, c := range components {
		if c == "" {
			return nil, fserrors.ErrInvalidPath.WithMessage("empty path component (\"//\")")
		}
		if len(c) > MaxPathComponentLength {
			return nil, fserrors.ErrInvalidName.WithMessage(
				"component \"" + c + "\" exceeds max length")
		}
	}
	return components, nil
}
