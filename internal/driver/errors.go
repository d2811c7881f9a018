package driver

import "fmt"

// UnsupportedExtensionError is a user error (spec.md §6, exit code 1):
// the input path does not end in ".c".
type UnsupportedExtensionError struct {
	Path string
}

func (e UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("unsupported file extension: %q (expected .c)", e.Path)
}

// ExternalToolError wraps a non-zero exit from the preprocessor,
// assembler, or linker (spec.md §6, exit code 3).
type ExternalToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e ExternalToolError) Error() string {
	return fmt.Sprintf("%s failed: %v\n%s", e.Tool, e.Err, e.Output)
}

func (e ExternalToolError) Unwrap() error {
	return e.Err
}
