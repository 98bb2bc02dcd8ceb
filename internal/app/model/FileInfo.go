package model

// InputSpec is the validated description of the file handed to the CLI.
// It is built once by the format resolver and not modified afterwards.
type InputSpec struct {
	Path           string
	Extension      string // lowercase, with leading dot
	ResolvedFormat string // canonical decoder format name
}
