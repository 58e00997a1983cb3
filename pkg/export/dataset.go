package export

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Renderer turns a Dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}
