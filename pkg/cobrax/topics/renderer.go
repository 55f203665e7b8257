package topics

// Renderer formats topic content for the terminal. format is the topic's
// file extension, e.g. ".md".
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
