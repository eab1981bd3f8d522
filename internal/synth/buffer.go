package synth

// Buffer holds the authoritative script text and the text currently on display.
// Outside a synthesis the two are equal. Callers outside this package may only
// replace both at once with SetAuthoritative; preview-only writes and commits
// belong to the Controller.
type Buffer struct {
	authoritative string
	preview       string
}

// NewBuffer returns a coherent buffer holding text.
func NewBuffer(text string) *Buffer {
	return &Buffer{authoritative: text, preview: text}
}

// SetAuthoritative replaces the script as a direct user edit. The preview follows.
func (b *Buffer) SetAuthoritative(text string) {
	b.authoritative = text
	b.preview = text
}

// Authoritative returns the committed script.
func (b *Buffer) Authoritative() string { return b.authoritative }

// Preview returns the displayed, possibly partial, script.
func (b *Buffer) Preview() string { return b.preview }

// Coherent reports whether the preview equals the authoritative text.
func (b *Buffer) Coherent() bool { return b.authoritative == b.preview }

func (b *Buffer) setPreview(text string) { b.preview = text }

func (b *Buffer) restorePreview() { b.preview = b.authoritative }

func (b *Buffer) commit(text string) {
	b.authoritative = text
	b.preview = text
}
