package markup

import (
	"regexp"
	"unicode/utf8"
)

// Non-nesting, greedy: from a '<' to the first following '>'.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// placeholder stands in for tag characters inside the skeleton.
const placeholder = '\x00'

type tag struct {
	text   []rune
	offset int // rune offset in the original content
}

// Plan is the precomputed reveal of one piece of markup. The skeleton has the
// same length as the content, with every tag replaced by placeholders, so tag
// offsets stay valid while the reveal index walks over it.
type Plan struct {
	skeleton []rune
	tags     []tag
}

// NewPlan scans content for tags and builds its skeleton.
func NewPlan(content string) *Plan {
	p := &Plan{
		skeleton: make([]rune, 0, utf8.RuneCountInString(content)),
	}

	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(content, -1) {
		p.skeleton = append(p.skeleton, []rune(content[last:loc[0]])...)

		text := []rune(content[loc[0]:loc[1]])
		p.tags = append(p.tags, tag{text: text, offset: len(p.skeleton)})
		for range text {
			p.skeleton = append(p.skeleton, placeholder)
		}
		last = loc[1]
	}
	p.skeleton = append(p.skeleton, []rune(content[last:])...)

	return p
}

// Len is the number of reveal steps after the empty frame.
func (p *Plan) Len() int {
	return len(p.skeleton)
}

// Frame returns the markup visible after i characters have been revealed. A
// tag whose offset is below i is spliced back whole; any other tag is absent.
// Frame(p.Len()) is the original content.
func (p *Plan) Frame(i int) string {
	if i < 0 {
		i = 0
	}
	if i > len(p.skeleton) {
		i = len(p.skeleton)
	}

	frame := make([]rune, i)
	copy(frame, p.skeleton[:i])

	// Tags are recorded in offset order.
	for _, t := range p.tags {
		if t.offset >= i {
			break
		}
		end := t.offset + len(t.text)
		next := make([]rune, 0, max(end, len(frame)))
		next = append(next, frame[:t.offset]...)
		next = append(next, t.text...)
		if end < len(frame) {
			next = append(next, frame[end:]...)
		}
		frame = next
	}

	return string(frame)
}
