package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Tag names the semantic emphasis attached to report text.
type Tag string

// Supported emphasis tags.
const (
	TagNeutral Tag = "neutral"
	TagSuccess Tag = "success"
	TagWarning Tag = "warning"
	TagError   Tag = "error"
	TagDim     Tag = "dim"
	TagInfo    Tag = "info"
)

const (
	successColorConstant = "71"
	warningColorConstant = "179"
	errorColorConstant   = "167"
	dimColorConstant     = "242"
	infoColorConstant    = "73"
)

// Severity orders tags so that summaries can report their most alarming part.
func (tag Tag) Severity() int {
	switch tag {
	case TagError:
		return 4
	case TagWarning:
		return 3
	case TagInfo:
		return 2
	case TagSuccess:
		return 1
	default:
		return 0
	}
}

// MostSevere returns the tag with the highest severity, or TagNeutral when none are given.
func MostSevere(tags ...Tag) Tag {
	selectedTag := TagNeutral
	for _, tag := range tags {
		if tag.Severity() > selectedTag.Severity() {
			selectedTag = tag
		}
	}
	return selectedTag
}

// TaggedText is a piece of report text with its emphasis.
type TaggedText struct {
	Text string
	Tag  Tag
}

// Emphasizer renders tagged text for a particular output stream.
type Emphasizer struct {
	renderer *lipgloss.Renderer
	styles   map[Tag]lipgloss.Style
}

// NewEmphasizer binds an emphasizer to output. Streams that are not terminals receive plain text.
func NewEmphasizer(output io.Writer) *Emphasizer {
	return newEmphasizer(lipgloss.NewRenderer(output))
}

// NewEmphasizerWithProfile binds an emphasizer to output using an explicit color profile.
func NewEmphasizerWithProfile(output io.Writer, profile termenv.Profile) *Emphasizer {
	renderer := lipgloss.NewRenderer(output)
	renderer.SetColorProfile(profile)
	return newEmphasizer(renderer)
}

func newEmphasizer(renderer *lipgloss.Renderer) *Emphasizer {
	return &Emphasizer{
		renderer: renderer,
		styles: map[Tag]lipgloss.Style{
			TagSuccess: renderer.NewStyle().Foreground(lipgloss.Color(successColorConstant)),
			TagWarning: renderer.NewStyle().Foreground(lipgloss.Color(warningColorConstant)),
			TagError:   renderer.NewStyle().Foreground(lipgloss.Color(errorColorConstant)).Bold(true),
			TagDim:     renderer.NewStyle().Foreground(lipgloss.Color(dimColorConstant)),
			TagInfo:    renderer.NewStyle().Foreground(lipgloss.Color(infoColorConstant)),
		},
	}
}

// Render returns the text decorated according to its tag.
func (emphasizer *Emphasizer) Render(taggedText TaggedText) string {
	if emphasizer == nil || emphasizer.renderer.ColorProfile() == termenv.Ascii {
		return taggedText.Text
	}
	style, styled := emphasizer.styles[taggedText.Tag]
	if !styled || len(taggedText.Text) == 0 {
		return taggedText.Text
	}
	return style.Render(taggedText.Text)
}
