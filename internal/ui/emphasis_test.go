package ui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcan/internal/ui"
)

const (
	ansiEscapePrefixConstant = "\x1b["
	sampleTextConstant       = "Unpushed commits"
)

func TestEmphasizerRendersPlainTextWithoutColorSupport(testInstance *testing.T) {
	emphasizer := ui.NewEmphasizerWithProfile(&bytes.Buffer{}, termenv.Ascii)

	for _, tag := range []ui.Tag{ui.TagNeutral, ui.TagSuccess, ui.TagWarning, ui.TagError, ui.TagDim, ui.TagInfo} {
		testInstance.Run(string(tag), func(testInstance *testing.T) {
			rendered := emphasizer.Render(ui.TaggedText{Text: sampleTextConstant, Tag: tag})
			require.Equal(testInstance, sampleTextConstant, rendered)
		})
	}
}

func TestEmphasizerDefaultsToPlainTextForBuffers(testInstance *testing.T) {
	emphasizer := ui.NewEmphasizer(&bytes.Buffer{})

	rendered := emphasizer.Render(ui.TaggedText{Text: sampleTextConstant, Tag: ui.TagError})
	require.Equal(testInstance, sampleTextConstant, rendered)
}

func TestEmphasizerColorsTaggedText(testInstance *testing.T) {
	emphasizer := ui.NewEmphasizerWithProfile(&bytes.Buffer{}, termenv.ANSI256)

	testCases := []struct {
		name           string
		tag            ui.Tag
		expectEscaping bool
	}{
		{name: "error", tag: ui.TagError, expectEscaping: true},
		{name: "success", tag: ui.TagSuccess, expectEscaping: true},
		{name: "neutral", tag: ui.TagNeutral, expectEscaping: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rendered := emphasizer.Render(ui.TaggedText{Text: sampleTextConstant, Tag: testCase.tag})
			require.Contains(testInstance, rendered, sampleTextConstant)
			require.Equal(testInstance, testCase.expectEscaping, strings.Contains(rendered, ansiEscapePrefixConstant))
		})
	}
}

func TestMostSevere(testInstance *testing.T) {
	testCases := []struct {
		name     string
		tags     []ui.Tag
		expected ui.Tag
	}{
		{name: "empty", tags: nil, expected: ui.TagNeutral},
		{name: "success_only", tags: []ui.Tag{ui.TagSuccess}, expected: ui.TagSuccess},
		{name: "info_and_warning", tags: []ui.Tag{ui.TagInfo, ui.TagWarning}, expected: ui.TagWarning},
		{name: "error_wins", tags: []ui.Tag{ui.TagWarning, ui.TagError, ui.TagInfo}, expected: ui.TagError},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, ui.MostSevere(testCase.tags...))
		})
	}
}
