package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/notedeck/internal/domain"
)

const (
	titlePrefix    = "T:"
	bodyPrefix     = "B:"
	citationPrefix = "C:"
	tagsPrefix     = "Tags:"
	separator      = "---"
)

type state int

const (
	seeking state = iota
	readingTitle
	readingBody
	readingCitation
	readingTags
)

// ParseFile reads a markdown file and extracts all entries.
func ParseFile(path string) ([]domain.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts entries from r. A "T:" line starts a new entry; "B:", "C:"
// and "Tags:" open the body, citation and tag blocks, and any other line
// continues the open block. "---" closes the entry. Entries without a title
// are dropped.
func Parse(r io.Reader) ([]domain.Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []domain.Entry
	var current domain.Entry
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimRight(strings.Join(block, "\n"), " \t\n")
		switch currentState {
		case readingTitle:
			current.Title = content
		case readingBody:
			current.Body = content
		case readingCitation:
			current.Citation = content
		case readingTags:
			current.Tags = append(current.Tags, splitTags(content)...)
		}
		block = nil
	}

	finishEntry := func() {
		flushBlock()
		if current.Title != "" {
			entries = append(entries, current)
		}
		current = domain.Entry{}
		currentState = seeking
	}

	open := func(next state, line, prefix string) {
		flushBlock()
		currentState = next
		block = append(block, strings.TrimPrefix(line[len(prefix):], " "))
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == separator:
			finishEntry()
		case strings.HasPrefix(line, titlePrefix):
			// A new title always starts a new entry.
			if currentState != seeking {
				finishEntry()
			}
			open(readingTitle, line, titlePrefix)
		case strings.HasPrefix(line, bodyPrefix):
			open(readingBody, line, bodyPrefix)
		case strings.HasPrefix(line, citationPrefix):
			open(readingCitation, line, citationPrefix)
		case strings.HasPrefix(line, tagsPrefix):
			open(readingTags, line, tagsPrefix)
		case currentState != seeking:
			block = append(block, line)
		}
	}

	finishEntry() // the last entry has no trailing separator

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// splitTags accepts comma or newline separated tags and lower-cases them.
func splitTags(content string) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var tags []string
	for _, f := range fields {
		if tag := strings.ToLower(strings.TrimSpace(f)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
