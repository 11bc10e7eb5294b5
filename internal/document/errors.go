package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTemplateNotFound     = errors.New("template file not found")
	ErrInvalidDocument      = errors.New("not a word document")
	ErrTemplateMismatch     = errors.New("template does not contain expected placeholders")
	ErrUnsupportedItemCount = errors.New("no template for this item count")
	ErrUnsupportedContent   = errors.New("placeholder inside content that cannot be rewritten")
)

// TemplateMismatchError lists the required placeholders a render never found
type TemplateMismatchError struct {
	Template string
	Missing  []string
}

func (e *TemplateMismatchError) Error() string {
	return fmt.Sprintf("template %s is missing placeholder(s) %s", e.Template, strings.Join(e.Missing, ", "))
}

func (e *TemplateMismatchError) Unwrap() error {
	return ErrTemplateMismatch
}

// UnsupportedContentError reports a placeholder inside a hyperlink, field,
// drawing or other element the renderer leaves untouched
type UnsupportedContentError struct {
	Template string
	Element  string
	Token    string
}

func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("template %s: placeholder %s is inside w:%s", e.Template, e.Token, e.Element)
}

func (e *UnsupportedContentError) Unwrap() error {
	return ErrUnsupportedContent
}
