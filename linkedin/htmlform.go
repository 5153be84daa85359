package linkedin

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// ErrFieldNotFound indicates a required form field is absent from a page.
var ErrFieldNotFound = errors.New("form field not found")

// ExtractField returns the value attribute of the first input element whose
// name attribute equals name. A missing element or value attribute means the
// provider served a page the flow does not expect (wrong page, changed
// markup, already authenticated), so it is a hard failure of the current
// step rather than a retryable condition.
func ExtractField(html, name string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(err, "[ExtractField] parse")
	}
	input := doc.Find(fmt.Sprintf("input[name=%q]", name)).First()
	if input.Length() == 0 {
		return "", errors.Wrapf(ErrFieldNotFound, "[ExtractField] %s", name)
	}
	value, ok := input.Attr("value")
	if !ok {
		return "", errors.Wrapf(ErrFieldNotFound, "[ExtractField] %s has no value", name)
	}
	return value, nil
}

// HasField reports whether an input element named name exists at all,
// regardless of whether it carries a value.
func HasField(html, name string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(fmt.Sprintf("input[name=%q]", name)).Length() > 0
}
