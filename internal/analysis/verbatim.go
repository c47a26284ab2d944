package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

const (
	placeholderOpen  = "__FUTUREC_PLACEHOLDER_OPEN__"
	placeholderClose = "__FUTUREC_PLACEHOLDER_CLOSE__"
)

// quotePlaceholders turns every §$name$§ placeholder of a JSON block into a
// JSON string so the block can be parsed.
func quotePlaceholders(text string) string {
	text = strings.ReplaceAll(text, `"§$`, placeholderOpen)
	text = strings.ReplaceAll(text, `$§"`, placeholderClose)
	text = strings.ReplaceAll(text, `§$`, placeholderOpen)
	text = strings.ReplaceAll(text, `$§`, placeholderClose)
	text = strings.ReplaceAll(text, placeholderOpen, `"§$`)

	return strings.ReplaceAll(text, placeholderClose, `$§"`)
}

// ValidateJSON parses text with the JavaScript JSON.parse of vm. A nil vm
// gets a fresh runtime.
func ValidateJSON(vm *goja.Runtime, text string) error {
	if vm == nil {
		vm = goja.New()
	}

	json := vm.Get("JSON").ToObject(vm)
	parse, ok := goja.AssertFunction(json.Get("parse"))
	if !ok {
		return errors.New("JSON.parse is not callable")
	}

	if _, err := parse(json, vm.ToValue(text)); err != nil {
		var ex *goja.Exception
		if errors.As(err, &ex) {
			return fmt.Errorf("%s", ex.Value().String())
		}
		return err
	}

	return nil
}

func (a *Analyzer) jsonRuntime() *goja.Runtime {
	if a.vm == nil {
		a.vm = goja.New()
	}

	return a.vm
}

// verbatim handles §START_JSON§ … §END_JSON§ and §START_VERBATIM§ …
// §END_VERBATIM§ blocks starting at index i.
func (p *pass) verbatim(i int) int {
	kind := p.at(i + 1)
	if kind.Text != "START_JSON" && kind.Text != "START_VERBATIM" {
		p.errorf(kind, "After '§' must follow an 'START_JSON' or 'START_VERBATIM' '%s'", kind.Text)
		return i
	}

	if sep := p.at(i + 2); sep.Text != "§" {
		p.errorf(sep, "After '%s' must follow an '§'", kind.Text)
		return i + 1
	}

	isJSON := kind.Text == "START_JSON"
	var body strings.Builder

	j := i + 3
	for ; j < len(p.tokens); j++ {
		t := p.tokens[j]

		switch t.Text {
		case "§":
			after := p.at(j + 1)
			if after.Text == "END_JSON" || after.Text == "END_VERBATIM" {
				if (after.Text == "END_JSON") != isJSON {
					p.errorf(after, "'%s' does not close '%s'", after.Text, kind.Text)
				}

				if sep := p.at(j + 2); sep.Text != "§" {
					p.errorf(sep, "After '%s' must follow an '§'", after.Text)
					j++
				} else {
					j += 2
				}

				if isJSON {
					if err := ValidateJSON(p.a.jsonRuntime(), quotePlaceholders(body.String())); err != nil {
						p.errorf(kind, "%s", err.Error())
					}
				}

				return j
			}

			body.WriteString("§")
			if after.Text != "$" {
				p.errorf(after, "After '§' must follow an '$' '%s'", after.Text)
				continue
			}

			body.WriteString("$")
			if name := p.at(j + 2); IsVariable(name.Text) {
				p.resolve(name)
			}
			j++

		case "$":
			body.WriteString("$")
			if next := p.at(j + 1); next.Text != "§" {
				p.errorf(next, "After '$' must follow an '§' '%s'", next.Text)
				continue
			}

			body.WriteString("§")
			j++

		default:
			body.WriteString(t.Text)
		}

		if p.overrun {
			break
		}
	}

	p.errorf(kind, "'§END_%s§' expected", strings.TrimPrefix(kind.Text, "START_"))

	return j
}
