package script

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var hookMarkerPattern = regexp.MustCompile(`//[ \t]*ADDHOOK[^0-9\n]*[0-9]+[^\n]*`)

// Hooks returns the //ADDHOOK marker comments of a script text in order.
func Hooks(text string) []string {
	var hooks []string
	for _, m := range hookMarkerPattern.FindAllString(text, -1) {
		hooks = append(hooks, strings.TrimSpace(m))
	}

	return hooks
}

func insertHeader(number int) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^(INSERTINTOSCRIPT):(` + strconv.Itoa(number) + `),(.*)$`)
}

// HooksForDocument returns the INSERTINTOSCRIPT blocks for script number
// found in the document text.
func HooksForDocument(text, uri string, number int) []*Script {
	var hooks []*Script
	for _, m := range insertHeader(number).FindAllStringSubmatchIndex(text, -1) {
		hooks = append(hooks, newScript(text, uri, m))
	}

	return hooks
}

// resolveMain finds the SCRIPT an INSERTINTOSCRIPT block hooks into. Its
// text is cut at the hook marker named like the block, so the result holds
// only what runs before the hook.
func resolveMain(corpus Corpus, hook *Script, hostText string) *Script {
	pattern := scriptHeader(hook.Number)

	for _, uri := range sortedURIs(corpus) {
		text, ok := corpus.Text(uri)
		if !ok {
			continue
		}

		m := pattern.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}

		main := newScript(text, uri, m)
		if name := HookName(hook.Name); name != "" {
			if i := strings.Index(main.Text, name); i >= 0 {
				main.Text = main.Text[:i]
			}
		}

		Expand(main, corpus, false)
		attachHooks(corpus, main, hostText, hook.URI)

		return main
	}

	return nil
}

func attachHooks(corpus Corpus, main *Script, hostText, hostURI string) {
	main.HooksForDocument = HooksForDocument(hostText, hostURI, main.Number)
	for _, h := range main.HooksForDocument {
		Expand(h, corpus, false)
	}
}

// MainScriptCache remembers the most recently resolved main script of one
// editing session. A nil cache disables caching.
type MainScriptCache struct {
	mu     sync.Mutex
	number int
	hook   string
	main   *Script
}

// Invalidate drops the cached main script.
func (c *MainScriptCache) Invalidate() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.main = nil
}

// resolve returns the main script of hook. A cached entry is reused only
// when number and hook name both match; its hooks are re-read from the
// current document every time.
func (c *MainScriptCache) resolve(corpus Corpus, hook *Script, hostText string) *Script {
	if c == nil {
		return resolveMain(corpus, hook, hostText)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.main != nil && c.number == hook.Number && c.hook == hook.Name {
		main := c.main.clone()
		attachHooks(corpus, main, hostText, hook.URI)

		return main
	}

	main := resolveMain(corpus, hook, hostText)
	c.main = nil

	if main != nil {
		c.number, c.hook, c.main = hook.Number, hook.Name, main.clone()
	}

	return main
}
