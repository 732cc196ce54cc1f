// Package complete builds tab completion lists and "did you mean" hints on top of the parser.
package complete

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/armon/go-radix"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/parser"
)

// DefaultLimit caps the number of candidates enumerated for a single line.
const DefaultLimit = 500

// Completion is a single completed line.
type Completion struct {
	// Line is the input text with its tail replaced.
	Line string
	// Word is the inserted candidate, suitable for listing.
	Word string
}

// Result holds distinct completions ordered by Line.
type Result struct {
	Items []Completion
	// Common is the longest common prefix of all completed lines.
	Common string
}

// Completer enumerates parser completion candidates.
type Completer struct {
	parser *parser.Parser
	// Dir is the base directory of relative file names, empty means the working directory.
	Dir   string
	Limit int
}

func New(p *parser.Parser) *Completer {
	return &Completer{parser: p, Limit: DefaultLimit}
}

// Complete returns all completions for the end of text.
func (c *Completer) Complete(text string) Result {
	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	tree := radix.New()
	filesDone := make(map[int]bool)
	for n := 0; n < limit; n++ {
		cand, ok := c.parser.Complete(text, n)
		if !ok {
			break
		}

		if cand.Text != parser.FilenameCandidate {
			insert(tree, text[:cand.Start], cand.Text)
			continue
		}
		if !filesDone[cand.Start] {
			filesDone[cand.Start] = true
			for _, name := range c.files(text[cand.Start:]) {
				insert(tree, text[:cand.Start], name)
			}
		}
	}

	var res Result
	tree.Walk(func(line string, v any) bool {
		res.Items = append(res.Items, Completion{line, v.(string)})
		return false
	})
	if len(res.Items) > 0 {
		lines := make([]string, len(res.Items))
		for i, item := range res.Items {
			lines[i] = item.Line
		}
		res.Common = CommonPrefix(lines...)
	}
	return res
}

func insert(tree *radix.Tree, head, word string) {
	line := head + word
	if _, has := tree.Get(line); !has {
		tree.Insert(line, word)
	}
}

// files lists names matching a partially typed file name. Directory names end with a slash,
// names of files typed in quotes get the closing quote.
func (c *Completer) files(prefix string) []string {
	quote := ""
	if prefix != "" && (prefix[0] == '\'' || prefix[0] == '"') {
		quote = prefix[:1]
		prefix = prefix[1:]
	}

	dir, base := filepath.Split(prefix)
	path := dir
	if !filepath.IsAbs(dir) {
		path = filepath.Join(c.Dir, dir)
	}
	if path == "" {
		path = "."
	}

	entries, e := os.ReadDir(path)
	if e != nil {
		return nil
	}

	names := radix.New()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += string(filepath.Separator)
		} else {
			name += quote
		}
		names.Insert(name, nil)
	}

	var result []string
	names.WalkPrefix(base, func(name string, _ any) bool {
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			return false
		}
		result = append(result, quote+dir+name)
		return false
	})
	return result
}

// CommonPrefix returns the longest common prefix of all strings.
func CommonPrefix(strs ...string) string {
	if len(strs) == 0 {
		return ""
	}

	prefix := strs[0]
	for _, s := range strs[1:] {
		i := 0
		for i < len(prefix) && i < len(s) && prefix[i] == s[i] {
			i++
		}
		prefix = prefix[:i]
	}
	return prefix
}

// Suggest returns up to limit directives resembling the first word of text, best first.
// Directives containing the letters of the word in order come before near misses.
func Suggest(g *grammar.Grammar, text string, limit int) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 || limit <= 0 {
		return nil
	}

	word := strings.ToLower(fields[0])
	directives := g.Directives()
	ranks := fuzzy.RankFindFold(word, directives)
	sort.Stable(ranks)

	seen := make(map[string]bool)
	var result []string
	add := func(d string) {
		if !seen[d] && d != word && len(result) < limit {
			seen[d] = true
			result = append(result, d)
		}
	}
	for _, r := range ranks {
		add(r.Target)
	}

	type miss struct {
		name string
		dist int
	}
	var misses []miss
	for _, d := range directives {
		dist := fuzzy.LevenshteinDistance(word, d)
		if dist <= maxDistance(word) {
			misses = append(misses, miss{d, dist})
		}
	}
	sort.SliceStable(misses, func(i, j int) bool {
		return misses[i].dist < misses[j].dist
	})
	for _, m := range misses {
		add(m.name)
	}
	return result
}

func maxDistance(word string) int {
	if len(word) <= 3 {
		return 1
	}
	return 2
}
