// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/buhofis/buho-tui/internal/coordinator"
	"github.com/buhofis/buho-tui/internal/util"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is one candidate.
type Completion struct {
	// Value replaces the token being completed.
	Value       string
	Display     string
	Description string
	Score       int
}

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// StateFn provides chats and flow options for numeric arguments.
	StateFn func() coordinator.State
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry, stateFn func() coordinator.State) *Completer {
	return &Completer{registry: registry, StateFn: stateFn}
}

// Complete returns completions for the token at the end of input.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(strings.TrimLeft(input, " "), "/") {
		return nil
	}

	parts := splitCommandLine(input)
	trailingSpace := strings.HasSuffix(input, " ")
	if len(parts) == 0 {
		return c.completeCommands("")
	}
	if len(parts) == 1 && !trailingSpace {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(strings.ToLower(parts[0]))
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := parts[len(parts)-1]
	if trailingSpace {
		argIndex++
		partial = ""
	}
	return c.completeArg(cmd, argIndex, partial)
}

// Lines returns whole-line candidates, the shape line editors expect.
func (c *Completer) Lines(line string) []string {
	completions := c.Complete(line)
	if len(completions) == 0 {
		return nil
	}

	prefix := line
	if !strings.HasSuffix(line, " ") {
		if i := strings.LastIndexFunc(line, func(r rune) bool { return r == ' ' }); i >= 0 {
			prefix = line[:i+1]
		} else {
			prefix = ""
		}
	}

	lines := make([]string, 0, len(completions))
	for _, comp := range completions {
		lines = append(lines, prefix+comp.Value)
	}
	return lines
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			// Single-letter aliases only complete on an exact match.
			if len(alias) <= 2 && alias != partial {
				continue
			}
			if strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeEnum:
		return completeFromList(arg.Values, nil, partial)
	case ArgTypeChat:
		if c.StateFn == nil {
			return nil
		}
		st := c.StateFn()
		values := make([]string, len(st.Chats))
		descs := make([]string, len(st.Chats))
		for i, chat := range st.Chats {
			values[i] = strconv.Itoa(i + 1)
			descs[i] = util.TruncateRunes(chat.Name, 30, "...")
		}
		return completeFromList(values, descs, partial)
	case ArgTypeOption:
		if c.StateFn == nil {
			return nil
		}
		st := c.StateFn()
		values := make([]string, len(st.Flow.Options))
		descs := make([]string, len(st.Flow.Options))
		for i, opt := range st.Flow.Options {
			values[i] = strconv.Itoa(i + 1)
			descs[i] = opt.Label
		}
		return completeFromList(values, descs, partial)
	case ArgTypeFile:
		return completeFiles(partial)
	case ArgTypeString:
		if cmd.Name == "/help" {
			names := make([]string, 0, len(c.registry.commands))
			for _, cmd := range c.registry.All() {
				if !cmd.Hidden {
					names = append(names, strings.TrimPrefix(cmd.Name, "/"))
				}
			}
			return completeFromList(names, nil, partial)
		}
	}
	return nil
}

func completeFromList(values, descs []string, partial string) []Completion {
	var completions []Completion
	lower := strings.ToLower(partial)
	for i, v := range values {
		if !strings.HasPrefix(strings.ToLower(v), lower) {
			continue
		}
		comp := Completion{Value: v, Display: v, Score: calculateScore(v, partial)}
		if i < len(descs) {
			comp.Description = descs[i]
		}
		completions = append(completions, comp)
	}
	// Numbered lists keep their own order.
	if descs == nil {
		sortCompletions(completions)
	}
	return completions
}

// completeFiles provides basic file path completion.
func completeFiles(partial string) []Completion {
	dir := filepath.Dir(partial)
	prefix := filepath.Base(partial)
	if partial == "" || strings.HasSuffix(partial, string(os.PathSeparator)) {
		dir = partial
		if dir == "" {
			dir = "."
		}
		prefix = ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var completions []Completion
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			continue
		}
		// Skip hidden files unless partial starts with .
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		path := name
		if partial != "" && dir != "." || strings.HasPrefix(partial, "./") {
			path = filepath.Join(dir, name)
		}
		score := calculateScore(name, prefix)
		if entry.IsDir() {
			path += string(os.PathSeparator)
			score += 5
		}
		completions = append(completions, Completion{Value: path, Display: name, Score: score})
	}

	sortCompletions(completions)
	if len(completions) > 20 {
		completions = completions[:20]
	}
	return completions
}

// calculateScore calculates a match score for completion ranking.
// Higher score = better match.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}
	score -= len(value) / 2
	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}
