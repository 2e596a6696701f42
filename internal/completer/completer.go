// Package completer provides filesystem-aware tab completion for sush.
// It rebuilds completion suggestions for the builtin command table from
// the current directory's contents on every prompt iteration.
package completer

import (
	"os"

	"github.com/chzyer/readline"
)

// completer is the package-level instance Update refreshes and returns;
// the shell loop assigns its result to readline.Config.AutoComplete once
// per prompt, mirroring how internal/prompt exposes a single package
// function rather than a handle callers must thread through.
var completer = &Completer{readlineCompleter: readline.NewPrefixCompleter()}

// Update rebuilds completer's completion tree from the current working
// directory and returns it as a readline.AutoCompleter.
func Update() readline.AutoCompleter {
	completer.refresh()
	return completer
}

// Completer adapts sush's builtin table and current directory listing to
// the readline.AutoCompleter interface.
type Completer struct {
	readlineCompleter *readline.PrefixCompleter
}

// refresh rebuilds the completion tree based on the current working
// directory's entries. cd gets directory-only completions; the commands
// that typically take a file argument get the full listing.
func (c *Completer) refresh() {

	entries, err := os.ReadDir(".")
	if err != nil {
		return
	}

	var onlyDirs []readline.PrefixCompleterInterface
	var allEntries []readline.PrefixCompleterInterface

	for _, entry := range entries {
		if entry.IsDir() {
			item := readline.PcItem(entry.Name() + "/")
			allEntries = append(allEntries, item)
			onlyDirs = append(onlyDirs, item)
		} else {
			allEntries = append(allEntries, readline.PcItem(entry.Name()))
		}
	}

	c.readlineCompleter = readline.NewPrefixCompleter(
		readline.PcItem("cd", onlyDirs...),
		readline.PcItem("pwd"),
		readline.PcItem("exit"),
		readline.PcItem("setenv"),
		readline.PcItem("getenv"),
		readline.PcItem("unsetenv"),
		readline.PcItem("queue"),
		readline.PcItem("status"),
		readline.PcItem("output"),
		readline.PcItem("cancel"),
		readline.PcItem("ls", allEntries...),
		readline.PcItem("cat", allEntries...),
		readline.PcItem("grep", allEntries...),
		readline.PcItem("vim", allEntries...),
	)

}

// Do delegates completion to the underlying PrefixCompleter, satisfying
// readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	return c.readlineCompleter.Do(line, pos)
}
