package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// BrowseKind discriminates the outcome of a file-browser event.
type BrowseKind int

const (
	BrowseNone BrowseKind = iota
	// BrowsePicked carries the absolute path of the chosen file.
	BrowsePicked
	BrowseCancelled
)

// BrowseResult is the tagged outcome of a file-browser event.
type BrowseResult struct {
	Kind BrowseKind
	Path string
}

type browseEntry struct {
	name  string
	isDir bool
}

// FileBrowser walks the filesystem with the same cursor semantics as Menu,
// over a list rebuilt from the current directory: "..", then
// subdirectories sorted lexicographically, then files sorted
// lexicographically. Confirming ".." ascends, a directory descends, a file
// yields its absolute path; both navigations reset the cursor to 0.
//
// The listing is recomputed from the filesystem on every redraw. That is
// O(entries) per keystroke, which is fine at interactive pace over the
// directory sizes involved.
type FileBrowser struct {
	dir    string
	cursor int
	styles Styles
	height int
}

// NewFileBrowser creates a browser rooted at start (resolved to an
// absolute path; "." when empty).
func NewFileBrowser(styles Styles, start string) FileBrowser {
	if start == "" {
		start = "."
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		abs = start
	}
	return FileBrowser{dir: abs, styles: styles, height: 20}
}

// Dir returns the directory currently being listed.
func (b FileBrowser) Dir() string { return b.dir }

// Cursor returns the current cursor position within the listing.
func (b FileBrowser) Cursor() int { return b.cursor }

// SetHeight bounds how many rows View renders.
func (b *FileBrowser) SetHeight(h int) { b.height = h }

func (b FileBrowser) entries() []browseEntry {
	list := []browseEntry{{name: "..", isDir: true}}

	dirents, err := os.ReadDir(b.dir)
	if err != nil {
		return list
	}

	var dirs, files []string
	for _, d := range dirents {
		if d.IsDir() {
			dirs = append(dirs, d.Name())
		} else {
			files = append(files, d.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	for _, name := range dirs {
		list = append(list, browseEntry{name: name, isDir: true})
	}
	for _, name := range files {
		list = append(list, browseEntry{name: name})
	}
	return list
}

// Update translates a key event into navigation or a BrowseResult.
func (b FileBrowser) Update(msg tea.KeyMsg) (FileBrowser, BrowseResult) {
	entries := b.entries()
	if b.cursor >= len(entries) {
		b.cursor = len(entries) - 1
	}

	switch msg.Type {
	case tea.KeyUp:
		if b.cursor > 0 {
			b.cursor--
		}
	case tea.KeyDown:
		if b.cursor < len(entries)-1 {
			b.cursor++
		}
	case tea.KeyEnter:
		entry := entries[b.cursor]
		if b.cursor == 0 {
			b.dir = filepath.Dir(b.dir)
			b.cursor = 0
			return b, BrowseResult{Kind: BrowseNone}
		}
		path := filepath.Join(b.dir, entry.name)
		if entry.isDir {
			b.dir = path
			b.cursor = 0
			return b, BrowseResult{Kind: BrowseNone}
		}
		return b, BrowseResult{Kind: BrowsePicked, Path: path}
	case tea.KeyEsc:
		return b, BrowseResult{Kind: BrowseCancelled}
	}
	return b, BrowseResult{Kind: BrowseNone}
}

// View renders the listing with the cursor row highlighted. Directories
// carry a trailing slash.
func (b FileBrowser) View() string {
	entries := b.entries()
	cursor := b.cursor
	if cursor >= len(entries) {
		cursor = len(entries) - 1
	}

	var rows []string
	for idx, entry := range entries {
		if b.height > 0 && idx >= b.height {
			rows = append(rows, b.styles.Muted.Render("  ..."))
			break
		}
		name := entry.name
		if entry.isDir {
			name += "/"
		}
		if idx == cursor {
			rows = append(rows, b.styles.MenuSelected.Render("> "+name))
		} else {
			rows = append(rows, b.styles.MenuItem.Render("  "+name))
		}
	}
	return strings.Join(rows, "\n")
}
