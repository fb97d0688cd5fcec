package fskit

import (
	"context"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// ============================================================================
// Selector Interface
// ============================================================================

// Selector defines the interface for filtering entries during Find.
//
// Selectors are composable (And, Or, Not) and driver-agnostic: Find walks
// any Driver through ReadDir and feeds each entry to the selector.
//
// Example usage:
//
//	// Simple glob selector
//	files, err := fskit.Find(ctx, d, "", fskit.Glob("*.txt"), true)
//
//	// Composed selector
//	selector := fskit.And(
//	    fskit.Glob("*.log"),
//	    fskit.FuncSelector(func(f *fskit.FileInfo) bool {
//	        return f.Size < 10*1024*1024
//	    }),
//	)
//	files, err := fskit.Find(ctx, d, "var", selector, true)
type Selector interface {
	// Match returns true if the entry should be included in results.
	Match(file *FileInfo) bool

	// TraverseDescendants returns true if directory descendants should be
	// traversed. If false, the directory and all its contents are skipped.
	// Only called for directories (file.IsDir == true).
	TraverseDescendants(file *FileInfo) bool
}

// ============================================================================
// Find - Selector-Driven Listing
// ============================================================================

// Find lists the entries under root that match the given selector. Set
// recursive to true for deep traversal. Directories themselves are never
// returned; they are only traversed. Symbolic links are treated as leaf
// entries and never followed.
//
// Example:
//
//	// All .log files, recursively
//	files, err := fskit.Find(ctx, d, "var", fskit.Glob("*.log"), true)
//
//	// Immediate children only
//	files, err := fskit.Find(ctx, d, "", fskit.All(), false)
func Find(ctx context.Context, d Driver, root string, selector Selector, recursive bool) ([]FileInfo, error) {
	if selector == nil {
		selector = All()
	}

	var results []FileInfo
	if err := findRecursive(ctx, d, root, selector, recursive, &results); err != nil {
		return nil, err
	}

	return results, nil
}

func findRecursive(ctx context.Context, d Driver, dir string, selector Selector, recursive bool, results *[]FileInfo) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	names, err := d.ReadDir(ctx, dir)
	if err != nil {
		return err
	}

	for _, name := range names {
		file, err := describe(ctx, d, path.Join(dir, name), name)
		if err != nil {
			return err
		}

		if file.IsDir {
			if recursive && selector.TraverseDescendants(file) {
				if err := findRecursive(ctx, d, file.Path, selector, recursive, results); err != nil {
					return err
				}
			}
		} else {
			if selector.Match(file) {
				*results = append(*results, *file)
			}
		}
	}

	return nil
}

// describe builds the FileInfo handed to selectors. Symbolic links are
// reported as non-directory leaves so the walk never follows them.
func describe(ctx context.Context, d Driver, entryPath, name string) (*FileInfo, error) {
	link, err := d.IsSymlink(ctx, entryPath)
	if err != nil {
		return nil, err
	}
	if link {
		return &FileInfo{Name: name, Path: entryPath}, nil
	}

	if s, ok := d.(CanStat); ok {
		return s.Stat(ctx, entryPath)
	}

	isDir, err := d.IsDir(ctx, entryPath)
	if err != nil {
		return nil, err
	}
	return &FileInfo{Name: name, Path: entryPath, IsDir: isDir}, nil
}

// ============================================================================
// Built-in Selectors
// ============================================================================

// AllSelector matches all files and traverses all directories.
type AllSelector struct{}

func (s AllSelector) Match(file *FileInfo) bool               { return true }
func (s AllSelector) TraverseDescendants(file *FileInfo) bool { return true }

// All returns a selector that matches every file.
func All() Selector {
	return AllSelector{}
}

// ============================================================================
// Glob - Pattern Matching
// ============================================================================

type globSelector struct {
	pattern string
	g       glob.Glob
}

// Glob creates a selector matching entries against a glob pattern compiled
// with '/' as the separator. A pattern containing '/' is matched against the
// entry path, otherwise against the entry name.
// Supports: *, ?, [abc], [a-z], {a,b} and the separator-crossing **
//
// Examples:
//
//	Glob("*.txt")        // .txt files anywhere in the walk
//	Glob("logs/*.gz")    // .gz files directly under logs
//	Glob("a/**")         // everything beneath a
func Glob(pattern string) Selector {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		g = nil
	}
	return &globSelector{pattern: pattern, g: g}
}

func (s *globSelector) Match(file *FileInfo) bool {
	if s.g == nil {
		return false
	}
	if strings.ContainsRune(s.pattern, '/') {
		return s.g.Match(file.Path)
	}
	return s.g.Match(file.Name)
}

func (s *globSelector) TraverseDescendants(file *FileInfo) bool {
	return true
}

// ============================================================================
// Depth - Depth Limiting
// ============================================================================

type depthSelector struct {
	maxDepth int
	basePath string
}

// Depth limits traversal to maxDepth levels below basePath.
// Depth 1 = immediate children only.
//
// Example:
//
//	Depth(2, "")  // up to 2 levels deep from the root
func Depth(maxDepth int, basePath string) Selector {
	return &depthSelector{
		maxDepth: maxDepth,
		basePath: strings.TrimSuffix(basePath, "/"),
	}
}

func (s *depthSelector) getDepth(entryPath string) int {
	rel := strings.TrimPrefix(entryPath, s.basePath)
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

func (s *depthSelector) Match(file *FileInfo) bool {
	return s.getDepth(file.Path) <= s.maxDepth
}

func (s *depthSelector) TraverseDescendants(file *FileInfo) bool {
	return s.getDepth(file.Path) < s.maxDepth
}

// ============================================================================
// Composable Selectors (And, Or, Not)
// ============================================================================

type andSelector struct {
	selectors []Selector
}

// And matches only if ALL selectors match.
func And(selectors ...Selector) Selector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if !sel.Match(file) {
			return false
		}
	}
	return true
}

func (s *andSelector) TraverseDescendants(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if sel.TraverseDescendants(file) {
			return true
		}
	}
	return false
}

type orSelector struct {
	selectors []Selector
}

// Or matches if ANY selector matches.
func Or(selectors ...Selector) Selector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if sel.Match(file) {
			return true
		}
	}
	return false
}

func (s *orSelector) TraverseDescendants(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if sel.TraverseDescendants(file) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector Selector
}

// Not inverts a selector's match result.
func Not(selector Selector) Selector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(file *FileInfo) bool {
	return !s.selector.Match(file)
}

func (s *notSelector) TraverseDescendants(file *FileInfo) bool {
	return true
}

// ============================================================================
// FuncSelector - Custom Logic
// ============================================================================

type funcSelector struct {
	matchFn    func(*FileInfo) bool
	traverseFn func(*FileInfo) bool
}

// FuncSelector creates a selector from a custom function.
// This is the escape hatch for any filtering logic not covered by built-ins.
//
// Example:
//
//	FuncSelector(func(f *fskit.FileInfo) bool {
//	    return f.Size > 1024 && strings.Contains(f.Name, "report")
//	})
func FuncSelector(fn func(*FileInfo) bool) Selector {
	return &funcSelector{
		matchFn:    fn,
		traverseFn: func(*FileInfo) bool { return true },
	}
}

// FuncSelectorFull creates a selector with custom match and traverse functions.
func FuncSelectorFull(matchFn, traverseFn func(*FileInfo) bool) Selector {
	return &funcSelector{
		matchFn:    matchFn,
		traverseFn: traverseFn,
	}
}

func (s *funcSelector) Match(file *FileInfo) bool               { return s.matchFn(file) }
func (s *funcSelector) TraverseDescendants(file *FileInfo) bool { return s.traverseFn(file) }
