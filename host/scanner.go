package host

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// LoadMode is what the scanner asks go/packages for.
const LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo

// Scanner loads Go packages and extracts annotated declarations.
type Scanner struct {
	// Dir is the directory patterns resolve against; empty means the
	// current directory.
	Dir string
	// Tags are extra build tags.
	Tags []string
	// Tests includes _test.go files.
	Tests bool
	// Jobs bounds parallel extraction; zero means GOMAXPROCS.
	Jobs int

	log *zap.SugaredLogger
}

// NewScanner creates a scanner rooted at dir.
func NewScanner(dir string) *Scanner {
	return &Scanner{Dir: dir, log: logger.ComponentLogger("host.scanner")}
}

// Scan loads the packages matching patterns and extracts their declarations,
// sorted by package path. Packages with load errors are still scanned as far
// as their syntax and types allow; the errors come back as diagnostics.
func (s *Scanner) Scan(ctx context.Context, patterns ...string) ([]*PackageDecls, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	start := time.Now()
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     s.Dir,
		Tests:   s.Tests,
	}
	if len(s.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(s.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to load packages %v", patterns),
			"patterns are go list patterns, e.g. ./... or ./internal/store")
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages found for %v", patterns)
	}

	jobs := s.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own index.
	results := make([]*PackageDecls, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(pkgs)))
	for i, p := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = extract(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results = mergeTestVariants(results)
	sort.Slice(results, func(i, j int) bool { return results[i].Package.Path < results[j].Package.Path })

	total := 0
	for _, r := range results {
		total += len(r.Decls)
	}
	s.log.Debugw("Packages scanned",
		logger.FieldPatterns, patterns,
		logger.FieldCount, len(results),
		"declarations", total,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return results, nil
}

// mergeTestVariants folds the test variants go/packages reports with Tests
// set ("p [p.test]") into one entry per import path, dropping duplicates.
func mergeTestVariants(in []*PackageDecls) []*PackageDecls {
	byPath := make(map[string]*PackageDecls)
	var order []string
	for _, r := range in {
		if strings.HasSuffix(r.Package.Path, ".test") {
			continue
		}
		path, _, _ := strings.Cut(r.Package.Path, " ")
		r.Package.Path = path
		prev, ok := byPath[path]
		if !ok {
			byPath[path] = r
			order = append(order, path)
			continue
		}
		seen := make(map[string]bool, len(prev.Decls))
		for _, d := range prev.Decls {
			seen[d.ID] = true
		}
		for _, d := range r.Decls {
			if !seen[d.ID] {
				prev.Decls = append(prev.Decls, d)
			}
		}
		sort.Slice(prev.Decls, func(i, j int) bool { return prev.Decls[i].ID < prev.Decls[j].ID })
		prev.Diagnostics = append(prev.Diagnostics, r.Diagnostics...)
	}
	out := make([]*PackageDecls, 0, len(order))
	for _, p := range order {
		out = append(out, byPath[p])
	}
	return out
}

func dirOf(file string) string {
	return filepath.Dir(file)
}

// parsePos reads go/packages error positions: "file:line:col", "file:line"
// or "-".
func parsePos(pos string) decl.Location {
	if pos == "" || pos == "-" {
		return decl.Location{}
	}
	parts := strings.Split(pos, ":")
	var nums []int
	for len(parts) > 1 && len(nums) < 2 {
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			break
		}
		nums = append([]int{n}, nums...)
		parts = parts[:len(parts)-1]
	}
	loc := decl.Location{File: strings.Join(parts, ":")}
	if len(nums) > 0 {
		loc.Line = nums[0]
	}
	if len(nums) > 1 {
		loc.Column = nums[1]
	}
	return loc
}
