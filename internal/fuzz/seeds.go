package fuzz

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxInput     = 1 << 16
	maxSeedBytes = 64 << 10
)

var seeds = []string{
	"",
	"fn main() -> i32 { return 0; }\n",
	"fn f(x: i32) -> i32 { x }\nfn g() -> i32 { f(3) }\n",
	"struct S { v: i32, data: Vec<i32> }\nimpl S {\n    fn get(self) -> i32 { self.v }\n    memo total: i32 = self.v + 1\n}\nfn use_s(s: S) -> i32 { s.get() + s.total + s.data[0] }\n",
	"fn h(a: i32, ...rest: i32, key k: i32 = 1, key j: bool) -> i32 { a }\nfn grouped() -> i32 { h(j = true, 1, 2, 3) }\n",
	"fn stmts() -> i32 {\n    var n = 0;\n    while n < 3 { n += 1; }\n    if n == 3 { n++; } else { n = 0; }\n    let t = (n, true);\n    return n;\n}\n",
	"gn lazy_sum(x: i32) -> i32 { x + 1 }\nfn calls_gn() -> i32 { lazy_sum(2) }\n",
	"fn bare() { let x = []; }\n",
	"fn g() -> i32 { let a = nope + 1; a * 2 }\n",
	"fn twice(g: i32 -> i32, x: i32) -> i32 { g(x) }\n",
	"fn f() { { { { } } } }",
	"fn f( { let x = ; }",
	"struct { impl for",
}

// addSeeds adds the built-in seeds and every .hk file under testdata.
func addSeeds(f *testing.F) {
	for _, s := range seeds {
		f.Add([]byte(s))
	}
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".hk" {
			return nil
		}
		src, err := os.ReadFile(path) //nolint:gosec // path comes from the testdata walk
		if err != nil {
			return nil
		}
		f.Add(clamp(src, maxSeedBytes))
		return nil
	})
}

// clamp copies at most n bytes of src.
func clamp(src []byte, n int) []byte {
	if len(src) > n {
		src = src[:n]
	}
	return append([]byte(nil), src...)
}
