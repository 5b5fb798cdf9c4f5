// Package fuzz holds fuzz harnesses for the front end. Arbitrary bytes go
// through the lexer and parser; inputs that parse cleanly continue through
// resolution, typing, contracts, lowering and instruction generation. A
// harness fails on a panic or a hang.
package fuzz
