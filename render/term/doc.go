// Package term draws Note Hunt frames on a terminal through tcell.
package term
