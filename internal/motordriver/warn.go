package motordriver

import "github.com/fatih/color"

// warnFn is passed to canbus receive paths as the warning sink, printing in
// yellow per spec.md §7's user-visible behaviour rule.
func warnFn(msg string) {
	color.Yellow(msg)
}
