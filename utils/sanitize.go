package utils

import "github.com/microcosm-cc/bluemonday"

// ugcPolicy keeps basic formatting in blog and comment bodies while
// stripping scripts and event handlers.
var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize runs user-supplied HTML through the UGC policy before it is
// stored.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}
