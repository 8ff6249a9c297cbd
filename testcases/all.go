package testcases

// All contains every test case, grouped by category.
var All = map[string][]TestCase{
	"single":  single,
	"coupled": coupled,
}
