package types

// Result is the outcome of one extractor run. Extractors return results
// instead of raising; the caller decides whether a failed platform warrants
// a non-zero exit or just a log line before the next scheduled cycle.
type Result struct {
	Platform Platform
	Success  bool
	Count    int // items handed to the store this run
	Err      error
}

// Ok builds a successful result.
func Ok(platform Platform, count int) Result {
	return Result{Platform: platform, Success: true, Count: count}
}

// Fail builds a failed result.
func Fail(platform Platform, err error) Result {
	return Result{Platform: platform, Success: false, Err: err}
}
