package pipeline

import "errors"

// Stage and run failure sentinels. Transient stage errors are retried with
// backoff before surfacing; configuration and contract violations fail the
// run immediately.
var (
	ErrPipelineFailed = errors.New("pipeline execution failed")
	ErrResearchFailed = errors.New("research stage failed")
	ErrClassifyFailed = errors.New("classify stage failed")
	ErrGenerateFailed = errors.New("generate stage failed")
	ErrDecideFailed   = errors.New("decide stage failed")
	ErrInvalidFinding = errors.New("classifier returned an invalid finding")
)
