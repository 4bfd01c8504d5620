package errs

import "errors"

// Fatal to the integration's own setup.
var (
	ErrConfiguration   = errors.New("testrail configuration error")
	ErrSuiteResolution = errors.New("suite resolution failed")
	ErrRunCreation     = errors.New("run creation failed")
	ErrRunAlreadyOpen  = errors.New("run already opened for this process")
)

// Recoverable, logged and dropped.
var (
	ErrCaseCreation     = errors.New("case creation failed")
	ErrResultSubmission = errors.New("result submission failed")
	ErrRunClose         = errors.New("run close failed")
)

// ErrRemote marks any failure reported by the TestRail API or its transport.
var ErrRemote = errors.New("testrail remote error")
