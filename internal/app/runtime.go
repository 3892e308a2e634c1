package app

import (
	"os"
	"sync"
)

const testModeEnv = "ODYSSEY_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the server and worker mains should exit before
// dialing Postgres and Redis. The flag is read once per process.
func InTestMode() bool {
	return testMode()
}
