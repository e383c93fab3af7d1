//go:build !nodebug

package core

// assert panics with msg when cond is false. Build with -tags nodebug to
// compile the checks out.
func assert(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}

const assertionsEnabled = true
