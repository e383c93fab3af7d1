//go:build nodebug

package core

func assert(cond bool, msg string) {}

const assertionsEnabled = false
