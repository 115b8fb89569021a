// Package mocks provides hand-written mock implementations of the
// database interfaces for testing.
package mocks

type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}
