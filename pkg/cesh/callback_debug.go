/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package cesh

import "sync"

func mapCount(m *sync.Map) int {
	count := 0
	m.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// DebugCallbackCount returns the number of live callback registry
// entries across all three kinds. Useful in tests to verify that
// replaced callbacks were unregistered.
func DebugCallbackCount() int {
	return mapCount(&commandRegistry) +
		mapCount(&printRegistry) +
		mapCount(&overflowRegistry)
}
