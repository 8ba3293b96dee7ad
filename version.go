/*
 * MIT License
 * Copyright (c) 2016 Chris Pavlina
 * Copyright (c) 2026 Crrow
 */

package eshgo

// Version is the semantic version of the bindings.
const Version = "0.0.1"
