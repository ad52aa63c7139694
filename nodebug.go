// Copyright (c) 2026 The mdd Authors
//
// MIT License

//go:build !debug
// +build !debug

package mdd

const _DEBUG bool = false
const _LOGLEVEL int = 0
