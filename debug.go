// Copyright (c) 2026 The mdd Authors
//
// MIT License

//go:build debug
// +build debug

package mdd

import (
	"log"
	"os"
)

const _DEBUG bool = true
const _LOGLEVEL int = 1

func init() {
	log.SetOutput(os.Stdout)
}
