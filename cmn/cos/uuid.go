// Package cos provides common low-level types and utilities for all psrs packages.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/teris-io/shortid"
)

// NOTE: BEWARE: `shortid` uses hardcoded 01/2016 as a starting timestamp

const (
	// Alphabet for generating UUIDs similar to the shortid.DEFAULT_ABC
	uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

	lenRandStr = 9
)

var (
	sids     [4]*shortid.Shortid
	sidsOnce sync.Once
)

// InitShortid seeds the generators; when never called, GenUUID seeds
// them from the wall clock on first use.
func InitShortid(seed uint64) {
	sidsOnce.Do(func() { initShortid(seed) })
}

func initShortid(seed uint64) {
	for i := range sids {
		sids[i] = shortid.MustNew(uint8(i+1) /*worker*/, uuidABC, seed)
	}
}

// GenUUID generates unique and user-friendly IDs.
func GenUUID() (uuid string) {
	InitShortid(uint64(time.Now().UnixNano()))
	var err error
	for _, sid := range sids {
		uuid, err = sid.Generate()
		if err == nil && IsAlphaNice(uuid) {
			return
		}
	}
	return RandString(lenRandStr)
}

// IsAlphaNice reports whether the ID neither starts nor ends with '-' or '_'.
func IsAlphaNice(s string) bool {
	l := len(s)
	return l > 0 && s[0] != '-' && s[0] != '_' && s[l-1] != '-' && s[l-1] != '_'
}

func RandString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))]
	}
	return string(b)
}
