/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package parallelisation

import (
	"context"

	"github.com/sasha-s/go-deadlock"
)

// CancelFunctionStore stores a list of context cancel functions so they can be run together on Cancel.
type CancelFunctionStore struct {
	mu              deadlock.RWMutex
	cancelFunctions []context.CancelFunc
}

func NewCancelFunctionsStore() *CancelFunctionStore {
	return &CancelFunctionStore{}
}

func (s *CancelFunctionStore) RegisterCancelFunction(cancel ...context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFunctions = append(s.cancelFunctions, cancel...)
}

func (s *CancelFunctionStore) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cancelFunctions {
		s.cancelFunctions[i]()
	}
	s.cancelFunctions = nil
}

func (s *CancelFunctionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cancelFunctions)
}
