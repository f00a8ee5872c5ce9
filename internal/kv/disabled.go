package kv

import "context"

// Disabled models persistence being switched off: every call fails with
// ErrUnavailable.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (string, bool, error) { return "", false, ErrUnavailable }
func (Disabled) Set(context.Context, string, string) error          { return ErrUnavailable }
func (Disabled) Delete(context.Context, ...string) error            { return ErrUnavailable }
