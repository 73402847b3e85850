package hooks

import (
	"context"

	"github.com/arloliu/segsieve/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default when no custom hooks are provided, so callers never
// need nil checks on the hook fields.
type NopHooks struct{}

var (
	_ func(context.Context, types.Phase, types.Phase) error = (*NopHooks)(nil).OnPhaseChanged
	_ func(context.Context, types.Partition) error          = (*NopHooks)(nil).OnPartitionAssigned
	_ func(context.Context, error) error                    = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - *types.Hooks: Hooks with every callback set to a no-op
func NewNop() *types.Hooks {
	h := &NopHooks{}

	return &types.Hooks{
		OnPhaseChanged:      h.OnPhaseChanged,
		OnPartitionAssigned: h.OnPartitionAssigned,
		OnError:             h.OnError,
	}
}

// Fill returns a copy of hooks with every nil callback replaced by a no-op.
// A nil hooks value yields NewNop().
func Fill(hooks *types.Hooks) *types.Hooks {
	nop := NewNop()
	if hooks == nil {
		return nop
	}

	out := *hooks
	if out.OnPhaseChanged == nil {
		out.OnPhaseChanged = nop.OnPhaseChanged
	}
	if out.OnPartitionAssigned == nil {
		out.OnPartitionAssigned = nop.OnPartitionAssigned
	}
	if out.OnError == nil {
		out.OnError = nop.OnError
	}

	return &out
}

// OnPhaseChanged is a no-op implementation.
func (h *NopHooks) OnPhaseChanged(_ context.Context, _, _ types.Phase) error {
	return nil
}

// OnPartitionAssigned is a no-op implementation.
func (h *NopHooks) OnPartitionAssigned(_ context.Context, _ types.Partition) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
