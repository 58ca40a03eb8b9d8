package runtime

import (
	"sort"
	"strings"

	"github.com/airband-io/airband/pkg/domain"
)

// BlockSeparator joins multi-block transmissions.
const BlockSeparator = ", "

// PendingPlaceholder is the well-known text shown while a transmission's
// backing data has not loaded. The session stays in its presenting phase;
// this is a suspension point, not an error.
const PendingPlaceholder = "[transmission pending]"

// RenderBlocks concatenates block texts in ascending declared order and
// substitutes bindings into each block independently. Rendering is
// idempotent for fixed inputs.
func RenderBlocks(blocks []domain.Block, b Bindings) string {
	ordered := make([]domain.Block, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	parts := make([]string, 0, len(ordered))
	for _, blk := range ordered {
		parts = append(parts, Substitute(blk.Text, b))
	}
	return strings.Join(parts, BlockSeparator)
}
