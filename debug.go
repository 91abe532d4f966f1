package arbor

import (
	"go.uber.org/zap"
)

// globalDebug enables the tree sanity checks below. Tree operations have no
// scene to consult, so the flag is process-wide.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, tree
// operations on destroyed views, deep trees and very wide slots are logged.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// debugCheckDestroyed logs a tree operation on a destroyed view.
func debugCheckDestroyed(v *View, op string) {
	if v.destroyed {
		logger.Error("operation on destroyed view", zap.String("op", op), idField(v))
	}
}

// debugMaxTreeDepth is the depth past which debugCheckTreeDepth warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(v *View) {
	depth := 0
	for p := v; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth), idField(v))
	}
}

// debugMaxChildCount is the child count past which debugCheckChildCount warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(v *View) {
	if n := v.NumChildren(); n > debugMaxChildCount {
		logger.Warn("view has too many children",
			zap.Int("children", n), zap.Int("threshold", debugMaxChildCount), idField(v))
	}
}
