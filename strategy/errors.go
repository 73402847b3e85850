package strategy

import (
	"fmt"

	"github.com/arloliu/segsieve/types"
)

// ErrBoundBeforeLeft indicates that the exclusive bound precedes the left edge.
var ErrBoundBeforeLeft = fmt.Errorf("%w: bound precedes left edge", types.ErrInvalidRange)
