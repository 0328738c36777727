package interfaces

import (
	"context"

	"github.com/m-mizutani/romfetch/pkg/domain/model"
)

// EventEmitter delivers download events to the host application
type EventEmitter interface {
	Emit(ctx context.Context, event model.Event) error
}
