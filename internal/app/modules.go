package app

import (
	"github.com/vk/envrig/internal/registry"
	"github.com/vk/envrig/modules/envcheck"
	"github.com/vk/envrig/modules/httpcheck"
	"github.com/vk/envrig/modules/inference"
	"github.com/vk/envrig/modules/nodeenv"
	"github.com/vk/envrig/modules/render"
	"github.com/vk/envrig/modules/socketio"
	"github.com/vk/envrig/modules/storagecheck"
)

// corePlugins is the definitive list of all plugins that are compiled into
// the envrig binary.
var corePlugins = []registry.Plugin{
	&nodeenv.Module{},
	&render.Module{},
	&envcheck.Module{},
	&httpcheck.Module{},
	&storagecheck.Module{},
	&socketio.Module{},
	&inference.Module{},
}
