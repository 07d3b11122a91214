package app

import (
	"github.com/vk/depends/internal/registry"
	"github.com/vk/depends/modules/bash"
	"github.com/vk/depends/modules/colorspaceapply"
	"github.com/vk/depends/modules/dot"
	"github.com/vk/depends/modules/imagetransform"
	"github.com/vk/depends/modules/lightprobereduce"
	"github.com/vk/depends/modules/print"
	"github.com/vk/depends/modules/textfile"
)

// coreModules is the definitive list of all modules that are compiled into
// the depends binary.
var coreModules = []registry.Module{
	&imagetransform.Module{},
	&colorspaceapply.Module{},
	&lightprobereduce.Module{},
	&textfile.Module{},
	&dot.Module{},
	&print.Module{},
	&bash.Module{},
}
