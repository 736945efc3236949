package modules

import (
	"github.com/vicedu/vicedu/modules/catalog"
	"github.com/vicedu/vicedu/modules/core"
	"github.com/vicedu/vicedu/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
	catalog.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	for _, module := range mods {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
